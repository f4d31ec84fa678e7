package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"bmitrack/internal/tracker"
)

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// getScanner returns the shared stdin scanner, creating it on first use.
func (a *App) getScanner() *bufio.Scanner {
	if a.scanner == nil {
		a.scanner = bufio.NewScanner(a.Stdin)
	}
	return a.scanner
}

// scanLine reads a single line from stdin. Returns io.EOF when input is
// exhausted.
func (a *App) scanLine() (string, error) {
	s := a.getScanner()
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.Text(), nil
}

// valueOrPrompt returns the value of the flag named field when it was
// given as a positive number. A flag given with any other value is
// reported like a rejected line, and the user is then prompted until they
// type a valid one.
func (a *App) valueOrPrompt(fs *flag.FlagSet, flagValue float64, field, prompt string) (float64, error) {
	if isSet(fs, field) {
		v, err := tracker.ParsePositive(field, strconv.FormatFloat(flagValue, 'g', -1, 64))
		if err == nil {
			return v, nil
		}
		a.printRejection(field, err)
	}
	return a.promptPositive(field, prompt)
}

// promptPositive asks for a positive number, re-prompting with an
// explanation after every rejected line.
func (a *App) promptPositive(field, prompt string) (float64, error) {
	for {
		fmt.Fprint(a.Stdout, prompt)

		line, err := a.scanLine()
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", field, err)
		}

		v, err := tracker.ParsePositive(field, line)
		if err == nil {
			return v, nil
		}
		a.printRejection(field, err)
	}
}

// printRejection explains why a value for field was not accepted.
func (a *App) printRejection(field string, err error) {
	switch tracker.InputReason(err) {
	case tracker.ReasonNotPositive:
		fmt.Fprintf(a.Stdout, "%s must be a positive number.\n", capitalize(field))
	default:
		fmt.Fprintf(a.Stdout, "Invalid input. Please enter a number for %s.\n", field)
	}
}

// promptOnce asks for a positive number a single time, returning the
// InvalidInput error instead of asking again.
func (a *App) promptOnce(field, prompt string) (float64, error) {
	fmt.Fprint(a.Stdout, prompt)
	line, err := a.scanLine()
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", field, err)
	}
	return tracker.ParsePositive(field, line)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
