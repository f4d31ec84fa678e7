package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"
	"time"

	"bmitrack/internal/archive"
	"bmitrack/internal/bmi"
	"bmitrack/internal/chart"
	"bmitrack/internal/config"
	"bmitrack/internal/history"
	"bmitrack/internal/tracker"
	"bmitrack/internal/types"
)

// App holds the wired components shared by every command. Stdin, Stdout
// and Stderr are injectable for tests.
type App struct {
	cfg     *config.Config
	loc     *time.Location
	engine  *bmi.Engine
	store   *history.Store
	tracker *tracker.Tracker
	logger  *slog.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// scanner is lazily initialized and shared across prompts so that
	// buffered input is never lost between reads.
	scanner *bufio.Scanner

	// interactive reports whether Stdin is a terminal.
	interactive bool
}

// NewApp wires the engine, store and tracker from cfg.
func NewApp(cfg *config.Config, logger *slog.Logger, stdin io.Reader, stdout, stderr io.Writer) (*App, error) {
	engine, err := bmi.New(cfg.Thresholds.Engine())
	if err != nil {
		return nil, fmt.Errorf("configuring thresholds: %w", err)
	}
	loc, err := cfg.Store.Location()
	if err != nil {
		return nil, err
	}

	store := history.New(history.Options{
		Path:       cfg.Store.DataFile,
		Location:   loc,
		Classifier: engine,
		Logger:     logger,
	})

	return &App{
		cfg:         cfg,
		loc:         loc,
		engine:      engine,
		store:       store,
		tracker:     tracker.New(engine, store, tracker.SystemClock{}, logger),
		logger:      logger,
		Stdin:       stdin,
		Stdout:      stdout,
		Stderr:      stderr,
		interactive: isTerminal(stdin),
	}, nil
}

// newFlagSet creates a subcommand flag set that reports errors instead of
// exiting.
func (a *App) newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.Stderr, "Usage:\n  bmi %s\n\nFlags:\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		return errUsage
	}
	return nil
}

// Calc is the command-line calculator: it prompts for any value not given
// as a valid flag, re-prompting until the value is a positive number, and
// prints the result. Nothing is saved.
func (a *App) Calc(args []string) error {
	fs := a.newFlagSet("calc", "calc [--weight KG] [--height M]")
	weight := fs.Float64("weight", 0, "Weight in kilograms (prompted for when omitted)")
	height := fs.Float64("height", 0, "Height in meters (prompted for when omitted)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	fmt.Fprintln(a.Stdout, "--- BMI Calculator ---")

	w, err := a.valueOrPrompt(fs, *weight, "weight", "Enter your weight in kilograms (e.g., 70): ")
	if err != nil {
		return err
	}
	h, err := a.valueOrPrompt(fs, *height, "height", "Enter your height in meters (e.g., 1.75): ")
	if err != nil {
		return err
	}

	m, err := a.tracker.Calculate(tracker.Input{WeightKg: w, HeightM: h})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.Stdout)
	fmt.Fprintln(a.Stdout, "--- Your Results ---")
	fmt.Fprintf(a.Stdout, "Your BMI is: %s\n", formatBMI(m.BMI))
	fmt.Fprintf(a.Stdout, "This is considered: %s\n", m.Category)

	if a.interactive {
		fmt.Fprint(a.Stdout, "\nPress Enter to exit.")
		if _, err := a.scanLine(); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}
	return nil
}

// Record calculates a BMI from weight in kilograms and height in
// centimeters and appends it to the history. Invalid values abort the
// calculation with a warning. A failed save is reported as a notice after
// the result has been printed.
func (a *App) Record(args []string) error {
	fs := a.newFlagSet("record", "record [--weight KG] [--height-cm CM]")
	weight := fs.Float64("weight", 0, "Weight in kilograms (prompted for when omitted)")
	heightCm := fs.Float64("height-cm", 0, "Height in centimeters (prompted for when omitted)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	w, h := *weight, *heightCm
	var err error
	if !isSet(fs, "weight") {
		if w, err = a.promptOnce("weight", "Weight (kg): "); err != nil {
			return a.inputWarning(err)
		}
	}
	if !isSet(fs, "height-cm") {
		if h, err = a.promptOnce("height", "Height (cm): "); err != nil {
			return a.inputWarning(err)
		}
	}

	res, err := a.tracker.Record(tracker.InputFromCentimeters(w, h))
	if err != nil {
		return a.inputWarning(err)
	}

	m := res.Measurement
	fmt.Fprintf(a.Stdout, "Your BMI: %s\n", formatBMI(m.BMI))
	fmt.Fprintf(a.Stdout, "Category: %s (%s)\n", m.Category, m.Category.Color())

	if !res.Saved() {
		fmt.Fprintf(a.Stderr, "File Error: Could not save data: %v\n", res.PersistErr)
		return nil
	}
	a.logger.Info("measurement recorded", "path", a.store.Path())
	return nil
}

// History prints every saved measurement and renders the trend chart. An
// absent or empty history is reported as "no data", not as a failure.
func (a *App) History(args []string) error {
	fs := a.newFlagSet("history", "history [--chart FILE] [--no-chart]")
	chartPath := fs.String("chart", a.cfg.Chart.File, "Where to write the PNG chart")
	noChart := fs.Bool("no-chart", false, "Only print the table")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	ms, err := a.tracker.History()
	if err != nil {
		return fmt.Errorf("could not display history: %w", err)
	}
	if len(ms) == 0 {
		fmt.Fprintln(a.Stdout, "No historical data to display yet. Calculate your BMI first!")
		return nil
	}

	if err := a.printTable(ms); err != nil {
		return err
	}
	if *noChart {
		return nil
	}

	opts := chart.DefaultOptions()
	opts.Width = a.cfg.Chart.Width
	opts.Height = a.cfg.Chart.Height
	opts.Location = a.loc
	bands := a.engine.Bands(chart.Ceiling(ms))
	if err := chart.RenderFile(*chartPath, ms, bands, opts); err != nil {
		return fmt.Errorf("could not display history: %w", err)
	}

	fmt.Fprintf(a.Stdout, "\nChart written to %s\n", *chartPath)
	return nil
}

// Archive writes a zstd-compressed copy of the history file, or with
// --restore replaces the history file with the contents of a snapshot.
func (a *App) Archive(args []string) error {
	fs := a.newFlagSet("archive", "archive [--out FILE | --restore FILE]")
	defaultOut := "bmi_data-" + time.Now().In(a.loc).Format("20060102-150405") + archive.Extension
	out := fs.String("out", defaultOut, "Snapshot destination")
	restore := fs.String("restore", "", "Replace the history file with this snapshot")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *restore != "" {
		if isSet(fs, "out") {
			fmt.Fprintln(a.Stderr, "--out and --restore cannot be combined")
			return errUsage
		}
		return a.restore(*restore)
	}

	n, err := archive.Snapshot(a.store.Path(), *out)
	if err != nil {
		return err
	}

	a.logger.Info("history archived", "src", a.store.Path(), "dst", *out, "bytes", n)
	fmt.Fprintf(a.Stdout, "Archived %d bytes of history to %s\n", n, *out)
	return nil
}

func (a *App) restore(snapshot string) error {
	n, err := archive.RestoreFile(snapshot, a.store.Path())
	if err != nil {
		return err
	}

	ms, err := a.tracker.History()
	if err != nil {
		return fmt.Errorf("restored snapshot is not a valid history: %w", err)
	}

	a.logger.Info("history restored", "src", snapshot, "dst", a.store.Path(), "bytes", n)
	fmt.Fprintf(a.Stdout, "Restored %d measurements from %s\n", len(ms), snapshot)
	return nil
}

func (a *App) printTable(ms []types.Measurement) error {
	tw := tabwriter.NewWriter(a.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tWEIGHT (KG)\tHEIGHT (CM)\tBMI\tCATEGORY")
	for _, m := range ms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			m.Timestamp.In(a.loc).Format(types.TimestampLayout),
			strconv.FormatFloat(m.WeightKg, 'f', -1, 64),
			strconv.FormatFloat(m.HeightCm(), 'f', -1, 64),
			formatBMI(m.BMI),
			m.Category,
		)
	}
	return tw.Flush()
}

// inputWarning turns a recoverable input error into a printed warning and
// a usage exit; other errors pass through.
func (a *App) inputWarning(err error) error {
	if !types.CodeOf(err).Recoverable() {
		return err
	}
	a.logger.Debug("input rejected", "error", err)
	fmt.Fprintln(a.Stderr, "Input Error: Weight and height must be positive numbers.")
	return errUsage
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// formatBMI prints the shortest decimal form, e.g. 34.6 rather than 34.60.
func formatBMI(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
