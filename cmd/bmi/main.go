// Package main implements the bmi command-line tool.
//
// Usage:
//
//	bmi [-env-file FILE] [-data FILE] <command> [flags]
//
// Commands:
//
//	calc     prompt for weight (kg) and height (m), print BMI and category
//	record   calculate from weight (kg) and height (cm) and append to history
//	history  print the stored measurements and render the trend chart
//	archive  write a zstd-compressed snapshot of the history file, or restore one
//	version  print build information
//
// Configuration comes from the environment and an optional .env file; see
// internal/config for the variables.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"bmitrack/internal/config"
)

// errUsage marks errors caused by bad command-line arguments.
var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code:
// 0 on success, 1 on a reported failure and 2 on bad usage.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("bmi", flag.ContinueOnError)
	global.SetOutput(stderr)
	envFile := global.String("env-file", "", "Load configuration from this .env file (default: ./.env if present)")
	dataFile := global.String("data", "", "History file (overrides BMI_DATA_FILE)")
	global.Usage = func() {
		printUsage(stderr)
		fmt.Fprintf(stderr, "Global flags:\n")
		global.PrintDefaults()
	}

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.LoadConfig(envFiles...)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if isSet(global, "data") {
		cfg.Store.DataFile = *dataFile
		if err := config.Validate(cfg); err != nil {
			fmt.Fprintf(stderr, "error: -data: %v\n", err)
			return 1
		}
	}

	logger := newLogger(cfg.LogLevel, stderr).With("session_id", uuid.NewString())

	app, err := NewApp(cfg, logger, stdin, stdout, stderr)
	if err != nil {
		logger.Error("initialization failed", "error", err)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	cmd, cmdArgs := global.Arg(0), global.Args()[1:]
	logger.Debug("running command", "command", cmd, "env", cfg.Environment)

	var runErr error
	switch cmd {
	case "calc":
		runErr = app.Calc(cmdArgs)
	case "record":
		runErr = app.Record(cmdArgs)
	case "history":
		runErr = app.History(cmdArgs)
	case "archive":
		runErr = app.Archive(cmdArgs)
	case "version":
		fmt.Fprintln(stdout, cfg.Build.String())
	case "help":
		global.Usage()
	default:
		fmt.Fprintf(stderr, "error: unknown command %q\n\n", cmd)
		global.Usage()
		return 2
	}

	return exitCode(runErr, logger, stderr)
}

// exitCode reports err once and maps it to a process exit code.
func exitCode(err error, logger *slog.Logger, stderr io.Writer) int {
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		logger.Error("command failed", "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "BMI Calculator\n\n")
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  bmi [-env-file FILE] [-data FILE] <command> [flags]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  calc      prompt for weight (kg) and height (m), print BMI and category\n")
	fmt.Fprintf(w, "  record    calculate from weight (kg) and height (cm) and save to history\n")
	fmt.Fprintf(w, "  history   list saved measurements and render the BMI trend chart\n")
	fmt.Fprintf(w, "  archive   write a compressed snapshot of the history file, or --restore one\n")
	fmt.Fprintf(w, "  version   print build information\n\n")
}

// newLogger creates a structured slog.Logger writing text to w at the given
// level.
func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
	}))
}
