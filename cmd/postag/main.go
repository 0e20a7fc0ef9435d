// Command postag trains tag probability models and tags text with them.
//
// Usage:
//
//	postag [-config FILE] train  -corpus FILE [-counts] [-out FILE] [-db DSN -name NAME]
//	postag [-config FILE] tag    [-model FILE | -db DSN (-model-id ID | -name NAME)] [-mode MODE] [-explain] [IN] [OUT]
//	postag [-config FILE] batch  [-model FILE | -db DSN ...] [-mode MODE] [-workers N] -out DIR FILE...
//	postag [-config FILE] score  -gold FILE -output FILE [-model FILE | -db DSN -model-id ID]
//	postag [-config FILE] models -db DSN [-delete ID | -export ID | -import FILE]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kittclouds/postag/internal/config"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks errors caused by bad arguments.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// env is what every subcommand gets.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command func(e *env, args []string) error

var commands = map[string]command{
	"train":  runTrain,
	"tag":    runTag,
	"batch":  runBatch,
	"score":  runScore,
	"models": runModels,
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("postag", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (.toml, .yaml)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: postag [-config FILE] <train|tag|batch|score|models> [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "postag: unknown command %q\n", name)
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "postag: %v\n", err)
		return exitError
	}
	logger, err := cfg.NewLogger(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "postag: %v\n", err)
		return exitError
	}
	slog.SetDefault(logger)

	e := &env{cfg: cfg, logger: logger, stdin: stdin, stdout: stdout, stderr: stderr}
	if err := cmd(e, fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			if !errors.Is(err, flag.ErrHelp) {
				fmt.Fprintf(stderr, "postag %s: %v\n", name, err)
			}
			return exitUsage
		}
		logger.Error("command failed", "command", name, "error", err)
		return exitError
	}
	return exitOK
}

func usageErr(format string, a ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, a...))
}
