// crondesc describes five-field cron expressions in English.
//
//	crondesc [flags] EXPRESSION
//	crondesc -i [flags]            read the expression from stdin
//	crondesc bot [--config FILE]   run the Telegram bot
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"crondesc/internal/app"
	"crondesc/internal/config"
	"crondesc/internal/storage"
	"crondesc/internal/translate"
	logx "crondesc/pkg/logx"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2

	stopTimeout = 10 * time.Second
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "bot" {
		return runBot(args[1:], stderr)
	}
	return runDescribe(args, stdin, stdout, stderr)
}

type describeOptions struct {
	input    bool
	next     int
	cfgPath  string
	logLevel string
}

func runDescribe(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts describeOptions
	fs := pflag.NewFlagSet("crondesc", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVarP(&opts.input, "input", "i", false, "read the expression from the first line of stdin")
	fs.IntVarP(&opts.next, "next", "n", 0, "also print the next N run times (local time)")
	fs.StringVarP(&opts.cfgPath, "config", "c", "", "config file for logging and history storage")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if opts.next < 0 {
		fmt.Fprintln(stderr, "--next must be >= 0")
		return exitUsage
	}

	text, err := readExpression(opts.input, fs.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "read stdin: %v\n", err)
		return exitFail
	}
	if text == "" {
		printUsage(stderr, fs)
		return exitUsage
	}

	log, cleanup, svc, err := describeDeps(opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFail
	}
	defer cleanup()

	source := "cli"
	if opts.input {
		source = "stdin"
	}
	res := svc.Translate(context.Background(), translate.Request{
		Text:   text,
		Source: source,
		Next:   opts.next,
	})
	fmt.Fprintln(stdout, res.Message())
	if !res.OK {
		return exitFail
	}
	for _, t := range res.Runs {
		fmt.Fprintln(stdout, t.Local().Format(time.RFC1123))
	}
	if res.RunsErr != nil {
		log.Warn("no upcoming runs", logx.Err(res.RunsErr))
	}
	return exitOK
}

// readExpression joins positional arguments so an unquoted expression works too.
func readExpression(fromStdin bool, args []string, stdin io.Reader) (string, error) {
	if !fromStdin {
		return strings.Join(args, " "), nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// describeDeps builds the logger and translator for one-shot mode. Logs go to
// stderr at warn unless configured otherwise so stdout carries only the result.
func describeDeps(opts describeOptions, stderr io.Writer) (logx.Logger, func(), *translate.Service, error) {
	if opts.cfgPath == "" {
		level := opts.logLevel
		if level == "" {
			level = "warn"
		}
		log := logx.NewConsole(level, stderr)
		return log, func() {}, translate.New(log, nil), nil
	}

	cfg, err := config.ReadFile(opts.cfgPath)
	if err != nil {
		return logx.Logger{}, nil, nil, err
	}
	lc := cfg.LogConfig()
	if opts.logLevel != "" {
		lc.Level = opts.logLevel
	} else if strings.TrimSpace(lc.Level) == "" {
		lc.Level = "warn"
	}
	logSvc, log := logx.NewService(lc)

	sc, err := cfg.StorageSettings()
	if err != nil {
		_ = logSvc.Close()
		return logx.Logger{}, nil, nil, err
	}
	store, err := storage.Open(sc, log)
	if err != nil {
		_ = logSvc.Close()
		return logx.Logger{}, nil, nil, err
	}
	cleanup := func() {
		if store != nil {
			if err := store.Close(); err != nil {
				log.Warn("close storage", logx.Err(err))
			}
		}
		_ = logSvc.Close()
	}
	return log, cleanup, translate.New(log, store), nil
}

func runBot(args []string, stderr io.Writer) int {
	var cfgPath string
	fs := pflag.NewFlagSet("crondesc bot", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&cfgPath, "config", "c", "./config.yaml", "config file (JSON or YAML)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, "fatal:", err)
		return exitFail
	}
	if err := a.Start(ctx); err != nil {
		fmt.Fprintln(stderr, "fatal start:", err)
		_ = a.Stop(context.Background(), app.StopFatalError)
		return exitFail
	}

	reason := app.StopSignal
	select {
	case <-ctx.Done():
	case <-a.Done():
		if a.Err() != nil {
			reason = app.StopFatalError
		}
	}
	fatal := a.Err()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	_ = a.Stop(stopCtx, reason)

	if fatal != nil {
		fmt.Fprintln(stderr, "fatal:", fatal)
		return exitFail
	}
	return exitOK
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprint(w, `Describe a five-field cron expression in English.

Usage:
  crondesc [flags] EXPRESSION
  crondesc -i [flags] < file
  crondesc bot [--config FILE]

Examples:
  crondesc "*/15 9-17 * * 1-5"
  echo "0 0 1 1 *" | crondesc -i
  crondesc -n 3 "30 6 * * *"

Flags:
`)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
