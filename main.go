package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/jonboulle/clockwork"

	"xpug.it/1brc/internal/adapter/kafka"
	"xpug.it/1brc/internal/config"
	"xpug.it/1brc/internal/observability"
)

const usage = "usage: calculate_average [-cpuprofile file] <measurements file>"

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

// realMain returns the process exit status so deferred cleanup runs before exit.
func realMain(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("calculate_average", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cpuprofile := fs.String("cpuprofile", "", "write cpu profile to `file`")
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "missing measurements file name")
		fmt.Fprintln(stderr, usage)
		return 2
	}
	path := fs.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewTextHandler(stderr, nil)).Error("failed to load config", "error", err)
		return 1
	}
	logger := observability.NewLogger(cfg, stderr)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			logger.Error("could not create CPU profile", "error", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Error("could not start CPU profile", "error", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		clock:   clockwork.NewRealClock(),
		metrics: observability.NewMetrics(),
		stdout:  stdout,
	}
	if cfg.PublishEnabled() {
		p := kafka.NewPublisher(cfg, logger)
		defer func() {
			if err := p.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		a.publisher = p
	}

	if err := a.run(context.Background(), path); err != nil {
		logger.Error("calculate averages failed", "path", path, "error", err)
		return 1
	}
	return 0
}
