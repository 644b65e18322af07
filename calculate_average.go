package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"xpug.it/1brc/internal/aggregate"
	"xpug.it/1brc/internal/chunk"
	"xpug.it/1brc/internal/config"
	"xpug.it/1brc/internal/observability"
	"xpug.it/1brc/internal/report"
	"xpug.it/1brc/internal/source"
	"xpug.it/1brc/internal/station"
)

type publisher interface {
	Publish(ctx context.Context, g station.Global) error
}

type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	clock     clockwork.Clock
	metrics   *observability.Metrics
	publisher publisher // nil when publishing is disabled
	stdout    io.Writer
}

// run computes min/mean/max per station for the file at path and prints the
// sorted result followed by the elapsed time. Nothing is printed on error.
func (a *app) run(ctx context.Context, path string) error {
	start := a.clock.Now()

	global, err := a.calculate(ctx, path)
	if err != nil {
		return err
	}
	elapsed := a.clock.Since(start)

	rows := uint64(0)
	for _, s := range global {
		rows += s.Count
	}
	a.metrics.Stations.Set(float64(len(global)))
	a.metrics.RunDuration.Set(elapsed.Seconds())
	a.metrics.LastSuccess.Set(float64(a.clock.Now().Unix()))
	a.logger.Info("aggregation finished", "path", path, "stations", len(global), "rows", rows, "elapsed", elapsed)

	if a.cfg.MetricsTextfile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, global); err != nil {
			return err
		}
	}

	if err := report.Write(a.stdout, global); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	_, err = fmt.Fprintf(a.stdout, "Time elapsed = %v\n", elapsed)
	return err
}

// calculate plans, aggregates and merges. The source stays open until the
// merge has copied every station name out of it.
func (a *app) calculate(ctx context.Context, path string) (station.Global, error) {
	src, err := source.Open(path, a.cfg.Source)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	ranges, err := chunk.Plan(src, src.Size(), a.cfg.ChunkCount)
	if err != nil {
		return nil, fmt.Errorf("plan chunks: %w", err)
	}
	a.logger.Debug("planned chunks", "path", path, "size", src.Size(), "chunks", len(ranges), "workers", a.cfg.Workers, "source", a.cfg.Source)

	tables, err := aggregate.New(a.cfg.Workers, a.clock, a.logger, a.metrics).Run(ctx, src, ranges)
	if err != nil {
		return nil, err
	}
	return aggregate.Merge(tables...), nil
}
