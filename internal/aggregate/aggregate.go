// Package aggregate turns byte ranges of measurements into per-station
// statistics: one private table per range, built in parallel, then merged.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"xpug.it/1brc/internal/chunk"
	"xpug.it/1brc/internal/observability"
	"xpug.it/1brc/internal/record"
	"xpug.it/1brc/internal/station"
)

// Source yields the bytes of one range.
type Source interface {
	Bytes(r chunk.Range) ([]byte, error)
}

// Chunk folds every record in data into a fresh table. data must start at a
// record boundary; base is its offset in the file and only feeds errors.
// The table's names alias data.
func Chunk(data []byte, base int64) (*station.Table, error) {
	t := station.NewTable(station.DefaultCapacity)
	for pos := 0; pos < len(data); {
		name, temp, next, err := record.Parse(data, pos)
		if err != nil {
			return nil, &record.FormatError{Offset: base + int64(pos), Err: err}
		}
		t.Add(name, temp)
		pos = next
	}
	return t, nil
}

// Aggregator runs Chunk over many ranges on a bounded pool of goroutines.
type Aggregator struct {
	workers int
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Aggregator running at most workers chunks at once.
func New(workers int, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		workers: max(workers, 1),
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Run aggregates every range and returns the tables in range order. The first
// failing range cancels the ranges not yet started and its error is returned.
func (a *Aggregator) Run(ctx context.Context, src Source, ranges []chunk.Range) ([]*station.Table, error) {
	tables := make([]*station.Table, len(ranges))
	a.metrics.Chunks.Set(float64(len(ranges)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, r := range ranges {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := src.Bytes(r)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}

			start := a.clock.Now()
			t, err := Chunk(data, r.Start)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			elapsed := a.clock.Since(start)

			a.metrics.ChunkDuration.Observe(elapsed.Seconds())
			a.metrics.Bytes.Add(float64(len(data)))
			a.metrics.Rows.Add(float64(t.Rows()))
			a.logger.Debug("chunk aggregated",
				"chunk", i,
				"start", r.Start,
				"bytes", len(data),
				"stations", t.Len(),
				"elapsed", elapsed,
			)
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// Merge folds every table into one global result. The fold is commutative
// and associative, so table order does not affect the result.
func Merge(tables ...*station.Table) station.Global {
	g := make(station.Global)
	for _, t := range tables {
		g.Absorb(t)
	}
	return g
}
