package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"
)

// SweepStats summarizes one pass over every stored table.
type SweepStats struct {
	Tables    int
	Changed   int
	TimedOut  int
	Recovered int
	Started   int
	Failed    int
}

// Sweeper ticks every stored table on an interval so expired turns, stuck
// hands and bot seats make progress without a player request.
type Sweeper struct {
	svc         *Service
	clock       quartz.Clock
	interval    time.Duration
	concurrency int
	logger      *log.Logger
}

// NewSweeper returns a Sweeper that ticks up to concurrency tables at once.
func NewSweeper(svc *Service, interval time.Duration, concurrency int) *Sweeper {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Sweeper{
		svc:         svc,
		clock:       svc.clock,
		interval:    interval,
		concurrency: concurrency,
		logger:      svc.logger.WithPrefix("sweeper"),
	}
}

// SweepOnce ticks every table. A failing table is logged and counted; it
// does not stop the others.
func (w *Sweeper) SweepOnce(ctx context.Context) (SweepStats, error) {
	ids, err := w.svc.store.List(ctx)
	if err != nil {
		return SweepStats{}, err
	}

	var changed, timedOut, recovered, started, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			res, err := w.svc.Tick(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				w.logger.Warn("Tick failed", "table", id, "error", err)
				return nil
			}
			if res.Changed() {
				changed.Add(1)
			}
			if res.TimedOut {
				timedOut.Add(1)
			}
			if res.Recovered {
				recovered.Add(1)
			}
			if res.Started {
				started.Add(1)
			}
			return nil
		})
	}
	err = g.Wait()

	return SweepStats{
		Tables:    len(ids),
		Changed:   int(changed.Load()),
		TimedOut:  int(timedOut.Load()),
		Recovered: int(recovered.Load()),
		Started:   int(started.Load()),
		Failed:    int(failed.Load()),
	}, err
}

// Run sweeps on every interval until ctx is done.
func (w *Sweeper) Run(ctx context.Context) error {
	w.logger.Info("Sweeper started", "interval", w.interval, "concurrency", w.concurrency)
	ticker := w.clock.NewTicker(w.interval, "sweeper")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			stats, err := w.SweepOnce(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.logger.Error("Sweep failed", "error", err)
				continue
			}
			if stats.Changed > 0 || stats.Failed > 0 {
				w.logger.Debug("Sweep complete", "tables", stats.Tables, "changed", stats.Changed,
					"timed_out", stats.TimedOut, "recovered", stats.Recovered, "failed", stats.Failed)
			}
		}
	}
}
