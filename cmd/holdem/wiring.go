package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdemtable/internal/config"
	"github.com/lox/holdemtable/internal/history"
	"github.com/lox/holdemtable/internal/ledger"
	"github.com/lox/holdemtable/internal/store"
)

// backends are the collaborators built from a config, with a single close
// hook for whatever connections they opened.
type backends struct {
	store   store.Store
	ledger  *ledger.GormLedger
	history history.Publisher
	closers []func() error
}

func (b *backends) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openBackends(ctx context.Context, cfg *config.Config, clock quartz.Clock, logger *log.Logger) (*backends, error) {
	b := &backends{}
	ok := false
	defer func() {
		if !ok {
			_ = b.Close()
		}
	}()

	switch cfg.Storage.Driver {
	case "postgres":
		pg, err := store.Connect(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		b.store = pg
		b.closers = append(b.closers, func() error { pg.Close(); return nil })
	default:
		b.store = store.NewMemory(clock)
	}

	var err error
	switch cfg.Ledger.Driver {
	case "postgres":
		b.ledger, err = ledger.OpenPostgres(cfg.Ledger.DSN)
	default:
		b.ledger, err = ledger.OpenSQLite(cfg.Ledger.DSN)
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	b.closers = append(b.closers, b.ledger.Close)

	var sinks history.Multi
	if cfg.History.Dir != "" {
		sinks = append(sinks, history.NewFilePublisher(cfg.History.Dir))
	}
	if cfg.History.RedisAddr != "" {
		rdb, err := history.DialRedis(ctx, cfg.History.RedisAddr, cfg.History.RedisDB)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, rdb.Close)
		sinks = append(sinks, history.NewRedisPublisher(rdb, cfg.History.Queue))
	}
	b.history = sinks

	logger.Debug("Backends ready", "storage", cfg.Storage.Driver, "ledger", cfg.Ledger.Driver, "history_sinks", len(sinks))
	ok = true
	return b, nil
}
