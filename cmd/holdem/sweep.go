package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/quartz"

	"github.com/lox/holdemtable/internal/bot"
	"github.com/lox/holdemtable/internal/config"
	"github.com/lox/holdemtable/internal/errcode"
	"github.com/lox/holdemtable/internal/randutil"
	"github.com/lox/holdemtable/internal/service"
)

// SweepCmd creates the configured tables if they are missing and runs the
// sweeper over every stored table until interrupted.
type SweepCmd struct {
	Once      bool  `help:"Sweep a single time and print the stats"`
	AutoStart bool  `help:"Deal the next hand once the previous one has settled"`
	Seed      int64 `help:"Seed for bot randomness" default:"1"`
}

func (cmd *SweepCmd) Run(g *Globals) error {
	cfg, err := config.Load(g.Config, g.EnvFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(firstNonEmpty(g.LogLevel, cfg.Engine.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := quartz.NewReal()
	b, err := openBackends(ctx, cfg, clock, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Error("Failed to close backends", "error", err)
		}
	}()

	svc := service.New(service.Options{
		Store:      b.store,
		Ledger:     b.ledger,
		History:    b.history,
		Clock:      clock,
		Logger:     logger,
		MaxRetries: cfg.Engine.MaxRetries,
		AutoStart:  cmd.AutoStart,
	})

	rng := randutil.New(cmd.Seed)
	for _, t := range cfg.Tables {
		seats, stacks := t.SeatsAndStacks()
		_, err := svc.CreateTable(ctx, t.ID, t.Rules(), seats, stacks)
		switch {
		case errors.Is(err, errcode.ErrTableExists):
			logger.Debug("Table already stored", "table", t.ID)
		case err != nil:
			return fmt.Errorf("create table %s: %w", t.ID, err)
		}
		for userID, name := range t.BotPolicies() {
			policy, err := bot.New(name, randutil.New(rng.Int64()))
			if err != nil {
				return err
			}
			svc.SetBotPolicy(t.ID, userID, policy)
		}
	}

	sweeper := service.NewSweeper(svc, cfg.Engine.SweepInterval(), cfg.Engine.SweepConcurrency)
	if cmd.Once {
		stats, err := sweeper.SweepOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Println(row("Tables", fmt.Sprintf("%d", stats.Tables)))
		fmt.Println(row("Changed", fmt.Sprintf("%d", stats.Changed)))
		fmt.Println(row("Timed out", fmt.Sprintf("%d", stats.TimedOut)))
		fmt.Println(row("Recovered", fmt.Sprintf("%d", stats.Recovered)))
		fmt.Println(row("Started", fmt.Sprintf("%d", stats.Started)))
		fmt.Println(row("Failed", fmt.Sprintf("%d", stats.Failed)))
		return nil
	}

	if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
