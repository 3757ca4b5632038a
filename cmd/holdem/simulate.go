package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/holdemtable/internal/bot"
	"github.com/lox/holdemtable/internal/errcode"
	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/history"
	"github.com/lox/holdemtable/internal/ledger"
	"github.com/lox/holdemtable/internal/randutil"
	"github.com/lox/holdemtable/internal/service"
	"github.com/lox/holdemtable/internal/statistics"
	"github.com/lox/holdemtable/internal/store"
)

// SimulateCmd seats bots at one table and plays hands through the service
// with an in-memory store and a throwaway sqlite ledger.
type SimulateCmd struct {
	Hands      int      `short:"n" help:"Number of hands to play" default:"100"`
	Bots       []string `help:"Bot policies, one per seat" default:"tag,call,random,maniac"`
	Stack      int      `help:"Starting stack per seat" default:"200"`
	SmallBlind int      `help:"Small blind" default:"1"`
	BigBlind   int      `help:"Big blind" default:"2"`
	Seed       int64    `help:"Seed for hand seeds and bot randomness (0 = random)"`
	HistoryDir string   `help:"Write each settled hand as PHH under this directory" type:"path"`
}

func (cmd *SimulateCmd) Run(g *Globals) error {
	logger := newLogger(g.LogLevel)
	if len(cmd.Bots) < 2 {
		return fmt.Errorf("need at least two bots, got %d", len(cmd.Bots))
	}
	seed := cmd.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := randutil.New(seed)

	l, err := ledger.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		return err
	}
	defer l.Close()

	session := statistics.NewSession()
	sinks := history.Multi{session}
	if cmd.HistoryDir != "" {
		sinks = append(sinks, history.NewFilePublisher(cmd.HistoryDir))
	}
	clock := quartz.NewReal()
	svc := service.New(service.Options{
		Store:   store.NewMemory(clock),
		Ledger:  l,
		History: sinks,
		Clock:   clock,
		Logger:  logger,
	})

	const tableID = "sim"
	seats := make([]game.Seat, len(cmd.Bots))
	stacks := make(map[string]int, len(cmd.Bots))
	for i, name := range cmd.Bots {
		id := fmt.Sprintf("%s-%d", name, i+1)
		policy, err := bot.New(name, randutil.New(rng.Int64()))
		if err != nil {
			return err
		}
		seats[i] = game.Seat{UserID: id, SeatNo: i + 1, Bot: true}
		stacks[id] = cmd.Stack
		svc.SetBotPolicy(tableID, id, policy)
	}

	ctx := context.Background()
	rules := game.Rules{SmallBlind: cmd.SmallBlind, BigBlind: cmd.BigBlind, TurnTimeoutMs: 30_000, MaxMissedTurns: 3}
	if _, err := svc.CreateTable(ctx, tableID, rules, seats, stacks); err != nil {
		return err
	}

	start := time.Now()
	played := 0
	for i := range cmd.Hands {
		_, err := svc.StartHand(ctx, tableID, service.StartParams{
			HandID:   fmt.Sprintf("sim-%06d", i+1),
			HandSeed: fmt.Sprintf("%d:%d", seed, i+1),
		})
		if errors.Is(err, errcode.ErrNotEnoughPlayers) {
			logger.Info("Table broke", "hands", played)
			break
		}
		if err != nil {
			return fmt.Errorf("hand %d: %w", i+1, err)
		}
		played++
	}

	view, err := svc.View(ctx, tableID, "")
	if err != nil {
		return err
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf(" %d hands in %s (seed %d) ", played, time.Since(start).Round(time.Millisecond), seed)))

	ids := make([]string, 0, len(seats))
	for _, s := range seats {
		ids = append(ids, s.UserID)
	}
	slices.SortFunc(ids, func(a, b string) int { return view.Stacks[b] - view.Stacks[a] })
	for _, id := range ids {
		won, err := l.Balance(ctx, ledger.AccountUser, id)
		if err != nil {
			return err
		}
		net := view.Stacks[id] - cmd.Stack
		st := session.For(id)
		lo, hi := st.ConfidenceInterval95()
		line := fmt.Sprintf("stack %5d  net %+6d  %+8.1f bb/100 [%+.1f, %+.1f]  showdown wins %3d  payouts %6d",
			view.Stacks[id], net, st.BBPer100(), lo*100, hi*100, st.ShowdownWins, won)
		if net > 0 {
			line = winStyle.Render(line)
		}
		fmt.Println(row(id, line))
	}
	total := 0
	for _, v := range view.Stacks {
		total += v
	}
	if total != cmd.Stack*len(seats) {
		return errcode.ErrChipConservation.Withf("have %d chips, want %d", total, cmd.Stack*len(seats))
	}
	return nil
}
