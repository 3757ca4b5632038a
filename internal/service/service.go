// Package service is the request layer above the engine. Every operation
// reads a table snapshot, runs a pure transition and writes the result back
// with compare-and-swap, retrying when another writer got there first. When
// a write settles a hand the payout is posted to the ledger and the hand is
// published to history.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdemtable/internal/bot"
	"github.com/lox/holdemtable/internal/errcode"
	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/handid"
	"github.com/lox/holdemtable/internal/history"
	"github.com/lox/holdemtable/internal/ledger"
	"github.com/lox/holdemtable/internal/settlement"
	"github.com/lox/holdemtable/internal/store"
)

// DefaultMaxRetries bounds the read-compute-write loop.
const DefaultMaxRetries = 5

// maxBotActions caps how many bot actions one request may play.
const maxBotActions = 500

// Options configure a Service. Store is required; a nil Ledger skips
// settlement posting and a nil History discards hand records.
type Options struct {
	Store      store.Store
	Ledger     ledger.Ledger
	History    history.Publisher
	Clock      quartz.Clock
	Logger     *log.Logger
	MaxRetries int
	// DefaultBot plays bot seats that have no registered policy.
	DefaultBot bot.Policy
	// AutoStart deals the next hand on Tick once the previous one settled.
	AutoStart bool
}

// Service runs tables stored in a Store.
type Service struct {
	store      store.Store
	bridge     *settlement.Bridge
	history    history.Publisher
	clock      quartz.Clock
	logger     *log.Logger
	maxRetries int
	defaultBot bot.Policy
	autoStart  bool

	mu   sync.RWMutex
	bots map[string]*lockedPolicy
}

// New returns a Service.
func New(opts Options) *Service {
	s := &Service{
		store:      opts.Store,
		history:    opts.History,
		clock:      opts.Clock,
		logger:     opts.Logger,
		maxRetries: opts.MaxRetries,
		defaultBot: opts.DefaultBot,
		autoStart:  opts.AutoStart,
		bots:       make(map[string]*lockedPolicy),
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.logger = s.logger.WithPrefix("service")
	if s.history == nil {
		s.history = history.Nop{}
	}
	if s.maxRetries <= 0 {
		s.maxRetries = DefaultMaxRetries
	}
	if s.defaultBot == nil {
		s.defaultBot = bot.CallBot{}
	}
	s.defaultBot = &lockedPolicy{policy: s.defaultBot}
	if opts.Ledger != nil {
		s.bridge = settlement.NewBridge(opts.Ledger, s.logger)
	}
	return s
}

// CreateTable stores an idle table.
func (s *Service) CreateTable(ctx context.Context, tableID string, rules game.Rules, seats []game.Seat, stacks map[string]int) (game.PublicState, error) {
	if tableID == "" {
		return game.PublicState{}, errcode.ErrInvalidConfig.Withf("table id required")
	}
	st := game.NewTable(tableID, rules, seats, stacks)
	data, err := game.Encode(st)
	if err != nil {
		return game.PublicState{}, fmt.Errorf("encode table %s: %w", tableID, err)
	}
	if _, err := s.store.Create(ctx, tableID, data); err != nil {
		return game.PublicState{}, err
	}
	s.logger.Info("Table created", "table", tableID, "seats", len(seats))
	return st.Public(), nil
}

// StartParams identify a new hand. Empty ids are generated.
type StartParams struct {
	HandID       string
	HandSeed     string
	DealerSeatNo int
}

// StartHand deals a new hand and plays any bot seats that act first.
func (s *Service) StartHand(ctx context.Context, tableID string, p StartParams) (game.PublicState, error) {
	if p.HandID == "" {
		p.HandID = handid.New()
	}
	if p.HandSeed == "" {
		p.HandSeed = handid.NewSeed()
	}
	st, err := s.mutate(ctx, tableID, func(prev game.State, now time.Time) (game.State, bool, error) {
		// A retried request whose first attempt already dealt this hand.
		if prev.HandID == p.HandID {
			return prev, false, nil
		}
		next, err := game.InitHand(prev, game.InitParams{HandID: p.HandID, HandSeed: p.HandSeed, DealerSeatNo: p.DealerSeatNo}, now)
		if err != nil {
			return prev, false, err
		}
		next, _, err = s.playBots(tableID, next, now)
		return next, true, err
	})
	if err != nil {
		return game.PublicState{}, err
	}
	return st.Public(), nil
}

// ActResult is the outcome of a player request.
type ActResult struct {
	View     game.View
	Replayed bool
}

// Act applies a player's action. A request id that was already applied for
// the user returns the current state without changing it.
func (s *Service) Act(ctx context.Context, tableID string, a game.Action) (ActResult, error) {
	a.Auto = false
	replayed := false
	st, err := s.mutate(ctx, tableID, func(prev game.State, now time.Time) (game.State, bool, error) {
		if prev.AlreadyApplied(a) {
			replayed = true
			return prev, false, nil
		}
		next, err := game.ApplyAction(prev, a, now)
		if err != nil {
			return prev, false, err
		}
		next, _, err = s.playBots(tableID, next, now)
		return next, true, err
	})
	if err != nil {
		return ActResult{}, err
	}
	return ActResult{View: game.ViewFor(st, a.UserID), Replayed: replayed}, nil
}

// TickResult reports what a Tick did to one table.
type TickResult struct {
	Recovered  bool
	TimedOut   bool
	BotActions int
	Started    bool
}

// Changed reports whether the tick wrote a new version.
func (r TickResult) Changed() bool {
	return r.Recovered || r.TimedOut || r.BotActions > 0 || r.Started
}

// Tick does the table's background work: repairs a stuck hand, forces the
// action of an expired turn, plays bot seats, and deals the next hand when
// AutoStart is set.
func (s *Service) Tick(ctx context.Context, tableID string) (TickResult, error) {
	var res TickResult
	_, err := s.mutate(ctx, tableID, func(prev game.State, now time.Time) (game.State, bool, error) {
		res = TickResult{}
		next, recovered, err := game.Recover(prev, now)
		if err != nil {
			return prev, false, err
		}
		res.Recovered = recovered

		timeout, err := game.ApplyTimeout(next, now)
		if err != nil {
			return prev, false, err
		}
		next, res.TimedOut = timeout.State, timeout.Applied
		if timeout.Applied {
			s.logger.Info("Turn timed out", "table", tableID, "hand", next.HandID, "user", timeout.Action.UserID, "action", timeout.Action.Type)
		}

		// Only a hand that was already stored as settled has been published,
		// so a hand finished by this tick is written before the next deal.
		if s.autoStart && (prev.Phase == game.PhaseSettled || prev.Phase == game.PhaseWaiting) && !next.Phase.Betting() {
			started, err := game.InitHand(next, game.InitParams{HandID: handid.New(), HandSeed: handid.NewSeed()}, now)
			switch {
			case err == nil:
				next, res.Started = started, true
			case !errors.Is(err, errcode.ErrNotEnoughPlayers):
				return prev, false, err
			}
		}

		next, res.BotActions, err = s.playBots(tableID, next, now)
		if err != nil {
			return prev, false, err
		}
		return next, res.Changed(), nil
	})
	return res, err
}

// View returns what userID may see at tableID. An empty userID is a
// spectator.
func (s *Service) View(ctx context.Context, tableID, userID string) (game.View, error) {
	st, _, err := s.load(ctx, tableID)
	if err != nil {
		return game.View{}, err
	}
	return game.ViewFor(st, userID), nil
}

// SitOut marks userID to skip hands from the next one on.
func (s *Service) SitOut(ctx context.Context, tableID, userID string) error {
	return s.setSitting(ctx, tableID, userID, true)
}

// SitIn returns userID to play and clears their missed turns.
func (s *Service) SitIn(ctx context.Context, tableID, userID string) error {
	return s.setSitting(ctx, tableID, userID, false)
}

func (s *Service) setSitting(ctx context.Context, tableID, userID string, out bool) error {
	_, err := s.mutate(ctx, tableID, func(prev game.State, _ time.Time) (game.State, bool, error) {
		if _, ok := prev.Seat(userID); !ok {
			return prev, false, errcode.ErrUnknownSeat.Withf("%s is not seated at %s", userID, tableID)
		}
		if prev.SittingOutByUserID[userID] == out {
			return prev, false, nil
		}
		if out {
			return game.SitOut(prev, userID), true, nil
		}
		return game.SitIn(prev, userID), true, nil
	})
	return err
}

// Repost re-sends the settlement and history of the table's last hand.
// Ledger idempotency keys make it safe to call any number of times.
func (s *Service) Repost(ctx context.Context, tableID string) (settlement.Result, error) {
	st, _, err := s.load(ctx, tableID)
	if err != nil {
		return settlement.Result{}, err
	}
	if !st.Settled() {
		return settlement.Result{}, errcode.ErrSettlementIncomplete.Withf("hand %s is not settled", st.HandID)
	}
	return s.publish(ctx, st)
}

func (s *Service) load(ctx context.Context, tableID string) (game.State, int64, error) {
	rec, err := s.store.Read(ctx, tableID)
	if err != nil {
		return game.State{}, 0, err
	}
	st, err := game.Decode(rec.Data)
	if err != nil {
		return game.State{}, 0, fmt.Errorf("load table %s: %w", tableID, err)
	}
	return st, rec.Version, nil
}

type transition func(prev game.State, now time.Time) (next game.State, changed bool, err error)

// mutate runs fn against the latest snapshot and writes the result if fn
// reports a change. Version conflicts re-read and re-run fn.
func (s *Service) mutate(ctx context.Context, tableID string, fn transition) (game.State, error) {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		prev, version, err := s.load(ctx, tableID)
		if err != nil {
			return game.State{}, err
		}

		next, changed, err := fn(prev, s.clock.Now())
		if err != nil {
			s.logRejection(tableID, err)
			return prev, err
		}
		if !changed {
			return prev, nil
		}

		data, err := game.Encode(next)
		if err != nil {
			return prev, fmt.Errorf("encode table %s: %w", tableID, err)
		}
		if _, err := s.store.Write(ctx, tableID, version, data); err != nil {
			if errcode.IsConflict(err) {
				s.logger.Debug("Version conflict, retrying", "table", tableID, "version", version, "attempt", attempt)
				continue
			}
			return prev, err
		}

		if next.Settled() && !(prev.Settled() && prev.HandID == next.HandID) {
			if _, err := s.publish(ctx, next); err != nil {
				s.logger.Error("Failed to publish settled hand", "table", tableID, "hand", next.HandID, "error", err)
			}
		}
		return next, nil
	}
	return game.State{}, errcode.ErrVersionConflict.Withf("table %s: gave up after %d attempts", tableID, s.maxRetries)
}

func (s *Service) logRejection(tableID string, err error) {
	switch {
	case errcode.IsInvariant(err):
		s.logger.Error("Invariant violated", "table", tableID, "code", errcode.CodeOf(err), "error", err)
	case errcode.IsValidation(err):
		s.logger.Debug("Request rejected", "table", tableID, "code", errcode.CodeOf(err), "error", err)
	default:
		s.logger.Warn("Request failed", "table", tableID, "error", err)
	}
}

// publish posts the settlement to the ledger and the hand to history.
func (s *Service) publish(ctx context.Context, st game.State) (settlement.Result, error) {
	hs, err := game.DeriveSettlement(st)
	if err != nil {
		return settlement.Result{}, err
	}

	var res settlement.Result
	var errs []error
	if s.bridge != nil {
		if res, err = s.bridge.Post(ctx, st.TableID, hs); err != nil {
			errs = append(errs, err)
		}
	}

	rec, err := history.NewRecord(st)
	if err == nil {
		err = s.history.Publish(ctx, rec)
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("history: %w", err))
	}
	return res, errors.Join(errs...)
}
