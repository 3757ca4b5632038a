package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/lox/holdemtable/internal/bot"
	"github.com/lox/holdemtable/internal/game"
)

// lockedPolicy serializes Decide; the randomized policies share a
// *rand.Rand that is not safe for concurrent use.
type lockedPolicy struct {
	mu     sync.Mutex
	policy bot.Policy
}

func (l *lockedPolicy) Decide(view game.View, legal game.LegalActions) bot.Decision {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.policy.Decide(view, legal)
}

// SetBotPolicy assigns the policy that plays userID at tableID.
func (s *Service) SetBotPolicy(tableID, userID string, p bot.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bots[tableID+"/"+userID] = &lockedPolicy{policy: p}
}

func (s *Service) botPolicy(tableID, userID string) bot.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.bots[tableID+"/"+userID]; ok {
		return p
	}
	return s.defaultBot
}

// BotRequestID is the request id of a bot's action on the current turn.
func BotRequestID(st game.State) string {
	return fmt.Sprintf("bot:%s:%s:%d", st.TableID, st.HandID, st.TurnNo)
}

// playBots acts for bot seats while one holds the turn. A decision the
// engine rejects is replaced by a check, or a fold when checking is not
// allowed.
func (s *Service) playBots(tableID string, st game.State, now time.Time) (game.State, int, error) {
	played := 0
	for st.Phase.Betting() && played < maxBotActions {
		uid := st.TurnUserID
		seat, ok := st.Seat(uid)
		if !ok || !seat.Bot {
			break
		}

		legal := game.Legal(st, uid)
		d := s.botPolicy(tableID, uid).Decide(game.ViewFor(st, uid), legal)
		a := d.Action(uid)
		a.RequestID = BotRequestID(st)

		next, err := game.ApplyAction(st, a, now)
		if err != nil {
			s.logger.Warn("Bot action rejected", "table", tableID, "user", uid, "action", a.Type, "amount", a.Amount, "error", err)
			a.Type, a.Amount = game.Fold, 0
			if legal.Allows(game.Check) {
				a.Type = game.Check
			}
			if next, err = game.ApplyAction(st, a, now); err != nil {
				return st, played, fmt.Errorf("bot %s: %w", uid, err)
			}
		}
		s.logger.Debug("Bot acted", "table", tableID, "hand", st.HandID, "user", uid, "action", a.Type, "amount", a.Amount, "reason", d.Reasoning)
		st = next
		played++
	}
	return st, played, nil
}
