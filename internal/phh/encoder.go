package phh

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/poker"
)

// Encode writes hand to w as TOML.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return fmt.Errorf("phh: hand history is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeToBytes encodes hand and returns the bytes.
func EncodeToBytes(hand *HandHistory) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, hand); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a single PHH document.
func Decode(data []byte) (HandHistory, error) {
	var h HandHistory
	if _, err := toml.Decode(string(data), &h); err != nil {
		return HandHistory{}, fmt.Errorf("phh: %w", err)
	}
	return h, nil
}

// Card formats c as rank plus lowercase suit, e.g. "Th".
func Card(c poker.Card) string {
	s := c.String()
	return s[:1] + strings.ToLower(s[1:])
}

// Cards concatenates the PHH form of each card.
func Cards(cards []poker.Card) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(Card(c))
	}
	return b.String()
}

// Player returns the PHH name of the zero-based seat index.
func Player(idx int) string {
	return fmt.Sprintf("p%d", idx+1)
}

// FormatAction renders one betting action. Bets and raises carry the
// street total the player brought their bet to.
func FormatAction(idx int, typ game.ActionType, amount int) (string, bool) {
	player := Player(idx)
	switch typ {
	case game.Fold:
		return player + " f", true
	case game.Check, game.Call:
		return player + " cc", true
	case game.Bet, game.Raise:
		if amount <= 0 {
			return "", false
		}
		return fmt.Sprintf("%s cbr %d", player, amount), true
	default:
		return fmt.Sprintf("# %s %s %d", player, typ, amount), true
	}
}

// DealHole renders a hole card deal. Unknown cards are written as "????".
func DealHole(idx int, cards []poker.Card) string {
	if len(cards) == 0 {
		return "d dh " + Player(idx) + " ????"
	}
	return "d dh " + Player(idx) + " " + Cards(cards)
}

// DealBoard renders a board deal.
func DealBoard(cards []poker.Card) string {
	return "d db " + Cards(cards)
}

// ShowHand renders a showdown reveal.
func ShowHand(idx int, cards []poker.Card) string {
	return Player(idx) + " sm " + Cards(cards)
}
