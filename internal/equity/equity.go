// Package equity estimates each hand's share of the pot by Monte Carlo
// run-outs of the board.
package equity

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lox/holdemtable/internal/randutil"
	"github.com/lox/holdemtable/poker"
)

// Result holds per-hand equity in the order the hands were given. A split
// pot counts as a fractional win.
type Result struct {
	Samples int
	Equity  []float64
}

// Options tune Estimate. Zero values pick defaults.
type Options struct {
	Samples int
	Workers int
	Seed    int64
}

const (
	DefaultSamples = 20_000
	maxWorkers     = 8
)

// Estimate deals the rest of the board Samples times and scores every hand.
// With a complete board there is nothing to sample and the result is exact.
func Estimate(ctx context.Context, hands [][]poker.Card, board []poker.Card, opts Options) (Result, error) {
	available, err := remaining(hands, board)
	if err != nil {
		return Result{}, err
	}
	need := 5 - len(board)
	if need == 0 {
		return Result{Samples: 1, Equity: score(hands, board)}, nil
	}

	samples := opts.Samples
	if samples <= 0 {
		samples = DefaultSamples
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = min(runtime.NumCPU(), maxWorkers)
	}
	workers = min(workers, samples)

	partial := make([][]float64, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		n := samples / workers
		if w < samples%workers {
			n++
		}
		g.Go(func() error {
			rng := randutil.New(opts.Seed + int64(w))
			deck := make([]poker.Card, len(available))
			full := make([]poker.Card, len(board), 5)
			copy(full, board)
			shares := make([]float64, len(hands))

			for i := range n {
				if i%256 == 0 && gctx.Err() != nil {
					return gctx.Err()
				}
				copy(deck, available)
				// Partial Fisher-Yates: the first need cards become the run-out.
				for k := range need {
					j := k + rng.IntN(len(deck)-k)
					deck[k], deck[j] = deck[j], deck[k]
				}
				for h, s := range score(hands, append(full[:len(board)], deck[:need]...)) {
					shares[h] += s
				}
			}
			partial[w] = shares
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Samples: samples, Equity: make([]float64, len(hands))}
	for _, shares := range partial {
		for h, s := range shares {
			res.Equity[h] += s
		}
	}
	for h := range res.Equity {
		res.Equity[h] /= float64(samples)
	}
	return res, nil
}

// score splits one unit between the best hands on a complete board.
func score(hands [][]poker.Card, board []poker.Card) []float64 {
	values := make([]poker.HandValue, len(hands))
	var best []int
	cards := make([]poker.Card, 0, 7)
	for h, hole := range hands {
		cards = append(append(cards[:0], hole...), board...)
		eval, err := poker.Evaluate(cards)
		if err != nil {
			// remaining already rejected duplicate or invalid cards.
			panic(fmt.Sprintf("equity: evaluate %v: %v", cards, err))
		}
		values[h] = eval.Value
		switch {
		case len(best) == 0:
			best = []int{h}
		case poker.CompareValues(eval.Value, values[best[0]]) > 0:
			best = []int{h}
		case poker.CompareValues(eval.Value, values[best[0]]) == 0:
			best = append(best, h)
		}
	}
	out := make([]float64, len(hands))
	for _, h := range best {
		out[h] = 1 / float64(len(best))
	}
	return out
}

// remaining validates the known cards and returns the rest of the deck.
func remaining(hands [][]poker.Card, board []poker.Card) ([]poker.Card, error) {
	if len(hands) < 2 {
		return nil, fmt.Errorf("need at least two hands, got %d", len(hands))
	}
	if len(board) > 5 {
		return nil, fmt.Errorf("board has %d cards", len(board))
	}
	used := make(map[poker.Card]bool, 2*len(hands)+len(board))
	mark := func(c poker.Card) error {
		if !c.Valid() {
			return fmt.Errorf("%w: %v", poker.ErrInvalidCard, c)
		}
		if used[c] {
			return fmt.Errorf("%w: %s", poker.ErrDuplicateCard, c)
		}
		used[c] = true
		return nil
	}
	for i, hole := range hands {
		if len(hole) != 2 {
			return nil, fmt.Errorf("hand %d has %d cards, want 2", i+1, len(hole))
		}
		for _, c := range hole {
			if err := mark(c); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range board {
		if err := mark(c); err != nil {
			return nil, err
		}
	}
	var out []poker.Card
	for _, c := range poker.NewDeck() {
		if !used[c] {
			out = append(out, c)
		}
	}
	return out, nil
}
