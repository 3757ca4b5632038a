package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/poker"
)

func TestSplitHands(t *testing.T) {
	t.Parallel()

	hands, err := splitHands([]string{"AS", "KS", "vs", "QD", "QH"})
	require.NoError(t, err)
	assert.Equal(t, [][]poker.Card{poker.MustParseCards("AS", "KS"), poker.MustParseCards("QD", "QH")}, hands)

	_, err = splitHands([]string{"AS", "ZZ"})
	require.ErrorIs(t, err, poker.ErrInvalidCard)
}

func TestEvalCmd(t *testing.T) {
	t.Parallel()

	g := &Globals{}
	require.NoError(t, (&EvalCmd{Cards: []string{"AS", "KS", "QS", "JS", "TS", "vs", "2C", "2D", "5H", "7S", "9C"}}).Run(g))
	require.NoError(t, (&EvalCmd{Cards: []string{"AS", "AH", "vs", "7C", "2D"}, Samples: 500, Seed: 1}).Run(g))
	require.Error(t, (&EvalCmd{Cards: []string{"AS", "KS"}}).Run(g), "two cards cannot be ranked alone")
}
