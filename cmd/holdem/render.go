package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/holdemtable/poker"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	redCardStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0245E")).Bold(true)
	blackCardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E5E5")).Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A")).Width(12)
	winStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
)

func renderCard(c poker.Card) string {
	if c.Suit.IsRed() {
		return redCardStyle.Render(c.Pretty())
	}
	return blackCardStyle.Render(c.Pretty())
}

func renderCards(cards []poker.Card) string {
	if len(cards) == 0 {
		return "-"
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = renderCard(c)
	}
	return strings.Join(parts, " ")
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}
