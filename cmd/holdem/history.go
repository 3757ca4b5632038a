package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lox/holdemtable/internal/phh"
	"github.com/lox/holdemtable/poker"
)

// HistoryCmd prints PHH hand files written by the history publisher.
type HistoryCmd struct {
	Paths []string `arg:"" help:"PHH files or directories containing them" type:"path"`
	Limit int      `help:"Maximum number of hands to print (0 = all)"`
}

func (cmd *HistoryCmd) Run(g *Globals) error {
	files, err := collectPHHFiles(cmd.Paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .phh files found")
	}
	if cmd.Limit > 0 && cmd.Limit < len(files) {
		files = files[:cmd.Limit]
	}

	for i, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		hand, err := phh.Decode(data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		if i > 0 {
			fmt.Println()
		}
		printHand(hand)
	}
	return nil
}

func collectPHHFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ".phh" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(files)
	return files, nil
}

func printHand(h phh.HandHistory) {
	fmt.Println(titleStyle.Render(fmt.Sprintf(" %s  %s ", h.Table, h.HandID)))
	for i, name := range h.Players {
		line := fmt.Sprintf("stack %d", at(h.StartingStacks, i))
		if won := at(h.Winnings, i); won > 0 {
			line += "  " + winStyle.Render(fmt.Sprintf("won %d", won))
		}
		fmt.Println(row(fmt.Sprintf("%s %s", phh.Player(i), name), line))
	}
	for _, action := range h.Actions {
		fmt.Println("  " + renderAction(action))
	}
}

// renderAction colours the card runs in a PHH action line.
func renderAction(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return line
	}
	last := fields[len(fields)-1]
	if cards, ok := parsePHHCards(last); ok {
		fields[len(fields)-1] = renderCards(cards)
	}
	return strings.Join(fields, " ")
}

func parsePHHCards(s string) ([]poker.Card, bool) {
	if len(s) == 0 || len(s)%2 != 0 || strings.Contains(s, "?") {
		return nil, false
	}
	cards := make([]poker.Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := poker.ParseCard(strings.ToUpper(s[i : i+2]))
		if err != nil {
			return nil, false
		}
		cards = append(cards, c)
	}
	return cards, true
}

func at(values []int, i int) int {
	if i < len(values) {
		return values[i]
	}
	return 0
}
