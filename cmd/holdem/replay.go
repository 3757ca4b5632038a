package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/coder/quartz"

	"github.com/lox/holdemtable/internal/config"
	"github.com/lox/holdemtable/internal/fileutil"
	"github.com/lox/holdemtable/internal/game"
)

// ReplayCmd rebuilds a hand from its seed and action log and checks it
// matches the snapshot. The snapshot comes from a file or, with --table,
// from the configured store.
type ReplayCmd struct {
	File  string `arg:"" optional:"" help:"Path to a JSON table snapshot" type:"path"`
	Table string `help:"Read the snapshot of this table from the configured store instead"`
	Out   string `help:"Write the snapshot, upgraded to the current schema, to this path" type:"path"`
}

func (cmd *ReplayCmd) Run(g *Globals) error {
	raw, err := cmd.load(g)
	if err != nil {
		return err
	}
	st, err := game.Decode(raw)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf(" %s hand #%d ", st.TableID, st.HandNo)))
	fmt.Println(row("Hand", st.HandID))
	fmt.Println(row("Phase", string(st.Phase)))
	fmt.Println(row("Board", renderCards(st.Community)))
	fmt.Println(row("Actions", fmt.Sprintf("%d", len(st.ActionLog))))
	fmt.Println(row("Pot", fmt.Sprintf("%d", st.Pot)))

	if st.HandID != "" {
		if err := game.VerifyReplay(st); err != nil {
			return err
		}
		fmt.Println(row("Replay", winStyle.Render("matches snapshot")))
	}

	if cmd.Out != "" {
		data, err := game.Encode(st)
		if err != nil {
			return err
		}
		if err := fileutil.WriteFileAtomic(filepath.Clean(cmd.Out), data, 0o600); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *ReplayCmd) load(g *Globals) ([]byte, error) {
	switch {
	case cmd.Table != "":
		cfg, err := config.Load(g.Config, g.EnvFile)
		if err != nil {
			return nil, err
		}
		logger := newLogger(firstNonEmpty(g.LogLevel, cfg.Engine.LogLevel))
		ctx := context.Background()
		b, err := openBackends(ctx, cfg, quartz.NewReal(), logger)
		if err != nil {
			return nil, err
		}
		defer b.Close()
		rec, err := b.store.Read(ctx, cmd.Table)
		if err != nil {
			return nil, err
		}
		return rec.Data, nil
	case cmd.File != "":
		return os.ReadFile(cmd.File)
	default:
		return nil, errors.New("replay needs a snapshot file or --table")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
