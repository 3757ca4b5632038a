// Package config loads the table service configuration from an HCL file,
// with connection strings and the log level overridable from the
// environment or a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"

	"github.com/lox/holdemtable/internal/bot"
	"github.com/lox/holdemtable/internal/game"
)

// Config is the complete service configuration.
type Config struct {
	Engine  *EngineSettings  `hcl:"engine,block"`
	Storage *StorageSettings `hcl:"storage,block"`
	Ledger  *LedgerSettings  `hcl:"ledger,block"`
	History *HistorySettings `hcl:"history,block"`
	Tables  []TableConfig    `hcl:"table,block"`
}

// EngineSettings tune the request loop and the sweeper.
type EngineSettings struct {
	LogLevel         string `hcl:"log_level,optional"`
	SweepIntervalMs  int    `hcl:"sweep_interval_ms,optional"`
	SweepConcurrency int    `hcl:"sweep_concurrency,optional"`
	MaxRetries       int    `hcl:"max_retries,optional"`
}

// StorageSettings select where table snapshots live.
type StorageSettings struct {
	Driver string `hcl:"driver,optional"`
	DSN    string `hcl:"dsn,optional"`
}

// LedgerSettings select the ledger database.
type LedgerSettings struct {
	Driver string `hcl:"driver,optional"`
	DSN    string `hcl:"dsn,optional"`
}

// HistorySettings configure where finished hands are published. Both sinks
// are optional.
type HistorySettings struct {
	RedisAddr string `hcl:"redis_addr,optional"`
	RedisDB   int    `hcl:"redis_db,optional"`
	Queue     string `hcl:"queue,optional"`
	Dir       string `hcl:"dir,optional"`
}

// TableConfig declares a table created at startup.
type TableConfig struct {
	ID             string       `hcl:"id,label"`
	SmallBlind     int          `hcl:"small_blind"`
	BigBlind       int          `hcl:"big_blind"`
	TurnTimeoutMs  int64        `hcl:"turn_timeout_ms,optional"`
	MaxMissedTurns int          `hcl:"max_missed_turns,optional"`
	StartingStack  int          `hcl:"starting_stack,optional"`
	Seats          []SeatConfig `hcl:"seat,block"`
}

// SeatConfig seats one user. A non-empty Bot names the policy that plays
// the seat.
type SeatConfig struct {
	UserID string `hcl:"user_id,label"`
	SeatNo int    `hcl:"seat_no"`
	Stack  int    `hcl:"stack,optional"`
	Bot    string `hcl:"bot,optional"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads filename and then applies overrides from envFile and the
// process environment, the environment winning. A missing config file
// yields the defaults; a missing env file is ignored.
func Load(filename, envFile string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(filename); err == nil {
		if cfg, err = parseFile(filename); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", filename, err)
	}

	fileEnv := map[string]string{}
	if envFile != "" {
		read, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
		if read != nil {
			fileEnv = read
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes HCL source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func parseFile(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return Parse(src, filename)
}

func (c *Config) applyDefaults() {
	if c.Engine == nil {
		c.Engine = &EngineSettings{}
	}
	if c.Storage == nil {
		c.Storage = &StorageSettings{}
	}
	if c.Ledger == nil {
		c.Ledger = &LedgerSettings{}
	}
	if c.History == nil {
		c.History = &HistorySettings{}
	}
	if c.Engine.LogLevel == "" {
		c.Engine.LogLevel = "info"
	}
	if c.Engine.SweepIntervalMs == 0 {
		c.Engine.SweepIntervalMs = 1000
	}
	if c.Engine.SweepConcurrency == 0 {
		c.Engine.SweepConcurrency = 8
	}
	if c.Engine.MaxRetries == 0 {
		c.Engine.MaxRetries = 5
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Ledger.Driver == "" {
		c.Ledger.Driver = "sqlite"
	}
	if c.Ledger.DSN == "" && c.Ledger.Driver == "sqlite" {
		c.Ledger.DSN = "file:holdem-ledger.db"
	}
	for i := range c.Tables {
		t := &c.Tables[i]
		if t.TurnTimeoutMs == 0 {
			t.TurnTimeoutMs = 30_000
		}
		if t.MaxMissedTurns == 0 {
			t.MaxMissedTurns = 3
		}
		if t.StartingStack == 0 {
			t.StartingStack = t.BigBlind * 100
		}
		for j := range t.Seats {
			if t.Seats[j].Stack == 0 {
				t.Seats[j].Stack = t.StartingStack
			}
		}
	}
}

// ApplyEnv overrides settings from HOLDEM_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"HOLDEM_LOG_LEVEL":      &c.Engine.LogLevel,
		"HOLDEM_STORAGE_DRIVER": &c.Storage.Driver,
		"HOLDEM_STORAGE_DSN":    &c.Storage.DSN,
		"HOLDEM_LEDGER_DRIVER":  &c.Ledger.Driver,
		"HOLDEM_LEDGER_DSN":     &c.Ledger.DSN,
		"HOLDEM_REDIS_ADDR":     &c.History.RedisAddr,
		"HOLDEM_HISTORY_DIR":    &c.History.Dir,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("HOLDEM_REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HOLDEM_REDIS_DB: %w", err)
		}
		c.History.RedisDB = n
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage: postgres requires a dsn")
		}
	default:
		return fmt.Errorf("storage: unknown driver %q", c.Storage.Driver)
	}
	switch c.Ledger.Driver {
	case "sqlite", "postgres":
		if c.Ledger.DSN == "" {
			return fmt.Errorf("ledger: %s requires a dsn", c.Ledger.Driver)
		}
	default:
		return fmt.Errorf("ledger: unknown driver %q", c.Ledger.Driver)
	}
	if c.Engine.SweepIntervalMs < 0 || c.Engine.SweepConcurrency < 1 || c.Engine.MaxRetries < 1 {
		return fmt.Errorf("engine: sweep interval, concurrency and retries must be positive")
	}

	ids := map[string]bool{}
	for _, t := range c.Tables {
		if ids[t.ID] {
			return fmt.Errorf("table %s: declared twice", t.ID)
		}
		ids[t.ID] = true
		if err := t.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t TableConfig) validate() error {
	if t.SmallBlind <= 0 {
		return fmt.Errorf("table %s: small blind must be positive", t.ID)
	}
	if t.BigBlind < t.SmallBlind {
		return fmt.Errorf("table %s: big blind must not be below small blind", t.ID)
	}
	if len(t.Seats) > 10 {
		return fmt.Errorf("table %s: at most 10 seats", t.ID)
	}
	seatNos := map[int]bool{}
	for _, s := range t.Seats {
		if s.SeatNo < 1 || seatNos[s.SeatNo] {
			return fmt.Errorf("table %s: seat %s has invalid or duplicate seat_no %d", t.ID, s.UserID, s.SeatNo)
		}
		seatNos[s.SeatNo] = true
		if s.Stack <= 0 {
			return fmt.Errorf("table %s: seat %s needs a positive stack", t.ID, s.UserID)
		}
		if s.Bot != "" {
			if _, err := bot.New(s.Bot, nil); err != nil {
				return fmt.Errorf("table %s: seat %s: %w", t.ID, s.UserID, err)
			}
		}
	}
	return nil
}

// SweepInterval returns the sweeper tick as a duration.
func (e EngineSettings) SweepInterval() time.Duration {
	return time.Duration(e.SweepIntervalMs) * time.Millisecond
}

// Rules converts the table's betting settings.
func (t TableConfig) Rules() game.Rules {
	return game.Rules{
		SmallBlind:     t.SmallBlind,
		BigBlind:       t.BigBlind,
		TurnTimeoutMs:  t.TurnTimeoutMs,
		MaxMissedTurns: t.MaxMissedTurns,
	}
}

// SeatsAndStacks converts the seat blocks.
func (t TableConfig) SeatsAndStacks() ([]game.Seat, map[string]int) {
	seats := make([]game.Seat, len(t.Seats))
	stacks := make(map[string]int, len(t.Seats))
	for i, s := range t.Seats {
		seats[i] = game.Seat{UserID: s.UserID, SeatNo: s.SeatNo, Bot: s.Bot != ""}
		stacks[s.UserID] = s.Stack
	}
	return seats, stacks
}

// BotPolicies maps bot seats to their policy names.
func (t TableConfig) BotPolicies() map[string]string {
	out := map[string]string{}
	for _, s := range t.Seats {
		if s.Bot != "" {
			out[s.UserID] = s.Bot
		}
	}
	return out
}
