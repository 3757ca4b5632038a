package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/coder/quartz"

	"github.com/lox/holdemtable/internal/errcode"
)

// Memory is an in-process Store for tests, the CLI and single-node runs.
type Memory struct {
	mu     sync.RWMutex
	clock  quartz.Clock
	tables map[string]Record
}

// NewMemory returns an empty store stamping writes with clock.
func NewMemory(clock quartz.Clock) *Memory {
	return &Memory{clock: clock, tables: make(map[string]Record)}
}

func (m *Memory) Create(_ context.Context, tableID string, data []byte) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[tableID]; ok {
		return Record{}, errcode.ErrTableExists.Withf("table %s", tableID)
	}
	rec := Record{TableID: tableID, Version: 1, Data: slices.Clone(data), UpdatedAt: m.clock.Now().UTC()}
	m.tables[tableID] = rec
	return copyRecord(rec), nil
}

func (m *Memory) Read(_ context.Context, tableID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.tables[tableID]
	if !ok {
		return Record{}, errcode.ErrTableNotFound.Withf("table %s", tableID)
	}
	return copyRecord(rec), nil
}

func (m *Memory) Write(_ context.Context, tableID string, expectedVersion int64, data []byte) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.tables[tableID]
	if !ok {
		return Record{}, errcode.ErrTableNotFound.Withf("table %s", tableID)
	}
	if rec.Version != expectedVersion {
		return Record{}, errcode.ErrVersionConflict.Withf("table %s at version %d, expected %d", tableID, rec.Version, expectedVersion)
	}
	rec = Record{TableID: tableID, Version: rec.Version + 1, Data: slices.Clone(data), UpdatedAt: m.clock.Now().UTC()}
	m.tables[tableID] = rec
	return copyRecord(rec), nil
}

func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.tables)), nil
}

func copyRecord(r Record) Record {
	r.Data = slices.Clone(r.Data)
	return r
}
