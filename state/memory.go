package state

import (
	"context"
	"sync"

	"github.com/projecteru2/vasup/types"
)

var _ Store = (*Memory)(nil)

// Memory is an in-memory Store for tests and dry runs.
type Memory struct {
	mu  sync.Mutex
	rec types.StateRecord
	set bool
}

// NewMemory returns an empty Memory store; Load yields PhaseStart until the
// first Save.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(_ context.Context) types.StateRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return types.StateRecord{Phase: types.PhaseStart}
	}
	return m.rec
}

func (m *Memory) Save(_ context.Context, rec types.StateRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	m.set = true
	return nil
}
