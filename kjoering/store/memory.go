// Package store provides Lager implementations.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/kjoering"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	kjoeringer  map[uuid.UUID]kjoering.Kjoering
	rekkefoelge []uuid.UUID
}

var _ kjoering.Lager = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		kjoeringer: make(map[uuid.UUID]kjoering.Kjoering),
	}
}

// Lagre stores a run. Runs are never overwritten.
func (m *Memory) Lagre(_ context.Context, k kjoering.Kjoering) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, finnes := m.kjoeringer[k.ID]; finnes {
		return kjoering.ErrKjoeringFinnes
	}
	m.kjoeringer[k.ID] = k.Kopi()
	m.rekkefoelge = append(m.rekkefoelge, k.ID)
	return nil
}

func (m *Memory) Hent(_ context.Context, id uuid.UUID) (*kjoering.Kjoering, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k, ok := m.kjoeringer[id]
	if !ok {
		return nil, kjoering.ErrKjoeringNotFound
	}
	kopi := k.Kopi()
	return &kopi, nil
}

// List walks the runs newest first.
func (m *Memory) List(_ context.Context, filter kjoering.Filter) ([]kjoering.Kjoering, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []kjoering.Kjoering
	for i := len(m.rekkefoelge) - 1; i >= 0; i-- {
		k := m.kjoeringer[m.rekkefoelge[i]]
		if !filter.Matcher(k) {
			continue
		}
		result = append(result, k.Kopi())
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}
