package acceptance

import (
	"sync"

	"github.com/karsidev/karsi/types"
)

// MemoryStore is the default in-process acceptance store. State is
// lost on restart; the backend remains the durable source of truth, so
// a reload simply re-derives from it.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]types.AcceptanceState
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]types.AcceptanceState)}
}

// Get returns the state for an asset, none when never set.
func (s *MemoryStore) Get(assetID string) (types.AcceptanceState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.states[assetID]; ok {
		return state, nil
	}
	return types.AcceptanceNone, nil
}

// Set records the state for an asset.
func (s *MemoryStore) Set(assetID string, state types.AcceptanceState) error {
	s.mu.Lock()
	s.states[assetID] = state
	s.mu.Unlock()
	return nil
}
