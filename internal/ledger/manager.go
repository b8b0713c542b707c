package ledger

import (
	"context"
	"sync"
)

// Manager owns one engine per scope and makes scope transitions atomic from
// the consumer's point of view: the previous scope's engine is cleared before
// the next scope starts loading, so a consumer sees either "scope A ready" or
// "scope B loading", never a mix.
type Manager struct {
	store Store

	mu      sync.Mutex
	engines map[string]*Engine
	active  map[string]string // user id → active scope key
}

// NewManager creates a manager backed by the given store. The store client is
// constructed once at the composition root and injected here.
func NewManager(store Store) *Manager {
	return &Manager{
		store:   store,
		engines: make(map[string]*Engine),
		active:  make(map[string]string),
	}
}

// Engine returns the engine for the scope, creating it on first use.
func (m *Manager) Engine(scope Scope) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engineLocked(scope)
}

func (m *Manager) engineLocked(scope Scope) *Engine {
	key := scope.Key()
	if eng, ok := m.engines[key]; ok {
		return eng
	}
	eng := NewEngine(scope, m.store)
	m.engines[key] = eng
	return eng
}

// Activate switches the user to the given scope and loads it. If the user was
// on a different scope, that engine's cache is cleared first so its data can
// never be rendered while the new scope loads.
func (m *Manager) Activate(ctx context.Context, scope Scope, force bool) (*Engine, error) {
	m.mu.Lock()
	key := scope.Key()
	if prev, ok := m.active[scope.UserID]; ok && prev != key {
		if prevEng, ok := m.engines[prev]; ok {
			prevEng.ClearData()
		}
	}
	m.active[scope.UserID] = key
	eng := m.engineLocked(scope)
	m.mu.Unlock()

	if err := eng.Load(ctx, force); err != nil {
		return eng, err
	}
	return eng, nil
}

// DropProfile discards every engine attached to the given travel profile.
// Called when a profile is deleted so no consumer can keep reading its data.
func (m *Manager) DropProfile(profileID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, eng := range m.engines {
		scope := eng.Scope()
		if scope.ProfileID != nil && *scope.ProfileID == profileID {
			eng.ClearData()
			delete(m.engines, key)
		}
	}
}
