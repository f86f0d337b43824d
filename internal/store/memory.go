package store

import (
	"context"
	"sync"
)

// Memory is a thread-safe in-memory Store. It backs tests and local
// development without a database; flag semantics match Postgres.
type Memory struct {
	mu    sync.RWMutex
	users map[string]User
	order []string // preserves insertion order for deterministic runs
	pairs map[string]Pair
	flags map[string]map[string]bool // user id → rendered flag key → set
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]User),
		pairs: make(map[string]Pair),
		flags: make(map[string]map[string]bool),
	}
}

// PutUser adds or replaces a user document.
func (m *Memory) PutUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[u.ID]; !exists {
		m.order = append(m.order, u.ID)
	}
	m.users[u.ID] = u
}

// PutPair adds or replaces a pair record.
func (m *Memory) PutPair(p Pair) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs[p.ID] = p
}

// ListUsers returns a snapshot of every user in insertion order.
func (m *Memory) ListUsers(ctx context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]User, 0, len(m.order))
	for _, id := range m.order {
		users = append(users, m.users[id])
	}
	return users, nil
}

// ListPairs returns the pairing directory keyed by pair id.
func (m *Memory) ListPairs(ctx context.Context) (map[string]Pair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pairs := make(map[string]Pair, len(m.pairs))
	for id, p := range m.pairs {
		pairs[id] = p
	}
	return pairs, nil
}

// FlagExists reports whether a dedup flag is set.
func (m *Memory) FlagExists(ctx context.Context, userID string, key FlagKey) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags[userID][key.String()], nil
}

// SetFlag sets a dedup flag.
func (m *Memory) SetFlag(ctx context.Context, userID string, key FlagKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.flags[userID] == nil {
		m.flags[userID] = make(map[string]bool)
	}
	m.flags[userID][key.String()] = true
	return nil
}

// Flags returns a copy of a user's rendered flag keys, for tests.
func (m *Memory) Flags(userID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.flags[userID]))
	for k := range m.flags[userID] {
		keys = append(keys, k)
	}
	return keys
}

// PurgeFlagsBefore removes flags dated before cutoffDate.
func (m *Memory) PurgeFlagsBefore(ctx context.Context, cutoffDate string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var trimmed int64
	for uid, set := range m.flags {
		changed := false
		for rendered := range set {
			key, err := ParseFlagKey(rendered)
			if err != nil {
				continue
			}
			if key.Date < cutoffDate {
				delete(set, rendered)
				changed = true
			}
		}
		if changed {
			trimmed++
		}
		if len(set) == 0 {
			delete(m.flags, uid)
		}
	}
	return trimmed, nil
}

// Ping always succeeds.
func (m *Memory) Ping(ctx context.Context) error { return nil }
