package session

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store persists snapshots. Update is the only mutation path for an
// existing session and must run fn for at most one caller per session at a
// time; fn receives a private copy and the store commits it on nil error.
// Create fails with ErrTooManySessions when limit > 0 and that many live
// sessions already exist; the check and the insert are one atomic step.
type Store interface {
	Create(ctx context.Context, s *Snapshot, limit int) error
	Load(ctx context.Context, id string) (*Snapshot, error)
	Update(ctx context.Context, id string, fn func(s *Snapshot) error) (*Snapshot, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

type memEntry struct {
	snap      *Snapshot
	expiresAt time.Time
}

// MemoryStore keeps snapshots in process memory. Entries expire ttl after
// their last write, like the Redis keys.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	byID map[string]memEntry
}

type MemoryOption func(*MemoryStore)

// WithTTL sets the idle lifetime of a session (24h when <= 0).
func WithTTL(d time.Duration) MemoryOption { return func(m *MemoryStore) { m.ttl = d } }

// WithStoreClock replaces time.Now for expiry decisions.
func WithStoreClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) { m.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{ttl: defaultSessionTTL, now: time.Now, byID: make(map[string]memEntry)}
	for _, opt := range opts {
		opt(m)
	}
	if m.ttl <= 0 {
		m.ttl = defaultSessionTTL
	}
	return m
}

// pruneLocked drops expired entries. Caller holds mu.
func (m *MemoryStore) pruneLocked(now time.Time) {
	for id, e := range m.byID {
		if !now.Before(e.expiresAt) {
			delete(m.byID, id)
		}
	}
}

// liveLocked returns the entry for id unless it has expired.
func (m *MemoryStore) liveLocked(id string, now time.Time) (memEntry, bool) {
	e, ok := m.byID[id]
	if !ok {
		return memEntry{}, false
	}
	if !now.Before(e.expiresAt) {
		delete(m.byID, id)
		return memEntry{}, false
	}
	return e, true
}

func (m *MemoryStore) Create(ctx context.Context, s *Snapshot, limit int) error {
	if s == nil || strings.TrimSpace(s.ID) == "" {
		return ErrInvalidArgs
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.pruneLocked(now)
	if _, exists := m.byID[s.ID]; exists {
		return ErrInvalidArgs
	}
	if limit > 0 && len(m.byID) >= limit {
		return ErrTooManySessions
	}
	m.byID[s.ID] = memEntry{snap: s.Clone(), expiresAt: now.Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.liveLocked(strings.TrimSpace(id), m.now())
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.snap.Clone(), nil
}

// Update holds the store lock while fn runs, so updates never interleave.
// A committed update extends the session's lifetime.
func (m *MemoryStore) Update(ctx context.Context, id string, fn func(s *Snapshot) error) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	cur, ok := m.liveLocked(id, now)
	if !ok {
		return nil, ErrSessionNotFound
	}
	next := cur.snap.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	m.byID[id] = memEntry{snap: next, expiresAt: now.Add(m.ttl)}
	return next.Clone(), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id = strings.TrimSpace(id)
	if _, ok := m.liveLocked(id, m.now()); !ok {
		return ErrSessionNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked(m.now())
	return len(m.byID), nil
}

func (m *MemoryStore) Close() error { return nil }
