package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/obslog"
	"go.uber.org/zap"
)

// Archive receives the committed snapshot after every accepted move.
type Archive interface {
	SaveSnapshot(ctx context.Context, s *Snapshot) error
}

// EventKind names what changed a session.
type EventKind string

const (
	EventCreate EventKind = "create"
	EventClick  EventKind = "click"
	EventMove   EventKind = "move"
	EventDelete EventKind = "delete"
)

// Event is delivered to observers after a change is committed.
type Event struct {
	Kind     EventKind
	ID       string
	Outcome  board.Outcome // click/move only
	Snapshot *Snapshot     // nil for delete
}

type Observer func(ev Event)

// Manager runs the board rules against stored sessions. All mutations go
// through Store.Update, which serializes them per session.
type Manager struct {
	store       Store
	archive     Archive
	maxSessions int
	now         func() time.Time

	obsMu     sync.RWMutex
	observers []Observer
}

type Option func(*Manager)

func WithArchive(a Archive) Option { return func(m *Manager) { m.archive = a } }

func WithMaxSessions(n int) Option { return func(m *Manager) { m.maxSessions = n } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{store: store, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnChange registers an observer. Observers run synchronously on the
// goroutine that committed the change and must not block.
func (m *Manager) OnChange(fn Observer) {
	m.obsMu.Lock()
	m.observers = append(m.observers, fn)
	m.obsMu.Unlock()
}

func (m *Manager) notify(ev Event) {
	m.obsMu.RLock()
	list := append([]Observer(nil), m.observers...)
	m.obsMu.RUnlock()
	for _, fn := range list {
		fn(ev)
	}
}

// Create starts a new session from the initial placement, White to move.
// The session cap is enforced by the store as part of the insert.
func (m *Manager) Create(ctx context.Context) (*Snapshot, error) {
	g := board.NewGame()
	now := m.now()
	snap := &Snapshot{
		ID:        uuid.NewString(),
		Board:     g.Board,
		Active:    g.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Create(ctx, snap, m.maxSessions); err != nil {
		if errors.Is(err, ErrTooManySessions) {
			obslog.L().Warn("session_create_rejected", zap.Int("max_sessions", m.maxSessions))
		}
		return nil, err
	}
	obslog.L().Info("session_create", zap.String("session_id", snap.ID))
	m.notify(Event{Kind: EventCreate, ID: snap.ID, Snapshot: snap.Clone()})
	return snap, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Snapshot, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidArgs
	}
	return m.store.Load(ctx, id)
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidArgs
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	obslog.L().Info("session_delete", zap.String("session_id", id))
	m.notify(Event{Kind: EventDelete, ID: id})
	return nil
}

// Click feeds one square click into the session's selection state machine.
func (m *Manager) Click(ctx context.Context, id string, sq board.Square) (*ClickResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidArgs
	}
	if !sq.Valid() {
		return nil, ErrInvalidSquare
	}

	res := &ClickResult{Square: sq}
	snap, err := m.store.Update(ctx, id, func(s *Snapshot) error {
		g := s.Game()
		ctl := board.NewController(g, s.Selected)
		res.From, _ = ctl.Selected()
		if origin, ok := ctl.Selected(); ok {
			res.Piece = g.Board.At(origin)
		} else {
			res.Piece = g.Board.At(sq)
		}

		res.Outcome = ctl.Click(sq)
		if res.Outcome == board.Ignored {
			res.Piece = nil
		}
		s.Board, s.Active = g.Board, g.Active
		s.Selected = nil
		if sel, ok := ctl.Selected(); ok {
			s.Selected = &sel
		}
		if res.Outcome == board.Moved {
			s.Moves++
		}
		s.UpdatedAt = m.now()
		return nil
	})
	if err != nil {
		obslog.L().Warn("session_click_error", zap.String("session_id", id), zap.String("square", sq.String()), zap.Error(err))
		return nil, err
	}
	res.Snapshot = snap

	obslog.L().Info("session_click",
		zap.String("session_id", id),
		zap.String("square", sq.String()),
		zap.String("outcome", res.Outcome.String()),
		zap.String("active", snap.Active.String()),
	)
	if res.Outcome == board.Moved {
		m.archiveSnapshot(ctx, snap)
	}
	m.notify(Event{Kind: EventClick, ID: id, Outcome: res.Outcome, Snapshot: snap.Clone()})
	return res, nil
}

// Move is a select-then-click in one serialized step: from must hold a
// piece of the active side, and any pending selection is discarded.
func (m *Manager) Move(ctx context.Context, id string, from, to board.Square) (*MoveResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidArgs
	}
	if !from.Valid() || !to.Valid() {
		return nil, ErrInvalidSquare
	}

	res := &MoveResult{From: from, To: to}
	snap, err := m.store.Update(ctx, id, func(s *Snapshot) error {
		g := s.Game()
		s.Selected = nil
		res.Piece = g.Board.At(from)
		switch {
		case res.Piece == nil:
			res.Reason = ReasonEmpty
		case res.Piece.Color != g.Active:
			res.Reason = ReasonWrongTurn
		case !g.TryMove(from, to):
			res.Reason = ReasonIllegal
		default:
			res.Reason, res.Accepted = ReasonAccepted, true
			s.Board, s.Active = g.Board, g.Active
			s.Moves++
		}
		s.UpdatedAt = m.now()
		return nil
	})
	if err != nil {
		obslog.L().Warn("session_move_error", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}
	res.Snapshot = snap

	obslog.L().Info("session_move",
		zap.String("session_id", id),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.String("reason", string(res.Reason)),
		zap.String("active", snap.Active.String()),
	)
	outcome := board.Rejected
	if res.Accepted {
		outcome = board.Moved
		m.archiveSnapshot(ctx, snap)
	}
	m.notify(Event{Kind: EventMove, ID: id, Outcome: outcome, Snapshot: snap.Clone()})
	return res, nil
}

// archive failures are logged only; the store already holds the state.
func (m *Manager) archiveSnapshot(ctx context.Context, s *Snapshot) {
	if m.archive == nil || s == nil {
		return
	}
	if err := m.archive.SaveSnapshot(ctx, s); err != nil {
		obslog.L().Error("session_archive_error", zap.String("session_id", s.ID), zap.Error(err))
	}
}
