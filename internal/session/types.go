package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/park285/cheese-board/internal/board"
)

// Snapshot is the stored state of one game session.
type Snapshot struct {
	ID        string
	Board     board.Board
	Active    board.Color
	Selected  *board.Square
	Moves     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Selected != nil {
		sel := *s.Selected
		cp.Selected = &sel
	}
	return &cp
}

// Game returns a board.Game holding a copy of the stored position.
func (s *Snapshot) Game() *board.Game {
	return &board.Game{Board: s.Board, Active: s.Active}
}

// record is the JSON form stored in Redis.
type record struct {
	ID        string    `json:"id"`
	Rows      []string  `json:"rows"`
	Active    string    `json:"active"`
	Selected  string    `json:"selected,omitempty"`
	Moves     int       `json:"moves"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	rows := s.Board.Rows()
	r := record{
		ID:        s.ID,
		Rows:      rows[:],
		Active:    s.Active.String(),
		Moves:     s.Moves,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Selected != nil {
		r.Selected = s.Selected.String()
	}
	return json.Marshal(r)
}

func (s *Snapshot) UnmarshalJSON(raw []byte) error {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return err
	}
	b, err := board.FromRows(r.Rows)
	if err != nil {
		return err
	}
	active, ok := board.ParseColor(r.Active)
	if !ok {
		return fmt.Errorf("session %s: bad active color %q", r.ID, r.Active)
	}
	*s = Snapshot{
		ID:        r.ID,
		Board:     b,
		Active:    active,
		Moves:     r.Moves,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Selected != "" {
		sq, err := board.ParseSquare(r.Selected)
		if err != nil {
			return fmt.Errorf("session %s: %w", r.ID, err)
		}
		s.Selected = &sq
	}
	return nil
}

// MoveReason explains a Move result.
type MoveReason string

const (
	ReasonAccepted  MoveReason = "accepted"
	ReasonEmpty     MoveReason = "empty"
	ReasonWrongTurn MoveReason = "wrong_turn"
	ReasonIllegal   MoveReason = "illegal"
)

// ClickResult describes one processed click.
type ClickResult struct {
	Outcome  board.Outcome
	Square   board.Square
	From     board.Square // origin when a selection was consumed
	Piece    *board.Piece // selected or moving piece, nil when Ignored
	Snapshot *Snapshot
}

// MoveResult describes one processed from/to move request.
type MoveResult struct {
	Accepted bool
	Reason   MoveReason
	From, To board.Square
	Piece    *board.Piece
	Snapshot *Snapshot
}

// Errors
var (
	ErrInvalidArgs      = errf("invalid arguments")
	ErrSessionNotFound  = errf("session not found or expired")
	ErrInvalidSquare    = errf("square out of range")
	ErrConcurrentUpdate = errf("concurrent update, retry")
	ErrTooManySessions  = errf("too many active sessions")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }
