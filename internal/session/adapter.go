package session

import (
	"errors"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/pkg/boarddto"
)

// ToDTO converts a snapshot to its client view. cat may be nil, in which
// case the embedded catalog is used for the status line.
func ToDTO(s *Snapshot, cat *msgcat.Catalog) *boarddto.SessionState {
	if s == nil {
		return nil
	}
	if cat == nil {
		cat = msgcat.Default()
	}
	out := &boarddto.SessionState{
		ID:        s.ID,
		Rows:      s.Board.Symbols(),
		Placement: s.Board.Placement(),
		Active:    s.Active.String(),
		Moves:     s.Moves,
		Status:    cat.Text("status.turn", map[string]any{"Turn": s.Active.String()}),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Selected != nil {
		out.Selected = s.Selected.String()
	}
	return out
}

// ClickMessage renders the human-readable line for a click result.
func ClickMessage(r *ClickResult, cat *msgcat.Catalog) string {
	if r == nil || r.Snapshot == nil {
		return ""
	}
	if cat == nil {
		cat = msgcat.Default()
	}
	data := map[string]any{
		"Turn":   r.Snapshot.Active.String(),
		"Next":   r.Snapshot.Active.String(),
		"Square": r.Square.String(),
		"From":   r.From.String(),
		"To":     r.Square.String(),
		"Piece":  pieceName(r.Piece),
	}
	return cat.Text("click."+r.Outcome.String(), data)
}

// MoveMessage renders the human-readable line for a move result.
func MoveMessage(r *MoveResult, cat *msgcat.Catalog) string {
	if r == nil || r.Snapshot == nil {
		return ""
	}
	if cat == nil {
		cat = msgcat.Default()
	}
	key := "move.rejected"
	switch r.Reason {
	case ReasonAccepted:
		key = "move.accepted"
	case ReasonEmpty:
		key = "move.empty"
	case ReasonWrongTurn:
		key = "move.wrong_turn"
	}
	data := map[string]any{
		"Turn":  r.Snapshot.Active.String(),
		"Next":  r.Snapshot.Active.String(),
		"From":  r.From.String(),
		"To":    r.To.String(),
		"Piece": pieceName(r.Piece),
	}
	return cat.Text(key, data)
}

// ErrorKey maps a session error to its message catalog key.
func ErrorKey(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "error.not_found"
	case errors.Is(err, ErrInvalidSquare), errors.Is(err, ErrInvalidArgs):
		return "error.invalid_square"
	case errors.Is(err, ErrConcurrentUpdate):
		return "error.conflict"
	case errors.Is(err, ErrTooManySessions):
		return "error.too_many"
	default:
		return ""
	}
}

func pieceName(p *board.Piece) string {
	if p == nil {
		return ""
	}
	return p.String()
}
