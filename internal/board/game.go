package board

// Game owns one Board and the active player. It is not safe for concurrent
// use; callers that share a Game must serialize ApplyMove themselves.
type Game struct {
	Board  Board
	Active Color
}

// NewGame starts from the initial placement with White to move.
func NewGame() *Game {
	return &Game{Board: New(), Active: White}
}

// ApplyMove moves the piece and hands the turn to the other side. Legality
// is the caller's responsibility (see IsValidMove).
func (g *Game) ApplyMove(from, to Square) {
	g.Board.Move(from, to)
	g.Active = g.Active.Other()
}

// TryMove applies the move only when IsValidMove accepts it.
func (g *Game) TryMove(from, to Square) bool {
	if !IsValidMove(&g.Board, from, to) {
		return false
	}
	g.ApplyMove(from, to)
	return true
}
