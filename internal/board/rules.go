package board

// Home rows for pawns; the two-square advance is only legal from these.
const (
	whitePawnRow = 6
	blackPawnRow = 1
)

// IsValidMove reports whether moving the piece on from to to matches the
// piece's movement shape. Only displacement is considered: intervening
// squares and the occupant of to are never inspected, and check is not
// evaluated. An empty from square yields false.
//
// Both squares must be on the board; out-of-range input panics.
func IsValidMove(b *Board, from, to Square) bool {
	mustValid(from)
	mustValid(to)
	p := b.At(from)
	if p == nil {
		return false
	}

	rowDiff := abs(to.Row - from.Row)
	colDiff := abs(to.Col - from.Col)

	switch p.Kind {
	case Pawn:
		return pawnAdvance(p.Color, from, to)
	case Rook:
		return from.Row == to.Row || from.Col == to.Col
	case Knight:
		return (rowDiff == 2 && colDiff == 1) || (rowDiff == 1 && colDiff == 2)
	case Bishop:
		return rowDiff == colDiff
	case Queen:
		return rowDiff == colDiff || from.Row == to.Row || from.Col == to.Col
	case King:
		return rowDiff <= 1 && colDiff <= 1
	}
	panic("board: unknown piece kind " + p.Kind.String())
}

// pawnAdvance: straight ahead only, one square, or two from the home row.
// White advances toward row 0, Black toward row 7.
func pawnAdvance(c Color, from, to Square) bool {
	if to.Col != from.Col {
		return false
	}
	dir, home := -1, whitePawnRow
	if c == Black {
		dir, home = 1, blackPawnRow
	}
	if from.Row == home {
		return to.Row == from.Row+dir || to.Row == from.Row+2*dir
	}
	return to.Row == from.Row+dir
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
