package board

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposite side.
func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// ParseColor accepts "white"/"w" and "black"/"b".
func ParseColor(s string) (Color, bool) {
	switch s {
	case "white", "w", "White":
		return White, true
	case "black", "b", "Black":
		return Black, true
	default:
		return White, false
	}
}

// PieceKind is the closed set of piece types.
type PieceKind uint8

const (
	Pawn PieceKind = iota
	Rook
	Knight
	Bishop
	Queen
	King
)

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Rook:
		return "rook"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return "unknown"
}

// Piece is an immutable (kind, color) pair.
type Piece struct {
	Kind  PieceKind
	Color Color
}

func (p Piece) String() string { return p.Color.String() + " " + p.Kind.String() }
