package board

import (
	"fmt"
	"strings"
)

// Size is the number of rows and columns.
const Size = 8

// Square addresses a cell. Row 0 is Black's home side, column 0 is file a.
type Square struct {
	Row int
	Col int
}

// Sq is shorthand for Square{Row: row, Col: col}.
func Sq(row, col int) Square { return Square{Row: row, Col: col} }

// Valid reports whether both coordinates are in [0,7].
func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

// IsLight follows the board shading: (row+col) even is a light square.
func (s Square) IsLight() bool { return (s.Row+s.Col)%2 == 0 }

// String renders the square with its coordinate labels, e.g. row 6 col 4 is "e2".
func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return string(rune('a'+s.Col)) + string(rune('1'+(Size-1-s.Row)))
}

// ParseSquare is the inverse of Square.String. Case-insensitive.
func ParseSquare(raw string) (Square, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if len(v) != 2 {
		return Square{}, fmt.Errorf("invalid square %q", raw)
	}
	file, rank := v[0], v[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("invalid square %q", raw)
	}
	return Square{Row: Size - 1 - int(rank-'1'), Col: int(file - 'a')}, nil
}

// FileLabels and RankLabels are the coordinate labels in display order.
var (
	FileLabels = [Size]string{"A", "B", "C", "D", "E", "F", "G", "H"}
	RankLabels = [Size]string{"8", "7", "6", "5", "4", "3", "2", "1"}
)

func mustValid(s Square) {
	if !s.Valid() {
		panic(fmt.Sprintf("board: square out of range: (%d,%d)", s.Row, s.Col))
	}
}
