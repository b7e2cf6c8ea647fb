package board

import (
	"fmt"
	"strings"
)

// Row strings use FEN piece letters (upper case White, lower case Black)
// and '.' for an empty square, one string per row starting at row 0.

var kindLetters = map[PieceKind]byte{
	Pawn: 'p', Rook: 'r', Knight: 'n', Bishop: 'b', Queen: 'q', King: 'k',
}

// Letter returns the FEN letter of p.
func (p Piece) Letter() byte {
	l := kindLetters[p.Kind]
	if p.Color == White {
		l -= 'a' - 'A'
	}
	return l
}

// PieceFromLetter parses a FEN letter.
func PieceFromLetter(l byte) (Piece, bool) {
	c := White
	lower := l
	if l >= 'a' && l <= 'z' {
		c = Black
	} else {
		lower = l + ('a' - 'A')
	}
	for k, v := range kindLetters {
		if v == lower {
			return Piece{Kind: k, Color: c}, true
		}
	}
	return Piece{}, false
}

// Rows encodes the board as eight row strings.
func (b *Board) Rows() [Size]string {
	var out [Size]string
	for r := 0; r < Size; r++ {
		var sb strings.Builder
		for c := 0; c < Size; c++ {
			if cl := b.grid[r][c]; cl.occupied {
				sb.WriteByte(cl.piece.Letter())
			} else {
				sb.WriteByte('.')
			}
		}
		out[r] = sb.String()
	}
	return out
}

// FromRows decodes the output of Rows.
func FromRows(rows []string) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("board: want %d rows, got %d", Size, len(rows))
	}
	for r, row := range rows {
		if len(row) != Size {
			return b, fmt.Errorf("board: row %d has %d cells", r, len(row))
		}
		for c := 0; c < Size; c++ {
			if row[c] == '.' {
				continue
			}
			p, ok := PieceFromLetter(row[c])
			if !ok {
				return b, fmt.Errorf("board: row %d col %d: unknown piece %q", r, c, row[c])
			}
			b.Set(Sq(r, c), &p)
		}
	}
	return b, nil
}

// FromPlacement decodes a FEN piece-placement field, the inverse of
// Placement. Only placement is read; no chess rules are applied.
func FromPlacement(fen string) (Board, error) {
	ranks := strings.Split(strings.TrimSpace(fen), "/")
	if len(ranks) != Size {
		return Board{}, fmt.Errorf("board: placement %q: want %d ranks", fen, Size)
	}
	rows := make([]string, Size)
	for i, rank := range ranks {
		var sb strings.Builder
		for j := 0; j < len(rank); j++ {
			ch := rank[j]
			if ch >= '1' && ch <= '8' {
				sb.WriteString(strings.Repeat(".", int(ch-'0')))
				continue
			}
			sb.WriteByte(ch)
		}
		rows[i] = sb.String()
	}
	return FromRows(rows)
}
