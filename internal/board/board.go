package board

// Board is an 8x8 grid of optional pieces. It is a value type: assigning a
// Board copies the grid, and pieces are stored by value.
type Board struct {
	grid [Size][Size]cell
}

type cell struct {
	piece    Piece
	occupied bool
}

var backRank = [Size]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// New returns the initial placement: Black on rows 0-1, White on rows 6-7.
func New() Board {
	var b Board
	set := func(row, col int, k PieceKind, c Color) {
		b.Set(Sq(row, col), &Piece{Kind: k, Color: c})
	}
	for col := 0; col < Size; col++ {
		set(0, col, backRank[col], Black)
		set(1, col, Pawn, Black)
		set(6, col, Pawn, White)
		set(7, col, backRank[col], White)
	}
	return b
}

// At returns the piece on sq, or nil when the square is empty. The returned
// pointer refers to a copy; mutating it does not change the board.
func (b *Board) At(sq Square) *Piece {
	mustValid(sq)
	c := b.grid[sq.Row][sq.Col]
	if !c.occupied {
		return nil
	}
	p := c.piece
	return &p
}

// Set places a copy of p on sq, or clears sq when p is nil.
func (b *Board) Set(sq Square, p *Piece) {
	mustValid(sq)
	if p == nil {
		b.grid[sq.Row][sq.Col] = cell{}
		return
	}
	b.grid[sq.Row][sq.Col] = cell{piece: *p, occupied: true}
}

// Move puts whatever occupies from onto to and clears from. The previous
// occupant of to is discarded. No legality check is made.
func (b *Board) Move(from, to Square) {
	mustValid(from)
	mustValid(to)
	moving := b.grid[from.Row][from.Col]
	b.grid[from.Row][from.Col] = cell{}
	b.grid[to.Row][to.Col] = moving
}

// Count returns the number of pieces of color c on the board.
func (b *Board) Count(c Color) int {
	n := 0
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			if cl := b.grid[r][col]; cl.occupied && cl.piece.Color == c {
				n++
			}
		}
	}
	return n
}

// Each calls fn for every occupied square in row-major order.
func (b *Board) Each(fn func(sq Square, p Piece)) {
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			if cl := b.grid[r][col]; cl.occupied {
				fn(Sq(r, col), cl.piece)
			}
		}
	}
}
