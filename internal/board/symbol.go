package board

var glyphs = map[Color]map[PieceKind]string{
	White: {King: "♔", Queen: "♕", Rook: "♖", Bishop: "♗", Knight: "♘", Pawn: "♙"},
	Black: {King: "♚", Queen: "♛", Rook: "♜", Bishop: "♝", Knight: "♞", Pawn: "♟"},
}

// SymbolFor returns the display glyph for p, or "" for an empty square.
func SymbolFor(p *Piece) string {
	if p == nil {
		return ""
	}
	return glyphs[p.Color][p.Kind]
}

// Symbols returns the board as rows of glyphs, empty squares as "".
func (b *Board) Symbols() [Size][Size]string {
	var out [Size][Size]string
	b.Each(func(sq Square, p Piece) {
		out[sq.Row][sq.Col] = SymbolFor(&p)
	})
	return out
}
