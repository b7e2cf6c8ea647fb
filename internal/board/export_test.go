package board

import (
	"testing"

	nchess "github.com/corentings/chess/v2"
)

func TestChessBoardMapsRowsToRanks(t *testing.T) {
	b := New()
	b.Move(Sq(6, 4), Sq(4, 4))
	cb := b.ChessBoard()
	cases := map[nchess.Square]nchess.Piece{
		nchess.E1: nchess.WhiteKing,
		nchess.D8: nchess.BlackQueen,
		nchess.E4: nchess.WhitePawn,
		nchess.E2: nchess.NoPiece,
		nchess.A8: nchess.BlackRook,
	}
	for sq, want := range cases {
		if got := cb.Piece(sq); got != want {
			t.Fatalf("%s: got %v, want %v", sq, got, want)
		}
	}
}
