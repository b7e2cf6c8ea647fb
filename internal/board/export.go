package board

import (
	nchess "github.com/corentings/chess/v2"
)

var chessPieces = map[Color]map[PieceKind]nchess.Piece{
	White: {
		Pawn: nchess.WhitePawn, Rook: nchess.WhiteRook, Knight: nchess.WhiteKnight,
		Bishop: nchess.WhiteBishop, Queen: nchess.WhiteQueen, King: nchess.WhiteKing,
	},
	Black: {
		Pawn: nchess.BlackPawn, Rook: nchess.BlackRook, Knight: nchess.BlackKnight,
		Bishop: nchess.BlackBishop, Queen: nchess.BlackQueen, King: nchess.BlackKing,
	},
}

// chessSquare converts sq to the chess library's square (row 0 is rank 8).
func chessSquare(sq Square) nchess.Square {
	mustValid(sq)
	return nchess.NewSquare(nchess.File(sq.Col), nchess.Rank(Size-1-sq.Row))
}

// chessPiece converts p to the chess library's piece.
func chessPiece(p Piece) nchess.Piece { return chessPieces[p.Color][p.Kind] }

// ChessBoard builds a chess library board with the same placement. Only the
// placement is carried; the library's rules are never applied to it.
func (b *Board) ChessBoard() *nchess.Board {
	m := make(map[nchess.Square]nchess.Piece, 32)
	b.Each(func(sq Square, p Piece) {
		m[chessSquare(sq)] = chessPiece(p)
	})
	return nchess.NewBoard(m)
}

// Placement returns the FEN piece-placement field, e.g.
// "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR" for the initial board.
func (b *Board) Placement() string { return b.ChessBoard().String() }

// Draw returns a text diagram of the board.
func (b *Board) Draw() string { return b.ChessBoard().Draw() }
