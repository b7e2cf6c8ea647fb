package board

import "testing"

func TestNewInitialPlacement(t *testing.T) {
	b := New()
	want := [Size]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

	for col := 0; col < Size; col++ {
		for _, tc := range []struct {
			row   int
			kind  PieceKind
			color Color
		}{
			{0, want[col], Black},
			{1, Pawn, Black},
			{6, Pawn, White},
			{7, want[col], White},
		} {
			p := b.At(Sq(tc.row, col))
			if p == nil {
				t.Fatalf("(%d,%d): expected %v %v, got empty", tc.row, col, tc.color, tc.kind)
			}
			if p.Kind != tc.kind || p.Color != tc.color {
				t.Fatalf("(%d,%d): expected %v %v, got %v", tc.row, col, tc.color, tc.kind, p)
			}
		}
	}
	for row := 2; row <= 5; row++ {
		for col := 0; col < Size; col++ {
			if p := b.At(Sq(row, col)); p != nil {
				t.Fatalf("(%d,%d): expected empty, got %v", row, col, p)
			}
		}
	}
	if n := b.Count(White); n != 16 {
		t.Fatalf("white pieces: got %d", n)
	}
	if n := b.Count(Black); n != 16 {
		t.Fatalf("black pieces: got %d", n)
	}
}

func TestBoardMoveOverwritesAndClears(t *testing.T) {
	b := New()
	b.Move(Sq(7, 0), Sq(6, 0)) // rook onto own pawn

	if p := b.At(Sq(7, 0)); p != nil {
		t.Fatalf("origin not cleared: %v", p)
	}
	p := b.At(Sq(6, 0))
	if p == nil || p.Kind != Rook || p.Color != White {
		t.Fatalf("destination: got %v", p)
	}
	if n := b.Count(White); n != 15 {
		t.Fatalf("overwritten piece should be gone, white count=%d", n)
	}
}

func TestBoardMoveFromEmptySquare(t *testing.T) {
	b := New()
	b.Move(Sq(4, 4), Sq(6, 4))
	if p := b.At(Sq(6, 4)); p != nil {
		t.Fatalf("moving an empty square should clear destination, got %v", p)
	}
}

func TestBoardIsValueType(t *testing.T) {
	a := New()
	b := a
	b.Move(Sq(6, 4), Sq(4, 4))
	if a.At(Sq(6, 4)) == nil {
		t.Fatalf("copy mutated the original board")
	}

	p := a.At(Sq(0, 0))
	p.Kind = Queen
	if got := a.At(Sq(0, 0)); got.Kind != Rook {
		t.Fatalf("At must return a copy, got %v", got)
	}
}

func TestOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for out-of-range square")
		}
	}()
	b := New()
	b.At(Sq(8, 0))
}

func TestSquareLabels(t *testing.T) {
	cases := map[string]Square{
		"a8": Sq(0, 0),
		"h1": Sq(7, 7),
		"e2": Sq(6, 4),
		"e4": Sq(4, 4),
	}
	for label, sq := range cases {
		if got := sq.String(); got != label {
			t.Errorf("%v.String() = %q, want %q", sq, got, label)
		}
		parsed, err := ParseSquare(label)
		if err != nil || parsed != sq {
			t.Errorf("ParseSquare(%q) = %v, %v", label, parsed, err)
		}
	}
	for _, bad := range []string{"", "i1", "a9", "a0", "e22"} {
		if _, err := ParseSquare(bad); err == nil {
			t.Errorf("ParseSquare(%q): expected error", bad)
		}
	}
	if !Sq(0, 0).IsLight() || Sq(0, 1).IsLight() {
		t.Fatalf("unexpected shading")
	}
}

var kinds = [...]PieceKind{Pawn, Rook, Knight, Bishop, Queen, King}

func TestSymbolFor(t *testing.T) {
	if s := SymbolFor(nil); s != "" {
		t.Fatalf("empty square symbol: %q", s)
	}
	seen := map[string]bool{}
	for _, c := range []Color{White, Black} {
		for _, k := range kinds {
			s := SymbolFor(&Piece{Kind: k, Color: c})
			if s == "" {
				t.Fatalf("%v %v: no symbol", c, k)
			}
			if seen[s] {
				t.Fatalf("%v %v: duplicate symbol %q", c, k, s)
			}
			seen[s] = true
		}
	}
	if s := SymbolFor(&Piece{Kind: King, Color: White}); s != "♔" {
		t.Fatalf("white king: %q", s)
	}
	if s := SymbolFor(&Piece{Kind: Pawn, Color: Black}); s != "♟" {
		t.Fatalf("black pawn: %q", s)
	}
}

func TestRowsRoundTrip(t *testing.T) {
	b := New()
	b.Move(Sq(6, 4), Sq(4, 4))
	rows := b.Rows()
	if rows[0] != "rnbqkbnr" || rows[4] != "....P..." || rows[6] != "PPPP.PPP" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	got, err := FromRows(rows[:])
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	if got != b {
		t.Fatalf("decoded board differs")
	}
	if _, err := FromRows([]string{"rnbqkbnr"}); err == nil {
		t.Fatalf("expected error on short input")
	}
	bad := rows
	bad[3] = "...x...."
	if _, err := FromRows(bad[:]); err == nil {
		t.Fatalf("expected error on unknown letter")
	}
}

func TestPlacement(t *testing.T) {
	b := New()
	if got := b.Placement(); got != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR" {
		t.Fatalf("placement: %q", got)
	}
	b.Move(Sq(6, 4), Sq(4, 4))
	if got := b.Placement(); got != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR" {
		t.Fatalf("placement after e2e4: %q", got)
	}
}

func TestFromPlacement(t *testing.T) {
	b := New()
	b.Move(Sq(6, 4), Sq(4, 4))
	back, err := FromPlacement(b.Placement())
	if err != nil {
		t.Fatalf("FromPlacement: %v", err)
	}
	if back != b {
		t.Fatalf("placement round trip changed the board")
	}
	for _, bad := range []string{"", "8/8/8", "rnbqkbnr/pppppppp/8/8/4X3/8/PPPP1PPP/RNBQKBNR", "9/8/8/8/8/8/8/8"} {
		if _, err := FromPlacement(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
