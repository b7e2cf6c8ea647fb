package board

import "testing"

func TestControllerSelectOnlyActiveColor(t *testing.T) {
	c := NewController(NewGame(), nil)

	if got := c.Click(Sq(4, 4)); got != Ignored {
		t.Fatalf("empty square: %v", got)
	}
	if got := c.Click(Sq(1, 4)); got != Ignored {
		t.Fatalf("black piece on white's turn: %v", got)
	}
	if _, ok := c.Selected(); ok {
		t.Fatalf("nothing should be selected")
	}
	if got := c.Click(Sq(6, 4)); got != Selected {
		t.Fatalf("white pawn: %v", got)
	}
	if sq, ok := c.Selected(); !ok || sq != Sq(6, 4) {
		t.Fatalf("selected: %v %v", sq, ok)
	}
}

func TestControllerMoveAndReject(t *testing.T) {
	c := NewController(NewGame(), nil)

	c.Click(Sq(6, 4))
	if got := c.Click(Sq(4, 4)); got != Moved {
		t.Fatalf("e2e4: %v", got)
	}
	if _, ok := c.Selected(); ok {
		t.Fatalf("selection must clear after a move")
	}
	if c.Game().Active != Black {
		t.Fatalf("turn should pass to black")
	}

	// illegal black move: rook a8 diagonally
	c.Click(Sq(0, 0))
	before := c.Game().Board
	if got := c.Click(Sq(2, 2)); got != Rejected {
		t.Fatalf("rook diagonal: %v", got)
	}
	if _, ok := c.Selected(); ok {
		t.Fatalf("selection must clear after a rejected move")
	}
	if c.Game().Board != before || c.Game().Active != Black {
		t.Fatalf("rejected move changed state")
	}
}

func TestControllerSecondClickOnOwnPieceClears(t *testing.T) {
	c := NewController(NewGame(), nil)
	c.Click(Sq(6, 0))
	// clicking another own piece is just a rejected move, not a reselect
	if got := c.Click(Sq(6, 1)); got != Rejected {
		t.Fatalf("expected rejected, got %v", got)
	}
	if _, ok := c.Selected(); ok {
		t.Fatalf("selection should be cleared")
	}
}

func TestControllerRestoreSelection(t *testing.T) {
	g := NewGame()
	sel := Sq(7, 6)
	c := NewController(g, &sel)
	if got := c.Click(Sq(5, 5)); got != Moved {
		t.Fatalf("restored knight selection should move, got %v", got)
	}
	if p := g.Board.At(Sq(5, 5)); p == nil || p.Kind != Knight {
		t.Fatalf("knight not on f3: %v", p)
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{Ignored: "ignored", Selected: "selected", Moved: "moved", Rejected: "rejected"} {
		if o.String() != want {
			t.Errorf("%d: %q", o, o.String())
		}
	}
}
