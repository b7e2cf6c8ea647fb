package board

// Outcome is what a single click did.
type Outcome uint8

const (
	// Ignored: no selection and the square holds no piece of the active side.
	Ignored Outcome = iota
	// Selected: a piece of the active side is now selected.
	Selected
	// Moved: the selected piece moved and the turn passed.
	Moved
	// Rejected: the selected piece could not move there; board unchanged.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Selected:
		return "selected"
	case Moved:
		return "moved"
	case Rejected:
		return "rejected"
	default:
		return "ignored"
	}
}

// Controller drives a Game from square clicks. It has two states: nothing
// selected, or one square selected. Any click made while a square is
// selected clears the selection, whether or not a move happened.
type Controller struct {
	game     *Game
	selected Square
	has      bool
}

// NewController wraps g. sel restores a previous selection and may be nil.
func NewController(g *Game, sel *Square) *Controller {
	c := &Controller{game: g}
	if sel != nil {
		mustValid(*sel)
		c.selected, c.has = *sel, true
	}
	return c
}

func (c *Controller) Game() *Game { return c.game }

// Selected returns the selected square, if any.
func (c *Controller) Selected() (Square, bool) { return c.selected, c.has }

// Click feeds one square click into the state machine.
func (c *Controller) Click(sq Square) Outcome {
	mustValid(sq)
	if !c.has {
		p := c.game.Board.At(sq)
		if p == nil || p.Color != c.game.Active {
			return Ignored
		}
		c.selected, c.has = sq, true
		return Selected
	}

	origin := c.selected
	c.selected, c.has = Square{}, false
	if c.game.TryMove(origin, sq) {
		return Moved
	}
	return Rejected
}
