package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/park285/cheese-board/internal/board"
)

type recordingArchive struct {
	mu    sync.Mutex
	saved []*Snapshot
	err   error
}

func (a *recordingArchive) SaveSnapshot(ctx context.Context, s *Snapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = append(a.saved, s.Clone())
	return a.err
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *Snapshot) {
	t.Helper()
	m := NewManager(NewMemoryStore(), opts...)
	snap, err := m.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return m, snap
}

func TestCreateStartsFromInitialPlacement(t *testing.T) {
	_, snap := newTestManager(t)
	if snap.ID == "" {
		t.Fatalf("expected session id")
	}
	if snap.Active != board.White {
		t.Fatalf("expected white to move, got %s", snap.Active)
	}
	if snap.Board != board.New() {
		t.Fatalf("expected initial placement")
	}
	if snap.Selected != nil || snap.Moves != 0 {
		t.Fatalf("unexpected state: selected=%v moves=%d", snap.Selected, snap.Moves)
	}
}

func TestCreateRespectsMaxSessions(t *testing.T) {
	m, _ := newTestManager(t, WithMaxSessions(1))
	if _, err := m.Create(context.Background()); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("expected ErrTooManySessions, got %v", err)
	}
}

func TestClickSelectThenMove(t *testing.T) {
	m, snap := newTestManager(t)
	ctx := context.Background()

	res, err := m.Click(ctx, snap.ID, board.Sq(6, 4))
	if err != nil {
		t.Fatalf("Click#1: %v", err)
	}
	if res.Outcome != board.Selected {
		t.Fatalf("expected selected, got %s", res.Outcome)
	}
	if res.Snapshot.Selected == nil || *res.Snapshot.Selected != board.Sq(6, 4) {
		t.Fatalf("selection not stored: %v", res.Snapshot.Selected)
	}

	res, err = m.Click(ctx, snap.ID, board.Sq(4, 4))
	if err != nil {
		t.Fatalf("Click#2: %v", err)
	}
	if res.Outcome != board.Moved {
		t.Fatalf("expected moved, got %s", res.Outcome)
	}
	got := res.Snapshot
	if got.Active != board.Black || got.Moves != 1 || got.Selected != nil {
		t.Fatalf("unexpected state after move: active=%s moves=%d selected=%v", got.Active, got.Moves, got.Selected)
	}
	if p := got.Board.At(board.Sq(4, 4)); p == nil || p.Kind != board.Pawn {
		t.Fatalf("pawn not on e4: %v", p)
	}
	if res.From != board.Sq(6, 4) || res.Piece == nil || res.Piece.Kind != board.Pawn {
		t.Fatalf("unexpected result detail: from=%s piece=%v", res.From, res.Piece)
	}
}

func TestClickOpponentPieceIgnored(t *testing.T) {
	m, snap := newTestManager(t)
	res, err := m.Click(context.Background(), snap.ID, board.Sq(1, 0))
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if res.Outcome != board.Ignored || res.Snapshot.Selected != nil {
		t.Fatalf("expected ignored with no selection, got %s %v", res.Outcome, res.Snapshot.Selected)
	}
}

func TestClickRejectedClearsSelection(t *testing.T) {
	m, snap := newTestManager(t)
	ctx := context.Background()
	if _, err := m.Click(ctx, snap.ID, board.Sq(7, 0)); err != nil {
		t.Fatalf("Click#1: %v", err)
	}
	res, err := m.Click(ctx, snap.ID, board.Sq(5, 1))
	if err != nil {
		t.Fatalf("Click#2: %v", err)
	}
	if res.Outcome != board.Rejected {
		t.Fatalf("expected rejected, got %s", res.Outcome)
	}
	if res.Snapshot.Selected != nil || res.Snapshot.Active != board.White {
		t.Fatalf("expected cleared selection and unchanged turn")
	}
}

func TestClickInvalidInput(t *testing.T) {
	m, snap := newTestManager(t)
	ctx := context.Background()
	if _, err := m.Click(ctx, snap.ID, board.Sq(8, 0)); !errors.Is(err, ErrInvalidSquare) {
		t.Fatalf("expected ErrInvalidSquare, got %v", err)
	}
	if _, err := m.Click(ctx, "missing", board.Sq(6, 4)); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := m.Click(ctx, " ", board.Sq(6, 4)); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("expected ErrInvalidArgs, got %v", err)
	}
}

func TestMoveReasons(t *testing.T) {
	m, snap := newTestManager(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		from, to board.Square
		reason   MoveReason
	}{
		{"empty origin", board.Sq(4, 4), board.Sq(3, 4), ReasonEmpty},
		{"black on white's turn", board.Sq(1, 4), board.Sq(3, 4), ReasonWrongTurn},
		{"pawn triple step", board.Sq(6, 4), board.Sq(3, 4), ReasonIllegal},
		{"knight jump", board.Sq(7, 6), board.Sq(5, 5), ReasonAccepted},
	}
	for _, tc := range cases {
		res, err := m.Move(ctx, snap.ID, tc.from, tc.to)
		if err != nil {
			t.Fatalf("%s: Move: %v", tc.name, err)
		}
		if res.Reason != tc.reason {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.reason, res.Reason)
		}
		if res.Accepted != (tc.reason == ReasonAccepted) {
			t.Fatalf("%s: accepted=%v", tc.name, res.Accepted)
		}
	}

	got, err := m.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Active != board.Black || got.Moves != 1 {
		t.Fatalf("expected one accepted move, got active=%s moves=%d", got.Active, got.Moves)
	}
}

func TestMoveDiscardsPendingSelection(t *testing.T) {
	m, snap := newTestManager(t)
	ctx := context.Background()
	if _, err := m.Click(ctx, snap.ID, board.Sq(6, 0)); err != nil {
		t.Fatalf("Click: %v", err)
	}
	res, err := m.Move(ctx, snap.ID, board.Sq(6, 4), board.Sq(4, 4))
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !res.Accepted || res.Snapshot.Selected != nil {
		t.Fatalf("expected accepted move and no selection")
	}
}

func TestAcceptedMovesAreArchived(t *testing.T) {
	arch := &recordingArchive{err: errors.New("db down")}
	m, snap := newTestManager(t, WithArchive(arch))
	ctx := context.Background()

	if _, err := m.Move(ctx, snap.ID, board.Sq(6, 4), board.Sq(3, 4)); err != nil {
		t.Fatalf("Move#1: %v", err)
	}
	// archive errors do not fail the move
	if _, err := m.Move(ctx, snap.ID, board.Sq(6, 4), board.Sq(4, 4)); err != nil {
		t.Fatalf("Move#2: %v", err)
	}
	arch.mu.Lock()
	defer arch.mu.Unlock()
	if len(arch.saved) != 1 {
		t.Fatalf("expected exactly one archived snapshot, got %d", len(arch.saved))
	}
	if arch.saved[0].Moves != 1 {
		t.Fatalf("archived stale snapshot: moves=%d", arch.saved[0].Moves)
	}
}

func TestObserversSeeCommittedChanges(t *testing.T) {
	m := NewManager(NewMemoryStore())
	var kinds []EventKind
	m.OnChange(func(ev Event) { kinds = append(kinds, ev.Kind) })

	ctx := context.Background()
	snap, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Click(ctx, snap.ID, board.Sq(6, 4)); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if _, err := m.Move(ctx, snap.ID, board.Sq(6, 4), board.Sq(4, 4)); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if err := m.Delete(ctx, snap.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	want := []EventKind{EventCreate, EventClick, EventMove, EventDelete}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, kinds)
		}
	}
}

func TestConcurrentClicksSerialize(t *testing.T) {
	m, snap := newTestManager(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Click(ctx, snap.ID, board.Sq(6, 4))
		}()
	}
	wg.Wait()

	got, err := m.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	// each click either selects e2 or rejects the zero-length move; none moves
	if got.Active != board.White || got.Moves != 0 {
		t.Fatalf("unexpected state: active=%s moves=%d", got.Active, got.Moves)
	}
}

func TestClockStampsUpdates(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	m, snap := newTestManager(t, WithClock(func() time.Time { return now }))
	now = base.Add(time.Minute)
	res, err := m.Click(context.Background(), snap.ID, board.Sq(6, 4))
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if !res.Snapshot.CreatedAt.Equal(base) || !res.Snapshot.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected timestamps: %v %v", res.Snapshot.CreatedAt, res.Snapshot.UpdatedAt)
	}
}

func TestIdleSessionsFreeTheirSlot(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := NewMemoryStore(WithTTL(24*time.Hour), WithStoreClock(clock))
	m := NewManager(store, WithMaxSessions(2), WithClock(clock))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := m.Create(ctx); err != nil {
			t.Fatalf("Create#%d: %v", i, err)
		}
	}
	if _, err := m.Create(ctx); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("expected cap reached, got %v", err)
	}
	now = now.Add(365 * 24 * time.Hour)
	if _, err := m.Create(ctx); err != nil {
		t.Fatalf("expected idle sessions to expire, got %v", err)
	}
}

func TestConcurrentCreatesRespectCap(t *testing.T) {
	m := NewManager(NewMemoryStore(), WithMaxSessions(5))
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, rejected := 0, 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Create(ctx)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrTooManySessions):
				rejected++
			}
		}()
	}
	wg.Wait()
	if created != 5 || rejected != 95 {
		t.Fatalf("expected 5 created and 95 rejected, got %d and %d", created, rejected)
	}
}
