package boardclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/park285/cheese-board/internal/httpapi"
	"github.com/park285/cheese-board/internal/live"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/pkg/boarddto"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func serveInMemory(t *testing.T, handler fasthttp.RequestHandler) Option {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })
	return WithDialer(func(string) (net.Conn, error) { return ln.Dial() })
}

func TestClientAgainstAPI(t *testing.T) {
	mgr := session.NewManager(session.NewMemoryStore())
	api := httpapi.New(mgr, nil, nil)
	c := NewClient("http://board.test", serveInMemory(t, api.Handle))
	ctx := context.Background()

	st, err := c.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	click, err := c.Click(ctx, st.ID, "e2")
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if click.Outcome != "selected" {
		t.Fatalf("unexpected outcome %q", click.Outcome)
	}
	mv, err := c.Move(ctx, st.ID, "d2", "d4")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !mv.Accepted || mv.State.Active != "black" {
		t.Fatalf("unexpected move response: %+v", mv)
	}
	got, err := c.GetSession(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Moves != 1 {
		t.Fatalf("expected 1 move, got %d", got.Moves)
	}
	img, err := c.BoardPNG(ctx, st.ID)
	if err != nil || len(img) == 0 {
		t.Fatalf("BoardPNG: %v", err)
	}
	if err := c.DeleteSession(ctx, st.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	_, err = c.GetSession(ctx, st.ID)
	var apiErr *boarddto.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != fasthttp.StatusNotFound || apiErr.Code != "not_found" {
		t.Fatalf("expected not_found APIError, got %v", err)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	opt := serveInMemory(t, func(ctx *fasthttp.RequestCtx) {
		if atomic.AddInt32(&calls, 1) < 3 {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"id":"s1","active":"white"}`)
	})
	c := NewClient("http://board.test", opt, WithRetry(3))

	st, err := c.GetSession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if st.ID != "s1" || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("unexpected result: id=%s calls=%d", st.ID, calls)
	}
}

func TestClientDoesNotRetryMutations(t *testing.T) {
	var calls int32
	opt := serveInMemory(t, func(ctx *fasthttp.RequestCtx) {
		atomic.AddInt32(&calls, 1)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	})
	c := NewClient("http://board.test", opt, WithRetry(3))
	if _, err := c.Click(context.Background(), "s1", "e2"); err == nil {
		t.Fatalf("expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestWatch(t *testing.T) {
	mgr := session.NewManager(session.NewMemoryStore())
	mux := http.NewServeMux()
	mux.Handle("/ws", live.NewHandler(mgr, nil, nil))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	w, err := Watch(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", snap.ID)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	ev := <-w.Events()
	if ev.Type != boarddto.EventState || ev.State == nil || ev.State.ID != snap.ID {
		t.Fatalf("unexpected first event: %+v", ev)
	}
	if err := w.Click(ctx, "b1"); err != nil {
		t.Fatalf("Click: %v", err)
	}
	ev = <-w.Events()
	if ev.Outcome != "selected" || ev.State.Selected != "b1" {
		t.Fatalf("unexpected click event: %+v", ev)
	}
}
