package live

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/pkg/boarddto"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeTimeout   = 5 * time.Second
	commandTimeout = 10 * time.Second
	pingInterval   = 30 * time.Second
)

// Handler upgrades /ws?session=<id> to a websocket that streams the
// session's state and accepts click commands.
type Handler struct {
	hub     *Hub
	mgr     *session.Manager
	cat     *msgcat.Catalog
	origins []string
}

// NewHandler wires a Hub into mgr. origins are passed to websocket.Accept
// as OriginPatterns; empty means same-origin only.
func NewHandler(mgr *session.Manager, cat *msgcat.Catalog, origins []string) *Handler {
	if cat == nil {
		cat = msgcat.Default()
	}
	hub := NewHub(cat)
	mgr.OnChange(hub.Publish)
	return &Handler{hub: hub, mgr: mgr, cat: cat, origins: append([]string(nil), origins...)}
}

func (h *Handler) Hub() *Hub { return h.hub }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("session"))
	if id == "" {
		http.Error(w, "session query parameter required", http.StatusBadRequest)
		return
	}
	// subscribe before loading so no change between load and subscribe is lost
	sub := h.hub.subscribe(id)
	defer h.hub.unsubscribe(sub)

	snap, err := h.mgr.Get(r.Context(), id)
	if errors.Is(err, session.ErrSessionNotFound) {
		http.Error(w, h.cat.Text("error.not_found", nil), http.StatusNotFound)
		return
	}
	if err != nil {
		obslog.L().Error("live_load_error", zap.String("session_id", id), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  h.origins,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("live_accept_error", zap.String("session_id", id), zap.Error(err))
		return
	}

	obslog.L().Info("live_subscribe", zap.String("session_id", id), zap.Int("subscribers", h.hub.Subscribers(id)))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.hub.send(sub, boarddto.LiveEvent{
		Type:    boarddto.EventState,
		Message: h.cat.Text("status.turn", map[string]any{"Turn": snap.Active.String()}),
		State:   session.ToDTO(snap, h.cat),
	})

	go h.readLoop(ctx, cancel, conn, sub)
	h.writeLoop(ctx, conn, sub)
}

// writeLoop is the only writer on conn.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, sub *subscriber) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "bye")
			return
		case ev, ok := <-sub.ch:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "subscription closed")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, ev)
			cancel()
			if err != nil {
				obslog.L().Debug("live_write_error", zap.String("session_id", sub.sessionID), zap.Error(err))
				_ = conn.Close(websocket.StatusInternalError, "write failed")
				return
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				_ = conn.Close(websocket.StatusGoingAway, "ping failure")
				return
			}
		}
	}
}

func (h *Handler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sub *subscriber) {
	defer cancel()
	for {
		var cmd boarddto.LiveCommand
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				obslog.L().Debug("live_read_error", zap.String("session_id", sub.sessionID), zap.Error(err))
			}
			return
		}
		h.handleCommand(ctx, sub, cmd)
	}
}

func (h *Handler) handleCommand(ctx context.Context, sub *subscriber, cmd boarddto.LiveCommand) {
	if !strings.EqualFold(strings.TrimSpace(cmd.Type), boarddto.EventClick) {
		h.hub.send(sub, boarddto.LiveEvent{Type: boarddto.EventError, Message: "unsupported command"})
		return
	}
	sq, err := board.ParseSquare(cmd.Square)
	if err != nil {
		h.hub.send(sub, boarddto.LiveEvent{Type: boarddto.EventError, Message: h.cat.Text("error.invalid_square", nil)})
		return
	}

	cctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	// success is broadcast to every subscriber through the hub
	if _, err := h.mgr.Click(cctx, sub.sessionID, sq); err != nil {
		msg := "internal error"
		if key := session.ErrorKey(err); key != "" {
			msg = h.cat.Text(key, nil)
		}
		h.hub.send(sub, boarddto.LiveEvent{Type: boarddto.EventError, Message: msg})
	}
}

// Server serves the websocket endpoint on its own listener.
type Server struct {
	srv *http.Server
}

func NewServer(addr string, h *Handler) *Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	return &Server{srv: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}}
}

func (s *Server) ListenAndServe() error {
	obslog.L().Info("ws_listen", zap.String("addr", s.srv.Addr))
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Serve(ln net.Listener) error {
	err := s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
