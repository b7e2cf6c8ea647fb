package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/park285/cheese-board/internal/render"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/pkg/boarddto"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	sessionsPrefix = "/sessions"
	requestTimeout = 10 * time.Second
)

// Server exposes session operations as a JSON API over fasthttp.
type Server struct {
	mgr      *session.Manager
	renderer render.Renderer
	cat      *msgcat.Catalog
	srv      *fasthttp.Server
}

func New(mgr *session.Manager, renderer render.Renderer, cat *msgcat.Catalog) *Server {
	if cat == nil {
		cat = msgcat.Default()
	}
	if renderer == nil {
		renderer = render.New(0)
	}
	s := &Server{mgr: mgr, renderer: renderer, cat: cat}
	s.srv = &fasthttp.Server{
		Handler:            s.Handle,
		Name:               "cheese-board",
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		MaxRequestBodySize: 64 << 10,
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error {
	obslog.L().Info("http_listen", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error { return s.srv.Serve(ln) }

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.ShutdownWithContext(ctx) }

// Handle routes one request.
func (s *Server) Handle(ctx *fasthttp.RequestCtx) {
	path := strings.TrimSuffix(string(ctx.Path()), "/")
	method := string(ctx.Method())

	if path == "/healthz" {
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetBodyString("ok")
		return
	}
	if path != sessionsPrefix && !strings.HasPrefix(path, sessionsPrefix+"/") {
		s.writeError(ctx, fasthttp.StatusNotFound, "not_found", "route not found")
		return
	}

	parts := strings.Split(strings.TrimPrefix(path, sessionsPrefix), "/")[1:]
	switch {
	case len(parts) == 0 && method == fasthttp.MethodPost:
		s.createSession(ctx)
	case len(parts) == 1 && method == fasthttp.MethodGet:
		s.getSession(ctx, parts[0])
	case len(parts) == 1 && method == fasthttp.MethodDelete:
		s.deleteSession(ctx, parts[0])
	case len(parts) == 2 && parts[1] == "click" && method == fasthttp.MethodPost:
		s.click(ctx, parts[0])
	case len(parts) == 2 && parts[1] == "move" && method == fasthttp.MethodPost:
		s.move(ctx, parts[0])
	case len(parts) == 2 && parts[1] == "board.png" && method == fasthttp.MethodGet:
		s.boardPNG(ctx, parts[0])
	case len(parts) <= 2:
		s.writeError(ctx, fasthttp.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, "not_found", "route not found")
	}
}

func (s *Server) createSession(ctx *fasthttp.RequestCtx) {
	c, cancel := requestContext()
	defer cancel()
	snap, err := s.mgr.Create(c)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusCreated, session.ToDTO(snap, s.cat))
}

func (s *Server) getSession(ctx *fasthttp.RequestCtx, id string) {
	c, cancel := requestContext()
	defer cancel()
	snap, err := s.mgr.Get(c, id)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, session.ToDTO(snap, s.cat))
}

func (s *Server) deleteSession(ctx *fasthttp.RequestCtx, id string) {
	c, cancel := requestContext()
	defer cancel()
	if err := s.mgr.Delete(c, id); err != nil {
		s.writeSessionError(ctx, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (s *Server) click(ctx *fasthttp.RequestCtx, id string) {
	var req boarddto.ClickRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	sq, err := board.ParseSquare(req.Square)
	if err != nil {
		s.writeSessionError(ctx, session.ErrInvalidSquare)
		return
	}

	c, cancel := requestContext()
	defer cancel()
	res, err := s.mgr.Click(c, id, sq)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, &boarddto.ClickResponse{
		Outcome: res.Outcome.String(),
		Message: session.ClickMessage(res, s.cat),
		State:   session.ToDTO(res.Snapshot, s.cat),
	})
}

func (s *Server) move(ctx *fasthttp.RequestCtx, id string) {
	var req boarddto.MoveRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	from, err := board.ParseSquare(req.From)
	if err != nil {
		s.writeSessionError(ctx, session.ErrInvalidSquare)
		return
	}
	to, err := board.ParseSquare(req.To)
	if err != nil {
		s.writeSessionError(ctx, session.ErrInvalidSquare)
		return
	}

	c, cancel := requestContext()
	defer cancel()
	res, err := s.mgr.Move(c, id, from, to)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, &boarddto.MoveResponse{
		Accepted: res.Accepted,
		Message:  session.MoveMessage(res, s.cat),
		State:    session.ToDTO(res.Snapshot, s.cat),
	})
}

func (s *Server) boardPNG(ctx *fasthttp.RequestCtx, id string) {
	c, cancel := requestContext()
	defer cancel()
	snap, err := s.mgr.Get(c, id)
	if err != nil {
		s.writeSessionError(ctx, err)
		return
	}
	caption := s.cat.Text("status.turn", map[string]any{"Turn": snap.Active.String()})
	img, err := s.renderer.RenderPNG(c, &snap.Board, render.Options{Selected: snap.Selected, Caption: caption})
	if err != nil {
		obslog.L().Error("render_png_error", zap.String("session_id", id), zap.Error(err))
		s.writeError(ctx, fasthttp.StatusInternalServerError, "internal", "render failed")
		return
	}
	ctx.SetContentType("image/png")
	ctx.Response.Header.Set("Cache-Control", "no-store")
	ctx.SetBody(img)
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return fasthttp.StatusNotFound
	case errors.Is(err, session.ErrInvalidSquare), errors.Is(err, session.ErrInvalidArgs):
		return fasthttp.StatusBadRequest
	case errors.Is(err, session.ErrConcurrentUpdate):
		return fasthttp.StatusConflict
	case errors.Is(err, session.ErrTooManySessions):
		return fasthttp.StatusTooManyRequests
	default:
		return fasthttp.StatusInternalServerError
	}
}

func (s *Server) writeSessionError(ctx *fasthttp.RequestCtx, err error) {
	status := statusFor(err)
	key := session.ErrorKey(err)
	if key == "" {
		obslog.L().Error("http_internal_error", zap.ByteString("path", ctx.Path()), zap.Error(err))
		s.writeError(ctx, status, "internal", "internal error")
		return
	}
	s.writeError(ctx, status, strings.TrimPrefix(key, "error."), s.cat.Text(key, nil))
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, code, msg string) {
	s.writeJSON(ctx, status, &boarddto.ErrorResponse{Code: code, Message: msg})
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		obslog.L().Error("http_encode_error", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(raw)
}
