package boardclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/park285/cheese-board/pkg/boarddto"
	"github.com/valyala/fasthttp"
)

// Client talks to the board JSON API.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDialer replaces the TCP dialer, e.g. with an in-memory listener in tests.
func WithDialer(dial func(addr string) (net.Conn, error)) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateSession(ctx context.Context) (*boarddto.SessionState, error) {
	var st boarddto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/sessions", nil, &st, false); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*boarddto.SessionState, error) {
	var st boarddto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodGet, sessionPath(id), nil, &st, true); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) Click(ctx context.Context, id, square string) (*boarddto.ClickResponse, error) {
	var resp boarddto.ClickResponse
	req := boarddto.ClickRequest{Square: square}
	if err := c.doJSON(ctx, fasthttp.MethodPost, sessionPath(id)+"/click", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Move(ctx context.Context, id, from, to string) (*boarddto.MoveResponse, error) {
	var resp boarddto.MoveResponse
	req := boarddto.MoveRequest{From: from, To: to}
	if err := c.doJSON(ctx, fasthttp.MethodPost, sessionPath(id)+"/move", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.doJSON(ctx, fasthttp.MethodDelete, sessionPath(id), nil, nil, false)
}

// BoardPNG downloads the rendered board image.
func (c *Client) BoardPNG(ctx context.Context, id string) ([]byte, error) {
	body, err := c.do(ctx, fasthttp.MethodGet, sessionPath(id)+"/board.png", nil, true)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func sessionPath(id string) string {
	return "/sessions/" + url.PathEscape(strings.TrimSpace(id))
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	var payload []byte
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = raw
	}
	body, err := c.do(ctx, method, path, payload, retry)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// do sends one request, retrying transport errors and 5xx when retry is set.
// Non-2xx responses come back as *boarddto.APIError.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, retry bool) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if payload != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt == attempts {
				return nil, lastErr
			}
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			apiErr := decodeAPIError(status, resp.Body())
			if attempt == attempts || !shouldRetryStatus(status) {
				return nil, apiErr
			}
			lastErr = apiErr
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}
		return append([]byte(nil), resp.Body()...), nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, lastErr
}

func decodeAPIError(status int, body []byte) *boarddto.APIError {
	apiErr := &boarddto.APIError{Status: status}
	var er boarddto.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		apiErr.Code, apiErr.Message = er.Code, er.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("board api error: status=%d body=%s", status, truncate(string(body), 512))
	}
	return apiErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
