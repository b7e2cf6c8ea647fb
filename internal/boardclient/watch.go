package boardclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/park285/cheese-board/pkg/boarddto"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Watcher is an open live-update subscription.
type Watcher struct {
	conn   *websocket.Conn
	events chan boarddto.LiveEvent
	done   chan struct{}
	err    error
}

// Watch dials wsURL (e.g. "ws://host:8081/ws") for session id. Events are
// delivered on Events until the connection ends or ctx is cancelled.
func Watch(ctx context.Context, wsURL, id string) (*Watcher, error) {
	u, err := url.Parse(strings.TrimSpace(wsURL))
	if err != nil {
		return nil, fmt.Errorf("parse ws url: %w", err)
	}
	q := u.Query()
	q.Set("session", strings.TrimSpace(id))
	u.RawQuery = q.Encode()

	conn, _, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}
	w := &Watcher{conn: conn, events: make(chan boarddto.LiveEvent, 16), done: make(chan struct{})}
	go w.listen(ctx)
	return w, nil
}

func (w *Watcher) listen(ctx context.Context) {
	defer close(w.done)
	defer close(w.events)
	for {
		var ev boarddto.LiveEvent
		if err := wsjson.Read(ctx, w.conn, &ev); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				w.err = err
			}
			return
		}
		select {
		case w.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) Events() <-chan boarddto.LiveEvent { return w.events }

// Click sends a click command over the live connection.
func (w *Watcher) Click(ctx context.Context, square string) error {
	return wsjson.Write(ctx, w.conn, boarddto.LiveCommand{Type: boarddto.EventClick, Square: square})
}

// Err returns the read error that ended the subscription, if any. Valid
// once Events is closed.
func (w *Watcher) Err() error {
	<-w.done
	return w.err
}

func (w *Watcher) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "close")
}
