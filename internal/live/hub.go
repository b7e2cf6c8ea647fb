package live

import (
	"sync"

	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/pkg/boarddto"
	"go.uber.org/zap"
)

const subscriberBuffer = 16

type subscriber struct {
	sessionID string
	ch        chan boarddto.LiveEvent
}

// Hub fans committed session changes out to websocket subscribers. A
// subscriber whose buffer is full is dropped rather than blocking the
// goroutine that committed the change.
type Hub struct {
	cat *msgcat.Catalog

	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub(cat *msgcat.Catalog) *Hub {
	if cat == nil {
		cat = msgcat.Default()
	}
	return &Hub{cat: cat, subs: make(map[string]map[*subscriber]struct{})}
}

func (h *Hub) subscribe(id string) *subscriber {
	sub := &subscriber{sessionID: id, ch: make(chan boarddto.LiveEvent, subscriberBuffer)}
	h.mu.Lock()
	set, ok := h.subs[id]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[id] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *subscriber) {
	set, ok := h.subs[sub.sessionID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.ch)
	if len(set) == 0 {
		delete(h.subs, sub.sessionID)
	}
}

// send delivers ev to one subscriber, dropping it when its buffer is full.
func (h *Hub) send(sub *subscriber, ev boarddto.LiveEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sendLocked(sub, ev)
}

func (h *Hub) sendLocked(sub *subscriber, ev boarddto.LiveEvent) {
	if _, ok := h.subs[sub.sessionID][sub]; !ok {
		return
	}
	select {
	case sub.ch <- ev:
	default:
		obslog.L().Warn("live_subscriber_dropped", zap.String("session_id", sub.sessionID))
		h.removeLocked(sub)
	}
}

// Subscribers returns the number of live subscribers for a session.
func (h *Hub) Subscribers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[id])
}

// Publish is registered with session.Manager.OnChange.
func (h *Hub) Publish(ev session.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[ev.ID]
	if len(set) == 0 {
		return
	}

	if ev.Kind == session.EventDelete {
		msg := h.cat.Text("error.not_found", nil)
		for sub := range set {
			h.sendLocked(sub, boarddto.LiveEvent{Type: boarddto.EventError, Message: msg})
			h.removeLocked(sub)
		}
		return
	}

	out := boarddto.LiveEvent{Type: boarddto.EventState, State: session.ToDTO(ev.Snapshot, h.cat)}
	if ev.Kind == session.EventClick || ev.Kind == session.EventMove {
		out.Type = boarddto.EventClick
		out.Outcome = ev.Outcome.String()
	}
	if out.State != nil {
		out.Message = out.State.Status
	}
	for sub := range set {
		h.sendLocked(sub, out)
	}
}
