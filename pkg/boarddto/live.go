package boarddto

// Live event types.
const (
	EventState = "state"
	EventClick = "click"
	EventError = "error"
)

// LiveEvent is pushed to websocket subscribers.
type LiveEvent struct {
	Type    string        `json:"type"`
	Outcome string        `json:"outcome,omitempty"`
	Message string        `json:"message,omitempty"`
	State   *SessionState `json:"state,omitempty"`
}

// LiveCommand is sent by websocket clients. Only "click" is understood.
type LiveCommand struct {
	Type   string `json:"type"`
	Square string `json:"square"`
}
