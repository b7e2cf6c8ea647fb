package boarddto

type ClickRequest struct {
	Square string `json:"square"`
}

type ClickResponse struct {
	Outcome string        `json:"outcome"`
	Message string        `json:"message"`
	State   *SessionState `json:"state"`
}

type MoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type MoveResponse struct {
	Accepted bool          `json:"accepted"`
	Message  string        `json:"message"`
	State    *SessionState `json:"state"`
}
