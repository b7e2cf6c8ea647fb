package boarddto

import "time"

// SessionState is the client view of one game session.
type SessionState struct {
	ID        string       `json:"id"`
	Rows      [8][8]string `json:"rows"`      // display glyphs, "" for empty
	Placement string       `json:"placement"` // FEN piece placement
	Active    string       `json:"active"`
	Selected  string       `json:"selected,omitempty"`
	Moves     int          `json:"moves"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
