package chat

import "time"

// Status tracks a message through the optimistic send lifecycle.
type Status string

const (
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Message is one turn in a room. Exactly one of ID or TempID identifies the
// message at any moment: the client mints a TempID for optimistic rendering,
// and once the server assigns a permanent ID the TempID survives only as a
// correlation key.
type Message struct {
	ID        string    `json:"id,omitempty"`
	TempID    string    `json:"tempId,omitempty"`
	RoomID    string    `json:"roomId"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Status    Status    `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Key returns the identity used for indexing and dedup: the permanent ID when
// assigned, otherwise the client temp ID.
func (m Message) Key() string {
	if m.ID != "" {
		return m.ID
	}
	return m.TempID
}
