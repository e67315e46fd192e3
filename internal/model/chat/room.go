package chat

import "time"

// Room is a two-party conversation. Membership is fixed at creation; the
// mediation pipeline runs on every message posted into it.
type Room struct {
	ID           string    `json:"id"`
	Participants [2]string `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasParticipant reports whether sender is one of the room's two members.
func (r Room) HasParticipant(sender string) bool {
	return sender != "" && (r.Participants[0] == sender || r.Participants[1] == sender)
}

// Other returns the counterpart of sender in the room, or "" when sender is
// not a member.
func (r Room) Other(sender string) string {
	switch sender {
	case r.Participants[0]:
		return r.Participants[1]
	case r.Participants[1]:
		return r.Participants[0]
	default:
		return ""
	}
}
