package chat

// Event names for the room channel. Client→server events are admission
// controlled; server→client events all funnel through the same merge on the
// client side.
const (
	EventJoin           = "join"
	EventSendMessage    = "send_message"
	EventLoadOlder      = "load_older_messages"
	EventMessageHistory = "message_history"
	EventNewMessage     = "new_message"
	EventMessageSent    = "message_sent"
	EventReconciled     = "message_reconciled"
	EventMessageError   = "message_error"
	EventOlderMessages  = "older_messages"
	EventSaveFailed     = "message_save_failed"
	EventMediatorNote   = "mediator_note"
	EventSocketError    = "socket_error"
)

// Machine-readable channel error codes.
const (
	CodeRateLimited    = "RATE_LIMITED"
	CodeSendFailed     = "SEND_FAILED"
	CodePersistFailed  = "PERSIST_FAILED"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInvalidPayload = "INVALID_PAYLOAD"
)

// JoinPayload identifies the connecting participant.
type JoinPayload struct {
	Identity string `json:"identity"`
}

// SendMessagePayload carries an outbound message tagged with the client's
// ephemeral identity. OptimisticID is accepted as an alias for TempID for
// older clients.
type SendMessagePayload struct {
	Text         string `json:"text"`
	TempID       string `json:"tempId,omitempty"`
	OptimisticID string `json:"optimisticId,omitempty"`
}

// ClientTempID returns whichever temp identity the client supplied.
func (p SendMessagePayload) ClientTempID() string {
	if p.TempID != "" {
		return p.TempID
	}
	return p.OptimisticID
}

// LoadOlderPayload requests a page of history strictly before a timestamp
// (unix milliseconds).
type LoadOlderPayload struct {
	BeforeTimestamp int64 `json:"beforeTimestamp"`
	Limit           int   `json:"limit"`
}

// HistoryPayload is a full history replacement or a pagination page.
type HistoryPayload struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"hasMore"`
}

// NewMessagePayload is a live push of an accepted message.
type NewMessagePayload struct {
	Message Message `json:"message"`
}

// MessageSentPayload acknowledges the sender's own send.
type MessageSentPayload struct {
	TempID  string  `json:"tempId"`
	Message Message `json:"message"`
}

// ReconciledPayload hands identity over from the client temp key to the
// permanent server id.
type ReconciledPayload struct {
	OptimisticID string `json:"optimisticId"`
	MessageID    string `json:"messageId"`
	Timestamp    int64  `json:"timestamp"`
}

// MessageErrorPayload reports a rejected or failed send. Intervention details
// ride along when mediation blocked the message.
type MessageErrorPayload struct {
	OptimisticID string        `json:"optimisticId,omitempty"`
	TempID       string        `json:"tempId,omitempty"`
	Error        string        `json:"error"`
	Code         string        `json:"code"`
	Intervention *Intervention `json:"intervention,omitempty"`
}

// SaveFailedPayload reports a post-accept persistence failure.
type SaveFailedPayload struct {
	MessageID string `json:"messageId"`
	Error     string `json:"error"`
	Code      string `json:"code"`
}

// MediatorNotePayload is a non-blocking annotation delivered to the sender
// alongside a message that passed through.
type MediatorNotePayload struct {
	MessageID string `json:"messageId"`
	Note      string `json:"note"`
}

// SocketErrorPayload is a standardized channel-level error.
type SocketErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Intervention is the sender-only payload returned when a message is blocked:
// a validation of the sender's underlying goal plus two rewrites that keep the
// sender's voice.
type Intervention struct {
	Validation string `json:"validation"`
	Rewrite1   string `json:"rewrite1"`
	Rewrite2   string `json:"rewrite2"`
	Insight    string `json:"insight,omitempty"`
}
