package reconcile

import (
	"time"

	"github.com/google/uuid"

	"github.com/commonground-app/backend/internal/model/chat"
)

// loadOlderTimeout resets the pagination in-flight flag even when no
// older_messages response ever arrives, so a dropped page cannot wedge
// pagination permanently.
const loadOlderTimeout = 10 * time.Second

// Timeline is the client-side view of one room's messages. All state is owned
// by a single goroutine; exported methods serialize their work through it, so
// the maps never see concurrent mutation.
type Timeline struct {
	requests chan func()
	quit     chan struct{}

	// Owned by the run goroutine.
	messages     []chat.Message
	pending      map[string]chat.Message
	statuses     map[string]chat.Status
	loadingOlder bool
	loadToken    int
	hasMore      bool
}

// NewTimeline starts the owning goroutine.
func NewTimeline() *Timeline {
	t := &Timeline{
		requests: make(chan func(), 16),
		quit:     make(chan struct{}),
		pending:  make(map[string]chat.Message),
		statuses: make(map[string]chat.Status),
	}
	go t.run()
	return t
}

func (t *Timeline) run() {
	for {
		select {
		case fn := <-t.requests:
			fn()
		case <-t.quit:
			return
		}
	}
}

// Close stops the owning goroutine. The timeline must not be used afterwards.
func (t *Timeline) Close() {
	close(t.quit)
}

// do runs fn on the owning goroutine and waits for it.
func (t *Timeline) do(fn func()) {
	done := make(chan struct{})
	select {
	case t.requests <- func() { fn(); close(done) }:
		<-done
	case <-t.quit:
	}
}

// Send creates the optimistic local message for text: a fresh temp id, status
// sending, rendered immediately. The returned message is what the client
// submits to the server.
func (t *Timeline) Send(sender, text string) chat.Message {
	msg := chat.Message{
		TempID:    uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Status:    chat.StatusSending,
		Timestamp: time.Now().UTC(),
	}
	t.do(func() {
		t.pending[msg.TempID] = msg
		t.statuses[msg.TempID] = chat.StatusSending
		t.messages = Merge(nil, t.messages, clone(t.pending))
	})
	return msg
}

// ApplyHistory applies a full history payload. An empty payload never
// overwrites a non-empty local list; that guards against a transient server
// error or a late, stale history racing ahead of real content.
func (t *Timeline) ApplyHistory(payload chat.HistoryPayload) {
	t.do(func() {
		if len(payload.Messages) == 0 && len(t.messages) > 0 {
			return
		}
		t.hasMore = payload.HasMore
		t.messages = Merge(payload.Messages, t.messages, t.pending)
	})
}

// ApplyNew folds a live-pushed message in.
func (t *Timeline) ApplyNew(msg chat.Message) {
	t.do(func() {
		t.messages = Merge([]chat.Message{msg}, t.messages, t.pending)
		if msg.ID != "" {
			t.statuses[msg.ID] = chat.StatusSent
		}
	})
}

// ApplySent acknowledges the client's own send: the pending entry is dropped
// and the server copy takes over under its permanent id.
func (t *Timeline) ApplySent(payload chat.MessageSentPayload) {
	t.do(func() {
		msg := payload.Message
		if msg.TempID == "" {
			msg.TempID = payload.TempID
		}
		msg.Status = chat.StatusSent
		t.messages = Merge([]chat.Message{msg}, t.messages, t.pending)
		delete(t.statuses, payload.TempID)
		if msg.ID != "" {
			t.statuses[msg.ID] = chat.StatusSent
		}
	})
}

// ApplyReconciled re-keys a message from its temporary identity to the
// permanent one via the same merge.
func (t *Timeline) ApplyReconciled(payload chat.ReconciledPayload) {
	t.do(func() {
		base, ok := t.pending[payload.OptimisticID]
		if !ok {
			for _, msg := range t.messages {
				if msg.Key() == payload.OptimisticID {
					base = msg
					ok = true
					break
				}
			}
		}
		if !ok {
			return
		}

		base.ID = payload.MessageID
		base.TempID = payload.OptimisticID
		base.Status = chat.StatusSent
		if payload.Timestamp > 0 {
			base.Timestamp = time.UnixMilli(payload.Timestamp).UTC()
		}
		t.messages = Merge([]chat.Message{base}, t.messages, t.pending)
		delete(t.statuses, payload.OptimisticID)
		t.statuses[payload.MessageID] = chat.StatusSent
	})
}

// ApplyError marks the send failed. The message is retained and annotated so
// the user can see the failure and retry; it is never silently dropped.
func (t *Timeline) ApplyError(payload chat.MessageErrorPayload) {
	t.do(func() {
		key := payload.TempID
		if key == "" {
			key = payload.OptimisticID
		}
		if key == "" {
			return
		}

		t.statuses[key] = chat.StatusFailed
		if msg, ok := t.pending[key]; ok {
			delete(t.pending, key)
			msg.Status = chat.StatusFailed
			msg.Error = payload.Error
			t.messages = Merge([]chat.Message{msg}, t.messages, t.pending)
			return
		}
		for i := range t.messages {
			if t.messages[i].Key() == key {
				t.messages[i].Status = chat.StatusFailed
				t.messages[i].Error = payload.Error
				return
			}
		}
	})
}

// BeginLoadOlder marks a pagination request in flight. It reports false when
// a page is already outstanding. The flag self-resets after loadOlderTimeout
// so a lost response cannot block pagination forever.
func (t *Timeline) BeginLoadOlder() bool {
	allowed := false
	t.do(func() {
		if t.loadingOlder {
			return
		}
		t.loadingOlder = true
		allowed = true
		t.loadToken++
		token := t.loadToken
		time.AfterFunc(loadOlderTimeout, func() {
			t.do(func() {
				if t.loadToken == token {
					t.loadingOlder = false
				}
			})
		})
	})
	return allowed
}

// ApplyOlder folds a pagination page in and releases the in-flight flag.
func (t *Timeline) ApplyOlder(payload chat.HistoryPayload) {
	t.do(func() {
		t.loadingOlder = false
		t.loadToken++
		t.hasMore = payload.HasMore
		t.messages = Merge(payload.Messages, t.messages, t.pending)
	})
}

// Messages returns a snapshot of the merged, ordered list.
func (t *Timeline) Messages() []chat.Message {
	var out []chat.Message
	t.do(func() {
		out = make([]chat.Message, len(t.messages))
		copy(out, t.messages)
	})
	return out
}

// Status returns the lifecycle status recorded for a message key.
func (t *Timeline) Status(key string) (chat.Status, bool) {
	var status chat.Status
	var ok bool
	t.do(func() {
		status, ok = t.statuses[key]
	})
	return status, ok
}

// HasMore reports whether the server indicated more history beyond the oldest
// loaded page.
func (t *Timeline) HasMore() bool {
	var more bool
	t.do(func() { more = t.hasMore })
	return more
}

// LoadingOlder reports whether a pagination request is in flight.
func (t *Timeline) LoadingOlder() bool {
	var loading bool
	t.do(func() { loading = t.loadingOlder })
	return loading
}

func clone(pending map[string]chat.Message) map[string]chat.Message {
	out := make(map[string]chat.Message, len(pending))
	for k, v := range pending {
		out[k] = v
	}
	return out
}
