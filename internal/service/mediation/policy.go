package mediation

import (
	"sync"
	"time"
)

// policyCapacity bounds the per-room intervention history ring.
const policyCapacity = 20

// policyEntry is one recorded engine outcome. The ring exists so risk
// assessment sees beyond the current session; nothing outside the engine
// reads it.
type policyEntry struct {
	Timestamp time.Time
	Action    ActionKind
	RiskLevel RiskLevel
	Emotional string
}

type policyRing struct {
	entries []policyEntry
	next    int
	full    bool
}

func (r *policyRing) append(entry policyEntry) {
	if r.entries == nil {
		r.entries = make([]policyEntry, policyCapacity)
	}
	r.entries[r.next] = entry
	r.next = (r.next + 1) % policyCapacity
	if r.next == 0 {
		r.full = true
	}
}

func (r *policyRing) snapshot() []policyEntry {
	if r.entries == nil {
		return nil
	}
	if !r.full {
		out := make([]policyEntry, r.next)
		copy(out, r.entries[:r.next])
		return out
	}
	out := make([]policyEntry, 0, policyCapacity)
	out = append(out, r.entries[r.next:]...)
	out = append(out, r.entries[:r.next]...)
	return out
}

// policyLog keeps one bounded ring per room.
type policyLog struct {
	mu    sync.Mutex
	rooms map[string]*policyRing
}

func newPolicyLog() *policyLog {
	return &policyLog{rooms: make(map[string]*policyRing)}
}

func (l *policyLog) record(roomID string, entry policyEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ring, ok := l.rooms[roomID]
	if !ok {
		ring = &policyRing{}
		l.rooms[roomID] = ring
	}
	ring.append(entry)
}

// recentInterventions counts interventions recorded for the room within the
// window, regardless of which session produced them.
func (l *policyLog) recentInterventions(roomID string, window time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	ring, ok := l.rooms[roomID]
	if !ok {
		return 0
	}

	cutoff := time.Now().Add(-window)
	count := 0
	for _, entry := range ring.snapshot() {
		if entry.Action == KindIntervene && entry.Timestamp.After(cutoff) {
			count++
		}
	}
	return count
}
