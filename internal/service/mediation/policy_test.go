package mediation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/commonground-app/backend/internal/model/chat"
)

func TestPolicyRingBounded(t *testing.T) {
	ring := &policyRing{}
	for i := 0; i < policyCapacity+7; i++ {
		ring.append(policyEntry{Timestamp: time.Now().Add(time.Duration(i) * time.Second)})
	}

	entries := ring.snapshot()
	require.Len(t, entries, policyCapacity, "ring must stay bounded")

	// Oldest surviving entry is the 8th appended; order is append order.
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i].Timestamp.After(entries[i-1].Timestamp))
	}
}

func TestPolicyRecentInterventionsWindow(t *testing.T) {
	log := newPolicyLog()
	now := time.Now().UTC()

	log.record("room-1", policyEntry{Timestamp: now.Add(-48 * time.Hour), Action: KindIntervene})
	log.record("room-1", policyEntry{Timestamp: now.Add(-time.Hour), Action: KindIntervene})
	log.record("room-1", policyEntry{Timestamp: now.Add(-time.Minute), Action: KindComment})
	log.record("room-2", policyEntry{Timestamp: now, Action: KindIntervene})

	assert.Equal(t, 1, log.recentInterventions("room-1", 24*time.Hour))
	assert.Equal(t, 0, log.recentInterventions("room-3", 24*time.Hour))
}

func TestRepeatedInterventionsEscalateMediumRisk(t *testing.T) {
	engine, _, _ := newTestEngine()
	room := testRoom()

	// Seed the room's policy state with a run of recent interventions.
	for i := 0; i < repeatLimit; i++ {
		engine.policy.record(room.ID, policyEntry{
			Timestamp: time.Now().UTC(),
			Action:    KindIntervene,
			RiskLevel: RiskHigh,
		})
	}

	decision := engine.Mediate(context.Background(), Request{
		Room:    room,
		Message: model.Message{RoomID: room.ID, Sender: "parent-a", Text: "We missed the appointment because of you"},
	})

	assert.Equal(t, KindIntervene, decision.Action.Kind(),
		"medium-band message in an active conflict should escalate")
	assert.Equal(t, RiskHigh, decision.RiskLevel)
}
