package mediation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonground-app/backend/internal/analysis/pattern"
	model "github.com/commonground-app/backend/internal/model/chat"
	"github.com/commonground-app/backend/internal/store/graph"
	"github.com/commonground-app/backend/internal/store/profile"
)

func testRoom() model.Room {
	return model.Room{ID: "room-1", Participants: [2]string{"parent-a", "parent-b"}}
}

func newTestEngine() (*Engine, *profile.MemoryStore, *graph.MemoryStore) {
	profiles := profile.NewMemoryStore()
	graphStore := graph.NewMemoryStore()
	return NewEngine(nil, profiles, graphStore, nil), profiles, graphStore
}

func TestMediateInsultIntervenes(t *testing.T) {
	engine, _, _ := newTestEngine()

	decision := engine.Mediate(context.Background(), Request{
		Room:    testRoom(),
		Message: model.Message{RoomID: "room-1", Sender: "parent-a", Text: "You're such an idiot"},
	})

	require.Equal(t, KindIntervene, decision.Action.Kind())
	require.NotNil(t, decision.Patterns.PrimaryPattern)
	assert.Equal(t, pattern.CharacterAttack, decision.Patterns.PrimaryPattern.Pattern.ID)
	assert.Equal(t, RiskHigh, decision.RiskLevel)
	assert.Equal(t, "hostile", decision.Emotional)

	intervene := decision.Action.(Intervene)
	assert.NotEmpty(t, intervene.Intervention.Validation)
	assert.NotEmpty(t, intervene.Intervention.Rewrite1)
	assert.NotEmpty(t, intervene.Intervention.Rewrite2)
	assert.True(t, validRewritePerspective(intervene.Intervention.Rewrite1))
	assert.True(t, validRewritePerspective(intervene.Intervention.Rewrite2))
}

func TestMediateNeutralMessagePasses(t *testing.T) {
	engine, _, _ := newTestEngine()

	decision := engine.Mediate(context.Background(), Request{
		Room:    testRoom(),
		Message: model.Message{RoomID: "room-1", Sender: "parent-a", Text: "Can we meet at 3pm instead?"},
	})

	assert.Equal(t, KindStaySilent, decision.Action.Kind())
	assert.Equal(t, RiskLow, decision.RiskLevel)
}

func TestMediateEmptyMessage(t *testing.T) {
	engine, _, _ := newTestEngine()

	decision := engine.Mediate(context.Background(), Request{
		Room:    testRoom(),
		Message: model.Message{RoomID: "room-1", Sender: "parent-a", Text: "   "},
	})

	assert.Equal(t, KindStaySilent, decision.Action.Kind())
	assert.Nil(t, decision.Patterns.PrimaryPattern)
}

func TestMediateMediumRiskComments(t *testing.T) {
	engine, _, _ := newTestEngine()

	// Blame attribution without direct hostility lands in the comment band.
	decision := engine.Mediate(context.Background(), Request{
		Room:    testRoom(),
		Message: model.Message{RoomID: "room-1", Sender: "parent-a", Text: "We missed the appointment because of you"},
	})

	require.Equal(t, KindComment, decision.Action.Kind())
	comment := decision.Action.(Comment)
	assert.NotEmpty(t, comment.Note)
	assert.Equal(t, RiskMedium, decision.RiskLevel)
}

func TestMediateRecordsSideEffects(t *testing.T) {
	engine, profiles, graphStore := newTestEngine()

	decision := engine.Mediate(context.Background(), Request{
		Room:    testRoom(),
		Message: model.Message{RoomID: "room-1", Sender: "parent-a", Text: "You're such an idiot"},
	})
	require.Equal(t, KindIntervene, decision.Action.Kind())

	// Recording is fire-and-forget; give it a moment.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		prof, err := profiles.Get(context.Background(), "parent-a")
		if err == nil && prof.Interventions == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	prof, err := profiles.Get(context.Background(), "parent-a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, prof.Interventions)
	assert.EqualValues(t, 1, profiles.PatternCount("parent-a", pattern.CharacterAttack))

	health, err := graphStore.PairHealth(context.Background(), "parent-a", "parent-b")
	require.NoError(t, err)
	assert.EqualValues(t, 1, health.Interventions)
	assert.EqualValues(t, 1, health.Messages)
}

func TestMediateRespectsWithheldConsent(t *testing.T) {
	engine, profiles, _ := newTestEngine()
	profiles.Put(profile.Profile{ID: "parent-a", MediationConsent: false})

	decision := engine.Mediate(context.Background(), Request{
		Room:    testRoom(),
		Message: model.Message{RoomID: "room-1", Sender: "parent-a", Text: "You're such an idiot"},
	})

	require.Equal(t, KindComment, decision.Action.Kind(),
		"opted-out sender still gets a note, never a blocked message")
	assert.Equal(t, RiskHigh, decision.RiskLevel)
}

func TestMediateSurvivesNilStores(t *testing.T) {
	engine := NewEngine(nil, nil, nil, nil)

	decision := engine.Mediate(context.Background(), Request{
		Room:    testRoom(),
		Message: model.Message{RoomID: "room-1", Sender: "parent-a", Text: "You're such an idiot"},
	})

	assert.Equal(t, KindIntervene, decision.Action.Kind())
}
