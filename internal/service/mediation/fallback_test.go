package mediation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonground-app/backend/internal/analysis/signal"
	model "github.com/commonground-app/backend/internal/model/chat"
)

func TestEnforceMissingRewriteTripsSafetyFallback(t *testing.T) {
	report := signal.Scan("you're such an idiot", signal.AuxContext{})

	composed := model.Intervention{
		Validation: "It makes sense that you want the schedule settled.",
		Rewrite2:   "Can we talk about the schedule?",
		// Rewrite1 deliberately missing.
	}

	result := enforce(composed, report)
	assert.Equal(t, safetyFallback(), result, "missing required field must yield the fixed safety fallback")

	// Same for a missing validation.
	result = enforce(model.Intervention{Rewrite1: "a", Rewrite2: "b"}, report)
	assert.Equal(t, safetyFallback(), result)
}

func TestEnforceSubstitutesBadPerspective(t *testing.T) {
	report := signal.Scan("the schedule is a mess", signal.AuxContext{})

	composed := model.Intervention{
		Validation: "Your goal is reasonable.",
		Rewrite1:   "You were right, I got your message and I was wrong.",
		Rewrite2:   "Can we go over the pickup plan for this week?",
	}

	result := enforce(composed, report)
	require.NotEqual(t, composed.Rewrite1, result.Rewrite1, "recipient-voice rewrite must be replaced")
	assert.True(t, validRewritePerspective(result.Rewrite1))
	assert.Equal(t, composed.Rewrite2, result.Rewrite2, "valid rewrite must survive untouched")
	assert.NotEqual(t, result.Rewrite1, result.Rewrite2)
}

func TestValidRewritePerspective(t *testing.T) {
	assert.True(t, validRewritePerspective("I would like to swap weekends. Can we talk?"))
	assert.True(t, validRewritePerspective("Could you send the school form today?"))
	assert.False(t, validRewritePerspective(""))
	assert.False(t, validRewritePerspective("You were right about everything."))
	assert.False(t, validRewritePerspective("Noted."), "no sender-voice marker present")
}

func TestFallbackRewriteTracksFocus(t *testing.T) {
	logistics := fallbackRewrite(signal.FocusLogistics)
	child := fallbackRewrite(signal.FocusChild)
	assert.NotEqual(t, logistics, child)
	assert.True(t, validRewritePerspective(logistics))
	assert.True(t, validRewritePerspective(child))
	assert.True(t, validRewritePerspective(fallbackRewrite(signal.FocusNone)))
}

func TestComposeDeterministicNilConnection(t *testing.T) {
	report := signal.Scan("whatever", signal.AuxContext{})
	assert.Equal(t, safetyFallback(), composeDeterministic(nil, report))
}
