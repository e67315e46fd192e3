package mediation

import (
	"strings"

	"github.com/commonground-app/backend/internal/analysis/connection"
	"github.com/commonground-app/backend/internal/analysis/signal"
	model "github.com/commonground-app/backend/internal/model/chat"
)

// safetyFallback is the fixed, always-safe intervention used whenever a
// composed payload is missing required fields. It must never be edited into
// something situation-specific; its value is that it cannot be wrong.
func safetyFallback() model.Intervention {
	return model.Intervention{
		Validation: "It sounds like there's something important you need here.",
		Rewrite1:   "I'd like to talk about this. Can we find a time that works?",
		Rewrite2:   "I'm frustrated, but I want us to sort this out. What works for you?",
		Insight:    "Messages land better when they name the need instead of the person.",
	}
}

// recipientVoiceMarkers are phrasings that only make sense spoken by the
// recipient. A rewrite containing one was inverted somewhere in composition
// and must not reach the sender.
var recipientVoiceMarkers = []string{
	"you were right", "as you said", "i'm sorry you had to deal with me",
	"i shouldn't have said that to you just now", "you asked me to",
	"i got your message",
}

// senderVoiceMarkers are first-person phrasings we expect in a rewrite that
// keeps the sender's perspective.
var senderVoiceMarkers = []string{
	"i ", "i'", "my ", "we ", "can you", "could you", "could we", "can we",
	"please", "let's",
}

// validRewritePerspective checks that a rewrite is still phrased from the
// original sender's point of view.
func validRewritePerspective(rewrite string) bool {
	normalized := strings.ToLower(strings.TrimSpace(rewrite))
	if normalized == "" || len(normalized) > 500 {
		return false
	}
	for _, marker := range recipientVoiceMarkers {
		if strings.Contains(normalized, marker) {
			return false
		}
	}
	for _, marker := range senderVoiceMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}

// fallbackRewrite substitutes a category-specific rewrite when a composed one
// fails perspective validation. The category comes from the language
// analysis, so the substitute stays on topic.
func fallbackRewrite(focus signal.Focus) string {
	switch focus {
	case signal.FocusLogistics:
		return "Can we go over the schedule? I want to make sure we both have the same plan."
	case signal.FocusChild:
		return "I'm concerned about something with our child. Can we talk about it?"
	case signal.FocusCharacter, signal.FocusPast:
		return "Something's been bothering me and I'd rather talk it through than let it build up."
	case signal.FocusRelationship:
		return "I think we see this differently. Can we find an approach we both accept?"
	case signal.FocusFuture:
		return "I'd like to agree on how we handle this going forward."
	default:
		return "I'd like to talk about this when we both have a moment."
	}
}

// composeDeterministic builds the intervention payload from the curated
// connection and the sender's detected intent, with no model in the loop.
// This path is always complete; it is the floor the composer falls back to.
func composeDeterministic(conn *connection.Connection, report signal.Report) model.Intervention {
	if conn == nil {
		return safetyFallback()
	}

	intervention := model.Intervention{
		Validation: "It makes sense that you want to " + conn.Intent.Intent.Phrase + ".",
		Insight:    conn.Explanation,
	}

	alternative := strings.TrimSpace(conn.Alternative)
	if alternative != "" {
		intervention.Rewrite1 = "I want to " + conn.Intent.Intent.Phrase + ". Can we talk about it?"
		intervention.Rewrite2 = fallbackRewrite(report.Focus.Focus)
	} else {
		intervention.Rewrite1 = fallbackRewrite(report.Focus.Focus)
		intervention.Rewrite2 = safetyFallback().Rewrite2
	}

	return intervention
}

// enforce validates a composed payload: any missing required field trips the
// safety fallback wholesale, and each rewrite must survive the perspective
// check or be substituted individually.
func enforce(composed model.Intervention, report signal.Report) model.Intervention {
	if strings.TrimSpace(composed.Validation) == "" ||
		strings.TrimSpace(composed.Rewrite1) == "" ||
		strings.TrimSpace(composed.Rewrite2) == "" {
		return safetyFallback()
	}

	if !validRewritePerspective(composed.Rewrite1) {
		composed.Rewrite1 = fallbackRewrite(report.Focus.Focus)
	}
	if !validRewritePerspective(composed.Rewrite2) {
		composed.Rewrite2 = fallbackRewrite(report.Focus.Focus)
		if composed.Rewrite2 == composed.Rewrite1 {
			composed.Rewrite2 = safetyFallback().Rewrite2
		}
	}
	return composed
}
