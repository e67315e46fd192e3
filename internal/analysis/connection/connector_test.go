package connection

import (
	"strings"
	"testing"

	"github.com/commonground-app/backend/internal/analysis/intent"
	"github.com/commonground-app/backend/internal/analysis/pattern"
)

func match(patternID string, confidence int) pattern.Match {
	return pattern.Match{Pattern: *pattern.GetBehavioralPattern(patternID), Confidence: confidence}
}

func intentMatch(intentID string, confidence int) intent.Match {
	return intent.Match{
		Intent:     *intent.GetIntentCategory(intentID),
		Confidence: confidence,
		Source:     intent.SourceCurrentMessage,
	}
}

func TestConnectCuratedPair(t *testing.T) {
	conn := Connect(match(pattern.CharacterAttack, 90), intentMatch(intent.SchedulingNeed, 70))
	if conn.Source != SourceCurated {
		t.Fatalf("expected curated source, got %s", conn.Source)
	}
	if !strings.HasPrefix(conn.Explanation, "This ") {
		t.Fatalf("explanation does not follow template: %q", conn.Explanation)
	}
	if !strings.Contains(conn.Explanation, "won't help you") || !strings.Contains(conn.Explanation, "because") {
		t.Fatalf("explanation missing template clauses: %q", conn.Explanation)
	}
}

func TestConnectGenericFallback(t *testing.T) {
	conn := Connect(match(pattern.CharacterAttack, 90), intentMatch(intent.BoundarySetting, 50))
	if conn.Source != SourceGeneric {
		t.Fatalf("expected generic source, got %s", conn.Source)
	}
	if conn.Alternative != pattern.GetBehavioralPattern(pattern.CharacterAttack).Alternative {
		t.Fatal("generic fallback should reuse the pattern's own alternative")
	}
}

func TestConnectAllPicksBestByCombinedConfidence(t *testing.T) {
	patterns := pattern.Analysis{
		Patterns: []pattern.Match{match(pattern.Escalation, 85), match(pattern.Dismissiveness, 70)},
	}
	patterns.PrimaryPattern = &patterns.Patterns[0]

	intents := intent.Analysis{
		Intents: []intent.Match{intentMatch(intent.SchedulingNeed, 40), intentMatch(intent.BoundarySetting, 90)},
	}
	intents.PrimaryIntent = &intents.Intents[1]

	analysis := ConnectAll(patterns, intents)
	if len(analysis.Connections) != 4 {
		t.Fatalf("expected all pairings, got %d", len(analysis.Connections))
	}
	best := analysis.PrimaryConnection
	if best == nil {
		t.Fatal("expected a primary connection")
	}
	// 85*90 beats every other product.
	if best.Pattern.Pattern.ID != pattern.Escalation || best.Intent.Intent.ID != intent.BoundarySetting {
		t.Fatalf("unexpected primary pairing: %s/%s", best.Pattern.Pattern.ID, best.Intent.Intent.ID)
	}
}

func TestConnectAllMissingInput(t *testing.T) {
	analysis := ConnectAll(pattern.Analysis{}, intent.Analysis{})
	if analysis.PrimaryConnection != nil {
		t.Fatal("expected nil primary connection")
	}
	if len(analysis.Connections) != 0 {
		t.Fatal("expected no connections")
	}
	if analysis.Error == "" {
		t.Fatal("expected error metadata")
	}
}

func TestFormat(t *testing.T) {
	if Format(nil) != "" {
		t.Fatal("nil connection must format to empty string")
	}

	conn := Connect(match(pattern.GuiltTripping, 72), intentMatch(intent.ActionRequest, 60))
	text := Format(&conn)
	if !strings.Contains(text, conn.Explanation) {
		t.Fatal("formatted text must include the explanation")
	}
	if !strings.Contains(text, "Try instead:") {
		t.Fatal("formatted text must include the alternative")
	}
}
