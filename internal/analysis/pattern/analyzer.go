package pattern

import (
	"sort"
	"strings"

	"github.com/commonground-app/backend/internal/analysis/signal"
)

// ParsedMessage is the analyzer input: the raw text plus the structural
// axioms already fired for it.
type ParsedMessage struct {
	Text   string
	Axioms []signal.Axiom
}

// Match is one behavioral pattern detected in a message.
type Match struct {
	Pattern        BehavioralPattern `json:"pattern"`
	Confidence     int               `json:"confidence"`
	EvidenceSource string            `json:"evidenceSource"`
}

// Analysis is the ranked result of analyzing one message.
type Analysis struct {
	Patterns       []Match `json:"patterns"`
	PrimaryPattern *Match  `json:"primaryPattern"`
	Error          string  `json:"error,omitempty"`
}

var assumptionStateMarkers = []string{
	"you think", "you believe", "you want", "you don't care", "you never cared",
	"you clearly", "obviously you", "you just want", "you're trying to",
	"you did it on purpose", "you meant to",
}

var blameMarkers = []string{
	"it's your fault", "this is your fault", "because of you", "you made me",
	"you forced me", "if you hadn't", "not my fault", "you started", "thanks to you",
	"i wouldn't have to if you",
}

// Analyze maps fired axioms to catalog patterns and runs the two text scans
// axioms do not reliably capture. Matches are ranked by confidence with
// catalog order as the tiebreak; a nil or empty input produces an empty
// analysis, never a panic.
func Analyze(parsed *ParsedMessage) Analysis {
	if parsed == nil || strings.TrimSpace(parsed.Text) == "" {
		return Analysis{Patterns: []Match{}, Error: "invalid input: empty message"}
	}

	// Keep only the strongest axiom evidence per pattern.
	best := make(map[string]Match)
	for _, axiom := range parsed.Axioms {
		mapping, ok := axiomPatterns[axiom.ID]
		if !ok {
			continue
		}
		confidence := mapping.Confidence
		if axiom.Confidence > 0 && axiom.Confidence < confidence {
			confidence = axiom.Confidence
		}
		if existing, ok := best[mapping.PatternID]; ok && existing.Confidence >= confidence {
			continue
		}
		best[mapping.PatternID] = Match{
			Pattern:        catalog[mapping.PatternID],
			Confidence:     confidence,
			EvidenceSource: "axiom:" + axiom.ID,
		}
	}

	normalized := strings.ToLower(parsed.Text)

	if match, ok := scanAssumptions(normalized); ok {
		if existing, present := best[MakingAssumptions]; !present || existing.Confidence < match.Confidence {
			best[MakingAssumptions] = match
		}
	}
	if match, ok := scanBlameShifting(normalized); ok {
		if existing, present := best[AvoidingResponsibility]; !present || existing.Confidence < match.Confidence {
			best[AvoidingResponsibility] = match
		}
	}

	matches := make([]Match, 0, len(best))
	for _, match := range best {
		matches = append(matches, match)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return catalogRank(matches[i].Pattern.ID) < catalogRank(matches[j].Pattern.ID)
	})

	analysis := Analysis{Patterns: matches}
	if len(matches) > 0 {
		analysis.PrimaryPattern = &matches[0]
	}
	return analysis
}

// scanAssumptions fires when absolute intensifiers are bundled with claims
// about the other party's internal state.
func scanAssumptions(normalized string) (Match, bool) {
	stateHits := 0
	for _, marker := range assumptionStateMarkers {
		if strings.Contains(normalized, marker) {
			stateHits++
		}
	}
	if stateHits == 0 {
		return Match{}, false
	}

	confidence := 55 + 10*stateHits
	absolute := false
	for _, marker := range []string{"always", "never", "every time", "constantly", "obviously", "clearly"} {
		if strings.Contains(normalized, marker) {
			absolute = true
			break
		}
	}
	if absolute {
		confidence += 15
	}
	if confidence > 95 {
		confidence = 95
	}

	return Match{
		Pattern:        catalog[MakingAssumptions],
		Confidence:     confidence,
		EvidenceSource: "text:internal_state_claim",
	}, true
}

// scanBlameShifting fires on blame-attribution phrasing.
func scanBlameShifting(normalized string) (Match, bool) {
	hits := 0
	for _, marker := range blameMarkers {
		if strings.Contains(normalized, marker) {
			hits++
		}
	}
	if hits == 0 {
		return Match{}, false
	}

	confidence := 60 + 12*hits
	if confidence > 95 {
		confidence = 95
	}

	return Match{
		Pattern:        catalog[AvoidingResponsibility],
		Confidence:     confidence,
		EvidenceSource: "text:blame_attribution",
	}, true
}
