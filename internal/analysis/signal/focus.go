package signal

import "fmt"

// Focus is the dominant topical category of a message.
type Focus string

const (
	FocusNone         Focus = "none"
	FocusLogistics    Focus = "logistics"
	FocusCharacter    Focus = "character"
	FocusChild        Focus = "child"
	FocusRelationship Focus = "relationship"
	FocusPast         Focus = "past"
	FocusFuture       Focus = "future"
)

// focusPriority is the declared tiebreak order when marker counts are equal.
// Preserved as documented; do not rebalance without a product decision.
var focusPriority = []Focus{
	FocusLogistics, FocusCharacter, FocusChild, FocusRelationship, FocusPast, FocusFuture,
}

var focusMarkers = map[Focus][]string{
	FocusLogistics: {
		"schedule", "pickup", "pick up", "drop off", "drop-off", "time",
		"calendar", "appointment", "weekend", "week", "switch", "swap",
		"exchange", "holiday", "vacation",
	},
	FocusCharacter: {
		"you're a", "you are a", "you're so", "selfish", "lazy", "liar",
		"irresponsible", "immature", "narcissist", "control freak", "idiot",
		"stupid", "pathetic",
	},
	FocusChild: {
		"our son", "our daughter", "the kids", "our kids", "our child",
		"school", "homework", "bedtime", "doctor", "teacher", "daycare",
		"practice", "soccer", "piano",
	},
	FocusRelationship: {
		"we used to", "you used to love", "our marriage", "when we were together",
		"you never loved", "us", "between us", "we were",
	},
	FocusPast: {
		"last time", "last year", "back then", "you did this before",
		"like you always did", "history", "again and again",
	},
	FocusFuture: {
		"from now on", "going forward", "next time", "in the future",
		"will never", "won't ever",
	},
}

// FocusResult carries the winning category and the per-category marker counts
// it was derived from.
type FocusResult struct {
	Valid  bool          `json:"valid"`
	Focus  Focus         `json:"focus"`
	Counts map[Focus]int `json:"counts,omitempty"`
}

// DetectFocus counts topical markers per category; the highest count wins and
// equal counts resolve by the declared priority order.
func DetectFocus(text string) FocusResult {
	normalized := normalize(text)
	if normalized == "" {
		return FocusResult{Focus: FocusNone}
	}

	counts := make(map[Focus]int)
	for focus, markers := range focusMarkers {
		if hits := containsAny(normalized, markers); len(hits) > 0 {
			counts[focus] = len(hits)
		}
	}

	best := FocusNone
	bestCount := 0
	for _, focus := range focusPriority {
		if counts[focus] > bestCount {
			best = focus
			bestCount = counts[focus]
		}
	}

	return FocusResult{Valid: true, Focus: best, Counts: counts}
}

func (r FocusResult) Summarize() []string {
	if !r.Valid || r.Focus == FocusNone {
		return nil
	}
	return []string{fmt.Sprintf("topical focus is %s", r.Focus)}
}
