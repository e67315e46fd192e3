package intent

import (
	"regexp"
	"sort"
	"strings"

	"github.com/commonground-app/backend/internal/model/chat"
)

// Source records where an intent was detected.
type Source string

const (
	SourceCurrentMessage Source = "current_message"
	SourceHistory        Source = "conversation_history"
)

// Match is one detected intent after source-based confidence adjustment.
type Match struct {
	Intent     Category `json:"intent"`
	Confidence int      `json:"confidence"`
	Source     Source   `json:"source"`
	Sources    []Source `json:"sources"`
}

// Analysis is the ranked extraction result.
type Analysis struct {
	Intents       []Match `json:"intents"`
	PrimaryIntent *Match  `json:"primaryIntent"`
}

// Input feeds Extract: the message under mediation plus the sender's recent
// turns in the same conversation.
type Input struct {
	MessageText    string
	RecentMessages []chat.Message
	SenderID       string
}

// historyWindow bounds how many of the sender's recent turns the history scan
// considers.
const historyWindow = 5

var timePattern = regexp.MustCompile(`\b\d{1,2}(:\d{2})?\s*(am|pm)\b`)

var weekdayPattern = regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

var intentMarkers = map[string][]string{
	SchedulingNeed: {
		"can we meet", "what time", "reschedule", "schedule", "swap", "switch days",
		"pickup", "pick up", "drop off", "drop-off", "this weekend", "next weekend",
		"tonight", "instead of",
	},
	InformationRequest: {
		"what happened", "when did", "when is", "where is", "where did", "who is",
		"did you", "do you know", "how did", "is there", "was there",
	},
	ActionRequest: {
		"can you", "could you", "please", "need you to", "would you",
		"send me", "bring the", "sign the", "pay the", "remember to",
	},
	CollaborationInvite: {
		"let's", "we could", "work together", "figure this out", "come up with",
		"find a way", "both of us", "on the same page",
	},
	ChildConcern: {
		"worried about", "concerned about", "the doctor", "the teacher", "is sick",
		"homework", "bedtime", "struggling", "acting out", "not sleeping",
	},
	BoundarySetting: {
		"stop calling", "stop texting", "only discuss", "going forward i",
		"i won't respond", "i'm not going to engage", "keep this about",
		"don't contact", "please stick to",
	},
}

// DetectIntentFromMessage runs the current-message marker scan. Exposed for
// direct testing; Extract applies it to history as well.
func DetectIntentFromMessage(text string) []Match {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return nil
	}

	var matches []Match
	for _, id := range catalogOrder {
		hits := 0
		for _, marker := range intentMarkers[id] {
			if strings.Contains(normalized, marker) {
				hits++
			}
		}
		if id == SchedulingNeed {
			if timePattern.MatchString(normalized) {
				hits++
			}
			if weekdayPattern.MatchString(normalized) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}

		confidence := 35 + 15*hits
		if confidence > 95 {
			confidence = 95
		}
		matches = append(matches, Match{
			Intent:     catalog[id],
			Confidence: confidence,
			Source:     SourceCurrentMessage,
			Sources:    []Source{SourceCurrentMessage},
		})
	}
	return matches
}

// Extract combines the current-message scan with a scan over the sender's
// recent history. History-sourced intents are discounted unless the same
// intent repeats across turns, which instead earns a sustained-signal boost.
// When both sources agree the confidences combine, capped at 100.
func Extract(input Input) Analysis {
	current := DetectIntentFromMessage(input.MessageText)
	history := detectFromHistory(input.RecentMessages, input.SenderID)

	byID := make(map[string]Match)
	for _, match := range current {
		byID[match.Intent.ID] = match
	}
	for id, hist := range history {
		if existing, ok := byID[id]; ok {
			combined := existing.Confidence + hist.Confidence/2
			if combined > 100 {
				combined = 100
			}
			existing.Confidence = combined
			existing.Sources = append(existing.Sources, SourceHistory)
			byID[id] = existing
			continue
		}
		byID[id] = hist
	}

	intents := make([]Match, 0, len(byID))
	for _, match := range byID {
		intents = append(intents, match)
	}
	sort.SliceStable(intents, func(i, j int) bool {
		if intents[i].Confidence != intents[j].Confidence {
			return intents[i].Confidence > intents[j].Confidence
		}
		return catalogRank(intents[i].Intent.ID) < catalogRank(intents[j].Intent.ID)
	})

	analysis := Analysis{Intents: intents}
	if len(intents) > 0 {
		analysis.PrimaryIntent = &intents[0]
	}
	return analysis
}

// detectFromHistory scans the sender's recent turns and returns the adjusted
// best match per intent id.
func detectFromHistory(recent []chat.Message, senderID string) map[string]Match {
	var own []chat.Message
	for _, msg := range recent {
		if msg.Sender == senderID {
			own = append(own, msg)
		}
	}
	if len(own) > historyWindow {
		own = own[len(own)-historyWindow:]
	}

	type tally struct {
		best  int
		turns int
	}
	counts := make(map[string]tally)
	for _, msg := range own {
		for _, match := range DetectIntentFromMessage(msg.Text) {
			entry := counts[match.Intent.ID]
			if match.Confidence > entry.best {
				entry.best = match.Confidence
			}
			entry.turns++
			counts[match.Intent.ID] = entry
		}
	}

	out := make(map[string]Match, len(counts))
	for id, entry := range counts {
		confidence := entry.best / 2
		if entry.turns >= 2 {
			// Sustained, repeated signal: reward the persistent goal instead
			// of discounting it.
			confidence = entry.best*4/5 + 10
		}
		if confidence > 100 {
			confidence = 100
		}
		out[id] = Match{
			Intent:     catalog[id],
			Confidence: confidence,
			Source:     SourceHistory,
			Sources:    []Source{SourceHistory},
		}
	}
	return out
}
