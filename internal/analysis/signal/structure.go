package signal

import (
	"fmt"
	"strings"
)

// Sentence shape classifications.
type SentenceType string

const (
	SentenceStatement   SentenceType = "statement"
	SentenceQuestion    SentenceType = "question"
	SentenceCommand     SentenceType = "command"
	SentenceExclamation SentenceType = "exclamation"
)

// Addressee is who the message is grammatically aimed at.
type Addressee string

const (
	AddresseeRecipient Addressee = "recipient"
	AddresseeSelf      Addressee = "self"
	AddresseeBoth      Addressee = "both"
	AddresseeThird     Addressee = "third_party"
)

// Tense is the dominant time frame of the message.
type Tense string

const (
	TensePast    Tense = "past"
	TensePresent Tense = "present"
	TenseFuture  Tense = "future"
)

// StructureResult captures the grammatical shape of a message along with the
// structural axioms it fired.
type StructureResult struct {
	Valid        bool         `json:"valid"`
	SentenceType SentenceType `json:"sentenceType"`
	Addressee    Addressee    `json:"addressee"`
	Tense        Tense        `json:"tense"`
	Absolutes    []string     `json:"absolutes,omitempty"`
	Hedges       []string     `json:"hedges,omitempty"`
	Axioms       []Axiom      `json:"-"`
}

var insultMarkers = []string{
	"idiot", "stupid", "moron", "pathetic", "useless", "loser", "jerk",
	"asshole", "bitch", "worthless", "disgusting",
}

var profanityMarkers = []string{
	"fuck you", "screw you", "go to hell", "shut up", "shut your",
}

var ultimatumMarkers = []string{
	"or else", "you'll regret", "you will regret", "last warning",
	"my lawyer", "see you in court", "i'll make sure you", "if you don't",
	"this is your last chance",
}

var conditionalThreatMarkers = []string{
	"if you keep", "if this continues", "don't make me", "you don't want to find out",
}

var dismissalMarkers = []string{
	"whatever", "i'm done talking", "not my problem", "calm down",
	"you're overreacting", "get over it", "drop it", "i don't care what you",
}

var guiltMarkers = []string{
	"after everything i've done", "after all i've done", "you owe me",
	"if you cared", "if you really loved", "i sacrificed", "i gave up everything",
}

var commandLeads = []string{
	"stop ", "don't ", "do not ", "give ", "send ", "bring ", "leave ",
	"answer ", "listen ", "get ",
}

var futureMarkers = []string{"will", "going to", "gonna", "tomorrow", "next "}
var pastMarkers = []string{"was", "were", "did", "had", "yesterday", "last "}

// DetectStructure classifies sentence type, addressee, and tense, and fires
// the structural axioms downstream pattern analysis keys on.
func DetectStructure(text string) StructureResult {
	trimmed := strings.TrimSpace(text)
	normalized := normalize(text)
	if normalized == "" {
		return StructureResult{}
	}

	result := StructureResult{
		Valid:        true,
		SentenceType: SentenceStatement,
		Addressee:    AddresseeThird,
		Tense:        TensePresent,
		Absolutes:    containsAny(normalized, absoluteMarkers),
		Hedges:       containsAny(normalized, hedgeMarkers),
	}

	switch {
	case strings.HasSuffix(trimmed, "?"):
		result.SentenceType = SentenceQuestion
	case strings.HasSuffix(trimmed, "!"):
		result.SentenceType = SentenceExclamation
	default:
		for _, lead := range commandLeads {
			if strings.HasPrefix(normalized, lead) {
				result.SentenceType = SentenceCommand
				break
			}
		}
	}

	second := strings.Contains(normalized, "you")
	first := strings.Contains(normalized, "i ") || strings.Contains(normalized, "i'") ||
		strings.HasPrefix(normalized, "i") || strings.Contains(normalized, " we ") ||
		strings.HasPrefix(normalized, "we ")
	switch {
	case second && first:
		result.Addressee = AddresseeBoth
	case second:
		result.Addressee = AddresseeRecipient
	case first:
		result.Addressee = AddresseeSelf
	}

	if len(containsAny(normalized, futureMarkers)) > 0 {
		result.Tense = TenseFuture
	} else if len(containsAny(normalized, pastMarkers)) > 0 {
		result.Tense = TensePast
	}

	if second && len(containsAny(normalized, insultMarkers)) > 0 {
		result.Axioms = append(result.Axioms, Axiom{
			ID: "direct_insult", Name: "direct insult at the recipient",
			Category: CategoryDirectHostility, Confidence: 90,
		})
	}
	if len(containsAny(normalized, profanityMarkers)) > 0 {
		result.Axioms = append(result.Axioms, Axiom{
			ID: "hostile_profanity", Name: "profanity aimed at the recipient",
			Category: CategoryDirectHostility, Confidence: 85,
		})
	}
	if len(containsAny(normalized, ultimatumMarkers)) > 0 {
		result.Axioms = append(result.Axioms, Axiom{
			ID: "threat_ultimatum", Name: "threat or ultimatum",
			Category: CategoryEscalation, Confidence: 85,
		})
	}
	if len(containsAny(normalized, conditionalThreatMarkers)) > 0 {
		result.Axioms = append(result.Axioms, Axiom{
			ID: "conditional_threat", Name: "conditional threat",
			Category: CategoryEscalation, Confidence: 72,
		})
	}
	if len(containsAny(normalized, dismissalMarkers)) > 0 {
		result.Axioms = append(result.Axioms, Axiom{
			ID: "dismissal_marker", Name: "dismissal of the recipient's concern",
			Category: CategoryDismissal, Confidence: 70,
		})
	}
	if len(containsAny(normalized, guiltMarkers)) > 0 {
		result.Axioms = append(result.Axioms, Axiom{
			ID: "guilt_appeal", Name: "appeal to obligation or guilt",
			Category: CategoryGuilt, Confidence: 72,
		})
	}

	return result
}

func (r StructureResult) Summarize() []string {
	if !r.Valid {
		return nil
	}
	lines := []string{
		fmt.Sprintf("sentence type is %s, addressed to %s, %s tense", r.SentenceType, r.Addressee, r.Tense),
	}
	if len(r.Absolutes) > 0 {
		lines = append(lines, fmt.Sprintf("absolute terms fired: %s", strings.Join(r.Absolutes, ", ")))
	}
	if len(r.Hedges) > 0 {
		lines = append(lines, fmt.Sprintf("hedging phrases fired: %s", strings.Join(r.Hedges, ", ")))
	}
	return lines
}
