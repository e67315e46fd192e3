package signal

import "fmt"

// EvaluativeResult distinguishes character or competence judgments from
// neutral descriptions of actions.
type EvaluativeResult struct {
	Valid       bool     `json:"valid"`
	Evaluative  bool     `json:"evaluative"`
	Descriptive bool     `json:"descriptive"`
	Judgments   []string `json:"judgments,omitempty"`
}

var judgmentMarkers = []string{
	"you're a", "you are a", "you're such a", "you are such a", "you're so",
	"idiot", "stupid", "lazy", "selfish", "useless", "pathetic", "terrible",
	"awful", "horrible", "incompetent", "irresponsible", "liar", "crazy",
	"ridiculous", "bad parent", "bad mother", "bad father", "worst",
}

var descriptiveMarkers = []string{
	"you said", "you did", "you went", "you left", "you arrived", "you were late",
	"you forgot", "you missed", "you brought", "you picked up", "you dropped off",
	"i noticed", "i saw",
}

// DetectEvaluative scans for evaluative language versus neutral action
// description.
func DetectEvaluative(text string) EvaluativeResult {
	normalized := normalize(text)
	if normalized == "" {
		return EvaluativeResult{}
	}

	judgments := containsAny(normalized, judgmentMarkers)
	descriptive := containsAny(normalized, descriptiveMarkers)

	return EvaluativeResult{
		Valid:       true,
		Evaluative:  len(judgments) > 0,
		Descriptive: len(descriptive) > 0,
		Judgments:   judgments,
	}
}

func (r EvaluativeResult) Summarize() []string {
	if !r.Valid {
		return nil
	}
	var lines []string
	if r.Evaluative {
		lines = append(lines, fmt.Sprintf("contains character or competence judgments (%d term(s))", len(r.Judgments)))
	}
	if r.Descriptive {
		lines = append(lines, "describes concrete actions")
	}
	return lines
}
