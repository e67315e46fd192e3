package signal

import "fmt"

// HedgingResult reports over-explaining or apologetic framing versus direct
// statements.
type HedgingResult struct {
	Valid  bool     `json:"valid"`
	Hedged bool     `json:"hedged"`
	Direct bool     `json:"direct"`
	Hedges []string `json:"hedges,omitempty"`
}

var hedgeMarkers = []string{
	"sorry to bother", "i'm sorry but", "sorry if", "i hate to ask",
	"i just", "just wondering", "maybe", "perhaps", "i guess", "kind of",
	"sort of", "if that's okay", "if it's not too much", "no worries if not",
	"i could be wrong", "it's probably nothing",
}

var directMarkers = []string{
	"i need", "i want", "i expect", "please", "we need to", "you need to",
	"i am asking", "i'm asking",
}

// DetectHedging scans for hedged, apologetic framing versus direct requests.
func DetectHedging(text string) HedgingResult {
	normalized := normalize(text)
	if normalized == "" {
		return HedgingResult{}
	}

	hedges := containsAny(normalized, hedgeMarkers)
	direct := containsAny(normalized, directMarkers)

	return HedgingResult{
		Valid:  true,
		Hedged: len(hedges) > 0,
		Direct: len(direct) > 0,
		Hedges: hedges,
	}
}

func (r HedgingResult) Summarize() []string {
	if !r.Valid {
		return nil
	}
	var lines []string
	if r.Hedged {
		lines = append(lines, fmt.Sprintf("hedges or over-explains (%d hedge(s))", len(r.Hedges)))
	}
	if r.Direct {
		lines = append(lines, "states a request directly")
	}
	return lines
}
