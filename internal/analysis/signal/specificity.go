package signal

import "fmt"

// SpecificityResult distinguishes vague complaints and requests from concrete
// ones that name a behavior, time, or object.
type SpecificityResult struct {
	Valid      bool     `json:"valid"`
	Vague      bool     `json:"vague"`
	Concrete   bool     `json:"concrete"`
	VagueTerms []string `json:"vagueTerms,omitempty"`
}

var vagueMarkers = []string{
	"do better", "be better", "step up", "get it together", "figure it out",
	"be more", "try harder", "stop being", "act like", "whatever", "stuff",
	"things", "somehow", "something needs to change", "this isn't working",
}

var concreteMarkers = []string{
	"at 3", "at 4", "at 5", "at 6", "at 7", "at 8", "pm", "am", "o'clock",
	"by friday", "by monday", "by tomorrow", "the form", "the bag", "the jacket",
	"the homework", "the medication", "school", "practice", "appointment",
	"pickup", "pick up", "drop off", "drop-off",
}

// DetectSpecificity scans for vague versus concrete complaint or request
// language.
func DetectSpecificity(text string) SpecificityResult {
	normalized := normalize(text)
	if normalized == "" {
		return SpecificityResult{}
	}

	vague := containsAny(normalized, vagueMarkers)
	concrete := containsAny(normalized, concreteMarkers)

	return SpecificityResult{
		Valid:      true,
		Vague:      len(vague) > 0,
		Concrete:   len(concrete) > 0,
		VagueTerms: vague,
	}
}

func (r SpecificityResult) Summarize() []string {
	if !r.Valid {
		return nil
	}
	var lines []string
	if r.Vague {
		lines = append(lines, fmt.Sprintf("asks for change in vague terms (%d vague phrase(s))", len(r.VagueTerms)))
	}
	if r.Concrete {
		lines = append(lines, "names a concrete time, object, or activity")
	}
	return lines
}
