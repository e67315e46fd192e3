package signal

import "fmt"

// FramingResult reports whether a message frames behavior in global absolutes
// or refers to something specific and bounded.
type FramingResult struct {
	Valid     bool     `json:"valid"`
	Global    bool     `json:"global"`
	Specific  bool     `json:"specific"`
	Absolutes []string `json:"absolutes,omitempty"`
}

var absoluteMarkers = []string{
	"always", "never", "every time", "every single time", "all the time",
	"constantly", "everyone", "no one", "nothing", "everything", "forever",
	"not once", "without fail",
}

var specificMarkers = []string{
	"yesterday", "today", "tonight", "this morning", "this afternoon",
	"this evening", "last night", "last week", "on monday", "on tuesday",
	"on wednesday", "on thursday", "on friday", "on saturday", "on sunday",
	"at the", "when you", "when i", "this time", "that time",
}

// DetectFraming scans for global absolutes versus concrete behavior
// references. Empty input yields an invalid result.
func DetectFraming(text string) FramingResult {
	normalized := normalize(text)
	if normalized == "" {
		return FramingResult{}
	}

	absolutes := containsAny(normalized, absoluteMarkers)
	specifics := containsAny(normalized, specificMarkers)

	return FramingResult{
		Valid:     true,
		Global:    len(absolutes) > 0,
		Specific:  len(specifics) > 0,
		Absolutes: absolutes,
	}
}

// Summarize turns framing flags into factual observations.
func (r FramingResult) Summarize() []string {
	if !r.Valid {
		return nil
	}
	var lines []string
	if r.Global {
		lines = append(lines, fmt.Sprintf("uses absolute framing (%d absolute term(s))", len(r.Absolutes)))
	}
	if r.Specific {
		lines = append(lines, "refers to a specific time or event")
	}
	if !r.Global && !r.Specific {
		lines = append(lines, "framing is neither absolute nor tied to a specific event")
	}
	return lines
}
