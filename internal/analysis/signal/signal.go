// Package signal holds the linguistic evidence detectors that feed the
// mediation pipeline. Every detector is a pure function over message text:
// no shared state, no ordering requirements, safe to run in parallel.
package signal

import "strings"

// Axiom is a structural signal fired while scanning a message. The behavioral
// pattern analyzer maps axioms to named patterns via a static table.
type Axiom struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Confidence int    `json:"confidence"`
}

// Axiom categories.
const (
	CategoryDirectHostility       = "direct_hostility"
	CategoryIndirectCommunication = "indirect_communication"
	CategoryEscalation            = "escalation"
	CategoryDismissal             = "dismissal"
	CategoryGuilt                 = "guilt"
)

// Report bundles every detector result for one message together with the
// axioms they fired. Computed fresh per message, never stored.
type Report struct {
	Framing     FramingResult
	Evaluative  EvaluativeResult
	Hedging     HedgingResult
	Specificity SpecificityResult
	Focus       FocusResult
	Child       ChildResult
	Structure   StructureResult
	Axioms      []Axiom
}

// AuxContext carries the auxiliary inputs some detectors need beyond the raw
// text: known child names for the child-reference detector.
type AuxContext struct {
	ChildNames []string
}

// Scan runs every detector over text and collects the fired axioms.
func Scan(text string, aux AuxContext) Report {
	report := Report{
		Framing:     DetectFraming(text),
		Evaluative:  DetectEvaluative(text),
		Hedging:     DetectHedging(text),
		Specificity: DetectSpecificity(text),
		Focus:       DetectFocus(text),
		Child:       DetectChildReference(text, aux),
		Structure:   DetectStructure(text),
	}
	report.Axioms = append(report.Axioms, report.Structure.Axioms...)
	report.Axioms = append(report.Axioms, report.Child.Axioms...)
	return report
}

// Summarize renders every detector observation as short factual lines for
// prompt assembly. Observations stay descriptive; no diagnosis, no emotion.
func (r Report) Summarize() []string {
	var lines []string
	lines = append(lines, r.Framing.Summarize()...)
	lines = append(lines, r.Evaluative.Summarize()...)
	lines = append(lines, r.Hedging.Summarize()...)
	lines = append(lines, r.Specificity.Summarize()...)
	lines = append(lines, r.Focus.Summarize()...)
	lines = append(lines, r.Child.Summarize()...)
	lines = append(lines, r.Structure.Summarize()...)
	return lines
}

// normalize lowercases and trims text for marker scanning. Detectors treat a
// normalized empty string as invalid input.
func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// containsAny returns the markers present in normalized text, preserving
// marker order.
func containsAny(normalized string, markers []string) []string {
	var hits []string
	for _, m := range markers {
		if m == "" {
			continue
		}
		if strings.Contains(normalized, m) {
			hits = append(hits, m)
		}
	}
	return hits
}
