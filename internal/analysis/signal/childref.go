package signal

import "strings"

// ChildResult reports how a message involves a child: plain mention, use as a
// messenger, leverage in an argument, wellbeing citation, pulling the child
// into the conflict, or quoting the child directly.
type ChildResult struct {
	Valid          bool    `json:"valid"`
	Mentioned      bool    `json:"mentioned"`
	Messenger      bool    `json:"messenger"`
	Weaponized     bool    `json:"weaponized"`
	WellbeingCited bool    `json:"wellbeingCited"`
	Triangulated   bool    `json:"triangulated"`
	Quoted         bool    `json:"quoted"`
	Axioms         []Axiom `json:"-"`
}

var childTerms = []string{
	"our son", "our daughter", "our child", "our kids", "the kids", "the children",
	"my son", "my daughter", "he told me", "she told me",
}

var messengerMarkers = []string{
	"tell him yourself", "tell her yourself", "ask him to tell you",
	"ask her to tell you", "i told him to tell you", "i told her to tell you",
	"have him ask", "have her ask", "he can tell you", "she can tell you",
	"sent the message with", "passed along through",
}

var weaponMarkers = []string{
	"won't see the kids", "you'll never see", "keep them from you",
	"they don't want to see you", "i'll take the kids", "lose custody",
	"the judge will hear", "full custody",
}

var wellbeingMarkers = []string{
	"not good for them", "bad for the kids", "hurting them", "upsets them",
	"they were crying", "for their sake", "their wellbeing", "what's best for them",
	"what's best for him", "what's best for her",
}

var triangulationMarkers = []string{
	"even the kids think", "he agrees with me", "she agrees with me",
	"ask them who", "they know whose fault", "the kids know what you",
}

// DetectChildReference scans for child-involvement patterns. The aux context
// supplies known child names so messages that use a name instead of a kinship
// term still register.
func DetectChildReference(text string, aux AuxContext) ChildResult {
	normalized := normalize(text)
	if normalized == "" {
		return ChildResult{}
	}

	result := ChildResult{Valid: true}

	result.Mentioned = len(containsAny(normalized, childTerms)) > 0
	if !result.Mentioned {
		for _, name := range aux.ChildNames {
			name = strings.ToLower(strings.TrimSpace(name))
			if name != "" && strings.Contains(normalized, name) {
				result.Mentioned = true
				break
			}
		}
	}

	result.Messenger = len(containsAny(normalized, messengerMarkers)) > 0
	result.Weaponized = len(containsAny(normalized, weaponMarkers)) > 0
	result.WellbeingCited = len(containsAny(normalized, wellbeingMarkers)) > 0
	result.Triangulated = len(containsAny(normalized, triangulationMarkers)) > 0
	result.Quoted = result.Mentioned && (strings.Contains(normalized, "he said") ||
		strings.Contains(normalized, "she said") || strings.Contains(text, "\""))

	if result.Messenger {
		result.Axioms = append(result.Axioms, Axiom{
			ID: "child_as_messenger", Name: "child used as messenger",
			Category: CategoryIndirectCommunication, Confidence: 88,
		})
	}
	if result.Triangulated {
		result.Axioms = append(result.Axioms, Axiom{
			ID: "child_alliance_claim", Name: "child cited as taking a side",
			Category: CategoryIndirectCommunication, Confidence: 80,
		})
	}
	if result.Weaponized {
		result.Axioms = append(result.Axioms, Axiom{
			ID: "access_threat", Name: "threat involving access to the child",
			Category: CategoryEscalation, Confidence: 90,
		})
	}

	return result
}

func (r ChildResult) Summarize() []string {
	if !r.Valid {
		return nil
	}
	var lines []string
	if r.Mentioned {
		lines = append(lines, "mentions the child")
	}
	if r.Messenger {
		lines = append(lines, "routes communication through the child")
	}
	if r.Weaponized {
		lines = append(lines, "uses access to the child as leverage")
	}
	if r.WellbeingCited {
		lines = append(lines, "cites the child's wellbeing")
	}
	if r.Triangulated {
		lines = append(lines, "claims the child has taken a side")
	}
	if r.Quoted {
		lines = append(lines, "quotes the child directly")
	}
	return lines
}
