// Package pattern maps structural axioms and raw text onto a static catalog
// of named behavioral patterns.
package pattern

// BehavioralPattern is a static catalog entry. Behavior is the phrase used in
// explanations ("This <behavior> won't help you ..."); Alternative is the
// replacement move suggested to the sender.
type BehavioralPattern struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Behavior    string `json:"behavior"`
	Alternative string `json:"alternative"`
}

// Pattern ids. Catalog order doubles as the tiebreak when two matches carry
// equal confidence.
const (
	CharacterAttack        = "CHARACTER_ATTACK"
	MakingAssumptions      = "MAKING_ASSUMPTIONS"
	AvoidingResponsibility = "AVOIDING_RESPONSIBILITY"
	Triangulation          = "TRIANGULATION"
	Escalation             = "ESCALATION"
	Dismissiveness         = "DISMISSIVENESS"
	GuiltTripping          = "GUILT_TRIPPING"
)

var catalogOrder = []string{
	CharacterAttack, MakingAssumptions, AvoidingResponsibility,
	Triangulation, Escalation, Dismissiveness, GuiltTripping,
}

var catalog = map[string]BehavioralPattern{
	CharacterAttack: {
		ID:          CharacterAttack,
		Name:        "Character attack",
		Behavior:    "attack on who they are",
		Alternative: "describe the specific behavior that needs to change",
	},
	MakingAssumptions: {
		ID:          MakingAssumptions,
		Name:        "Making assumptions",
		Behavior:    "claim about what they think or feel",
		Alternative: "ask what they actually intended instead of asserting it",
	},
	AvoidingResponsibility: {
		ID:          AvoidingResponsibility,
		Name:        "Avoiding responsibility",
		Behavior:    "shifting of all blame onto them",
		Alternative: "name your part of the situation before asking for theirs",
	},
	Triangulation: {
		ID:          Triangulation,
		Name:        "Triangulation",
		Behavior:    "routing of the conflict through your child",
		Alternative: "raise the issue with the other parent directly",
	},
	Escalation: {
		ID:          Escalation,
		Name:        "Escalation",
		Behavior:    "threat or ultimatum",
		Alternative: "state the consequence you actually need without the threat",
	},
	Dismissiveness: {
		ID:          Dismissiveness,
		Name:        "Dismissiveness",
		Behavior:    "brushing off of their concern",
		Alternative: "acknowledge the concern even when you disagree with it",
	},
	GuiltTripping: {
		ID:          GuiltTripping,
		Name:        "Guilt tripping",
		Behavior:    "appeal to debt and obligation",
		Alternative: "make the request on its own merits",
	},
}

// axiomPatterns maps a fired structural axiom id to the behavioral pattern it
// evidences and the confidence that mapping carries.
var axiomPatterns = map[string]struct {
	PatternID  string
	Confidence int
}{
	"direct_insult":        {CharacterAttack, 90},
	"hostile_profanity":    {CharacterAttack, 85},
	"child_as_messenger":   {Triangulation, 88},
	"child_alliance_claim": {Triangulation, 80},
	"access_threat":        {Escalation, 90},
	"threat_ultimatum":     {Escalation, 85},
	"conditional_threat":   {Escalation, 72},
	"dismissal_marker":     {Dismissiveness, 70},
	"guilt_appeal":         {GuiltTripping, 72},
}

// GetBehavioralPattern returns the static definition for id, or nil when the
// id is not in the catalog.
func GetBehavioralPattern(id string) *BehavioralPattern {
	if def, ok := catalog[id]; ok {
		return &def
	}
	return nil
}

// ListAllBehavioralPatterns enumerates the catalog in its declared order.
func ListAllBehavioralPatterns() []BehavioralPattern {
	out := make([]BehavioralPattern, 0, len(catalogOrder))
	for _, id := range catalogOrder {
		out = append(out, catalog[id])
	}
	return out
}

func catalogRank(id string) int {
	for i, candidate := range catalogOrder {
		if candidate == id {
			return i
		}
	}
	return len(catalogOrder)
}
