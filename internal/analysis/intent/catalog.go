// Package intent recovers what the sender is actually trying to accomplish,
// from the current message and, when that is too degraded to say, from their
// recent history in the conversation.
package intent

// Category is a static catalog entry. Phrase is the goal phrasing used in
// explanations ("won't help you <phrase>").
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phrase string `json:"phrase"`
}

// Intent ids, in catalog (tiebreak) order.
const (
	SchedulingNeed      = "SCHEDULING_NEED"
	InformationRequest  = "INFORMATION_REQUEST"
	ActionRequest       = "ACTION_REQUEST"
	CollaborationInvite = "COLLABORATION_INVITE"
	ChildConcern        = "CHILD_CONCERN"
	BoundarySetting     = "BOUNDARY_SETTING"
)

var catalogOrder = []string{
	SchedulingNeed, InformationRequest, ActionRequest,
	CollaborationInvite, ChildConcern, BoundarySetting,
}

var catalog = map[string]Category{
	SchedulingNeed: {
		ID:     SchedulingNeed,
		Name:   "Scheduling need",
		Phrase: "get the schedule sorted out",
	},
	InformationRequest: {
		ID:     InformationRequest,
		Name:   "Information request",
		Phrase: "get the information you need",
	},
	ActionRequest: {
		ID:     ActionRequest,
		Name:   "Action request",
		Phrase: "get them to follow through",
	},
	CollaborationInvite: {
		ID:     CollaborationInvite,
		Name:   "Collaboration invitation",
		Phrase: "work this out together",
	},
	ChildConcern: {
		ID:     ChildConcern,
		Name:   "Child concern",
		Phrase: "address your concern about your child",
	},
	BoundarySetting: {
		ID:     BoundarySetting,
		Name:   "Boundary setting",
		Phrase: "set a boundary that holds",
	},
}

// GetIntentCategory returns the static definition for id, or nil when the id
// is not in the catalog.
func GetIntentCategory(id string) *Category {
	if def, ok := catalog[id]; ok {
		return &def
	}
	return nil
}

// ListAllIntentCategories enumerates the catalog in declared order.
func ListAllIntentCategories() []Category {
	out := make([]Category, 0, len(catalogOrder))
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
