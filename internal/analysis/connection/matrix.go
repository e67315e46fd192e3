package connection

import (
	"github.com/commonground-app/backend/internal/analysis/intent"
	"github.com/commonground-app/backend/internal/analysis/pattern"
)

type pairKey struct {
	PatternID string
	IntentID  string
}

type curatedEntry struct {
	// Reason completes the sentence "This <behavior> won't help you
	// <goal>, because <reason>".
	Reason      string
	Alternative string
}

// curated is the hand-authored explanation matrix. Add a row to extend; pairs
// without a row fall back to a generic synthesis.
var curated = map[pairKey]curatedEntry{
	{pattern.CharacterAttack, intent.SchedulingNeed}: {
		Reason:      "they'll defend themselves instead of answering about the schedule",
		Alternative: "ask the scheduling question on its own, without the judgment attached",
	},
	{pattern.CharacterAttack, intent.ActionRequest}: {
		Reason:      "a person who feels attacked digs in rather than follows through",
		Alternative: "name the specific thing you need done and by when",
	},
	{pattern.CharacterAttack, intent.ChildConcern}: {
		Reason:      "the conversation becomes about the insult, not about your child",
		Alternative: "describe what you observed with your child and what worries you",
	},
	{pattern.MakingAssumptions, intent.SchedulingNeed}: {
		Reason:      "arguing about motives stalls the calendar conversation you actually need",
		Alternative: "state the time conflict and ask directly what works",
	},
	{pattern.MakingAssumptions, intent.InformationRequest}: {
		Reason:      "asserting what they think invites a denial instead of an answer",
		Alternative: "ask the question without the conclusion attached",
	},
	{pattern.MakingAssumptions, intent.CollaborationInvite}: {
		Reason:      "nobody joins a plan that starts by telling them what they secretly want",
		Alternative: "invite their view first, then propose the joint plan",
	},
	{pattern.AvoidingResponsibility, intent.ActionRequest}: {
		Reason:      "assigning all the blame gives them a reason to refuse the request",
		Alternative: "own your part in one sentence, then make the ask",
	},
	{pattern.AvoidingResponsibility, intent.CollaborationInvite}: {
		Reason:      "a joint fix can't start from the premise that only they broke it",
		Alternative: "frame the problem as shared and ask for their half of the fix",
	},
	{pattern.Triangulation, intent.SchedulingNeed}: {
		Reason:      "messages routed through your child arrive distorted and put them in the middle",
		Alternative: "send the scheduling request to the other parent yourself",
	},
	{pattern.Triangulation, intent.ChildConcern}: {
		Reason:      "using your child as evidence makes the concern feel like an ambush",
		Alternative: "raise what you noticed parent-to-parent, without quoting the child",
	},
	{pattern.Escalation, intent.SchedulingNeed}: {
		Reason:      "a threat freezes the negotiation you need to keep moving",
		Alternative: "say which dates work and which don't, and leave the ultimatum out",
	},
	{pattern.Escalation, intent.BoundarySetting}: {
		Reason:      "threats invite counter-threats; boundaries hold when they're stated, not enforced by menace",
		Alternative: "state the boundary and what you will do, not what you'll do to them",
	},
	{pattern.Dismissiveness, intent.BoundarySetting}: {
		Reason:      "brushing them off reads as contempt, which erodes the boundary you're setting",
		Alternative: "acknowledge their point in one line, then restate your boundary",
	},
	{pattern.Dismissiveness, intent.InformationRequest}: {
		Reason:      "dismissing their question guarantees the same question comes back louder",
		Alternative: "answer the part you can and say when you'll answer the rest",
	},
	{pattern.GuiltTripping, intent.ActionRequest}: {
		Reason:      "a request wrapped in debt gets resented, delayed, or refused",
		Alternative: "ask plainly; let the request stand on its own merits",
	},
	{pattern.GuiltTripping, intent.CollaborationInvite}: {
		Reason:      "obligation is a poor foundation for the cooperation you're inviting",
		Alternative: "describe the shared benefit instead of the debt",
	},
}
