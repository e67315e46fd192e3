// Package mediation runs the decision pipeline over every outbound message:
// signal detection, pattern and intent analysis, the pattern-intent
// connection, and the final action choice with its safety fallbacks.
package mediation

import (
	"github.com/commonground-app/backend/internal/analysis/connection"
	"github.com/commonground-app/backend/internal/analysis/intent"
	"github.com/commonground-app/backend/internal/analysis/pattern"
	"github.com/commonground-app/backend/internal/analysis/signal"
	model "github.com/commonground-app/backend/internal/model/chat"
)

// ActionKind discriminates the three terminal actions.
type ActionKind string

const (
	KindStaySilent ActionKind = "STAY_SILENT"
	KindComment    ActionKind = "COMMENT"
	KindIntervene  ActionKind = "INTERVENE"
)

// Action is the closed sum over the engine's three outcomes. Each variant
// carries exactly the fields its handler needs, so a missing field is a type
// error rather than a runtime discovery.
type Action interface {
	Kind() ActionKind
}

// StaySilent lets the message through unmodified.
type StaySilent struct{}

func (StaySilent) Kind() ActionKind { return KindStaySilent }

// Comment lets the message through with a non-blocking annotation.
type Comment struct {
	Note string
}

func (Comment) Kind() ActionKind { return KindComment }

// Intervene blocks the message and returns the intervention payload to the
// sender only.
type Intervene struct {
	Intervention model.Intervention
	PatternID    string
}

func (Intervene) Kind() ActionKind { return KindIntervene }

// RiskLevel grades how charged the message is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Decision is the full mediation outcome for one message. The analysis
// fields are derived per message and not retained anywhere else.
type Decision struct {
	Action     Action
	RiskLevel  RiskLevel
	Emotional  string
	Report     signal.Report
	Patterns   pattern.Analysis
	Intents    intent.Analysis
	Connection *connection.Connection
}
