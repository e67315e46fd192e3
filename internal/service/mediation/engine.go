package mediation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/commonground-app/backend/internal/analysis/connection"
	"github.com/commonground-app/backend/internal/analysis/intent"
	"github.com/commonground-app/backend/internal/analysis/pattern"
	"github.com/commonground-app/backend/internal/analysis/signal"
	model "github.com/commonground-app/backend/internal/model/chat"
	"github.com/commonground-app/backend/internal/store/graph"
	"github.com/commonground-app/backend/internal/store/profile"
)

// Confidence thresholds for the action choice. A repeat-intervention window
// pushes medium risk up a band.
const (
	interveneThreshold = 78
	commentThreshold   = 55
	repeatWindow       = 24 * time.Hour
	repeatLimit        = 3
)

// sideEffectTimeout bounds the fire-and-forget recording so a slow store
// cannot pile up goroutines.
const sideEffectTimeout = 5 * time.Second

// Request is one message under mediation, with the conversation context the
// history-aware stages need.
type Request struct {
	Room    model.Room
	Message model.Message
	Recent  []model.Message
	Aux     signal.AuxContext
}

// Engine runs the pipeline and owns the per-room policy state. Side-effect
// stores are optional; a nil store simply skips that recording.
type Engine struct {
	composer *Composer
	profiles profile.Store
	graph    graph.Store
	policy   *policyLog
	log      *zap.Logger
}

// NewEngine wires the decision engine. composer may be nil; profiles and
// graphStore may be nil when those collaborators are not configured.
func NewEngine(composer *Composer, profiles profile.Store, graphStore graph.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		composer: composer,
		profiles: profiles,
		graph:    graphStore,
		policy:   newPolicyLog(),
		log:      log,
	}
}

// Mediate runs the full pipeline. It never fails: every internal error path
// degrades to a defined output, because a mediation crash must not take the
// message down with it.
func (e *Engine) Mediate(ctx context.Context, req Request) Decision {
	if strings.TrimSpace(req.Message.Text) == "" {
		return Decision{Action: StaySilent{}, RiskLevel: RiskLow, Emotional: "neutral"}
	}

	report := signal.Scan(req.Message.Text, req.Aux)
	patterns := pattern.Analyze(&pattern.ParsedMessage{Text: req.Message.Text, Axioms: report.Axioms})
	intents := intent.Extract(intent.Input{
		MessageText:    req.Message.Text,
		RecentMessages: req.Recent,
		SenderID:       req.Message.Sender,
	})
	connections := connection.ConnectAll(patterns, intents)

	decision := Decision{
		Report:     report,
		Patterns:   patterns,
		Intents:    intents,
		Connection: connections.PrimaryConnection,
		Emotional:  emotionalState(report),
	}

	decision.RiskLevel, decision.Action = e.choose(ctx, req, decision)

	e.policy.record(req.Room.ID, policyEntry{
		Timestamp: time.Now().UTC(),
		Action:    decision.Action.Kind(),
		RiskLevel: decision.RiskLevel,
		Emotional: decision.Emotional,
	})
	e.recordAsync(req, decision)

	return decision
}

func (e *Engine) choose(ctx context.Context, req Request, decision Decision) (RiskLevel, Action) {
	primary := decision.Patterns.PrimaryPattern
	if primary == nil {
		return RiskLow, StaySilent{}
	}

	confidence := primary.Confidence
	risk := RiskLow
	switch {
	case confidence >= interveneThreshold:
		risk = RiskHigh
	case confidence >= commentThreshold:
		risk = RiskMedium
	}

	// A run of recent interventions in the room means a medium-risk message
	// is part of an active conflict, not an isolated slip.
	if risk == RiskMedium && e.policy.recentInterventions(req.Room.ID, repeatWindow) >= repeatLimit {
		risk = RiskHigh
	}

	switch risk {
	case RiskHigh:
		if e.consentWithheld(ctx, req.Message.Sender) {
			return risk, Comment{Note: e.commentNote(decision, primary)}
		}
		return risk, Intervene{
			Intervention: e.composeIntervention(ctx, decision),
			PatternID:    primary.Pattern.ID,
		}
	case RiskMedium:
		return risk, Comment{Note: e.commentNote(decision, primary)}
	default:
		return risk, StaySilent{}
	}
}

func (e *Engine) commentNote(decision Decision, primary *pattern.Match) string {
	if note := connection.Format(decision.Connection); note != "" {
		return note
	}
	return "Consider rephrasing: " + primary.Pattern.Alternative + "."
}

// consentWithheld reports whether the sender has explicitly opted out of
// interventions. Unknown profiles and store failures default to mediated.
func (e *Engine) consentWithheld(ctx context.Context, senderID string) bool {
	if e.profiles == nil {
		return false
	}
	p, err := e.profiles.Get(ctx, senderID)
	if err != nil {
		return false
	}
	return !p.MediationConsent
}

// composeIntervention prefers the model-backed draft and falls back to the
// deterministic composition; either way the result passes through enforce, so
// a malformed payload can never reach the sender.
func (e *Engine) composeIntervention(ctx context.Context, decision Decision) model.Intervention {
	if e.composer.Enabled() {
		input := ComposeInput{Observations: decision.Report.Summarize()}
		if decision.Connection != nil {
			input.Explanation = decision.Connection.Explanation
			input.Alternative = decision.Connection.Alternative
			input.IntentPhrase = decision.Connection.Intent.Intent.Phrase
		}

		composed, err := e.composer.Compose(ctx, input)
		if err == nil {
			return enforce(composed, decision.Report)
		}
		e.log.Warn("intervention composer failed, using deterministic composition", zap.Error(err))
	}

	return enforce(composeDeterministic(decision.Connection, decision.Report), decision.Report)
}

// recordAsync performs the three best-effort recordings off the response
// path. Failures are logged and swallowed; they never affect the decision
// already made.
func (e *Engine) recordAsync(req Request, decision Decision) {
	receiver := req.Room.Other(req.Message.Sender)
	kind := decision.Action.Kind()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if e.graph != nil {
			if err := e.graph.RecordMessage(ctx, req.Message.Sender, receiver, req.Room.ID); err != nil {
				e.log.Warn("graph message recording failed",
					zap.String("room", req.Room.ID), zap.Error(err))
			}
		}

		if kind != KindIntervene {
			return
		}
		patternID := ""
		if decision.Patterns.PrimaryPattern != nil {
			patternID = decision.Patterns.PrimaryPattern.Pattern.ID
		}
		if e.profiles != nil {
			if err := e.profiles.RecordIntervention(ctx, req.Message.Sender, patternID); err != nil {
				e.log.Warn("profile intervention recording failed",
					zap.String("sender", req.Message.Sender), zap.Error(err))
			}
		}
		if e.graph != nil {
			if err := e.graph.RecordIntervention(ctx, req.Message.Sender, receiver, req.Room.ID, patternID); err != nil {
				e.log.Warn("graph intervention recording failed",
					zap.String("room", req.Room.ID), zap.Error(err))
			}
		}
	}()
}

// emotionalState is a coarse read of the sender's state for the policy log.
func emotionalState(report signal.Report) string {
	for _, axiom := range report.Axioms {
		switch axiom.Category {
		case signal.CategoryDirectHostility:
			return "hostile"
		case signal.CategoryEscalation:
			return "escalated"
		}
	}
	if report.Framing.Global || len(report.Structure.Absolutes) > 0 {
		return "frustrated"
	}
	if report.Hedging.Hedged {
		return "anxious"
	}
	return "neutral"
}
