package mediation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	chat "github.com/commonground-app/backend/internal/model/chat"
)

// ComposerConfig controls the optional model-backed composition step.
type ComposerConfig struct {
	Enabled bool
}

// ComposeInput is the assembled context the composer writes from: the factual
// observations from the detectors, the connection explanation, and the goal
// phrase to validate.
type ComposeInput struct {
	Observations []string
	Explanation  string
	Alternative  string
	IntentPhrase string
}

// Composer drafts the intervention payload with a chat model when one is
// configured. Callers always run the result through enforce; a disabled or
// failing composer is reported as an error and the deterministic composition
// takes over.
type Composer struct {
	enabled bool
	chain   compose.Runnable[map[string]any, *schema.Message]
}

// NewComposer compiles the prompt chain. chatModel may be nil, which leaves
// the composer disabled.
func NewComposer(ctx context.Context, chatModel model.ChatModel, cfg ComposerConfig) (*Composer, error) {
	c := &Composer{enabled: cfg.Enabled && chatModel != nil}
	if !c.enabled {
		return c, nil
	}

	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(composerSystemPrompt),
		schema.UserMessage(composerUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile intervention composer chain: %w", err)
	}
	c.chain = runnable
	return c, nil
}

// Enabled reports whether the model path is available.
func (c *Composer) Enabled() bool {
	return c != nil && c.enabled && c.chain != nil
}

// Compose invokes the model and parses its JSON payload. Any missing required
// field is an error here; the caller decides what replaces it.
func (c *Composer) Compose(ctx context.Context, input ComposeInput) (chat.Intervention, error) {
	if !c.Enabled() {
		return chat.Intervention{}, fmt.Errorf("composer disabled")
	}

	msg, err := c.chain.Invoke(ctx, map[string]any{
		"observations": strings.Join(input.Observations, "\n"),
		"explanation":  input.Explanation,
		"alternative":  input.Alternative,
		"intent":       input.IntentPhrase,
	})
	if err != nil {
		return chat.Intervention{}, fmt.Errorf("composer invoke: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return chat.Intervention{}, fmt.Errorf("composer returned empty content")
	}

	payload, err := parseComposerOutput(msg.Content)
	if err != nil {
		return chat.Intervention{}, fmt.Errorf("composer output parse: %w", err)
	}

	intervention := chat.Intervention{
		Validation: strings.TrimSpace(payload.Validation),
		Rewrite1:   strings.TrimSpace(payload.Rewrite1),
		Rewrite2:   strings.TrimSpace(payload.Rewrite2),
		Insight:    strings.TrimSpace(payload.Insight),
	}
	if intervention.Validation == "" || intervention.Rewrite1 == "" || intervention.Rewrite2 == "" {
		return chat.Intervention{}, fmt.Errorf("composer payload missing required fields")
	}
	return intervention, nil
}

type composerPayload struct {
	Validation string `json:"validation"`
	Rewrite1   string `json:"rewrite1"`
	Rewrite2   string `json:"rewrite2"`
	Insight    string `json:"insight"`
}

// parseComposerOutput extracts the first JSON object from the model reply.
func parseComposerOutput(content string) (*composerPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &composerPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

const composerSystemPrompt = "You help a co-parent rephrase a message that is about to be blocked. " +
	"You receive factual observations about the message, an explanation of why its current form works against the sender's goal, and the sender's underlying goal. " +
	"Return only a JSON object with fields: validation (one sentence acknowledging the sender's legitimate goal), rewrite1 and rewrite2 (two alternative messages written in the sender's own first-person voice, ready to send), and insight (one short sentence on what makes the rewrites work). " +
	"Rewrites must stay in the sender's perspective, must not apologize on the recipient's behalf, and must not invent facts."

const composerUserPrompt = "Observations about the message:\n{observations}\n\n" +
	"Why the current form works against the sender:\n{explanation}\n\n" +
	"Suggested alternative approach:\n{alternative}\n\n" +
	"The sender's goal: {intent}\n\nReturn the JSON."
