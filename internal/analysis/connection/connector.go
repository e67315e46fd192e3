// Package connection ties the detected behavioral pattern to the sender's
// underlying intent and produces the causal explanation shown to them.
package connection

import (
	"fmt"
	"strings"

	"github.com/commonground-app/backend/internal/analysis/intent"
	"github.com/commonground-app/backend/internal/analysis/pattern"
)

// Source records whether the explanation came from the curated matrix or was
// synthesized generically from the pattern definition.
type Source string

const (
	SourceCurated Source = "curated"
	SourceGeneric Source = "generic"
)

// Connection is the derived pairing of one pattern match with one intent
// match. Recomputed per message, never persisted.
type Connection struct {
	Pattern     pattern.Match `json:"pattern"`
	Intent      intent.Match  `json:"intent"`
	Explanation string        `json:"explanation"`
	Alternative string        `json:"alternative"`
	Source      Source        `json:"source"`
}

// Analysis is the bulk result over the full ranked lists.
type Analysis struct {
	Connections       []Connection `json:"connections"`
	PrimaryConnection *Connection  `json:"primaryConnection"`
	Error             string       `json:"error,omitempty"`
}

// Connect pairs one pattern match with one intent match. Curated entries win;
// otherwise a generic explanation is synthesized from the pattern's own
// alternative.
func Connect(patternMatch pattern.Match, intentMatch intent.Match) Connection {
	conn := Connection{Pattern: patternMatch, Intent: intentMatch}

	if entry, ok := curated[pairKey{patternMatch.Pattern.ID, intentMatch.Intent.ID}]; ok {
		conn.Explanation = fmt.Sprintf("This %s won't help you %s, because %s",
			patternMatch.Pattern.Behavior, intentMatch.Intent.Phrase, entry.Reason)
		conn.Alternative = entry.Alternative
		conn.Source = SourceCurated
		return conn
	}

	conn.Explanation = fmt.Sprintf("This %s won't help you %s, because it shifts the conversation away from what you need",
		patternMatch.Pattern.Behavior, intentMatch.Intent.Phrase)
	conn.Alternative = patternMatch.Pattern.Alternative
	conn.Source = SourceGeneric
	return conn
}

// ConnectAll pairs every detected pattern with every detected intent and
// picks the best pairing by combined pattern×intent confidence. Missing or
// empty analyses yield an explicit empty result.
func ConnectAll(patterns pattern.Analysis, intents intent.Analysis) Analysis {
	if patterns.PrimaryPattern == nil || intents.PrimaryIntent == nil {
		return Analysis{Connections: []Connection{}, Error: "missing pattern or intent analysis"}
	}

	var connections []Connection
	var best *Connection
	bestScore := -1
	for _, p := range patterns.Patterns {
		for _, i := range intents.Intents {
			conn := Connect(p, i)
			connections = append(connections, conn)
			if score := p.Confidence * i.Confidence; score > bestScore {
				bestScore = score
				copied := conn
				best = &copied
			}
		}
	}

	return Analysis{Connections: connections, PrimaryConnection: best}
}

// Format renders a connection as plain text for prompt assembly. A nil
// connection renders as the empty string.
func Format(conn *Connection) string {
	if conn == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(conn.Explanation)
	if conn.Alternative != "" {
		b.WriteString(" Try instead: ")
		b.WriteString(conn.Alternative)
		if !strings.HasSuffix(conn.Alternative, ".") {
			b.WriteString(".")
		}
	}
	return b.String()
}
