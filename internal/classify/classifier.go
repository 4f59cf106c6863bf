package classify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gericke98/happy-customer/internal/ai"
	"github.com/gericke98/happy-customer/internal/logger"
	"github.com/gericke98/happy-customer/internal/sanitize"
)

// Classifier turns a raw chat message plus context into a ClassifiedMessage.
// It never returns an error: any provider or parse failure degrades to the
// default classification.
type Classifier struct {
	ai       ai.AI
	resolver *Resolver
	log      logger.Logger
}

func NewClassifier(aiClient ai.AI, returnsURL string, log logger.Logger) *Classifier {
	return &Classifier{
		ai:       aiClient,
		resolver: &Resolver{ReturnsURL: returnsURL},
		log:      log.With(map[string]interface{}{"component": "classifier"}),
	}
}

// Classify runs the taxonomy prompt at temperature 0 and parses the result,
// then resolves it against the conversation context.
func (c *Classifier) Classify(ctx context.Context, message string, turns []Turn) *ClassifiedMessage {
	raw := c.classifyRaw(ctx, message, turns)
	c.resolver.Resolve(raw, turns)
	return raw
}

// classifyRaw is the bare LLM classification without context resolution.
func (c *Classifier) classifyRaw(ctx context.Context, message string, turns []Turn) *ClassifiedMessage {
	msgs := make([]ai.Message, 0, len(turns)+2)
	msgs = append(msgs, ai.Message{Role: "system", Content: ClassifierPrompt})
	for _, t := range turns {
		role := t.Role
		if role != "user" && role != "assistant" && role != "system" {
			role = "user"
		}
		msgs = append(msgs, ai.Message{Role: role, Content: sanitize.Clean(t.Content)})
	}
	msgs = append(msgs, ai.Message{Role: "user", Content: sanitize.Clean(message)})

	raw, err := c.ai.Complete(ctx, msgs, 0)
	if err != nil {
		c.log.Warn("classification call failed, using default", map[string]interface{}{
			"error": err.Error(),
		})
		return Default()
	}

	return parseClassification(raw, c.log)
}

func parseClassification(raw string, log logger.Logger) *ClassifiedMessage {
	var parsed struct {
		Intent     *string `json:"intent"`
		Parameters *Params `json:"parameters"`
		Language   string  `json:"language"`
	}

	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		// Model wrapped the object in prose or fences; try the first balanced
		// {...} substring.
		obj, ok := extractJSONObject(raw)
		if !ok {
			log.Warn("classification response is not JSON", map[string]interface{}{
				"raw": truncate(raw, 180),
			})
			return Default()
		}
		if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
			log.Warn("extracted object does not parse", map[string]interface{}{
				"raw": truncate(obj, 180),
			})
			return Default()
		}
	}

	if parsed.Intent == nil || parsed.Parameters == nil {
		return Default()
	}

	out := &ClassifiedMessage{
		Intent:     ParseIntent(*parsed.Intent),
		Parameters: *parsed.Parameters,
		Language:   normalizeLanguage(parsed.Language),
	}
	return out
}

// extractJSONObject returns the first balanced top-level {...} substring.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func normalizeLanguage(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spanish", "español", "espanol", "es":
		return LanguageSpanish
	default:
		return LanguageEnglish
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
