package ai

import "context"

// AI is the outbound LLM boundary. It knows nothing about intents, tickets or
// the database: submit a sequence of role/content turns at a temperature, get
// back raw text.
type AI interface {
	Complete(ctx context.Context, msgs []Message, temperature float32) (string, error)
}

// Message is the provider-neutral dialogue format.
type Message struct {
	Role    string // "user" | "assistant" | "system"
	Content string
}
