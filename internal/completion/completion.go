package completion

import (
	"context"
	"iter"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Payload is the chat completion request body.
type Payload struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	TopP             float64   `json:"top_p"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
	PresencePenalty  float64   `json:"presence_penalty"`
	MaxTokens        int       `json:"max_tokens"`
	Stream           bool      `json:"stream"`
	N                int       `json:"n"`
}

// Completer runs one completion and commits the final answer under key.
//
// Stream fails before returning a sequence when the provider rejects the
// request. The sequence yields text deltas in arrival order, is single-use,
// and stops the request when the caller stops ranging. Callers must range
// the sequence they get back; one that is never ranged keeps its connection
// open until ctx is done.
type Completer interface {
	Complete(ctx context.Context, key string, payload Payload) (string, error)
	Stream(ctx context.Context, key string, payload Payload) (iter.Seq2[string, error], error)
}
