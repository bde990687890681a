package llm

import (
	"context"
	"errors"
)

// Role tags a conversation turn
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged turn of a conversation
type Message struct {
	Role    Role
	Content string
}

// Request is a single completion request
type Request struct {
	Messages    []Message
	Temperature float32
	// JSONMode asks the service for a JSON object response
	JSONMode bool
}

var (
	// ErrUnavailable marks failures to obtain a completion from the service at all
	ErrUnavailable = errors.New("language model service unavailable")
	// ErrEmptyResponse is returned when the service answers without any choices.
	// It also matches ErrUnavailable.
	ErrEmptyResponse = errors.New("language model returned no choices")
)

// Client is an opaque text completion service
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
