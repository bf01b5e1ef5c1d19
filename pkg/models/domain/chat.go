package domain

import "errors"

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role    ChatRole
	Content string
}

type ChatRequest struct {
	Message string
	History []ChatMessage
}

// ChatReply is what the visitor sees. Blocked is set when the message was
// answered with the canned redirect instead of reaching the model.
type ChatReply struct {
	Text    string
	Blocked bool
}

// Completion is a single bounded request to the upstream language model.
type Completion struct {
	System      string
	History     []ChatMessage
	Message     string
	MaxTokens   int
	Temperature float32
}

// ErrUpstreamStatus is returned when the model API answered with a non-2xx status.
var ErrUpstreamStatus = errors.New("upstream returned an error status")
