package core

import "fmt"

// Role tags the author of a conversation message.
type Role string

const (
	// RoleSystem carries agent instructions and tool framing.
	RoleSystem Role = "system"
	// RoleUser carries task prompts and tool observations.
	RoleUser Role = "user"
	// RoleAssistant carries model output (thoughts, final answers).
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message is a single role-tagged entry of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage builds a message, wrapping content in <tag></tag> markers when
// tag is non-empty.
func NewMessage(role Role, content, tag string) Message {
	if tag != "" {
		content = fmt.Sprintf("<%s>%s</%s>", tag, content, tag)
	}

	return Message{Role: role, Content: content}
}

// SystemMessage is shorthand for NewMessage(RoleSystem, content, "").
func SystemMessage(content string) Message { return NewMessage(RoleSystem, content, "") }

// UserMessage is shorthand for NewMessage(RoleUser, content, "").
func UserMessage(content string) Message { return NewMessage(RoleUser, content, "") }

// AssistantMessage is shorthand for NewMessage(RoleAssistant, content, "").
func AssistantMessage(content string) Message { return NewMessage(RoleAssistant, content, "") }
