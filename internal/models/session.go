package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry in a session's history. Data is set on
// assistant replies only.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Data      *Payload  `json:"data,omitempty"`
}

// ChatSession is the server-side history of one conversation.
type ChatSession struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId,omitempty"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// LastMessages returns up to n trailing messages.
func LastMessages(messages []ChatMessage, n int) []ChatMessage {
	if n <= 0 {
		return nil
	}
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
