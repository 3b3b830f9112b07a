// Package domain holds the conversation types shared by the agent runtime
// and its session store.
package domain

import "time"

// SessionKey identifies a conversation with one agent.
type SessionKey struct {
	AgentID      string `json:"agentId"`
	Conversation string `json:"conversation"` // "console" for the interactive chat
}

// String returns a canonical string form of the session key.
func (k SessionKey) String() string {
	return k.AgentID + ":" + k.Conversation
}

// Session tracks a conversation between a user and an agent.
type Session struct {
	ID        string     `json:"id"`
	Key       SessionKey `json:"key"`
	AgentID   string     `json:"agentId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Messages  []Message  `json:"messages,omitempty"`
}

// Message is a single turn in a conversation (used in session history).
type Message struct {
	Role      string     `json:"role"` // "user", "assistant"
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}

// ToolCall records one tool invocation made while producing a message.
type ToolCall struct {
	Name   string `json:"name"`
	Input  string `json:"input"`  // JSON string
	Output string `json:"output"` // JSON string
	Error  string `json:"error,omitempty"`
}
