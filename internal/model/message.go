package model

import "time"

type MessageType string

const (
	MessageTypeUser      MessageType = "user"
	MessageTypeAssistant MessageType = "assistant"
)

// ChatMessage is one entry of a session's append-only message list.
type ChatMessage struct {
	ID        string      `json:"id"`
	Text      string      `json:"text"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}
