package chat

import (
	"fmt"
	"time"
)

// Event kinds carried on a course channel.
const (
	EventMessage     = "message"
	EventChatCleared = "chat_cleared"
	EventEnrolled    = "enrolled"
	EventMaterial    = "material"
)

// GroupName is the broadcast group key for a course channel.
func GroupName(courseID int) string {
	return fmt.Sprintf("course_%d", courseID)
}

// MessageEvent announces a persisted chat message.
type MessageEvent struct {
	Event     string    `json:"event"`
	ID        int       `json:"id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMessageEvent(msg Message, username string) MessageEvent {
	return MessageEvent{
		Event:     EventMessage,
		ID:        msg.ID,
		User:      username,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	}
}

// ClearedEvent announces that a course's chat history was wiped.
type ClearedEvent struct {
	Event     string    `json:"event"`
	By        string    `json:"by"`
	CreatedAt time.Time `json:"created_at"`
}

func NewClearedEvent(by string) ClearedEvent {
	return ClearedEvent{Event: EventChatCleared, By: by, CreatedAt: time.Now().UTC()}
}

// EnrolledEvent announces a new student enrollment.
type EnrolledEvent struct {
	Event     string    `json:"event"`
	User      string    `json:"user"`
	Course    string    `json:"course"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// MaterialEvent announces new course material.
type MaterialEvent struct {
	Event     string    `json:"event"`
	Title     string    `json:"title"`
	Course    string    `json:"course"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
	HasFile   bool      `json:"has_file"`
}
