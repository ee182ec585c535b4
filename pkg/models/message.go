package models

import "time"

// MessageAction describes the semantic of a single message event on the
// wire; it is not a persistent message field. The service uses "type" for
// the action discriminator in its chat payloads, so we follow that.
type MessageAction string

const (
	ActionNew    MessageAction = "new"
	ActionUpdate MessageAction = "update"
	ActionDelete MessageAction = "delete"
)

// MessagePayload is the wire form of a message event.
type MessagePayload struct {
	Action    MessageAction `json:"type"`
	MessageID int64         `json:"message_id"`
	UserID    int64         `json:"user_id"`
	Text      string        `json:"text"`
	Timestamp WireTime      `json:"timestamp"`
}

// Message is a chat message as held in the local store.
type Message struct {
	ID        int64
	AuthorID  int64
	Text      string
	// Timestamp is fixed at first creation; updates never change it.
	Timestamp time.Time
	// ReadBy holds ids of users known to have read this message.
	ReadBy []int64
}

// Message converts the wire payload into its stored form.
func (p MessagePayload) Message() Message {
	return Message{
		ID:        p.MessageID,
		AuthorID:  p.UserID,
		Text:      p.Text,
		Timestamp: time.Time(p.Timestamp),
	}
}
