// Package compose builds wire payloads for locally initiated actions.
// Constructors are pure: the caller publishes the result and decides when
// (and whether) to apply it to local state.
package compose

import (
	"time"

	"pubchat/pkg/models"
)

// Composer builds outbound message payloads and typing signals for one
// local user.
type Composer struct {
	userID int64
	ids    *IDGenerator
	now    func() time.Time
}

// New returns a Composer for the given local user id.
func New(userID int64) *Composer {
	return &Composer{
		userID: userID,
		ids:    NewIDGenerator(userID),
		now:    time.Now,
	}
}

// Send builds a new-message payload with a freshly generated id and the
// current time as creation timestamp.
func (c *Composer) Send(text string) models.MessagePayload {
	return models.MessagePayload{
		Action:    models.ActionNew,
		MessageID: c.ids.Next(),
		UserID:    c.userID,
		Text:      text,
		Timestamp: models.WireTime(c.now()),
	}
}

// Update builds an update payload for an existing message. The original
// author and timestamp are preserved; only the text changes.
func (c *Composer) Update(existing models.Message, newText string) models.MessagePayload {
	return models.MessagePayload{
		Action:    models.ActionUpdate,
		MessageID: existing.ID,
		UserID:    existing.AuthorID,
		Text:      newText,
		Timestamp: models.WireTime(existing.Timestamp),
	}
}

// Delete builds a delete payload referencing an existing message.
func (c *Composer) Delete(existing models.Message) models.MessagePayload {
	return models.MessagePayload{
		Action:    models.ActionDelete,
		MessageID: existing.ID,
		UserID:    existing.AuthorID,
		Text:      existing.Text,
		Timestamp: models.WireTime(existing.Timestamp),
	}
}

// TypingStart builds a typing-on signal for the local user.
func (c *Composer) TypingStart() models.Signal {
	return models.Signal{UserID: c.userID, Type: models.SignalTypingOn}
}

// TypingStop builds a typing-off signal for the local user.
func (c *Composer) TypingStop() models.Signal {
	return models.Signal{UserID: c.userID, Type: models.SignalTypingOff}
}
