// Package session turns the inbound pub/sub event stream into a
// consistent, ordered local message list and ephemeral typing state. One
// Session owns one channel's store and typing tracker; a single goroutine
// (Run) applies every mutation, so neither needs locking.
package session

import (
	"context"
	"encoding/json"
	"time"

	"pubchat/pkg/compose"
	"pubchat/pkg/logger"
	"pubchat/pkg/models"
	"pubchat/pkg/store"
	"pubchat/pkg/telemetry"
	"pubchat/pkg/transport"
	"pubchat/pkg/typing"
)

// Handlers carries the UI-facing change notifications. Registration is
// unidirectional: the session invokes these callbacks from its own loop
// and never holds any other reference back into the UI. Nil fields are
// simply skipped.
type Handlers struct {
	RowInserted   func(index int)
	RowUpdated    func(index int)
	RowDeleted    func(index int)
	TypingStarted func()
	TypingStopped func()
}

// Config describes one channel session.
type Config struct {
	Channel string
	UserID  int64

	// RemoteTypingExpiry and LocalTypingStop default to the typing
	// package windows when zero.
	RemoteTypingExpiry time.Duration
	LocalTypingStop    time.Duration

	// Clock defaults to the system clock; tests inject their own.
	Clock typing.Clock
}

// Session is the single logical owner of one channel's local state.
type Session struct {
	cfg      Config
	tr       transport.Transport
	handlers Handlers

	msgs     *store.Store
	tracker  *typing.Tracker
	local    *typing.LocalNotifier
	composer *compose.Composer

	calls chan func()
	done  chan struct{}
}

// New builds a session over the given transport. Call Run to start it.
func New(cfg Config, tr transport.Transport, h Handlers) *Session {
	clock := cfg.Clock
	if clock == nil {
		clock = typing.SystemClock()
	}
	return &Session{
		cfg:      cfg,
		tr:       tr,
		handlers: h,
		msgs:     store.New(),
		tracker:  typing.NewTracker(clock, cfg.RemoteTypingExpiry),
		local:    typing.NewLocalNotifier(clock, cfg.LocalTypingStop),
		composer: compose.New(cfg.UserID),
		calls:    make(chan func(), 64),
		done:     make(chan struct{}),
	}
}

// Run subscribes to the channel and processes deliveries, commands and
// timer expirations until ctx is canceled or the transport closes. It is
// the only goroutine that mutates the store or the typing tracker.
func (s *Session) Run(ctx context.Context) error {
	defer s.teardown()

	if err := s.tr.Subscribe(ctx, s.cfg.Channel); err != nil {
		return err
	}
	logger.Info("session_started", "channel", s.cfg.Channel, "user", s.cfg.UserID)

	deliveries := s.tr.Deliveries()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case it, ok := <-deliveries:
			if !ok {
				logger.Info("session_transport_closed", "channel", s.cfg.Channel)
				return nil
			}
			s.handleDelivery(it.Delivery)
			it.Done()

		case f := <-s.calls:
			f()

		case userID := <-s.tracker.Expired():
			if s.tracker.Expire(userID) {
				s.emitTyping(false)
			}

		case <-s.local.AutoStop():
			if s.local.Timeout() == typing.ActionSignalStop {
				s.signalTyping(false)
			}
		}
	}
}

func (s *Session) teardown() {
	s.tracker.Close()
	s.local.Close()
	close(s.done)
}

// Send publishes a new message. The message is appended to the local
// store when its echo arrives, so sender and receiver share one path.
func (s *Session) Send(text string) {
	s.post(func() {
		payload := s.composer.Send(text)
		s.publishMessage(payload)
	})
}

// Edit replaces the text of the message at index. The local store is
// updated optimistically; the echo re-applies the same text, which is
// idempotent.
func (s *Session) Edit(index int, newText string) {
	s.post(func() {
		if index < 0 || index >= s.msgs.Len() {
			logger.Warn("edit_index_out_of_range", "index", index)
			return
		}
		m := s.msgs.At(index)
		s.msgs.UpdateText(m.ID, newText)
		s.publishMessage(s.composer.Update(m, newText))
	})
}

// Delete removes the message at index. The removal is applied when the
// delete echo arrives.
func (s *Session) Delete(index int) {
	s.post(func() {
		if index < 0 || index >= s.msgs.Len() {
			logger.Warn("delete_index_out_of_range", "index", index)
			return
		}
		s.publishMessage(s.composer.Delete(s.msgs.At(index)))
	})
}

// SetTyping updates the local typing flag. Start signals are sent at most
// once per continuous typing session; a stop signal always follows,
// explicit or timer-driven.
func (s *Session) SetTyping(isTyping bool) {
	s.post(func() {
		switch s.local.Set(isTyping) {
		case typing.ActionSignalStart:
			s.signalTyping(true)
		case typing.ActionSignalStop:
			s.signalTyping(false)
		}
	})
}

// Len returns the number of messages in the store.
func (s *Session) Len() int {
	var n int
	s.call(func() { n = s.msgs.Len() })
	return n
}

// TextAt returns the text of the message at index.
func (s *Session) TextAt(index int) string {
	var text string
	s.call(func() {
		if index >= 0 && index < s.msgs.Len() {
			text = s.msgs.TextAt(index)
		}
	})
	return text
}

// IsMine reports whether the message at index was authored locally.
func (s *Session) IsMine(index int) bool {
	var mine bool
	s.call(func() {
		if index >= 0 && index < s.msgs.Len() {
			mine = s.msgs.AuthorAt(index) == s.cfg.UserID
		}
	})
	return mine
}

// post schedules f on the session loop without waiting for it.
func (s *Session) post(f func()) {
	select {
	case s.calls <- f:
	case <-s.done:
	}
}

// call runs f on the session loop and waits for completion. Returns
// without running f when the session already stopped.
func (s *Session) call(f func()) {
	ran := make(chan struct{})
	wrapped := func() {
		f()
		close(ran)
	}
	select {
	case s.calls <- wrapped:
	case <-s.done:
		return
	}
	select {
	case <-ran:
	case <-s.done:
	}
}

func (s *Session) publishMessage(p models.MessagePayload) {
	frame, err := models.EncodeEvent(models.EventMessage, p)
	if err != nil {
		logger.Error("encode_message_failed", "error", err)
		return
	}
	if err := s.tr.Publish(s.cfg.Channel, frame); err != nil {
		// fire-and-forget: optimistic local effects stay in place
		telemetry.PublishFailures.WithLabelValues("message").Inc()
		logger.Warn("publish_failed", "channel", s.cfg.Channel, "action", string(p.Action), "error", err)
	}
}

func (s *Session) signalTyping(on bool) {
	var sig models.Signal
	if on {
		sig = s.composer.TypingStart()
	} else {
		sig = s.composer.TypingStop()
	}
	raw, err := json.Marshal(sig)
	if err != nil {
		logger.Error("encode_signal_failed", "error", err)
		return
	}
	if err := s.tr.Signal(s.cfg.Channel, raw); err != nil {
		telemetry.PublishFailures.WithLabelValues("signal").Inc()
		logger.Warn("signal_failed", "channel", s.cfg.Channel, "error", err)
	}
}

func (s *Session) emitTyping(on bool) {
	if on {
		if s.handlers.TypingStarted != nil {
			s.handlers.TypingStarted()
		}
		return
	}
	if s.handlers.TypingStopped != nil {
		s.handlers.TypingStopped()
	}
}
