package session

import (
	"errors"

	"pubchat/pkg/logger"
	"pubchat/pkg/models"
	"pubchat/pkg/telemetry"
	"pubchat/pkg/transport"
)

// handleDelivery decodes one inbound item and applies it. Malformed or
// unrecognized payloads are logged and dropped; nothing here may panic or
// leave the store half-mutated.
func (s *Session) handleDelivery(d transport.Delivery) {
	switch d.Kind {
	case transport.KindSignal:
		s.handleSignal(d.Payload)
	default:
		s.handleEvent(d.Payload)
	}
}

func (s *Session) handleEvent(raw []byte) {
	ev, err := models.DecodeEvent(raw)
	if err != nil {
		reason := "decode"
		if errors.Is(err, models.ErrUnknownEventType) {
			reason = "unknown_type"
		}
		telemetry.EventsDropped.WithLabelValues(reason).Inc()
		logger.Warn("event_dropped", "reason", reason, "error", err)
		return
	}

	switch ev.Type {
	case models.EventMessage:
		p, err := ev.MessagePayload()
		if err != nil {
			telemetry.EventsDropped.WithLabelValues("decode").Inc()
			logger.Warn("message_event_dropped", "error", err)
			return
		}
		s.applyMessage(p)

	case models.EventReceipt:
		r, err := ev.Receipt()
		if err != nil {
			telemetry.EventsDropped.WithLabelValues("decode").Inc()
			logger.Warn("receipt_event_dropped", "error", err)
			return
		}
		s.applyReceipt(r)
	}
}

// applyMessage dispatches a message event by action. Update and delete
// for an id the store does not hold are silent no-ops, which makes
// duplicate or out-of-order deliveries harmless.
func (s *Session) applyMessage(p models.MessagePayload) {
	switch p.Action {
	case models.ActionNew:
		pos, ok := s.msgs.Append(p.Message())
		if !ok {
			telemetry.EventsDropped.WithLabelValues("duplicate_id").Inc()
			logger.Debug("duplicate_message_dropped", "id", p.MessageID)
			return
		}
		telemetry.EventsApplied.WithLabelValues("message_new").Inc()
		if s.handlers.RowInserted != nil {
			s.handlers.RowInserted(pos)
		}
		if p.UserID != s.cfg.UserID {
			s.sendReadReceipt(p.MessageID)
		}

	case models.ActionUpdate:
		pos, ok := s.msgs.UpdateText(p.MessageID, p.Text)
		if !ok {
			telemetry.EventsDropped.WithLabelValues("unknown_id").Inc()
			logger.Debug("update_for_unknown_id", "id", p.MessageID)
			return
		}
		telemetry.EventsApplied.WithLabelValues("message_update").Inc()
		if s.handlers.RowUpdated != nil {
			s.handlers.RowUpdated(pos)
		}

	case models.ActionDelete:
		pos, ok := s.msgs.Remove(p.MessageID)
		if !ok {
			telemetry.EventsDropped.WithLabelValues("unknown_id").Inc()
			logger.Debug("delete_for_unknown_id", "id", p.MessageID)
			return
		}
		telemetry.EventsApplied.WithLabelValues("message_delete").Inc()
		if s.handlers.RowDeleted != nil {
			s.handlers.RowDeleted(pos)
		}
	}
}

// applyReceipt records read markers up to the acknowledged id. Unknown
// message ids are tolerated: the receipt may outrun the message.
func (s *Session) applyReceipt(r models.Receipt) {
	changed, found := s.msgs.MarkRead(r.UserID, r.MessageIDStart, r.MessageIDEnd)
	if !found {
		telemetry.EventsDropped.WithLabelValues("unknown_id").Inc()
		logger.Debug("receipt_for_unknown_id", "id", r.MessageIDEnd, "reader", r.UserID)
		return
	}
	telemetry.EventsApplied.WithLabelValues("receipt").Inc()
	if s.handlers.RowUpdated != nil {
		for _, pos := range changed {
			s.handlers.RowUpdated(pos)
		}
	}
}

// handleSignal routes typing signals to the tracker. Signals carrying the
// local user id are echoes of our own and never touch the tracker.
func (s *Session) handleSignal(raw []byte) {
	sig, err := models.DecodeSignal(raw)
	if err != nil {
		telemetry.EventsDropped.WithLabelValues("decode").Inc()
		logger.Warn("signal_dropped", "error", err)
		return
	}
	if sig.UserID == s.cfg.UserID {
		telemetry.EventsDropped.WithLabelValues("self_signal").Inc()
		return
	}
	telemetry.EventsApplied.WithLabelValues("signal").Inc()
	switch sig.Type {
	case models.SignalTypingOn:
		if s.tracker.OnStart(sig.UserID) {
			s.emitTyping(true)
		}
	case models.SignalTypingOff:
		if s.tracker.OnStop(sig.UserID) {
			s.emitTyping(false)
		}
	}
}

// sendReadReceipt acknowledges a remotely-originated message.
// Fire-and-forget: a publish failure is logged, never retried.
func (s *Session) sendReadReceipt(messageID int64) {
	receipt := models.Receipt{
		Value:        models.ReceiptRead,
		UserID:       s.cfg.UserID,
		MessageIDEnd: messageID,
	}
	frame, err := models.EncodeEvent(models.EventReceipt, receipt)
	if err != nil {
		logger.Error("encode_receipt_failed", "error", err)
		return
	}
	if err := s.tr.Publish(s.cfg.Channel, frame); err != nil {
		telemetry.PublishFailures.WithLabelValues("receipt").Inc()
		logger.Warn("read_receipt_failed", "id", messageID, "error", err)
	}
}
