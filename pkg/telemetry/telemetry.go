// Package telemetry exposes prometheus counters for the reconciler and
// the relay. The relay serves them on /metrics; library consumers get
// them for free through the default registry.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsApplied counts inbound events applied to local state, by kind
	// (message_new, message_update, message_delete, receipt, signal).
	EventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pubchat_events_applied_total",
		Help: "Inbound events applied to local state.",
	}, []string{"kind"})

	// EventsDropped counts inbound events dropped without a state change,
	// by reason (decode, unknown_type, unknown_id, duplicate_id, self_signal).
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pubchat_events_dropped_total",
		Help: "Inbound events dropped without a state change.",
	}, []string{"reason"})

	// PublishFailures counts fire-and-forget publish/signal attempts that
	// failed locally. Optimistic local effects are not rolled back.
	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pubchat_publish_failures_total",
		Help: "Outbound publish/signal attempts that failed.",
	}, []string{"path"})

	// RelayConnections tracks currently connected relay clients.
	RelayConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pubchat_relay_connections",
		Help: "Currently connected relay clients.",
	})

	// RelayFanout counts frames fanned out to subscribers, by kind.
	RelayFanout = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pubchat_relay_fanout_total",
		Help: "Frames fanned out to channel subscribers.",
	}, []string{"kind"})

	// RelayRejected counts frames the relay refused, by reason
	// (rate_limited, signal_too_large, bad_frame).
	RelayRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pubchat_relay_rejected_total",
		Help: "Frames rejected by the relay.",
	}, []string{"reason"})
)
