// Package metrics holds the Prometheus collectors of the service.
//
// A nil *Metrics is valid and records nothing, so callers that do not
// care about instrumentation (tests, tools) can leave it unset.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "foodbridge"

type Metrics struct {
	MessagesSent         prometheus.Counter
	ConversationsCreated prometheus.Counter
	ReadReceipts         prometheus.Counter
	BulkRequests         prometheus.Counter
	BulkResponses        prometheus.Counter
	ActiveStreams        *prometheus.GaugeVec
	PublishErrors        prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "messages_sent_total",
			Help:      "Total number of chat messages stored.",
		}),
		ConversationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "conversations_created_total",
			Help:      "Total number of conversations created. Repeated create-or-get calls are not counted.",
		}),
		ReadReceipts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "read_receipts_total",
			Help:      "Total number of mark-as-read operations.",
		}),
		BulkRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ngo",
			Name:      "bulk_requests_total",
			Help:      "Total number of bulk requests submitted.",
		}),
		BulkResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ngo",
			Name:      "bulk_responses_total",
			Help:      "Total number of donor responses to bulk requests.",
		}),
		ActiveStreams: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "active",
			Help:      "Number of live streams currently open, by kind.",
		}, []string{"kind"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "publish_errors_total",
			Help:      "Total number of change notifications that could not be published.",
		}),
	}

	reg.MustRegister(
		m.MessagesSent,
		m.ConversationsCreated,
		m.ReadReceipts,
		m.BulkRequests,
		m.BulkResponses,
		m.ActiveStreams,
		m.PublishErrors,
	)

	return m
}

func (m *Metrics) IncMessagesSent() {
	if m != nil {
		m.MessagesSent.Inc()
	}
}

func (m *Metrics) IncConversationsCreated() {
	if m != nil {
		m.ConversationsCreated.Inc()
	}
}

func (m *Metrics) IncReadReceipts() {
	if m != nil {
		m.ReadReceipts.Inc()
	}
}

func (m *Metrics) IncBulkRequests() {
	if m != nil {
		m.BulkRequests.Inc()
	}
}

func (m *Metrics) IncBulkResponses() {
	if m != nil {
		m.BulkResponses.Inc()
	}
}

func (m *Metrics) IncPublishErrors() {
	if m != nil {
		m.PublishErrors.Inc()
	}
}

// StreamOpened increments the gauge for kind and returns the matching
// decrement.
func (m *Metrics) StreamOpened(kind string) (closed func()) {
	if m == nil {
		return func() {}
	}

	g := m.ActiveStreams.WithLabelValues(kind)
	g.Inc()
	return g.Dec
}
