package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncMessagesSent()
	m.IncMessagesSent()
	m.IncConversationsCreated()

	if got := testutil.ToFloat64(m.MessagesSent); got != 2 {
		t.Errorf("messages sent = %v; want 2", got)
	}

	if got := testutil.ToFloat64(m.ConversationsCreated); got != 1 {
		t.Errorf("conversations created = %v; want 1", got)
	}

	closeA := m.StreamOpened("messages")
	closeB := m.StreamOpened("messages")
	if got := testutil.ToFloat64(m.ActiveStreams.WithLabelValues("messages")); got != 2 {
		t.Errorf("active streams = %v; want 2", got)
	}

	closeA()
	closeB()
	if got := testutil.ToFloat64(m.ActiveStreams.WithLabelValues("messages")); got != 0 {
		t.Errorf("active streams after close = %v; want 0", got)
	}
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics

	m.IncMessagesSent()
	m.IncPublishErrors()
	m.StreamOpened("conversations")()
}
