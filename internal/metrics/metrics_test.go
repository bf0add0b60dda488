package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDecoderMetrics_ObserveParse(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDecoderMetrics(reg)

	m.ObserveParse("session", []string{"note_on", "note_on", "system_exclusive"}, 3, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesTotal.WithLabelValues("note_on")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesTotal.WithLabelValues("system_exclusive")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DroppedNibbles))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseCalls.WithLabelValues("session")))

	m.SetSessions(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SessionsGauge))
	m.Evicted(2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionEvicted))

	m.OnAccept()
	m.OnRecvBytes(5)
	m.OnRecvBytes(2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TCPAccepted))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.TCPBytes))
}

func TestDecoderMetrics_NilSafe(t *testing.T) {
	var m *DecoderMetrics
	assert.NotPanics(t, func() {
		m.ObserveParse("oneshot", []string{"note_on"}, 1, 0)
		m.SetSessions(1)
		m.Evicted(1)
		m.SnapshotError("save")
		m.OnAccept()
		m.OnRecvBytes(3)
	})
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	NewDecoderMetrics(reg).SetSessions(1)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "midi_sessions 1")
}
