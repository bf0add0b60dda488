package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// DecoderMetrics 解码业务指标
type DecoderMetrics struct {
	MessagesTotal  *prometheus.CounterVec // labels: kind
	DroppedNibbles prometheus.Counter
	ParseCalls     *prometheus.CounterVec // labels: source=session|oneshot
	PendingNibbles prometheus.Histogram   // 每次解析后缓冲剩余半字节数
	SessionsGauge  prometheus.Gauge
	SessionEvicted prometheus.Counter
	SnapshotErrors *prometheus.CounterVec // labels: op=save|load|delete
	TCPAccepted    prometheus.Counter
	TCPBytes       prometheus.Counter
}

// NewDecoderMetrics 注册并返回解码指标
func NewDecoderMetrics(reg prometheus.Registerer) *DecoderMetrics {
	m := &DecoderMetrics{
		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "midi_messages_total",
			Help: "Decoded MIDI messages by kind.",
		}, []string{"kind"}),
		DroppedNibbles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "midi_dropped_nibbles_total",
			Help: "Nibbles discarded because no message could start at them.",
		}),
		ParseCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "midi_parse_calls_total",
			Help: "Parse calls by source.",
		}, []string{"source"}),
		PendingNibbles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "midi_pending_nibbles",
			Help:    "Nibbles left in the buffer after a parse call.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		SessionsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "midi_sessions",
			Help: "Current number of decode sessions.",
		}),
		SessionEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "midi_sessions_evicted_total",
			Help: "Sessions removed after idle timeout.",
		}),
		SnapshotErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "midi_snapshot_errors_total",
			Help: "Snapshot store failures by operation.",
		}, []string{"op"}),
		TCPAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "midi_tcp_accept_total",
			Help: "Accepted TCP stream connections.",
		}),
		TCPBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "midi_tcp_bytes_total",
			Help: "Raw bytes received over TCP streams.",
		}),
	}
	reg.MustRegister(m.MessagesTotal, m.DroppedNibbles, m.ParseCalls, m.PendingNibbles, m.SessionsGauge,
		m.SessionEvicted, m.SnapshotErrors, m.TCPAccepted, m.TCPBytes)
	return m
}

// ObserveParse 记录一次解析；m 为 nil 时忽略
func (m *DecoderMetrics) ObserveParse(source string, kinds []string, dropped int64, pending int) {
	if m == nil {
		return
	}
	m.ParseCalls.WithLabelValues(source).Inc()
	for _, k := range kinds {
		m.MessagesTotal.WithLabelValues(k).Inc()
	}
	if dropped > 0 {
		m.DroppedNibbles.Add(float64(dropped))
	}
	m.PendingNibbles.Observe(float64(pending))
}

// SetSessions 更新会话数；m 为 nil 时忽略
func (m *DecoderMetrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.SessionsGauge.Set(float64(n))
}

// Evicted 记录空闲淘汰
func (m *DecoderMetrics) Evicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionEvicted.Add(float64(n))
}

// SnapshotError 记录快照存储失败
func (m *DecoderMetrics) SnapshotError(op string) {
	if m == nil {
		return
	}
	m.SnapshotErrors.WithLabelValues(op).Inc()
}

// OnAccept TCP 新连接
func (m *DecoderMetrics) OnAccept() {
	if m == nil {
		return
	}
	m.TCPAccepted.Inc()
}

// OnRecvBytes TCP 收到字节
func (m *DecoderMetrics) OnRecvBytes(n int) {
	if m == nil {
		return
	}
	m.TCPBytes.Add(float64(n))
}
