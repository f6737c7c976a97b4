package infrastructure

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

var _ ports.PlaybackMetrics = (*PrometheusMetrics)(nil)

// PrometheusMetrics records playback telemetry as Prometheus metrics.
type PrometheusMetrics struct {
	activeSessions  prometheus.Gauge
	sessionsClosed  *prometheus.CounterVec
	tracksStarted   prometheus.Counter
	playbackFailed  *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the playback metrics with registerer.
func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tunebot_active_sessions",
			Help: "Number of open playback sessions",
		}),
		sessionsClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tunebot_sessions_closed_total",
			Help: "Number of closed playback sessions by reason",
		}, []string{"reason"}),
		tracksStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "tunebot_tracks_started_total",
			Help: "Number of tracks that started playing",
		}),
		playbackFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tunebot_playback_failures_total",
			Help: "Number of playback failures by error kind",
		}, []string{"kind"}),
		resolveDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tunebot_resolve_duration_seconds",
			Help:    "Track resolution duration seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"result"}),
	}
}

func (m *PrometheusMetrics) SessionOpened() {
	m.activeSessions.Inc()
}

func (m *PrometheusMetrics) SessionClosed(reason domain.CloseReason) {
	m.activeSessions.Dec()
	m.sessionsClosed.WithLabelValues(string(reason)).Inc()
}

func (m *PrometheusMetrics) TrackStarted() {
	m.tracksStarted.Inc()
}

func (m *PrometheusMetrics) PlaybackFailed(kind domain.ErrorKind) {
	m.playbackFailed.WithLabelValues(kind.String()).Inc()
}

// ObserveResolve records a resolver call, labelled "ok" or "error".
func (m *PrometheusMetrics) ObserveResolve(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.resolveDuration.WithLabelValues(result).Observe(d.Seconds())
}
