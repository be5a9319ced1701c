package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — счётчики пайплайна и HTTP-слоя.
type Metrics struct {
	PipelineRuns   *prometheus.CounterVec
	StageFailures  *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	AudioCaptured  *prometheus.CounterVec
	CaptureRejects prometheus.Counter
}

// New регистрирует метрики в reg; в тестах передаётся свой prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PipelineRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_translator_pipeline_runs_total",
			Help: "Pipeline runs by outcome",
		}, []string{"outcome"}),
		StageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_translator_stage_failures_total",
			Help: "Failed pipeline stages",
		}, []string{"stage"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voice_translator_stage_duration_seconds",
			Help:    "Remote call duration per stage",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"stage"}),
		AudioCaptured: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_translator_audio_captured_total",
			Help: "Captured audio buffers by source",
		}, []string{"source"}),
		CaptureRejects: f.NewCounter(prometheus.CounterOpts{
			Name: "voice_translator_capture_rejected_total",
			Help: "Rejected recordings and uploads",
		}),
	}
}

func (m *Metrics) ObserveStage(stage string, took time.Duration, err error) {
	m.StageDuration.WithLabelValues(stage).Observe(took.Seconds())
	if err != nil {
		m.StageFailures.WithLabelValues(stage).Inc()
	}
}
