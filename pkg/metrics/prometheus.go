package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions   *prometheus.CounterVec
	trainingRuns  *prometheus.CounterVec
	trainingTime  *prometheus.HistogramVec
	modelCacheHit *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		predictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_predictions_total",
				Help: "Total number of predictions produced",
			},
			[]string{"symbol", "recommendation"},
		),
		trainingRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_training_runs_total",
				Help: "Total number of completed training runs",
			},
			[]string{"symbol", "model"},
		),
		trainingTime: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinpulse_training_duration_seconds",
				Help:    "Duration of model training runs in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"symbol"},
		),
		modelCacheHit: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_model_cache_hits_total",
				Help: "Total number of model cache hits",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinpulse_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPrediction records one produced prediction.
func (r *Recorder) RecordPrediction(symbol, recommendation string) {
	r.predictions.WithLabelValues(symbol, recommendation).Inc()
}

// RecordTraining records one completed training run and its duration.
func (r *Recorder) RecordTraining(symbol, model string, seconds float64) {
	r.trainingRuns.WithLabelValues(symbol, model).Inc()
	r.trainingTime.WithLabelValues(symbol).Observe(seconds)
}

// RecordModelCacheHit records a model served without retraining.
func (r *Recorder) RecordModelCacheHit(symbol string) {
	r.modelCacheHit.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
