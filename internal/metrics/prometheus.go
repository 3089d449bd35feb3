package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements usecase.Metrics using Prometheus.
type Recorder struct {
	windowsTotal  prometheus.Counter
	analysisCalls *prometheus.CounterVec
	skipsTotal    *prometheus.CounterVec
	alertsTotal   prometheus.Counter
	spendUSD      prometheus.Gauge
}

// New creates a Prometheus metrics recorder registered on the default
// registry.
func New() *Recorder {
	return &Recorder{
		windowsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pepebot_windows_total",
				Help: "Total number of candle-window updates processed",
			},
		),
		analysisCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pepebot_analysis_calls_total",
				Help: "Total number of analysis calls issued, by stage",
			},
			[]string{"stage"},
		),
		skipsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pepebot_skips_total",
				Help: "Total number of skipped proximity events, by reason",
			},
			[]string{"reason"},
		),
		alertsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pepebot_alerts_total",
				Help: "Total number of alerts dispatched",
			},
		),
		spendUSD: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pepebot_spend_usd",
				Help: "Analysis spend in USD for the current day",
			},
		),
	}
}

// RecordWindow records one processed window update.
func (r *Recorder) RecordWindow() {
	r.windowsTotal.Inc()
}

// RecordAnalysisCall records one issued analysis call for a stage.
func (r *Recorder) RecordAnalysisCall(stage string) {
	r.analysisCalls.WithLabelValues(stage).Inc()
}

// RecordSkip records one skipped proximity event.
func (r *Recorder) RecordSkip(reason string) {
	r.skipsTotal.WithLabelValues(reason).Inc()
}

// RecordAlert records one dispatched alert.
func (r *Recorder) RecordAlert() {
	r.alertsTotal.Inc()
}

// SetSpend updates the current-day spend gauge.
func (r *Recorder) SetSpend(usd float64) {
	r.spendUSD.Set(usd)
}
