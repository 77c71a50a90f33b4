package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Quiz holds the collectors for quiz sessions.
type Quiz struct {
	registry *prometheus.Registry

	SessionsStarted   *prometheus.CounterVec
	SessionsCompleted *prometheus.CounterVec
	Answers           *prometheus.CounterVec
	InvalidSelections *prometheus.CounterVec
	ScorePercent      *prometheus.HistogramVec
}

// New registers quiz collectors plus the Go and process collectors on a fresh registry.
func New() *Quiz {
	reg := prometheus.NewRegistry()
	m := &Quiz{
		registry: reg,
		SessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "sessions_started_total",
			Help:      "Quiz sessions started, by bank.",
		}, []string{"bank"}),
		SessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "sessions_completed_total",
			Help:      "Quiz sessions that reached a report, by bank and mastery label.",
		}, []string{"bank", "mastery"}),
		Answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "answers_total",
			Help:      "Scored answers, by bank and correctness.",
		}, []string{"bank", "result"}),
		InvalidSelections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "invalid_selections_total",
			Help:      "Answers rejected because the key was not a valid option.",
		}, []string{"bank"}),
		ScorePercent: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quiz",
			Name:      "score_percent",
			Help:      "Final score percentage of completed sessions.",
			Buckets:   []float64{40, 60, 70, 75, 80, 85, 90, 95, 100},
		}, []string{"bank"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SessionsStarted,
		m.SessionsCompleted,
		m.Answers,
		m.InvalidSelections,
		m.ScorePercent,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Quiz) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Started counts a new session.
func (m *Quiz) Started(bank string) {
	m.SessionsStarted.WithLabelValues(bank).Inc()
}

// Answered counts a scored answer.
func (m *Quiz) Answered(bank string, correct bool) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.Answers.WithLabelValues(bank, result).Inc()
}

// Invalid counts a rejected answer key.
func (m *Quiz) Invalid(bank string) {
	m.InvalidSelections.WithLabelValues(bank).Inc()
}

// Completed records a finished session.
func (m *Quiz) Completed(bank, mastery string, pct float64) {
	m.SessionsCompleted.WithLabelValues(bank, mastery).Inc()
	m.ScorePercent.WithLabelValues(bank).Observe(pct)
}
