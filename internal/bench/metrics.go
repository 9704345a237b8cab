package bench

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "gaa"
	benchSubsystem   = "bench"
)

// Metrics counts cells on a private registry that is written to
// metrics.prom at the end of an experiment. A nil *Metrics ignores
// observations.
type Metrics struct {
	reg *prometheus.Registry

	CellsTotal       *prometheus.CounterVec
	EvaluationsTotal *prometheus.CounterVec
	CellSeconds      *prometheus.HistogramVec
	GapPercent       *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		CellsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: benchSubsystem,
				Name:      "cells_total",
				Help:      "Cells finished, by family and status",
			},
			[]string{"family", "status"},
		),
		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: benchSubsystem,
				Name:      "evaluations_total",
				Help:      "Objective evaluations spent, by family",
			},
			[]string{"family"},
		),
		CellSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: benchSubsystem,
				Name:      "cell_duration_seconds",
				Help:      "Wall time of one cell",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"family"},
		),
		GapPercent: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: benchSubsystem,
				Name:      "gap_percent",
				Help:      "Gap to the known optimum of feasible cells",
				Buckets:   []float64{0, 0.5, 1, 2, 5, 10, 25, 50, 100},
			},
			[]string{"family"},
		),
	}
	m.reg.MustRegister(m.CellsTotal, m.EvaluationsTotal, m.CellSeconds, m.GapPercent)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Observe records one finished cell. Resumed cells only count.
func (m *Metrics) Observe(r Record) {
	if m == nil {
		return
	}
	status := r.Status()
	if r.Resumed {
		status = "resumed"
	}
	m.CellsTotal.WithLabelValues(r.Family, status).Inc()
	if r.Resumed {
		return
	}
	m.EvaluationsTotal.WithLabelValues(r.Family).Add(float64(r.Evaluations))
	m.CellSeconds.WithLabelValues(r.Family).Observe(r.DurationMs / 1000)
	if r.Feasible && r.GapKnown {
		m.GapPercent.WithLabelValues(r.Family).Observe(r.Gap)
	}
}

// WriteFile writes the registry in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
