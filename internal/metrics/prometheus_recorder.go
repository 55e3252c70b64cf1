package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once         sync.Once
	stepDuration *prom.HistogramVec
	planDuration prom.Histogram
	stepResults  *prom.CounterVec
	planOutcome  *prom.CounterVec
	scanFiles    *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stepDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docpipe",
			Name:      "step_duration_seconds",
			Help:      "Duration of individual plan steps",
			Buckets:   prom.DefBuckets,
		}, []string{"step"})
		pr.planDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docpipe",
			Name:      "plan_duration_seconds",
			Help:      "Total plan execution duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stepResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpipe",
			Name:      "step_results_total",
			Help:      "Step result counts by outcome",
		}, []string{"step", "result"})
		pr.planOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpipe",
			Name:      "plan_outcomes_total",
			Help:      "Plan outcomes by final status",
		}, []string{"outcome"})
		pr.scanFiles = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "docpipe",
			Name:      "dependency_scan_files",
			Help:      "Files found by the last dependency scan per target",
		}, []string{"target"})
		reg.MustRegister(pr.stepDuration, pr.planDuration, pr.stepResults, pr.planOutcome, pr.scanFiles)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStepDuration(step string, d time.Duration) {
	if p == nil || p.stepDuration == nil {
		return
	}
	p.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePlanDuration(d time.Duration) {
	if p == nil || p.planDuration == nil {
		return
	}
	p.planDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStepResult(step string, result ResultLabel) {
	if p == nil || p.stepResults == nil {
		return
	}
	p.stepResults.WithLabelValues(step, string(result)).Inc()
}

func (p *PrometheusRecorder) IncPlanOutcome(outcome string) {
	if p == nil || p.planOutcome == nil {
		return
	}
	p.planOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncDependencyScan(target string, files int) {
	if p == nil || p.scanFiles == nil {
		return
	}
	p.scanFiles.WithLabelValues(target).Set(float64(files))
}
