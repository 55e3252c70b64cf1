// Package metrics provides observability hooks for plan execution.
//
// The Null Object pattern keeps metrics optional: components default to
// NoopRecorder, and a Prometheus-backed recorder is injected only when
// metrics are configured. No nil checks are needed at call sites.
package metrics

import "time"

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultSkipped  ResultLabel = "skipped"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for plan and step metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveStepDuration(step string, d time.Duration)
	ObservePlanDuration(d time.Duration)
	IncStepResult(step string, result ResultLabel)
	IncPlanOutcome(outcome string) // outcome: success|failed|canceled
	IncDependencyScan(target string, files int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, time.Duration) {}
func (NoopRecorder) ObservePlanDuration(time.Duration)         {}
func (NoopRecorder) IncStepResult(string, ResultLabel)         {}
func (NoopRecorder) IncPlanOutcome(string)                     {}
func (NoopRecorder) IncDependencyScan(string, int)             {}
