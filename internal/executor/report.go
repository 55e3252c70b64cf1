package executor

import "time"

// Report captures per-step durations and outcomes for one plan execution.
type Report struct {
	PlanID string
	Target string
	Start  time.Time
	End    time.Time

	StepDurations map[string]time.Duration
	StepResults   map[string]string // success|failed|skipped|canceled

	// ExtractionSkipped is true when the dependency trigger set was
	// unchanged since the last successful run and the host elected not to
	// re-invoke the extraction command.
	ExtractionSkipped bool

	Errors []*StepError
}

func newReport(planID, target string) *Report {
	return &Report{
		PlanID:        planID,
		Target:        target,
		Start:         time.Now(),
		StepDurations: make(map[string]time.Duration),
		StepResults:   make(map[string]string),
	}
}

// Failed reports whether any step recorded a fatal or canceled error.
func (r *Report) Failed() bool { return len(r.Errors) > 0 }
