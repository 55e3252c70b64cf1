package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"git.home.luguber.info/inful/docpipe/internal/assemble"
	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/metrics"
)

// CommandRunner invokes one external command. Injectable for tests.
type CommandRunner func(ctx context.Context, cmd assemble.Command) error

// localTarget holds the submitted state for one target: the hook pair, the
// preparation steps, and target-scoped properties.
type localTarget struct {
	before      *assemble.Command
	after       *assemble.Command
	prepareDirs []string
	configFile  *assemble.ConfigFileStep
	vars        map[string]string
	props       map[string]string
}

// Local is an in-process host executor. It honors exactly the ordering the
// host contract promises: before hook, (empty) default build step, after
// hook.
type Local struct {
	recorder metrics.Recorder
	runner   CommandRunner
	targets  map[string]*localTarget
}

// NewLocal creates a local executor with no metrics and the default
// os/exec-backed command runner.
func NewLocal() *Local {
	l := &Local{
		recorder: metrics.NoopRecorder{},
		targets:  make(map[string]*localTarget),
	}
	l.runner = l.runCommand
	return l
}

// WithRecorder sets a metrics recorder.
func (l *Local) WithRecorder(r metrics.Recorder) *Local {
	l.recorder = r
	return l
}

// WithCommandRunner replaces the external command runner.
func (l *Local) WithCommandRunner(r CommandRunner) *Local {
	l.runner = r
	return l
}

// CreateTarget declares a target on the host.
func (l *Local) CreateTarget(name string) error {
	if _, exists := l.targets[name]; exists {
		return fmt.Errorf("target already exists: %s", name)
	}
	l.targets[name] = &localTarget{props: make(map[string]string)}
	return nil
}

// SetBeforeHook binds cmd to the target's before-default-step hook.
func (l *Local) SetBeforeHook(target string, cmd assemble.Command) error {
	t, err := l.target(target)
	if err != nil {
		return err
	}
	t.before = &cmd
	return nil
}

// SetAfterHook binds cmd to the target's after-default-step hook.
func (l *Local) SetAfterHook(target string, cmd assemble.Command) error {
	t, err := l.target(target)
	if err != nil {
		return err
	}
	t.after = &cmd
	return nil
}

// SetProperty attaches a key/value property to the target, queryable later
// in the same configuration pass.
func (l *Local) SetProperty(target, key, value string) error {
	t, err := l.target(target)
	if err != nil {
		return err
	}
	t.props[key] = value
	return nil
}

// Property reads a previously attached target property.
func (l *Local) Property(target, key string) (string, bool) {
	t, err := l.target(target)
	if err != nil {
		return "", false
	}
	v, ok := t.props[key]
	return v, ok
}

func (l *Local) target(name string) (*localTarget, error) {
	t, ok := l.targets[name]
	if !ok {
		return nil, fmt.Errorf("unknown target: %s", name)
	}
	return t, nil
}

// Submit hands an assembled plan to the host: creates the target, binds the
// hooks, and records preparation steps. Nothing executes until Run.
func (l *Local) Submit(plan *assemble.CommandPlan) error {
	if err := l.CreateTarget(plan.Target); err != nil {
		return err
	}
	t := l.targets[plan.Target]
	t.prepareDirs = plan.PrepareDirs
	t.configFile = plan.ConfigFile
	t.vars = plan.Vars
	if err := l.SetBeforeHook(plan.Target, plan.Before); err != nil {
		return err
	}
	if err := l.SetAfterHook(plan.Target, plan.After); err != nil {
		return err
	}
	for k, v := range plan.Vars {
		if err := l.SetProperty(plan.Target, k, v); err != nil {
			return err
		}
	}
	return nil
}

// Run executes a submitted target: directory preparation, config
// materialization, the before hook (subject to dependency-based skipping),
// the empty default step, and the after hook. Per-step timings and outcomes
// are recorded on the returned report.
func (l *Local) Run(ctx context.Context, target string) (*Report, error) {
	t, err := l.target(target)
	if err != nil {
		return nil, err
	}

	report := newReport("", target)
	defer func() {
		report.End = time.Now()
		l.recorder.ObservePlanDuration(report.End.Sub(report.Start))
	}()

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"prepare", func(context.Context) error { return l.prepare(t) }},
		{"configure", func(context.Context) error { return l.configure(t) }},
		{"extract", func(ctx context.Context) error { return l.runBefore(ctx, t, report) }},
		{"render", func(ctx context.Context) error { return l.runAfter(ctx, t) }},
	}

	for _, st := range steps {
		select {
		case <-ctx.Done():
			se := newCanceledStepError(st.name, ctx.Err())
			report.Errors = append(report.Errors, se)
			report.StepResults[st.name] = string(metrics.ResultCanceled)
			l.recorder.IncStepResult(st.name, metrics.ResultCanceled)
			l.recorder.IncPlanOutcome("canceled")
			return report, se
		default:
		}

		t0 := time.Now()
		err := st.fn(ctx)
		dur := time.Since(t0)
		report.StepDurations[st.name] = dur
		l.recorder.ObserveStepDuration(st.name, dur)
		slog.Debug("Step finished",
			logfields.Target(target),
			logfields.Stage(st.name),
			logfields.DurationMS(float64(dur.Milliseconds())))

		if err != nil {
			var se *StepError
			if !errors.As(err, &se) {
				se = newFatalStepError(st.name, err)
			}
			report.Errors = append(report.Errors, se)
			result := metrics.ResultFailed
			outcome := "failed"
			if se.Kind == StepErrorCanceled {
				result = metrics.ResultCanceled
				outcome = "canceled"
			}
			report.StepResults[st.name] = string(result)
			l.recorder.IncStepResult(st.name, result)
			l.recorder.IncPlanOutcome(outcome)
			return report, se
		}

		result := metrics.ResultSuccess
		if st.name == "extract" && report.ExtractionSkipped {
			result = metrics.ResultSkipped
		}
		report.StepResults[st.name] = string(result)
		l.recorder.IncStepResult(st.name, result)
	}

	l.recorder.IncPlanOutcome("success")
	return report, nil
}

// Execute submits a plan and runs it.
func (l *Local) Execute(ctx context.Context, plan *assemble.CommandPlan) (*Report, error) {
	if err := l.Submit(plan); err != nil {
		return nil, err
	}
	report, err := l.Run(ctx, plan.Target)
	if report != nil {
		report.PlanID = plan.ID
	}
	return report, err
}

func (l *Local) prepare(t *localTarget) error {
	for _, dir := range t.prepareDirs {
		if err := l.MkdirAll(dir); err != nil {
			return err
		}
	}
	return nil
}

func (l *Local) configure(t *localTarget) error {
	if t.configFile == nil {
		return nil
	}
	return l.ConfigureFile(t.configFile.Template, t.configFile.Output, t.vars)
}

// runBefore runs the extraction hook unless its declared trigger set is
// unchanged since the stamp from the last successful run.
func (l *Local) runBefore(ctx context.Context, t *localTarget, report *Report) error {
	if t.before == nil {
		return nil
	}
	stamp := ""
	if len(t.prepareDirs) > 0 {
		stamp = stampPath(t.prepareDirs[0])
	}
	if stamp != "" && upToDate(t.before.Deps, stamp) {
		slog.Info("Extraction inputs unchanged, skipping",
			logfields.Deps(len(t.before.Deps)))
		report.ExtractionSkipped = true
		return nil
	}
	if err := l.runner(ctx, *t.before); err != nil {
		return err
	}
	if stamp != "" {
		touchStamp(stamp)
	}
	return nil
}

func (l *Local) runAfter(ctx context.Context, t *localTarget) error {
	if t.after == nil {
		return nil
	}
	return l.runner(ctx, *t.after)
}

// runCommand is the default CommandRunner backed by os/exec.
func (l *Local) runCommand(ctx context.Context, cmd assemble.Command) error {
	if len(cmd.Argv) == 0 {
		return fmt.Errorf("empty command")
	}
	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), cmd.Env...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	slog.Info("Running command",
		logfields.Command(strings.Join(cmd.Argv, " ")),
		slog.String("description", cmd.Description))
	if err := c.Run(); err != nil {
		return fmt.Errorf("command %s failed: %w", cmd.Argv[0], err)
	}
	return nil
}
