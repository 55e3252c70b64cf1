// Package executor models the host build executor the pipeline runs on. The
// host's ordering primitives are deliberately weak: one before-default-step
// hook and one after-default-step hook per target, nothing else. The Local
// implementation executes assembled plans directly with those same
// semantics, so the hook-based extraction/rendering barrier is exercised the
// way a real host would exercise it.
package executor

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docpipe/internal/assemble"
)

// Host is the contract the orchestration layer consumes from a build
// executor: target creation, the per-target hook pair, a target-scoped
// property primitive, and idempotent filesystem helpers.
type Host interface {
	CreateTarget(name string) error
	SetBeforeHook(target string, cmd assemble.Command) error
	SetAfterHook(target string, cmd assemble.Command) error
	SetProperty(target, key, value string) error
	Property(target, key string) (string, bool)

	MkdirAll(dir string) error
	CopyFile(src, dst string) error
	ConfigureFile(template, output string, vars map[string]string) error
}

// Runner executes a previously submitted target's hooks in order.
type Runner interface {
	Run(ctx context.Context, target string) (*Report, error)
}

// StepErrorKind enumerates structured step error categories.
type StepErrorKind string

const (
	StepErrorFatal    StepErrorKind = "fatal"    // Plan execution must abort.
	StepErrorCanceled StepErrorKind = "canceled" // Context cancellation.
)

// StepError is a structured error carrying category and underlying cause.
type StepError struct {
	Kind StepErrorKind
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s step %s: %v", e.Kind, e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

func newFatalStepError(step string, err error) *StepError {
	return &StepError{Kind: StepErrorFatal, Step: step, Err: err}
}
func newCanceledStepError(step string, err error) *StepError {
	return &StepError{Kind: StepErrorCanceled, Step: step, Err: err}
}
