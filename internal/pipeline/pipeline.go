// Package pipeline is the caller-facing surface of the orchestration layer.
// A Service ties the registrar, the property store, the assembler, and a
// host executor together for one configuration pass: create a pipeline,
// contribute stages in any order, then build.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/docpipe/internal/assemble"
	"git.home.luguber.info/inful/docpipe/internal/config"
	apperrors "git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/executor"
	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/metrics"
	"git.home.luguber.info/inful/docpipe/internal/registry"
	"git.home.luguber.info/inful/docpipe/internal/workspace"
)

// Service orchestrates one configuration pass over a set of pipelines.
// Single-threaded by design; not a long-running service.
type Service struct {
	cfg      *config.Config
	reg      *registry.Registry
	asm      *assemble.Assembler
	ws       *workspace.Manager
	recorder metrics.Recorder
}

// NewService creates a pipeline service for the given configuration.
// workBase is the parent directory for the persistent scratch workspace;
// empty selects the default "build".
func NewService(cfg *config.Config, workBase string) (*Service, error) {
	ws := workspace.NewPersistentManager(workBase, "work")
	if err := ws.Create(); err != nil {
		return nil, err
	}

	reg := registry.New()
	asm := assemble.New(reg, cfg.Tools).WithWorkDir(ws.GetPath())

	return &Service{
		cfg:      cfg,
		reg:      reg,
		asm:      asm,
		ws:       ws,
		recorder: metrics.NoopRecorder{},
	}, nil
}

// WithRecorder sets a metrics recorder for plan execution.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	s.recorder = r
	return s
}

// Registry exposes the underlying registrar, mainly for tests and the CLI
// plan printer.
func (s *Service) Registry() *registry.Registry { return s.reg }

// CreatePipeline declares a new documentation pipeline target.
func (s *Service) CreatePipeline(name string) (*registry.Target, error) {
	return s.reg.CreateTarget(name)
}

// AddExtractionSource registers the extraction stage for a target. Fails if
// called twice for the same target.
func (s *Service) AddExtractionSource(t *registry.Target, sourceDir string) error {
	spec, ok := s.cfg.Pipeline(t.Name)
	if !ok {
		return fmt.Errorf("pipeline not configured: %s", t.Name)
	}
	return s.reg.RegisterExtraction(t, sourceDir, spec.IRDir, spec.Extensions)
}

// AddPropertySource contributes a directory to a named property of the
// target. Callable any number of times; the last call wins first position in
// the joined value.
func (s *Service) AddPropertySource(t *registry.Target, property, sourceDir string) error {
	return s.reg.RegisterPropertyContribution(t, property, sourceDir)
}

// ConfigureTarget runs the registration phase for one configured pipeline:
// target creation, extraction source, and property contributions in their
// declared order.
func (s *Service) ConfigureTarget(spec *config.Pipeline) (*registry.Target, error) {
	t, err := s.CreatePipeline(spec.Name)
	if err != nil {
		return nil, err
	}
	if err := s.AddExtractionSource(t, spec.Source); err != nil {
		return nil, err
	}
	for _, prop := range spec.Properties {
		for _, dir := range prop.Dirs {
			if err := s.AddPropertySource(t, prop.Name, dir); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// Plan configures the named pipeline (if not already configured) and
// assembles its ordered command plan without executing it.
func (s *Service) Plan(name string) (*assemble.CommandPlan, error) {
	spec, ok := s.cfg.Pipeline(name)
	if !ok {
		return nil, fmt.Errorf("pipeline not configured: %s", name)
	}

	t, ok := s.reg.Target(name)
	if !ok {
		var err error
		t, err = s.ConfigureTarget(spec)
		if err != nil {
			return nil, err
		}
	}

	return s.asm.Assemble(t, spec)
}

// Build assembles the named pipeline and hands the resulting command plan to
// the host executor. Assembly errors surface before any command runs, so no
// partial pipeline is ever submitted.
func (s *Service) Build(ctx context.Context, name string) (*executor.Report, error) {
	return s.BuildWithHost(ctx, name, executor.NewLocal().WithRecorder(s.recorder))
}

// BuildWithHost is Build with an explicit host executor, letting tests and
// embedders supply their own command runner.
func (s *Service) BuildWithHost(ctx context.Context, name string, host *executor.Local) (*executor.Report, error) {
	plan, err := s.Plan(name)
	if err != nil {
		return nil, err
	}

	s.recorder.IncDependencyScan(name, len(plan.Before.Deps))

	report, err := host.Execute(ctx, plan)
	if err != nil {
		return report, apperrors.Wrap(err, apperrors.CategoryExecutor, apperrors.SeverityFatal,
			"plan execution failed").WithContext("target", name).WithContext("plan_id", plan.ID)
	}

	slog.Info("Pipeline build complete",
		logfields.PlanID(plan.ID),
		logfields.Target(name),
		slog.Bool("extraction_skipped", report.ExtractionSkipped))
	return report, nil
}

// BuildAll builds every configured pipeline in declaration order, stopping
// at the first failure.
func (s *Service) BuildAll(ctx context.Context) error {
	for i := range s.cfg.Pipelines {
		name := s.cfg.Pipelines[i].Name
		if _, err := s.Build(ctx, name); err != nil {
			return fmt.Errorf("pipeline %s: %w", name, err)
		}
	}
	return nil
}
