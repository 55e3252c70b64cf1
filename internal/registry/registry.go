// Package registry records the stages contributed to each documentation
// target during the configuration pass. Registration order is deliberately
// free: callers register the extraction stage and property contributions in
// whatever order suits them, and the assembler derives a correct execution
// order afterwards.
package registry

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/docpipe/internal/depscan"
	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/props"
	"git.home.luguber.info/inful/docpipe/internal/util/sets"
)

// StageKind enumerates the kinds of generation stages bound to a target.
type StageKind string

const (
	StageExtraction StageKind = "extraction"
	StageRendering  StageKind = "rendering"
	StageProperty   StageKind = "property"
)

// Stage is one generation step bound to a target. Immutable after
// registration except for dependency-set recomputation via Rescan.
type Stage struct {
	Kind       StageKind
	SourceDir  string
	OutputDir  string
	Property   string   // property-contribution stages only
	Extensions []string // extraction stages: tracked file extensions
	Deps       sets.Set[string]
}

// Rescan recomputes the stage's dependency set from the filesystem. Source
// trees are assumed to mutate between configuration and build, so callers
// must rescan immediately before assembly rather than trusting the
// registration-time snapshot.
func (s *Stage) Rescan() error {
	deps, err := depscan.Scan(s.SourceDir, s.Extensions)
	if err != nil {
		return fmt.Errorf("rescan %s stage: %w", s.Kind, err)
	}
	s.Deps = deps
	return nil
}

// Target identifies one documentation pipeline: a name, its registered
// stages in registration order, and (through the shared store) its
// accumulated properties.
type Target struct {
	Name string

	stages     []*Stage
	extraction *Stage
}

// Extraction returns the extraction stage, or nil if none is registered.
func (t *Target) Extraction() *Stage { return t.extraction }

// Stages returns all registered stages in registration order.
func (t *Target) Stages() []*Stage { return t.stages }

// PropertyStages returns the property-contribution stages in registration order.
func (t *Target) PropertyStages() []*Stage {
	var out []*Stage
	for _, st := range t.stages {
		if st.Kind == StageProperty {
			out = append(out, st)
		}
	}
	return out
}

// Registry owns the targets and the property store for one configuration
// pass. Single-threaded by design: this is build-time configuration, not a
// service, so no locking discipline is required.
type Registry struct {
	store   *props.Store
	targets map[string]*Target
}

// New creates an empty registry with its own property store.
func New() *Registry {
	return &Registry{
		store:   props.NewStore(),
		targets: make(map[string]*Target),
	}
}

// Store returns the property store shared by all targets in this registry.
func (r *Registry) Store() *props.Store { return r.store }

// CreateTarget declares a new documentation pipeline.
func (r *Registry) CreateTarget(name string) (*Target, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: target name must not be empty", ErrInvalidArgument)
	}
	if _, exists := r.targets[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTarget, name)
	}
	t := &Target{Name: name}
	r.targets[name] = t
	slog.Debug("Created pipeline target", logfields.Target(name))
	return t, nil
}

// Target looks up a previously created target by name.
func (r *Registry) Target(name string) (*Target, bool) {
	t, ok := r.targets[name]
	return t, ok
}

// RegisterExtraction binds the extraction stage to a target. At most one
// extraction stage per target is supported; the source format does not
// support merging multiple extraction sources. A failed second registration
// leaves the first untouched. The dependency set is computed here and again
// at assembly time.
func (r *Registry) RegisterExtraction(t *Target, sourceDir, outputDir string, extensions []string) error {
	if sourceDir == "" {
		return fmt.Errorf("%w: extraction source directory must not be empty", ErrInvalidArgument)
	}
	if t.extraction != nil {
		return fmt.Errorf("%w: target %s already has extraction source %s",
			ErrDuplicateStage, t.Name, t.extraction.SourceDir)
	}

	stage := &Stage{
		Kind:       StageExtraction,
		SourceDir:  sourceDir,
		OutputDir:  outputDir,
		Extensions: extensions,
	}
	if err := stage.Rescan(); err != nil {
		return err
	}

	t.extraction = stage
	t.stages = append(t.stages, stage)
	slog.Debug("Registered extraction stage",
		logfields.Target(t.Name),
		logfields.Dir(sourceDir),
		logfields.Deps(len(stage.Deps)))
	return nil
}

// RegisterPropertyContribution prepends sourceDir to the named property of
// the target. Callable any number of times; the most recent call wins first
// position when the property is later joined into a search path. The same
// directory may be contributed twice; both entries appear, most recent first.
func (r *Registry) RegisterPropertyContribution(t *Target, property, sourceDir string) error {
	if property == "" {
		return fmt.Errorf("%w: property name must not be empty", ErrInvalidArgument)
	}
	if sourceDir == "" {
		return fmt.Errorf("%w: property source directory must not be empty", ErrInvalidArgument)
	}

	r.store.Contribute(t.Name, property, sourceDir)
	t.stages = append(t.stages, &Stage{
		Kind:      StageProperty,
		SourceDir: sourceDir,
		Property:  property,
	})
	slog.Debug("Registered property contribution",
		logfields.Target(t.Name),
		logfields.Property(property),
		logfields.Dir(sourceDir),
		slog.Int("contributions", len(r.store.Values(t.Name, property))))
	return nil
}
