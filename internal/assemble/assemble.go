// Package assemble turns a target's registered stages and accumulated
// properties into an ordered command plan. Assembly is the second phase of
// the two-phase protocol: all registrations for a target complete first,
// then the fully accumulated property state is read exactly once here.
package assemble

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpipe/internal/config"
	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/registry"
	"git.home.luguber.info/inful/docpipe/internal/util/sets"
)

// Assembler produces command plans from registered targets.
type Assembler struct {
	reg     *registry.Registry
	tools   config.ToolsConfig
	workDir string
}

// New creates an assembler over the given registry and tool configuration.
func New(reg *registry.Registry, tools config.ToolsConfig) *Assembler {
	return &Assembler{reg: reg, tools: tools}
}

// WithWorkDir sets the scratch directory for materialized config files.
// When unset, config files land next to the extraction output directory.
func (a *Assembler) WithWorkDir(dir string) *Assembler {
	a.workDir = dir
	return a
}

// Assemble produces the ordered command plan for a target: directory
// preparation, config materialization, the extraction invocation on the
// before hook, and the rendering invocation on the after hook. The
// extraction dependency set is rescanned here, not trusted from registration
// time, since source trees mutate between configuration and build.
func (a *Assembler) Assemble(t *registry.Target, spec *config.Pipeline) (*CommandPlan, error) {
	extraction := t.Extraction()
	if extraction == nil {
		return nil, fmt.Errorf("%w: target %s", ErrUnregisteredTarget, t.Name)
	}

	if err := checkOutputConflicts(t, spec); err != nil {
		return nil, err
	}

	if err := extraction.Rescan(); err != nil {
		return nil, err
	}

	vars := map[string]string{
		"TARGET":     t.Name,
		"SOURCE_DIR": extraction.SourceDir,
		"IR_DIR":     extraction.OutputDir,
		"DOCS_DIR":   spec.Docs,
		"SITE_DIR":   spec.SiteDir,
	}

	plan := &CommandPlan{
		ID:        uuid.NewString(),
		Target:    t.Name,
		CreatedAt: time.Now(),
		Vars:      vars,
	}

	plan.PrepareDirs = append(plan.PrepareDirs, extraction.OutputDir, spec.SiteDir)

	if spec.ConfigTemplate != "" {
		confDir := a.workDir
		if confDir == "" {
			confDir = filepath.Dir(extraction.OutputDir)
		}
		configFile := filepath.Join(confDir, t.Name+".conf")
		vars["CONFIG_FILE"] = configFile
		plan.ConfigFile = &ConfigFileStep{Template: spec.ConfigTemplate, Output: configFile}
	}

	plan.Before = Command{
		Argv:        expandArgv(a.tools.Extractor, vars),
		Deps:        sets.SortedStrings(extraction.Deps),
		Description: fmt.Sprintf("Extracting API symbols for %s", t.Name),
	}

	plan.After = Command{
		Argv:        expandArgv(a.tools.Renderer, vars),
		Env:         a.renderEnv(t, extraction.OutputDir),
		Description: fmt.Sprintf("Rendering documentation site for %s", t.Name),
	}

	slog.Info("Assembled command plan",
		logfields.PlanID(plan.ID),
		logfields.Target(t.Name),
		logfields.Deps(len(plan.Before.Deps)))
	return plan, nil
}

// renderEnv resolves every contributed property into a joined search-path
// value for the rendering invocation, plus the extraction output directory
// as an input reference.
func (a *Assembler) renderEnv(t *registry.Target, irDir string) []string {
	sep := string(os.PathListSeparator)
	store := a.reg.Store()

	var env []string
	seen := sets.New[string]()
	for _, st := range t.PropertyStages() {
		if seen.Has(st.Property) {
			continue
		}
		seen.Add(st.Property)
		env = append(env, st.Property+"="+store.Resolve(t.Name, st.Property, sep))
	}
	env = append(env, "DOCPIPE_IR_DIR="+irDir)
	return env
}

// checkOutputConflicts fails assembly when two stages claim the same output
// directory. The rendering output counts as a claimed directory even though
// the rendering stage is declared through the pipeline configuration rather
// than the registrar.
func checkOutputConflicts(t *registry.Target, spec *config.Pipeline) error {
	claimed := map[string]registry.StageKind{}
	claim := func(dir string, kind registry.StageKind) error {
		if dir == "" {
			return nil
		}
		clean := filepath.Clean(dir)
		if prev, ok := claimed[clean]; ok {
			return fmt.Errorf("%w: target %s: %s and %s both claim %s",
				ErrAssemblyConflict, t.Name, prev, kind, clean)
		}
		claimed[clean] = kind
		return nil
	}

	for _, st := range t.Stages() {
		if err := claim(st.OutputDir, st.Kind); err != nil {
			return err
		}
	}
	return claim(spec.SiteDir, registry.StageRendering)
}
