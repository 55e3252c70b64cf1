package assemble

import (
	"time"
)

// Command is one external tool invocation in an assembled plan.
type Command struct {
	Argv        []string // fully expanded command line
	Dir         string   // working directory, empty for process cwd
	Env         []string // KEY=VALUE pairs appended to the process environment
	Deps        []string // declared trigger set, sorted; the executor may skip the command when none changed
	Description string   // human-readable description passed to the host executor
}

// ConfigFileStep materializes a @VAR@ template into a config file consumed by
// the external tools. Runs during directory preparation, before either hook.
type ConfigFileStep struct {
	Template string
	Output   string
}

// CommandPlan is the ordered command sequence for one target.
//
// The host executor offers exactly one "before-default-step" and one
// "after-default-step" hook per target. The extraction command is bound to
// the before hook and the rendering command to the after hook; the (empty)
// default build step between them is the ordering barrier that guarantees
// rendering never observes a partially written extraction output. If a host
// ever grows a real per-target step graph, an explicit extraction->rendering
// edge should replace this hook binding.
type CommandPlan struct {
	ID        string
	Target    string
	CreatedAt time.Time

	PrepareDirs []string        // output directories to create idempotently, in order
	ConfigFile  *ConfigFileStep // optional, nil when the pipeline has no config template
	Before      Command         // extraction invocation (before-default-step hook)
	After       Command         // rendering invocation (after-default-step hook)

	Vars map[string]string // substitution variables the plan was expanded with
}
