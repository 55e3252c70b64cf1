package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpipe/internal/assemble"
	"git.home.luguber.info/inful/docpipe/internal/config"
	apperrors "git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/pipeline"
	"git.home.luguber.info/inful/docpipe/internal/version"
	"git.home.luguber.info/inful/docpipe/internal/watch"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docpipe.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Pipeline string `arg:"" optional:"" help:"Pipeline to build (all when omitted)"`
	} `cmd:"" help:"Assemble and execute documentation pipelines"`

	Plan struct {
		Pipeline string `arg:"" help:"Pipeline to assemble"`
	} `cmd:"" help:"Assemble a pipeline and print the ordered command plan without executing"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Watch struct {
		Pipeline string `arg:"" optional:"" help:"Pipeline to watch (all when omitted)"`
	} `cmd:"" help:"Rebuild pipelines when extraction sources change"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Execute command
	switch ctx.Command() {
	case "build", "build <pipeline>":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runBuild(cfg, CLI.Build.Pipeline); err != nil {
			slog.Error("Build failed", "error", err,
				"category", string(apperrors.GetCategory(err)))
			os.Exit(1)
		}
	case "plan <pipeline>":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runPlan(cfg, CLI.Plan.Pipeline); err != nil {
			slog.Error("Plan failed", "error", err,
				"category", string(apperrors.GetCategory(err)))
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "watch", "watch <pipeline>":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runWatch(cfg, CLI.Watch.Pipeline); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("docpipe %s (built %s, commit %s)\n", version.Version, version.BuildTime, version.GitCommit)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runBuild(cfg *config.Config, name string) error {
	svc, err := pipeline.NewService(cfg, "")
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if name == "" {
		return svc.BuildAll(ctx)
	}
	_, err = svc.Build(ctx, name)
	return err
}

func runPlan(cfg *config.Config, name string) error {
	svc, err := pipeline.NewService(cfg, "")
	if err != nil {
		return err
	}

	plan, err := svc.Plan(name)
	if err != nil {
		return err
	}

	printPlan(plan)
	return nil
}

func printPlan(plan *assemble.CommandPlan) {
	fmt.Printf("plan %s for target %s\n", plan.ID, plan.Target)
	for _, dir := range plan.PrepareDirs {
		fmt.Printf("  prepare: mkdir -p %s\n", dir)
	}
	if plan.ConfigFile != nil {
		fmt.Printf("  configure: %s -> %s\n", plan.ConfigFile.Template, plan.ConfigFile.Output)
	}
	fmt.Printf("  before-hook: %s\n", strings.Join(plan.Before.Argv, " "))
	fmt.Printf("    deps: %d file(s)\n", len(plan.Before.Deps))
	for _, dep := range plan.Before.Deps {
		fmt.Printf("      %s\n", dep)
	}
	fmt.Printf("  after-hook: %s\n", strings.Join(plan.After.Argv, " "))
	for _, env := range plan.After.Env {
		fmt.Printf("    env: %s\n", env)
	}
}

func runWatch(cfg *config.Config, name string) error {
	svc, err := pipeline.NewService(cfg, "")
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var dirs []string
	for _, p := range cfg.Pipelines {
		if name != "" && p.Name != name {
			continue
		}
		dirs = append(dirs, p.Source)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("pipeline not configured: %s", name)
	}

	rebuild := func(ctx context.Context) error {
		if name == "" {
			return svc.BuildAll(ctx)
		}
		_, err := svc.Build(ctx, name)
		return err
	}

	// Initial build before entering the watch loop.
	if err := rebuild(ctx); err != nil {
		slog.Error("Initial build failed", "error", err)
	}

	watcher, err := watch.NewSourceWatcher(dirs, cfg.Watch.Debounce, cfg.Watch.Resync, rebuild)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			slog.Warn("Failed to stop watcher", "error", err)
		}
	}()

	slog.Info("Watching for changes, press Ctrl-C to stop")
	<-ctx.Done()
	return nil
}
