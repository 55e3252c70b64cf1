package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpipe/internal/assemble"
	"git.home.luguber.info/inful/docpipe/internal/config"
	"git.home.luguber.info/inful/docpipe/internal/executor"
	"git.home.luguber.info/inful/docpipe/internal/registry"
)

func testConfig(t *testing.T, src string, props []config.PropertySource) *config.Config {
	t.Helper()
	out := t.TempDir()
	return &config.Config{
		Pipelines: []config.Pipeline{
			{
				Name:       "docs",
				Source:     src,
				Extensions: []string{".h"},
				Docs:       "./doc",
				IRDir:      filepath.Join(out, "ir"),
				SiteDir:    filepath.Join(out, "site"),
				Properties: props,
			},
		},
		Tools: config.ToolsConfig{
			Extractor: []string{"extract", "@SOURCE_DIR@", "@IR_DIR@"},
			Renderer:  []string{"render", "@DOCS_DIR@", "@SITE_DIR@"},
		},
	}
}

func TestEndToEndPlan(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.h"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.cpp"), []byte("x"), 0o644))

	cfg := testConfig(t, src, []config.PropertySource{
		{Name: "PYTHONPATH", Dirs: []string{"./py"}},
	})

	svc, err := NewService(cfg, t.TempDir())
	require.NoError(t, err)

	plan, err := svc.Plan("docs")
	require.NoError(t, err)

	// Headers only in the trigger set; the .cpp file is not tracked.
	require.Len(t, plan.Before.Deps, 1)
	absHeader, err := filepath.Abs(filepath.Join(src, "a.h"))
	require.NoError(t, err)
	assert.Equal(t, absHeader, plan.Before.Deps[0])

	// The single property source resolves to exactly its directory.
	assert.Contains(t, plan.After.Env, "PYTHONPATH=./py")
}

func TestEndToEndPropertyPrecedence(t *testing.T) {
	cfg := testConfig(t, t.TempDir(), []config.PropertySource{
		{Name: "PYTHONPATH", Dirs: []string{"./py1", "./py2"}},
	})

	svc, err := NewService(cfg, t.TempDir())
	require.NoError(t, err)

	plan, err := svc.Plan("docs")
	require.NoError(t, err)

	// ./py2 was contributed last, so it wins first position.
	sep := string(os.PathListSeparator)
	assert.Contains(t, plan.After.Env, "PYTHONPATH=./py2"+sep+"./py1")
}

func TestBuildRunsHooksInOrder(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.h"), []byte("x"), 0o644))

	cfg := testConfig(t, src, nil)
	svc, err := NewService(cfg, t.TempDir())
	require.NoError(t, err)

	var ran []string
	host := executor.NewLocal().WithCommandRunner(func(_ context.Context, cmd assemble.Command) error {
		ran = append(ran, cmd.Argv[0])
		return nil
	})

	report, err := svc.BuildWithHost(context.Background(), "docs", host)
	require.NoError(t, err)
	assert.Equal(t, []string{"extract", "render"}, ran)
	assert.False(t, report.Failed())
}

func TestPlanUnknownPipeline(t *testing.T) {
	cfg := testConfig(t, t.TempDir(), nil)
	svc, err := NewService(cfg, t.TempDir())
	require.NoError(t, err)

	_, err = svc.Plan("nope")
	assert.Error(t, err)
}

func TestAddExtractionSourceTwice(t *testing.T) {
	cfg := testConfig(t, t.TempDir(), nil)
	svc, err := NewService(cfg, t.TempDir())
	require.NoError(t, err)

	tgt, err := svc.CreatePipeline("docs")
	require.NoError(t, err)
	require.NoError(t, svc.AddExtractionSource(tgt, cfg.Pipelines[0].Source))

	err = svc.AddExtractionSource(tgt, t.TempDir())
	assert.ErrorIs(t, err, registry.ErrDuplicateStage)
}

func TestPlanIsRepeatable(t *testing.T) {
	src := t.TempDir()
	cfg := testConfig(t, src, nil)
	svc, err := NewService(cfg, t.TempDir())
	require.NoError(t, err)

	first, err := svc.Plan("docs")
	require.NoError(t, err)
	require.Empty(t, first.Before.Deps)

	// A header appearing between plans shows up on the next assembly.
	require.NoError(t, os.WriteFile(filepath.Join(src, "new.h"), []byte("x"), 0o644))
	second, err := svc.Plan("docs")
	require.NoError(t, err)
	assert.Len(t, second.Before.Deps, 1)
}
