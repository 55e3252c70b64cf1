package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
pipelines:
  - name: docs
    source: ./src
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Pipelines, 1)

	p := cfg.Pipelines[0]
	assert.Equal(t, []string{".h"}, p.Extensions)
	assert.Equal(t, "docs", p.Docs)
	assert.Equal(t, filepath.Join("build", "docs", "ir"), p.IRDir)
	assert.Equal(t, filepath.Join("build", "docs", "site"), p.SiteDir)

	assert.Equal(t, []string{"doxygen", "@CONFIG_FILE@"}, cfg.Tools.Extractor)
	assert.Equal(t, []string{"sphinx-build", "@DOCS_DIR@", "@SITE_DIR@"}, cfg.Tools.Renderer)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
pipelines:
  - name: api
    source: ./include
    extensions: [".h", ".hpp"]
    docs: ./manual
    ir_dir: ./out/ir
    site_dir: ./out/site
    config_template: ./Doxyfile.in
    properties:
      - name: PYTHONPATH
        dirs: ["./py1", "./py2"]
tools:
  extractor: ["myextract", "@SOURCE_DIR@"]
  renderer: ["myrender", "@SITE_DIR@"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	p, ok := cfg.Pipeline("api")
	require.True(t, ok)
	assert.Equal(t, []string{".h", ".hpp"}, p.Extensions)
	assert.Equal(t, "./out/ir", p.IRDir)
	assert.Equal(t, "./Doxyfile.in", p.ConfigTemplate)
	require.Len(t, p.Properties, 1)
	assert.Equal(t, []string{"./py1", "./py2"}, p.Properties[0].Dirs)

	assert.Equal(t, []string{"myextract", "@SOURCE_DIR@"}, cfg.Tools.Extractor)
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("DOCPIPE_TEST_SRC", "/opt/sources")
	path := writeConfig(t, `
pipelines:
  - name: docs
    source: ${DOCPIPE_TEST_SRC}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/sources", cfg.Pipelines[0].Source)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Pipelines: []Pipeline{{Name: "docs", Source: "./src"}}}, false},
		{"no pipelines", Config{}, true},
		{"empty name", Config{Pipelines: []Pipeline{{Source: "./src"}}}, true},
		{"empty source", Config{Pipelines: []Pipeline{{Name: "docs"}}}, true},
		{"duplicate name", Config{Pipelines: []Pipeline{
			{Name: "docs", Source: "./a"},
			{Name: "docs", Source: "./b"},
		}}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.cfg.Validate()
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docpipe.yaml")
	require.NoError(t, Init(path, false))

	// Refuses to overwrite without force.
	assert.Error(t, Init(path, false))
	assert.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "docs", cfg.Pipelines[0].Name)
}
