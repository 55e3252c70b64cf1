package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMkdirAllIdempotent(t *testing.T) {
	l := NewLocal()
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, l.MkdirAll(dir))
	// Must not fail if the directory already exists.
	require.NoError(t, l.MkdirAll(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCopyFile(t *testing.T) {
	l := NewLocal()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	dst := filepath.Join(dir, "nested", "dst.txt")
	require.NoError(t, l.CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	// Overwrites an existing destination.
	require.NoError(t, os.WriteFile(src, []byte("updated"), 0o644))
	require.NoError(t, l.CopyFile(src, dst))
	data, err = os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(data))
}

func TestConfigureFile(t *testing.T) {
	l := NewLocal()
	dir := t.TempDir()

	template := filepath.Join(dir, "Doxyfile.in")
	content := "INPUT = @SOURCE_DIR@\nOUTPUT_DIRECTORY = @IR_DIR@\nUNSET = @MISSING@\n"
	require.NoError(t, os.WriteFile(template, []byte(content), 0o644))

	output := filepath.Join(dir, "out", "docs.conf")
	vars := map[string]string{"SOURCE_DIR": "./src", "IR_DIR": "build/ir"}
	require.NoError(t, l.ConfigureFile(template, output, vars))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "INPUT = ./src\nOUTPUT_DIRECTORY = build/ir\nUNSET = \n", string(data))
}

func TestConfigureFileMissingTemplate(t *testing.T) {
	l := NewLocal()
	err := l.ConfigureFile(filepath.Join(t.TempDir(), "nope.in"), filepath.Join(t.TempDir(), "out.conf"), nil)
	assert.Error(t, err)
}
