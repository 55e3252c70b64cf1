package executor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docpipe/internal/assemble"
)

// MkdirAll creates dir and any missing parents. Idempotent: an existing
// directory is not an error.
func (l *Local) MkdirAll(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// CopyFile copies src to dst, creating parent directories as needed.
// Overwrites an existing destination.
func (l *Local) CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", dst, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return out.Sync()
}

// ConfigureFile rewrites @VAR@ placeholders in the template file using vars
// and writes the materialized result to output. Placeholders with no
// matching variable expand to the empty string.
func (l *Local) ConfigureFile(template, output string, vars map[string]string) error {
	data, err := os.ReadFile(template)
	if err != nil {
		return fmt.Errorf("failed to read config template %s: %w", template, err)
	}

	materialized := assemble.ExpandVars(string(data), vars)

	if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", output, err)
	}
	if err := os.WriteFile(output, []byte(materialized), 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", output, err)
	}
	return nil
}
