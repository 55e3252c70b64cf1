package executor

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docpipe/internal/logfields"
)

const stampFile = ".docpipe-stamp"

// stampPath locates the success stamp for a command inside its first
// prepared output directory.
func stampPath(outputDir string) string {
	return filepath.Join(outputDir, stampFile)
}

// upToDate reports whether the stamp is newer than every file in the
// declared dependency set. The host executor is entitled to skip a hook
// whose trigger set is unchanged since the last successful run; this is the
// local host exercising that entitlement. An empty dependency set never
// skips: the stage always runs when it cannot prove staleness either way.
func upToDate(deps []string, stamp string) bool {
	if len(deps) == 0 {
		return false
	}
	info, err := os.Stat(stamp)
	if err != nil {
		return false
	}
	stampTime := info.ModTime()
	for _, dep := range deps {
		di, err := os.Stat(dep)
		if err != nil {
			// A vanished dependency means the trigger set itself changed.
			return false
		}
		if di.ModTime().After(stampTime) {
			return false
		}
	}
	return true
}

// touchStamp records a successful run. Failure to write the stamp only
// disables skipping next time, so it is logged rather than propagated.
func touchStamp(stamp string) {
	if err := os.MkdirAll(filepath.Dir(stamp), 0o750); err != nil {
		slog.Warn("Failed to create stamp directory", logfields.Path(stamp), logfields.Error(err))
		return
	}
	now := time.Now()
	if err := os.WriteFile(stamp, nil, 0o644); err != nil {
		slog.Warn("Failed to write stamp file", logfields.Path(stamp), logfields.Error(err))
		return
	}
	if err := os.Chtimes(stamp, now, now); err != nil {
		slog.Warn("Failed to update stamp time", logfields.Path(stamp), logfields.Error(err))
	}
}
