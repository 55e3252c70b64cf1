package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPlanID     = "plan_id"
	KeyTarget     = "target"
	KeyStage      = "stage"
	KeyProperty   = "property"
	KeyPath       = "path"
	KeyDir        = "dir"
	KeyFile       = "file"
	KeyCommand    = "command"
	KeyDeps       = "deps"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
	KeyName       = "name"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func PlanID(id string) slog.Attr      { return slog.String(KeyPlanID, id) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Property(p string) slog.Attr     { return slog.String(KeyProperty, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Dir(d string) slog.Attr          { return slog.String(KeyDir, d) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func Deps(n int) slog.Attr            { return slog.Int(KeyDeps, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Name(n string) slog.Attr         { return slog.String(KeyName, n) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
