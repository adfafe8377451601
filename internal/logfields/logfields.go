package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyLocale     = "locale"
	KeyTemplate   = "template"
	KeyTarget     = "target"
	KeyPath       = "path"
	KeyOutput     = "output"
	KeySource     = "source"
	KeyDirectory  = "directory"
	KeyMode       = "mode"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Locale(l string) slog.Attr       { return slog.String(KeyLocale, l) }
func Template(name string) slog.Attr  { return slog.String(KeyTemplate, name) }
func Target(name string) slog.Attr    { return slog.String(KeyTarget, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Source(p string) slog.Attr       { return slog.String(KeySource, p) }
func Directory(d string) slog.Attr    { return slog.String(KeyDirectory, d) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
