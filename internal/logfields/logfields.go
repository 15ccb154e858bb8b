package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyFile       = "file"
	KeyPost       = "post"
	KeySlug       = "slug"
	KeyTag        = "tag"
	KeyStage      = "stage"
	KeyTemplate   = "template"
	KeyLayout     = "layout"
	KeyBuildID    = "build_id"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyOutput     = "output"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Post(p string) slog.Attr          { return slog.String(KeyPost, p) }
func Slug(s string) slog.Attr          { return slog.String(KeySlug, s) }
func Tag(t string) slog.Attr           { return slog.String(KeyTag, t) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Template(name string) slog.Attr   { return slog.String(KeyTemplate, name) }
func Layout(name string) slog.Attr     { return slog.String(KeyLayout, name) }
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Output(dir string) slog.Attr      { return slog.String(KeyOutput, dir) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
