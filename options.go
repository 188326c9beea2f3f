package patchbay

import "log/slog"

// Option configures a Board at construction time.
type Option func(*Board)

// WithLogger sets the logger used for board diagnostics.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) {
		b.logger = logger
	}
}

// WithRecorder sets the activity recorder.
// Defaults to a recorder that does nothing.
func WithRecorder(rec Recorder) Option {
	return func(b *Board) {
		b.rec = rec
	}
}

// exportOptions collects per-registration settings.
type exportOptions struct {
	key string
}

// ExportOption configures a single Add call.
type ExportOption func(*exportOptions)

// WithKey registers the export under an opaque string key. A keyed export
// resolves only through key lookups, never by type. WithKey overrides a key
// declared via the Keyed interface.
func WithKey(key string) ExportOption {
	return func(o *exportOptions) {
		o.key = key
	}
}
