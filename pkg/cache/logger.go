package cache

import "log/slog"

// Logger is the structured logger used for library-internal
// diagnostics (tile loads, cancellation, corrupt-index detection). It
// wraps log/slog rather than plain fmt.Fprintf output, since this is
// a library concern, not terminal output.
type Logger struct {
	base *slog.Logger
}

// NewLogger wraps base, or slog.Default() if base is nil.
func NewLogger(base *slog.Logger) *Logger {
	if base == nil {
		base = slog.Default()
	}
	return &Logger{base: base}
}

func (l *Logger) loadStarted(sequence string, first, last int) {
	l.base.Debug("loading tiles", "sequence", sequence, "first", first, "last", last)
}

func (l *Logger) progress(sequence string, count int) {
	l.base.Debug("reads loaded", "sequence", sequence, "count", count)
}

func (l *Logger) corruptIndex(err error) {
	l.base.Error("corrupt index detected, queries will short-circuit until restart", "error", err)
}

func (l *Logger) cancelled(sequence string) {
	l.base.Warn("load cancelled", "sequence", sequence)
}

func (l *Logger) visibilityChanged(oldKB, newKB float64, invalidated bool) {
	l.base.Info("visibility window changed", "old_kb", oldKB, "new_kb", newKB, "store_invalidated", invalidated)
}
