package log

import (
	"log/slog"
	"os"
)

// SetupLogger installs the library's default slog logger: JSON records on
// stderr with source locations, wrapped so that errors built by pkg/errors
// have their stacktraces expanded (see ErrFmtHandler). Iterative fitting
// progress uses the zerolog logger from zerolog.go instead; this logger
// carries errors and lifecycle events.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stderr, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
}

// ToLogLevel maps a level name ("debug", "info", "warn", "error") to its
// slog level. Unknown names map to info.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	// ErrAttrKey is the attribute key ErrAttr uses for error values.
	ErrAttrKey = "error"

	// StacktraceAttrKey is the attribute key ErrFmtHandler adds the
	// extracted stacktrace under.
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr wraps an error for slog so ErrFmtHandler can find it.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
