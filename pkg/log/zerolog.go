package log

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/NLawrenz/localreg/pkg/errors"
)

// NewProgressLogger returns a zerolog logger suitable for per-iteration
// progress output from iterative fitting procedures. Progress records go to
// the given writer; structured fields use the keys defined in attributes.go.
func NewProgressLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// UseZerologWarnings routes library warnings (errors.Warn) through the given
// zerolog logger. Warning types that implement zerolog.LogObjectMarshaler are
// embedded as structured objects.
func UseZerologWarnings(logger zerolog.Logger) {
	errors.SetZerologWarnFunc(func(warning error) {
		ev := logger.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(obj)
		}
		ev.Msg(warning.Error())
	})
}
