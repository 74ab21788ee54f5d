// Package errors provides cleanup helpers shared by storage drivers and commands.
package errors

import (
	"io"

	"github.com/rs/zerolog"
)

// DeferClose closes an io.Closer and logs a failure instead of dropping it.
func DeferClose(logger zerolog.Logger, closer io.Closer, msg string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Err(err).Msg(msg)
	}
}

// DeferCloseFunc is DeferClose for resources whose close method is not an io.Closer.
func DeferCloseFunc(logger zerolog.Logger, closeFn func() error, msg string) {
	if closeFn == nil {
		return
	}
	if err := closeFn(); err != nil {
		logger.Warn().Err(err).Msg(msg)
	}
}
