package util

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logger *zerolog.Logger

// SetLogger replaces the logger used for operation tracing. Call it once at
// startup; it is not safe to call concurrently with the helpers.
func SetLogger(l zerolog.Logger) {
	logger = &l
}

func getLogger() *zerolog.Logger {
	if logger != nil {
		return logger
	}
	return &log.Logger
}
