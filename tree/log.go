package tree

import (
	"os"

	"github.com/rs/zerolog"
)

// logger receives the anomalous-leaf warnings. Defaults to plain stderr at
// warn level; embedders can swap in their own sink.
var logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)

// SetLogger replaces the package logger.
func SetLogger(l zerolog.Logger) {
	logger = l
}
