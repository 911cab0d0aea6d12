package kvstore

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cockroachdb/pebble"
)

// pebbleLogger adapts a *slog.Logger to pebble.Logger.
type pebbleLogger struct {
	logger *slog.Logger
}

var _ pebble.Logger = pebbleLogger{}

func newPebbleLogger(logger *slog.Logger) pebbleLogger {
	return pebbleLogger{logger: logger.With("component", "pebble")}
}

// Infof logs at Debug: Pebble reports WAL replays and compactions here.
func (l pebbleLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Fatalf logs at Error and exits; Pebble does not expect it to return.
func (l pebbleLogger) Fatalf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
