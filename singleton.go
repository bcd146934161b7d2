package asynclog

import "sync"

var (
	defaultOnce   sync.Once
	defaultLogger *Logger

	defaultMTOnce   sync.Once
	defaultMTLogger *MTLogger
)

// Default returns the process-wide single-threaded Logger, constructing it
// uninitialized on first use. Callers must still call Init before emitting.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = NewLogger(LoggerConfig{})
	})
	return defaultLogger
}

// DefaultMT returns the process-wide multi-threaded MTLogger, constructing
// it uninitialized on first use. Callers must still call Init before
// emitting.
func DefaultMT() *MTLogger {
	defaultMTOnce.Do(func() {
		defaultMTLogger = NewMTLogger(MTLoggerConfig{})
	})
	return defaultMTLogger
}
