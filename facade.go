package asynclog

import "runtime"

// Init installs level and sink on the process-wide single-threaded Logger
// and starts its drain goroutine.
func Init(level LogLevel, sink Sink) error {
	return Default().Init(level, sink)
}

// Stop stops the process-wide single-threaded Logger.
func Stop() error {
	return Default().Stop()
}

// Trace, Debug, Info, Warn, Error and Fatal emit on the process-wide
// single-threaded Logger. File and line are both auto-detected from the
// immediate caller, so these call emit directly rather than going through
// Logger.Trace/.../Fatal, which would add an extra stack frame.
func Trace(template string, args ...any) { packageEmit(LevelTrace, template, args) }
func Debug(template string, args ...any) { packageEmit(LevelDebug, template, args) }
func Info(template string, args ...any)  { packageEmit(LevelInfo, template, args) }
func Warn(template string, args ...any)  { packageEmit(LevelWarn, template, args) }
func Error(template string, args ...any) { packageEmit(LevelError, template, args) }
func Fatal(template string, args ...any) { packageEmit(LevelFatal, template, args) }

func packageEmit(level LogLevel, template string, args []any) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
	}
	Default().emit(level, line, file, template, args)
}
