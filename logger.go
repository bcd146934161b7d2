package asynclog

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-asynclog/asynclog/internal/bufpool"
	"github.com/go-asynclog/asynclog/internal/diag"
	"github.com/go-asynclog/asynclog/internal/metrics"
	"github.com/go-asynclog/asynclog/internal/render"
	"github.com/go-asynclog/asynclog/internal/ring"
)

const defaultQueueCapacity = 1024

// LoggerConfig configures a Logger's construction-time knobs.
type LoggerConfig struct {
	// QueueCapacity sizes the SPSC ring; 0 uses defaultQueueCapacity.
	QueueCapacity int
}

// Logger is the single-threaded front end: one producer (the application,
// assumed serialized by the caller) and one drain goroutine, backed by a
// bounded SPSC ring.
type Logger struct {
	mu      sync.Mutex // guards lifecycle: running, sink, ring swap
	level   atomic.Int32
	stopped atomic.Bool

	sink     Sink
	r        *ring.SPSC[render.Record]
	queueCap int
	metrics  *metrics.Metrics

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewLogger constructs an uninitialized Logger; call Init to start draining.
func NewLogger(cfg LoggerConfig) *Logger {
	cap := cfg.QueueCapacity
	if cap <= 0 {
		cap = defaultQueueCapacity
	}
	l := &Logger{queueCap: cap, metrics: metrics.New()}
	l.level.Store(int32(levelUnset))
	l.stopped.Store(true)
	return l
}

// Init installs level and sink and starts a fresh drain goroutine. If a
// drain goroutine is already running, Init stops it first.
func (l *Logger) Init(level LogLevel, sink Sink) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		l.stopLocked()
	}
	if sink == nil {
		sink = NewConsole()
	}
	if l.r == nil {
		l.r = ring.NewSPSC[render.Record](l.queueCap)
	}

	l.sink = sink
	l.level.Store(int32(level))
	l.stopped.Store(false)

	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	l.running = true

	go l.drainLoop(l.stopCh, l.doneCh, l.r, sink)
	return nil
}

// Stop sets the stop flag and joins the drain goroutine, which first drains
// whatever remains in the ring.
func (l *Logger) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopLocked()
}

func (l *Logger) stopLocked() error {
	if !l.running {
		return nil
	}
	l.stopped.Store(true)
	close(l.stopCh)
	<-l.doneCh
	l.running = false
	return nil
}

// Close stops the logger, satisfying io.Closer.
func (l *Logger) Close() error { return l.Stop() }

// SetLevel replaces the threshold. Only valid while stopped.
func (l *Logger) SetLevel(level LogLevel) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return &OpError{Op: "Logger.SetLevel", Code: ErrCodeInvalidState, Msg: "cannot change level while running"}
	}
	l.level.Store(int32(level))
	return nil
}

// SetSink replaces the installed sink. Only valid while stopped.
func (l *Logger) SetSink(sink Sink) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return &OpError{Op: "Logger.SetSink", Code: ErrCodeInvalidState, Msg: "cannot change sink while running"}
	}
	l.sink = sink
	return nil
}

// Metrics returns a point-in-time snapshot of this logger's counters.
func (l *Logger) Metrics() metrics.Snapshot {
	return l.metrics.Snapshot()
}

func (l *Logger) emit(level LogLevel, line int, file, template string, args []any) {
	if level < LogLevel(l.level.Load()) {
		return
	}
	if l.stopped.Load() {
		return
	}
	rec := render.Record{
		Level:      render.Level(level),
		File:       file,
		Line:       line,
		Template:   template,
		Args:       args,
		CapturedAt: time.Now(),
	}
	ok := l.r.TryPush(rec)
	l.metrics.RecordEnqueue(ok)
}

// Trace, Debug, Info, Warn, Error and Fatal mirror the emit-site macro's
// expansion: line is the caller-supplied __LINE__ equivalent, and file is
// auto-detected from the immediate caller's frame.
func (l *Logger) Trace(line int, template string, args ...any) {
	l.emitFrom(1, LevelTrace, line, template, args)
}
func (l *Logger) Debug(line int, template string, args ...any) {
	l.emitFrom(1, LevelDebug, line, template, args)
}
func (l *Logger) Info(line int, template string, args ...any) {
	l.emitFrom(1, LevelInfo, line, template, args)
}
func (l *Logger) Warn(line int, template string, args ...any) {
	l.emitFrom(1, LevelWarn, line, template, args)
}
func (l *Logger) Error(line int, template string, args ...any) {
	l.emitFrom(1, LevelError, line, template, args)
}
func (l *Logger) Fatal(line int, template string, args ...any) {
	l.emitFrom(1, LevelFatal, line, template, args)
}

// emitFrom resolves the file of the caller skip frames up from itself, then
// delegates to emit. skip=1 means "my direct caller" (a Trace/Debug/... call
// from user code).
func (l *Logger) emitFrom(skip int, level LogLevel, line int, template string, args []any) {
	_, file, _, ok := runtime.Caller(skip + 1)
	if !ok {
		file = "unknown"
	}
	l.emit(level, line, file, template, args)
}

func (l *Logger) drainLoop(stopCh, doneCh chan struct{}, r *ring.SPSC[render.Record], sink Sink) {
	defer close(doneCh)
	for {
		if rec, ok := r.TryPop(); ok {
			l.process(rec, sink)
			continue
		}
		select {
		case <-stopCh:
			for {
				rec, ok := r.TryPop()
				if !ok {
					return
				}
				l.process(rec, sink)
			}
		default:
			runtime.Gosched()
		}
	}
}

func (l *Logger) process(rec render.Record, sink Sink) {
	line := render.Line(&rec, sprintfTemplate)
	err := sink.Write(line)
	latency := time.Since(rec.CapturedAt)
	l.metrics.RecordSink(uint64(len(line)), uint64(latency.Nanoseconds()), err != nil)
	if err != nil {
		diag.Warn("sink write failed", "error", err)
	}
	bufpool.Put(line)
}

func sprintfTemplate(template string, args ...any) string {
	return fmt.Sprintf(template, args...)
}
