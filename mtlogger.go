package asynclog

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/go-asynclog/asynclog/internal/bufpool"
	"github.com/go-asynclog/asynclog/internal/diag"
	"github.com/go-asynclog/asynclog/internal/metrics"
	"github.com/go-asynclog/asynclog/internal/render"
	"github.com/go-asynclog/asynclog/internal/ring"
)

// MTLoggerConfig configures an MTLogger's construction-time knobs.
type MTLoggerConfig struct {
	// QueueCapacity sizes the MPMC ring; 0 uses defaultQueueCapacity.
	QueueCapacity int
}

// MTLogger is the multi-threaded front end: any number of producer
// goroutines calling Trace/Debug/.../Fatal concurrently, drained by a
// single goroutine, backed by a bounded MPMC ring that applies
// back-pressure instead of dropping under sustained overload.
type MTLogger struct {
	mu      sync.Mutex
	level   atomic.Int32
	stopped atomic.Bool

	sink     Sink
	r        *ring.MPMC[render.Record]
	queueCap int
	metrics  *metrics.Metrics

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewMTLogger constructs an uninitialized MTLogger; call Init to start
// draining.
func NewMTLogger(cfg MTLoggerConfig) *MTLogger {
	cap := cfg.QueueCapacity
	if cap <= 0 {
		cap = defaultQueueCapacity
	}
	l := &MTLogger{queueCap: cap, metrics: metrics.New()}
	l.level.Store(int32(levelUnset))
	l.stopped.Store(true)
	return l
}

// Init installs level and sink and starts a fresh drain goroutine. If a
// drain goroutine is already running, Init stops it first.
func (l *MTLogger) Init(level LogLevel, sink Sink) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		l.stopLocked()
	}
	if sink == nil {
		sink = NewConsole()
	}
	if l.r == nil {
		l.r = ring.NewMPMC[render.Record](l.queueCap)
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
// whatever remains in the ring. Producers blocked in Push on a full ring
// are not released by Stop; callers must stop producing before calling it.
func (l *MTLogger) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopLocked()
}

func (l *MTLogger) stopLocked() error {
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
func (l *MTLogger) Close() error { return l.Stop() }

// SetLevel replaces the threshold. Only valid while stopped.
func (l *MTLogger) SetLevel(level LogLevel) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return &OpError{Op: "MTLogger.SetLevel", Code: ErrCodeInvalidState, Msg: "cannot change level while running"}
	}
	l.level.Store(int32(level))
	return nil
}

// SetSink replaces the installed sink. Only valid while stopped.
func (l *MTLogger) SetSink(sink Sink) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return &OpError{Op: "MTLogger.SetSink", Code: ErrCodeInvalidState, Msg: "cannot change sink while running"}
	}
	l.sink = sink
	return nil
}

// Metrics returns a point-in-time snapshot of this logger's counters.
func (l *MTLogger) Metrics() metrics.Snapshot {
	return l.metrics.Snapshot()
}

func (l *MTLogger) emit(level LogLevel, line int, file, template string, args []any) {
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
		ThreadID:   unix.Gettid(),
		MT:         true,
		CapturedAt: time.Now(),
	}
	l.r.Push(rec)
	l.metrics.RecordEnqueue(true)
}

// Trace, Debug, Info, Warn, Error and Fatal mirror the emit-site macro's
// expansion: line is the caller-supplied __LINE__ equivalent, and file is
// auto-detected from the immediate caller's frame. Safe to call from any
// number of goroutines concurrently.
func (l *MTLogger) Trace(line int, template string, args ...any) {
	l.emitFrom(1, LevelTrace, line, template, args)
}
func (l *MTLogger) Debug(line int, template string, args ...any) {
	l.emitFrom(1, LevelDebug, line, template, args)
}
func (l *MTLogger) Info(line int, template string, args ...any) {
	l.emitFrom(1, LevelInfo, line, template, args)
}
func (l *MTLogger) Warn(line int, template string, args ...any) {
	l.emitFrom(1, LevelWarn, line, template, args)
}
func (l *MTLogger) Error(line int, template string, args ...any) {
	l.emitFrom(1, LevelError, line, template, args)
}
func (l *MTLogger) Fatal(line int, template string, args ...any) {
	l.emitFrom(1, LevelFatal, line, template, args)
}

func (l *MTLogger) emitFrom(skip int, level LogLevel, line int, template string, args []any) {
	_, file, _, ok := runtime.Caller(skip + 1)
	if !ok {
		file = "unknown"
	}
	l.emit(level, line, file, template, args)
}

func (l *MTLogger) drainLoop(stopCh, doneCh chan struct{}, r *ring.MPMC[render.Record], sink Sink) {
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

func (l *MTLogger) process(rec render.Record, sink Sink) {
	line := render.Line(&rec, mtSprintfTemplate)
	err := sink.Write(line)
	latency := time.Since(rec.CapturedAt)
	l.metrics.RecordSink(uint64(len(line)), uint64(latency.Nanoseconds()), err != nil)
	if err != nil {
		diag.Warn("sink write failed", "error", err)
	}
	bufpool.Put(line)
}

func mtSprintfTemplate(template string, args ...any) string {
	return fmt.Sprintf(template, args...)
}
