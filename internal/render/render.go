// Package render turns a captured job into the byte-exact log line text,
// off the producer's critical path on the drain goroutine.
package render

import (
	"strconv"
	"time"

	"github.com/agilira/go-timecache"

	"github.com/go-asynclog/asynclog/internal/bufpool"
)

// Level identifies the severity tag rendered into a line.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelTags = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// String returns the tag used in a rendered line, e.g. "INFO".
func (l Level) String() string {
	if l < 0 || int(l) >= len(levelTags) {
		return "UNKNOWN"
	}
	return levelTags[l]
}

// clock supplies the "time the drain goroutine renders the record" reading
// required by the line format, cached to avoid a syscall per record.
var clock = timecache.NewWithResolution(time.Millisecond)

// Record is a dequeued job ready to be rendered: everything captured at the
// emit site, plus the thread id filled in by the MT front end (zero for ST).
type Record struct {
	Level    Level
	File     string
	Line     int
	Template string
	Args     []any
	ThreadID int // 0 and MT is false means the field is omitted
	MT       bool

	// CapturedAt is the emit-site timestamp, used by the front end to measure
	// enqueue-to-write latency. It does not appear in the rendered line; the
	// line's own timestamp comes from clock at render time.
	CapturedAt time.Time
}

// estimateSize returns a rough line-length estimate used to pick a bufpool
// bucket; overshooting just means a bigger bucket, never truncation.
func estimateSize(r *Record) int {
	return 48 + len(r.File) + len(r.Template) + 16*len(r.Args)
}

// Line renders r into a pooled buffer, byte-exact per the configured format:
// "[<thread-id>][<unix-seconds>][<LEVEL>][<file>:<line>]: <message>\n"
// with the thread-id bracket omitted entirely for single-threaded records.
func Line(r *Record, format func(template string, args ...any) string) []byte {
	buf := bufpool.Get(estimateSize(r))

	if r.MT {
		buf = append(buf, '[')
		buf = strconv.AppendInt(buf, int64(r.ThreadID), 10)
		buf = append(buf, ']')
	}

	buf = append(buf, '[')
	buf = strconv.AppendInt(buf, clock.CachedTime().Unix(), 10)
	buf = append(buf, ']')

	buf = append(buf, '[')
	buf = append(buf, r.Level.String()...)
	buf = append(buf, ']')

	buf = append(buf, '[')
	buf = append(buf, r.File...)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(r.Line), 10)
	buf = append(buf, ']')

	buf = append(buf, ':', ' ')
	buf = append(buf, format(r.Template, r.Args...)...)
	buf = append(buf, '\n')

	return buf
}
