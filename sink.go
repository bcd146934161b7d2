package asynclog

// Sink is the capability set a drain goroutine needs: accept one rendered
// line, and flush. Write is called serially from the single drain goroutine
// of whichever Logger/MTLogger owns the sink; implementations need not be
// internally thread-safe.
type Sink interface {
	Write(line []byte) error
	Flush() error
	Close() error
}

// Console writes to stdout.
type Console struct {
	w consoleWriter
}

// consoleWriter is the subset of *os.File Console needs, so tests can swap
// in a buffer without touching the real stdout.
type consoleWriter interface {
	Write(p []byte) (int, error)
	Sync() error
}

// NewConsole returns a Sink that writes rendered lines to stdout.
func NewConsole() *Console {
	return &Console{w: osStdout{}}
}

func (c *Console) Write(line []byte) error {
	_, err := c.w.Write(line)
	if err != nil {
		return WrapError("Console.Write", err)
	}
	return nil
}

// Flush syncs the underlying writer, mirroring an fflush(stdout). Sync
// errors are swallowed: stdout is frequently a terminal or pipe that
// doesn't support fsync, and that's not a logging failure.
func (c *Console) Flush() error {
	_ = c.w.Sync()
	return nil
}

func (c *Console) Close() error { return nil }
