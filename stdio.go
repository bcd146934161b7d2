package asynclog

import "os"

// osStdout adapts os.Stdout to consoleWriter.
type osStdout struct{}

func (osStdout) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (osStdout) Sync() error                 { return os.Stdout.Sync() }
