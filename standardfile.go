package asynclog

import (
	"os"

	"github.com/agilira/go-timecache"
)

// StandardFileConfig configures a StandardFile sink.
type StandardFileConfig struct {
	// Path to open. Empty uses "YYYYMMDD_HHMMSS.log" in the current
	// directory, timestamped at open time.
	Path string
	// Append opens with O_APPEND when true, O_TRUNC when false.
	Append bool
	// Mode is the file's permission bits; defaults to 0600.
	Mode os.FileMode
}

// StandardFile is a synchronous file sink: every Write is a direct blocking
// write syscall, Flush calls fsync.
type StandardFile struct {
	f *os.File
}

// NewStandardFile opens cfg.Path (or a timestamped default) and returns a
// StandardFile sink.
func NewStandardFile(cfg StandardFileConfig) (*StandardFile, error) {
	path := cfg.Path
	if path == "" {
		path = defaultLogPath()
	}
	mode := cfg.Mode
	if mode == 0 {
		mode = 0600
	}
	flags := os.O_WRONLY | os.O_CREATE
	if cfg.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, mode)
	if err != nil {
		return nil, &OpError{Op: "StandardFile.Open", Code: ErrCodeFileOpen, Msg: err.Error(), Inner: err}
	}
	return &StandardFile{f: f}, nil
}

func defaultLogPath() string {
	return timecache.DefaultCache().CachedTime().Format("20060102_150405") + ".log"
}

func (s *StandardFile) Write(line []byte) error {
	if _, err := s.f.Write(line); err != nil {
		return WrapError("StandardFile.Write", err)
	}
	return nil
}

func (s *StandardFile) Flush() error {
	if err := s.f.Sync(); err != nil {
		return WrapError("StandardFile.Flush", err)
	}
	return nil
}

func (s *StandardFile) Close() error {
	_ = s.Flush()
	if err := s.f.Close(); err != nil {
		return WrapError("StandardFile.Close", err)
	}
	return nil
}
