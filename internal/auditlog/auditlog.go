// Package auditlog appends job audit lines to plain-text log files. Each job
// writes its own file; a sink failure is reported to the caller so the job
// can log a warning without failing the run.
package auditlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Sink receives one audit line at a time. Implementations must be safe for
// concurrent use.
type Sink interface {
	WriteLine(line string) error
}

// FileSink appends lines to a file, creating it (and its directory) on first
// write.
type FileSink struct {
	path string
	mu   sync.Mutex
}

var _ Sink = (*FileSink)(nil)

// NewFileSink returns a sink appending to the file at path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// WriteLine implements Sink. A trailing newline is added when missing.
func (s *FileSink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("auditlog: create directory %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("auditlog: open %s: %w", s.path, err)
	}
	defer f.Close()

	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("auditlog: write %s: %w", s.path, err)
	}
	return nil
}
