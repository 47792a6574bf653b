package process

import (
	"strings"
	"time"
)

// Result holds the output and status of a completed subprocess.
type Result struct {
	Stdout []byte
	Stderr []byte
	// ExitCode is -1 if the process was killed or never started.
	ExitCode int
	Duration time.Duration
}

// Output returns stdout without the trailing newline.
func (r *Result) Output() string {
	return strings.TrimRight(string(r.Stdout), "\r\n")
}

// StderrTail returns at most the last n bytes of stderr, trimmed.
func (r *Result) StderrTail(n int) string {
	s := strings.TrimSpace(string(r.Stderr))
	if n > 0 && len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}
