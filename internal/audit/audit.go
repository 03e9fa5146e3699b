// Package audit records one append-only, masked event per dispatch attempt.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a dispatch attempt.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

const maskMarker = "***"

// secretFields are the payload keys that carry secrets and are masked
// before serialization.
var secretFields = map[string]bool{
	"token":         true,
	"client_id":     true,
	"client_secret": true,
}

// Mask redacts a secret value, retaining only a short suffix for
// correlation: values longer than 8 characters keep their last 8 behind
// the marker, shorter values are replaced entirely.
func Mask(s string) string {
	if s == "" {
		return s
	}
	if len(s) > 8 {
		return maskMarker + s[len(s)-8:]
	}
	return maskMarker
}

// Logger appends audit events to a single process-wide sink. The sink is
// opened lazily on first use and reused for the process lifetime. Record
// never fails: serialization problems degrade to a textual fallback and
// sink problems are reported on the operational logger only.
type Logger struct {
	logger *slog.Logger

	path    string
	once    sync.Once
	sink    io.Writer
	openErr error

	now   func() time.Time
	newID func() string
}

// NewFileLogger creates a Logger that appends to the file at path,
// creating it (and its directory) on first Record.
func NewFileLogger(path string, logger *slog.Logger) *Logger {
	return &Logger{
		logger: logger.With("component", "AuditLogger"),
		path:   path,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// NewWriterLogger creates a Logger over an existing sink. Used by tests
// and by deployments that ship audit lines to stdout.
func NewWriterLogger(w io.Writer, logger *slog.Logger) *Logger {
	return &Logger{
		logger: logger.With("component", "AuditLogger"),
		sink:   w,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Record appends exactly one line for one dispatch attempt. Secret-bearing
// payload and result fields are masked before serialization; result and
// error render as an explicit "null" when absent.
func (l *Logger) Record(name string, status Status, payload, result map[string]any, cause error) {
	sink := l.openOnce()
	if sink == nil {
		return
	}

	errText := "null"
	if cause != nil {
		errText = cause.Error()
	}

	resultText := "null"
	if result != nil {
		resultText = marshalMasked(result)
	}

	line := fmt.Sprintf("%s INFO %s status=%s event_id=%s payload=%s result=%s error=%s\n",
		l.now().Format("2006-01-02 15:04:05"),
		name,
		status,
		l.newID(),
		marshalMasked(payload),
		resultText,
		errText,
	)

	// One Write per event; line-oriented appends are treated as atomic.
	if _, err := sink.Write([]byte(line)); err != nil {
		l.logger.Error("Failed to append audit event", "event", name, "err", err)
	}
}

func (l *Logger) openOnce() io.Writer {
	l.once.Do(func() {
		if l.sink != nil || l.path == "" {
			return
		}
		if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
			l.openErr = err
			return
		}
		f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			l.openErr = err
			return
		}
		l.sink = f
	})
	if l.openErr != nil {
		l.logger.Error("Audit sink unavailable, dropping event", "path", l.path, "err", l.openErr)
		return nil
	}
	return l.sink
}

func marshalMasked(fields map[string]any) string {
	masked := make(map[string]any, len(fields))
	for k, v := range fields {
		if secretFields[k] {
			if s, ok := v.(string); ok {
				masked[k] = Mask(s)
				continue
			}
		}
		masked[k] = v
	}
	b, err := json.Marshal(masked)
	if err != nil {
		// Best-effort fallback; the record must still be written.
		return fmt.Sprintf("%v", masked)
	}
	return string(b)
}
