// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

var traceEnabled bool

// InitLogger sets up Apex with a custom handler and a log level from the
// AUTOPR_LOG env variable. Output goes to stderr so that command results on
// stdout stay clean for callers piping them.
func InitLogger() {
	envLevel := strings.ToLower(os.Getenv("AUTOPR_LOG"))
	if envLevel == "" {
		envLevel = "error"
	}
	traceEnabled = envLevel == "trace"
	log.SetHandler(&CustomHandler{Writer: os.Stderr})
	log.SetLevel(ParseLevel(envLevel))
}

// ParseLevel maps an AUTOPR_LOG value onto an apex level. Unknown values fall
// back to error.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.ErrorLevel
	}
}

// CustomHandler formats log messages as "timestamp level message fields".
type CustomHandler struct {
	mu     sync.Mutex
	Writer io.Writer
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := e.Message
	level := "?"
	if strings.HasPrefix(message, "TRACE: ") {
		level = "T"
		message = message[7:]
	} else {
		switch e.Level {
		case log.DebugLevel:
			level = "D"
		case log.InfoLevel:
			level = "I"
		case log.WarnLevel:
			level = "W"
		case log.ErrorLevel:
			level = "E"
		case log.FatalLevel:
			level = "F"
		}
	}

	for _, name := range e.Fields.Names() {
		message += fmt.Sprintf(" %s=%v", name, e.Fields.Get(name))
	}

	w := h.Writer
	if w == nil {
		w = os.Stderr
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(w, "%s %s %s\n", timestamp, level, message)
	return err
}

// Tracef logs at Trace level (below Debug).
func Tracef(format string, args ...interface{}) {
	if traceEnabled {
		log.Debug("TRACE: " + fmt.Sprintf(format, args...))
	}
}

// Debugf logs at Debug level.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Infof logs at Info level.
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Errorf logs at Error level.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Debug logs at Debug level.
func Debug(msg string) {
	log.Debug(msg)
}

// Warnf logs at Warn level.
func Warnf(format string, args ...interface{}) {
	log.Warn(fmt.Sprintf(format, args...))
}

// WithError returns an entry with error.
func WithError(err error) *log.Entry {
	return log.WithError(err)
}

// WithField returns an entry with a single field.
func WithField(key string, value interface{}) *log.Entry {
	return log.WithField(key, value)
}
