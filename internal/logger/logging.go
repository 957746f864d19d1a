// Package logger provides modifications to charmbracelet/log's default logger to be used in various files/packages.
//
// Stdout carries the completed command line back to the shell, so nothing
// here ever logs to it.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a charm log on stderr that respects the global log level.
func New(prefix string) *log.Logger {
	return NewWithConfig(os.Stderr, prefix, log.GetLevel(), false, false, log.TextFormatter)
}

// NewWithConfig creates a new charm log with custom config
func NewWithConfig(w io.Writer, prefix string, level log.Level, caller bool, showTimestamp bool, formatter log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       formatter,
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup points the default logger at path, or stderr if path is empty, and
// sets its level: Debug with timestamps when debug is on, Warn otherwise.
// The returned Closer releases the log file.
func Setup(debug bool, path string) (io.Closer, error) {
	var closer io.Closer = nopCloser{}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(f)
		closer = f
	} else {
		log.SetOutput(os.Stderr)
	}

	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
		log.SetReportTimestamp(false)
	}
	return closer, nil
}
