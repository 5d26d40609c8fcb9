package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	Debug bool
	log   *logrus.Logger
}

func NewLogger(debug bool) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	l.SetLevel(logrus.InfoLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}

	return &Logger{Debug: debug, log: l}
}

// SetOutput redirects every log line, used by tests and the API server.
func (l *Logger) SetOutput(w io.Writer) {
	l.log.SetOutput(w)
}

// WithFields returns an entry carrying structured fields.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.log.WithFields(fields)
}

func (l *Logger) Debugf(format string, args ...any) {
	if l.Debug {
		l.log.Debug(line(format, args...))
	}
}

func (l *Logger) Infof(format string, args ...any) {
	l.log.Info(line(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log.Error(line(format, args...))
}

// logrus adds its own newline.
func line(format string, args ...any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
