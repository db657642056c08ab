package gettingback

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is what the scene, the GPU layer and the commands report through.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type level string

const (
	levelDebug level = "DEBUG"
	levelInfo  level = "INFO"
	levelWarn  level = "WARN"
	levelError level = "ERROR"
)

// DefaultLogger prints timestamped "[prefix] LEVEL: message" lines.
type DefaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
}

// NewLogger writes to w, or to stderr when w is nil. The commands pass their
// error stream so that logs never mix with the output they print.
func NewLogger(prefix string, w io.Writer, debug bool) *DefaultLogger {
	if w == nil {
		w = os.Stderr
	}
	return &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(w, "", log.LstdFlags|log.Lmicroseconds),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) print(lv level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		l.out.Printf("%s: %s", lv, msg)
		return
	}
	l.out.Printf("[%s] %s: %s", l.prefix, lv, msg)
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if l.DebugEnabled() {
		l.print(levelDebug, format, args...)
	}
}

func (l *DefaultLogger) Infof(format string, args ...any)  { l.print(levelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.print(levelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.print(levelError, format, args...) }

type nopLogger struct{}

func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool    { return false }
func (nopLogger) SetDebug(bool)         {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// orNop never returns nil.
func orNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}
