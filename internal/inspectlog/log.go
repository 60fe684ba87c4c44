// Package inspectlog is SharpInspect's own internal diagnostic logger. It
// writes directly to os.Stderr and must never be wrapped by ConsoleHook,
// which would recapture SharpInspect's own log lines and recurse (spec.md
// §4.3: "logged to stderr bypassing the ConsoleHook (to avoid recursion)").
//
// Adapted from logger/logger.go in the teacher repo (kept nearly as-is: it
// already matches this requirement exactly — a level-gated trio of
// *log.Logger writing straight to os.Stderr).
package inspectlog

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Level is this package's own minimal verbosity level, independent of
// model.Level (console capture severity) since this logger reports on
// SharpInspect's own internals, not captured application output.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

// Logger is a structured, levelled logger that always targets os.Stderr.
type Logger struct {
	infoLog  *log.Logger
	errorLog *log.Logger
	debugLog *log.Logger
	mu       sync.RWMutex
	level    Level
}

// bypassTarget is captured at package load time, before ConsoleHook.Install
// can ever run (Install only happens later, from Controller.Initialize).
// Every Logger writes here instead of to the live os.Stderr variable, so
// console capture reassigning os.Stderr to a pipe can never loop this
// logger's own output back into itself.
var bypassTarget = os.Stderr

// New creates a Logger writing to the pristine stderr at the given minimum
// level.
func New(level Level) *Logger {
	flags := log.Ldate | log.Ltime | log.Lmicroseconds
	return &Logger{
		infoLog:  log.New(bypassTarget, "sharpinspect INFO  ", flags),
		errorLog: log.New(bypassTarget, "sharpinspect ERROR ", flags),
		debugLog: log.New(bypassTarget, "sharpinspect DEBUG ", flags),
		level:    level,
	}
}

// Default is a package-level logger used by components that are not handed
// one explicitly (e.g. EventBus's handler-panic isolation, which must log
// without any dependency on the rest of the container).
var Default = New(LevelInfo)

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *Logger) Info(msg string) {
	l.mu.RLock()
	lvl := l.level
	l.mu.RUnlock()
	if lvl <= LevelInfo {
		l.infoLog.Output(2, msg) //nolint:errcheck
	}
}

func (l *Logger) Infof(format string, args ...interface{}) { l.Info(fmt.Sprintf(format, args...)) }

func (l *Logger) Error(msg string) {
	l.mu.RLock()
	lvl := l.level
	l.mu.RUnlock()
	if lvl <= LevelError {
		l.errorLog.Output(2, msg) //nolint:errcheck
	}
}

func (l *Logger) Errorf(format string, args ...interface{}) { l.Error(fmt.Sprintf(format, args...)) }

func (l *Logger) Debug(msg string) {
	l.mu.RLock()
	lvl := l.level
	l.mu.RUnlock()
	if lvl <= LevelDebug {
		l.debugLog.Output(2, msg) //nolint:errcheck
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.Debug(fmt.Sprintf(format, args...)) }
