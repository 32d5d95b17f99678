// Package logs is a small leveled logger in the style the rest of this
// codebase expects: package-level Trace/Debug/Verbose/Info/Warn/Error
// functions backed by the standard library's log.Logger, split across
// stdout and stderr by severity.
package logs

import (
	"log"
	"os"
)

const (
	LevelTrace = iota
	LevelDebug
	LevelVerbose
	LevelInfo
	LevelWarning
	LevelError
)

var logLevel = LevelInfo

// prefix is prepended to every line, set once at startup by the engine
// constructor to identify which authority a process is running as. It
// is empty for a validator-only node.
var prefix = ""

type logger struct {
	trace, debug, verbose, info, warn, err *log.Logger
}

var l *logger

func init() {
	l = &logger{
		trace:   log.New(os.Stdout, "[TRACE]   ", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile),
		debug:   log.New(os.Stdout, "[DEBUG]   ", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile),
		verbose: log.New(os.Stdout, "[VERBOSE] ", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile),
		info:    log.New(os.Stdout, "[INFO]    ", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile),
		warn:    log.New(os.Stdout, "[WARN]    ", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile),
		err:     log.New(os.Stderr, "[ERROR]   ", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile),
	}
}

// SetLevel changes the minimum level that reaches output.
func SetLevel(level int) {
	logLevel = level
}

// SetPrefix tags every subsequent log line with p, e.g. the local
// authority's short KeyId. Call once at startup; it is not safe to
// change concurrently with logging calls.
func SetPrefix(p string) {
	if p != "" {
		prefix = "[" + p + "] "
	} else {
		prefix = ""
	}
}

func Trace(format string, v ...interface{}) {
	if logLevel <= LevelTrace {
		l.trace.Printf(prefix+format, v...)
	}
}

func Debug(format string, v ...interface{}) {
	if logLevel <= LevelDebug {
		l.debug.Printf(prefix+format, v...)
	}
}

func Verbose(format string, v ...interface{}) {
	if logLevel <= LevelVerbose {
		l.verbose.Printf(prefix+format, v...)
	}
}

func Info(format string, v ...interface{}) {
	if logLevel <= LevelInfo {
		l.info.Printf(prefix+format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	if logLevel <= LevelWarning {
		l.warn.Printf(prefix+format, v...)
	}
}

func Error(format string, v ...interface{}) {
	if logLevel <= LevelError {
		l.err.Printf(prefix+format, v...)
	}
}
