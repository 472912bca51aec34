// Package logging provides the leveled logger shared by the CLI and the PLC
// link. Errors always go to stderr; informational output is only printed at
// verbose level or above, so scripted use stays quiet. An optional file sink
// records everything regardless of console level.
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Level controls how much the logger emits.
type Level int

const (
	LevelSilent Level = iota
	LevelError
	LevelInfo
	LevelVerbose
	LevelDebug
)

// Logger is a small leveled logger over the standard library log package.
type Logger struct {
	mu      sync.Mutex
	level   Level
	file    *os.File
	fileLog *log.Logger
	stdout  *log.Logger
	stderr  *log.Logger
}

// New creates a logger at the given level. If logFile is non-empty, all
// messages are additionally written there with timestamps.
func New(level Level, logFile string) (*Logger, error) {
	l := &Logger{
		level:  level,
		stdout: log.New(os.Stdout, "", 0),
		stderr: log.New(os.Stderr, "", 0),
	}
	if logFile != "" {
		file, err := os.Create(logFile)
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		l.file = file
		l.fileLog = log.New(file, "", log.LstdFlags)
	}
	return l, nil
}

// Close flushes and closes the file sink, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// SetLevel changes the console level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Error logs an error message.
func (l *Logger) Error(format string, v ...interface{}) {
	if l != nil && l.level >= LevelError {
		l.write(fmt.Sprintf("ERROR: "+format, v...), true)
	}
}

// Info logs an informational message.
func (l *Logger) Info(format string, v ...interface{}) {
	if l != nil && l.level >= LevelInfo {
		l.write(fmt.Sprintf("INFO: "+format, v...), false)
	}
}

// Verbose logs a verbose message.
func (l *Logger) Verbose(format string, v ...interface{}) {
	if l != nil && l.level >= LevelVerbose {
		l.write(fmt.Sprintf("VERBOSE: "+format, v...), false)
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, v ...interface{}) {
	if l != nil && l.level >= LevelDebug {
		l.write(fmt.Sprintf("DEBUG: "+format, v...), false)
	}
}

func (l *Logger) write(msg string, isError bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog != nil {
		l.fileLog.Println(msg)
	}
	if isError {
		l.stderr.Println(msg)
	} else if l.level >= LevelVerbose {
		l.stdout.Println(msg)
	}
}

// LogStartup records how the link was configured.
func (l *Logger) LogStartup(ip string, rack, slot int, simulate bool) {
	if l == nil {
		return
	}
	if simulate {
		l.Info("Opening PLC link (simulator)")
		return
	}
	l.Info("Opening PLC link")
	l.Verbose("  Target: %s (rack %d, slot %d)", ip, rack, slot)
}

// LogDowngrade records the one-time fallback from the physical link to the
// simulator after a failed connect.
func (l *Logger) LogDowngrade(ip string, reason error) {
	if l == nil {
		return
	}
	l.Error("PLC at %s unreachable, downgrading to simulator: %v", ip, reason)
}

// LogTagWrite records a verified tag write.
func (l *Logger) LogTagWrite(tag string, value interface{}) {
	if l == nil {
		return
	}
	l.Verbose("wrote %s = %v", tag, value)
}

// LogHex dumps raw cell bytes at debug level.
func (l *Logger) LogHex(label string, data []byte) {
	if l == nil || l.level < LevelDebug {
		return
	}
	var b strings.Builder
	for i, by := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02x", by)
	}
	l.Debug("%s: %s", label, b.String())
}
