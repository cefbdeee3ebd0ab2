// Package debug provides conditional debug logging for cv.
//
// Logging is enabled by setting CV_DEBUG:
//
//	CV_DEBUG=1 cv --robot-filter --cic CIC01
//
// Messages go to stderr until SetOutput redirects them. The TUI owns the
// terminal, so cmd/cv points the logger at CV_DEBUG_FILE (default
// cv-debug.log) before starting the program. When disabled every function is
// a no-op.
package debug

import (
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// DefaultLogFile is used when CV_DEBUG_FILE is unset.
const DefaultLogFile = "cv-debug.log"

const prefix = "[CV_DEBUG] "

var (
	mu      sync.Mutex
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("CV_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output, e.g. to the file returned by
// tea.LogToFile.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = log.New(w, prefix, log.Ltime|log.Lmicroseconds)
		return
	}
	logger.SetOutput(w)
}

// LogFile returns the path debug output should go to while the TUI runs.
func LogFile() string {
	if p := os.Getenv("CV_DEBUG_FILE"); p != "" {
		return p
	}
	return DefaultLogFile
}

func active() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return nil
	}
	return logger
}

// Log writes a printf-style debug message.
func Log(format string, args ...any) {
	if l := active(); l != nil {
		l.Printf(format, args...)
	}
}

// LogTiming writes a timing message.
func LogTiming(name string, d time.Duration) {
	if l := active(); l != nil {
		l.Printf("%s took %v", name, d)
	}
}

// LogIf writes a debug message only if cond is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogEnterExit logs entry and exit with timing:
//
//	defer debug.LogEnterExit("export")()
func LogEnterExit(name string) func() {
	l := active()
	if l == nil {
		return func() {}
	}
	l.Printf("-> %s", name)
	start := time.Now()
	return func() {
		l.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type.
func Dump(name string, v any) {
	if l := active(); l != nil {
		l.Printf("%s: %T = %+v", name, v, v)
	}
}
