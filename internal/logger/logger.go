// Package logger is the router's diagnostic sink: a leveled file+console
// logger whose exported surface is shaped around the router's own events
// (dispatch attempts, redirections, slot-map refreshes, pool clears) rather
// than a generic Printf façade, so call sites at internal/router read as
// structured event records instead of ad-hoc message strings.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level lists supported log severities.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// Logger writes every record to a file sink; WARN and above are mirrored to
// the console.
type Logger struct {
	mu          sync.Mutex
	fileLogger  *log.Logger
	consoleLog  *log.Logger
	level       Level
	logFile     *os.File
	logFilePath string
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init creates the global logger. logFilePrefix names the file under
// logDir, e.g. "kvcluster" or "kvcluster_10.46.128.12_7380".
func Init(logDir string, level Level, logFilePrefix string) error {
	var initErr error
	once.Do(func() {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			initErr = fmt.Errorf("create log directory: %w", err)
			return
		}

		if logFilePrefix == "" {
			logFilePrefix = "kvcluster"
		}
		logFilePath := filepath.Join(logDir, fmt.Sprintf("%s.log", logFilePrefix))

		logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			initErr = fmt.Errorf("open log file: %w", err)
			return
		}

		defaultLogger = &Logger{
			fileLogger:  log.New(logFile, "", 0),
			consoleLog:  log.New(os.Stdout, "", 0),
			level:       level,
			logFile:     logFile,
			logFilePath: logFilePath,
		}
	})
	return initErr
}

func record(level Level, message string) {
	if defaultLogger == nil {
		if level >= WARN {
			fmt.Println(message)
		}
		return
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()

	if level >= defaultLogger.level {
		timestamp := time.Now().Format("2006/01/02 15:04:05")
		defaultLogger.fileLogger.Printf("%s [%s] %s", timestamp, levelNames[level], message)
	}
	if level >= WARN {
		timestamp := time.Now().Format("2006/01/02 15:04:05")
		defaultLogger.consoleLog.Printf("%s [kvcluster] %s", timestamp, message)
	}
}

// DispatchAttempt traces one submission of payload to addr for slot, the
// Nth attempt of its PendingRequest (0 is the first try, before any
// redirect/recovery). File-only: this fires on every dispatch, so it stays
// out of the console sink.
func DispatchAttempt(slot uint16, addr string, attempt int) {
	record(DEBUG, fmt.Sprintf("dispatch slot=%d addr=%s attempt=%d", slot, addr, attempt))
}

// Redirected records a MOVED or ASK hop: kind is "MOVED" or "ASK", from is
// the address that issued the redirect (empty if unknown), to is the
// address the retry will target.
func Redirected(kind string, slot uint16, from, to string) {
	record(INFO, fmt.Sprintf("redirect kind=%s slot=%d from=%s to=%s", kind, slot, from, to))
}

// AskingFallback records an ASKING sub-request failing, forcing the router
// to fall back to slot-map-chosen node selection (spec.md §4.6).
func AskingFallback(addr string) {
	record(DEBUG, fmt.Sprintf("asking fallback addr=%s", addr))
}

// RefreshOK records a successful CLUSTER SLOTS refresh.
func RefreshOK(ranges, masters int) {
	record(INFO, fmt.Sprintf("slot map refreshed ranges=%d masters=%d", ranges, masters))
}

// RefreshFailed records a failed refresh; stage identifies which caller
// triggered it ("initial", "background", "recovery").
func RefreshFailed(stage string, err error) {
	record(WARN, fmt.Sprintf("slot refresh failed stage=%s err=%v", stage, err))
}

// PoolCleared records a connection pool teardown; reason is "clusterdown"
// or "disconnect" (spec.md §4.7).
func PoolCleared(reason string) {
	record(WARN, fmt.Sprintf("pool cleared reason=%s", reason))
}

// RetryExhausted records a PendingRequest delivering its last observed
// outcome after consuming its full retry budget (spec.md §4.5).
func RetryExhausted(slot uint16, attempts int) {
	record(WARN, fmt.Sprintf("retry budget exhausted slot=%d attempts=%d", slot, attempts))
}
