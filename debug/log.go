// Package debug writes category-tagged lines to an optional log file.
//
// Workers call into it from their sensing loops, so the disabled path is a
// single atomic load and never takes a lock.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

var (
	enabled atomic.Bool

	// mu serializes writes to file
	mu   sync.Mutex
	file *os.File

	// counters holds one *atomic.Int64 per LogEvery call site
	counters sync.Map
)

// Enable truncates path and starts logging to it. Calling it while enabled
// keeps the current file.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	counters.Clear()
	writeLocked("debug", "log opened")
	enabled.Store(true)
	return nil
}

// Disable flushes and closes the log file
func Disable() {
	enabled.Store(false)

	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return
	}
	file.Sync()
	file.Close()
	file = nil
}

// Enabled reports whether a log file is open
func Enabled() bool {
	return enabled.Load()
}

// Log writes one line under category
func Log(category, format string, args ...any) {
	if !enabled.Load() {
		return
	}
	msg := fmt.Sprintf(format, args...)

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		writeLocked(category, msg)
	}
}

// LogEvery logs every nth call with the same category and format
func LogEvery(n int, category, format string, args ...any) {
	if n <= 0 || !enabled.Load() {
		return
	}
	c, _ := counters.LoadOrStore(category+"\x00"+format, new(atomic.Int64))
	count := c.(*atomic.Int64).Add(1)
	if count%int64(n) == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}

func writeLocked(category, msg string) {
	fmt.Fprintf(file, "[%s] %-10s %s\n", time.Now().Format("15:04:05.000"), category, msg)
}
