//go:build unix && !linux

package sched

import (
	"time"

	"golang.org/x/sys/unix"
)

func processCPUTime() (time.Duration, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	return time.Duration(ru.Utime.Nano() + ru.Stime.Nano()), nil
}

// No portable per-thread rusage outside linux
func threadCPUTime() (time.Duration, error) {
	return processCPUTime()
}
