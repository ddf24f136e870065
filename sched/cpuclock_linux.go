//go:build linux

package sched

import (
	"time"

	"golang.org/x/sys/unix"
)

func processCPUTime() (time.Duration, error) {
	return clockGettime(unix.CLOCK_PROCESS_CPUTIME_ID)
}

func threadCPUTime() (time.Duration, error) {
	return clockGettime(unix.CLOCK_THREAD_CPUTIME_ID)
}

func clockGettime(id int32) (time.Duration, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(id, &ts); err != nil {
		return 0, err
	}
	return time.Duration(ts.Nano()), nil
}
