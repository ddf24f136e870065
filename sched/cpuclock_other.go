//go:build !unix && !windows

package sched

import "time"

func processCPUTime() (time.Duration, error) {
	return 0, ErrUnsupported
}

func threadCPUTime() (time.Duration, error) {
	return 0, ErrUnsupported
}
