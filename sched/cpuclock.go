package sched

import (
	"errors"
	"fmt"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
)

// CPUClock reports accumulated CPU time
type CPUClock interface {
	Now() (time.Duration, error)
}

// Clock kinds accepted by NewCPUClock
const (
	ClockProcess = "process"
	ClockThread  = "thread"
)

// ErrUnsupported is returned where the platform exposes no CPU clock
var ErrUnsupported = errors.New("cpu clock not supported on this platform")

// ProcessClock is the CPU time consumed by the whole process
type ProcessClock struct{}

func (ProcessClock) Now() (time.Duration, error) {
	return processCPUTime()
}

// ThreadClock is the CPU time consumed by the calling OS thread. Callers
// must stay on one thread (runtime.LockOSThread) for readings to be
// comparable. Platforms without per-thread accounting report process time.
type ThreadClock struct{}

func (ThreadClock) Now() (time.Duration, error) {
	return threadCPUTime()
}

// NewCPUClock returns the clock for a config kind and checks it can be read
func NewCPUClock(kind string) (CPUClock, error) {
	var c CPUClock
	switch kind {
	case "", ClockProcess:
		c = ProcessClock{}
	case ClockThread:
		c = ThreadClock{}
	default:
		return nil, fault.New(fmt.Sprintf("unknown cpu clock %q", kind))
	}
	if _, err := c.Now(); err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("read cpu clock", "CPU time is not available on this system"))
	}
	return c, nil
}
