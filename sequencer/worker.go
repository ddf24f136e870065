package sequencer

import (
	"math"
	"sync/atomic"
	"time"

	"go-threadmusic/clock"
	"go-threadmusic/debug"
	"go-threadmusic/midi"
	"go-threadmusic/sched"
)

// Sink receives every event a worker produces
type Sink interface {
	Append(ev midi.Event)
}

// Env is what a worker needs from the orchestrator to run its sense loop
type Env struct {
	Running   *atomic.Bool
	CPU       sched.CPUClock
	Now       func() time.Time
	Sleep     func(time.Duration)
	Interval  time.Duration
	Threshold float64
	BusyMin   int
	BusyMax   int
	Seed      int64
}

// Worker is one independently scheduled voice
type Worker interface {
	Name() string
	Track() int
	Run(env Env)
	Status() Status
}

// Status is a point-in-time snapshot of a worker for the monitor
type Status struct {
	Name       string
	Role       string
	Track      int
	Phase      int
	Tick       int
	TotalTicks int
	Events     int
	Ratio      float64
	Scheduled  bool
	Done       bool
}

// stats is written by the worker goroutine and read by the monitor
type stats struct {
	phase     atomic.Int64
	tick      atomic.Int64
	events    atomic.Int64
	ratio     atomic.Uint64 // float64 bits
	scheduled atomic.Bool
	done      atomic.Bool
}

func (s *stats) observe(tick int, r sched.Reading) {
	s.tick.Store(int64(tick))
	s.ratio.Store(math.Float64bits(r.Ratio))
	s.scheduled.Store(r.Scheduled)
}

func (s *stats) snapshot(name, role string, track, total int) Status {
	return Status{
		Name:       name,
		Role:       role,
		Track:      track,
		Phase:      int(s.phase.Load()),
		Tick:       int(s.tick.Load()),
		TotalTicks: total,
		Events:     int(s.events.Load()),
		Ratio:      math.Float64frombits(s.ratio.Load()),
		Scheduled:  s.scheduled.Load(),
		Done:       s.done.Load(),
	}
}

// sampleLogEvery thins the per-sample debug line
const sampleLogEvery = 1000

// senseLoop samples, steps and sleeps until the running flag clears or the
// clock's run length has elapsed. It reports whether the run length was
// reached (as opposed to being cancelled).
func senseLoop(env Env, clk *clock.Clock, st *stats, name string, step func(tick int, r sched.Reading)) bool {
	pressure := sched.NewPressure(env.BusyMin, env.BusyMax, env.Seed)

	start := env.Now()
	lastCPU := readCPU(env.CPU, 0, name)
	sampler := sched.NewSampler(env.Threshold, 0, lastCPU)
	runLength := clk.RunLength()
	debug.Log("sample", "%s sampling every %v, threshold %g", name, env.Interval, sampler.Threshold())

	samples := 0
	for env.Running.Load() {
		elapsed := env.Now().Sub(start)
		if elapsed >= runLength {
			return true
		}

		lastCPU = readCPU(env.CPU, lastCPU, name)
		r := sampler.Observe(elapsed, lastCPU)
		tick := clk.TickAt(elapsed)
		st.observe(tick, r)
		if samples++; samples%sampleLogEvery == 0 {
			debug.Log("sample", "%s #%d tick=%d ratio=%.4f scheduled=%v", name, samples, tick, r.Ratio, r.Scheduled)
		}

		step(tick, r)

		// Result is discarded; the point is to burn CPU outside the sink lock
		_ = pressure.Apply()
		env.Sleep(env.Interval)
	}
	return false
}

// readCPU falls back to the previous reading on error, which makes the
// sample read as not scheduled
func readCPU(c sched.CPUClock, last time.Duration, name string) time.Duration {
	if c == nil {
		return last
	}
	d, err := c.Now()
	if err != nil {
		debug.LogEvery(100, "sample", "%s cpu clock: %v", name, err)
		return last
	}
	return d
}
