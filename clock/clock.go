// Package clock maps wall-clock elapsed time onto musical ticks and phases.
//
// Tick positions are always derived from elapsed wall time, never from how
// many events a worker has produced, so a worker that misses samples still
// lands on the right beat when it wakes up.
package clock

import (
	"math"
	"math/bits"
	"time"
)

// Policy selects how phase lengths are derived from the requested duration
type Policy int

const (
	// Raw divides the nominal tick count evenly between phases
	Raw Policy = iota
	// BarAligned rounds each phase to a whole number of bars
	BarAligned
)

func (p Policy) String() string {
	if p == BarAligned {
		return "bar-aligned"
	}
	return "raw"
}

// Params are the musical constants shared by every worker
type Params struct {
	TPQ         int           // ticks per quarter note
	Tempo       int           // BPM
	BeatsPerBar int           // quarter notes per bar
	Phases      int           // number of phases
	Duration    time.Duration // requested run length
}

// Clock is an immutable phase map for one policy
type Clock struct {
	params        Params
	policy        Policy
	ticksPerSec   float64
	ticksPerPhase int
	totalTicks    int
	runLength     time.Duration
}

// NewRaw builds the clock the rhythm worker follows
func NewRaw(p Params) *Clock {
	return New(Raw, p)
}

// NewBarAligned builds the clock melodic workers follow
func NewBarAligned(p Params) *Clock {
	return New(BarAligned, p)
}

// New builds a clock. Degenerate params are floored so every divisor is at
// least one tick.
func New(policy Policy, p Params) *Clock {
	p.TPQ = max(1, p.TPQ)
	p.Tempo = max(1, p.Tempo)
	p.BeatsPerBar = max(1, p.BeatsPerBar)
	p.Phases = max(1, p.Phases)
	p.Duration = max(0, p.Duration)

	c := &Clock{
		params:      p,
		policy:      policy,
		ticksPerSec: float64(p.TPQ) * float64(p.Tempo) / 60.0,
	}

	nominalTicks := c.TickAt(p.Duration)
	perPhase := float64(nominalTicks) / float64(p.Phases)

	switch policy {
	case BarAligned:
		bar := c.BarTicks()
		c.ticksPerPhase = int(math.Round(perPhase/float64(bar))) * bar
		if c.ticksPerPhase < bar {
			c.ticksPerPhase = bar
		}
		c.totalTicks = c.ticksPerPhase * p.Phases
		c.runLength = c.TickDuration(c.totalTicks)
	default:
		c.ticksPerPhase = max(1, int(perPhase))
		c.totalTicks = nominalTicks
		c.runLength = p.Duration
	}

	return c
}

// Policy returns the alignment policy
func (c *Clock) Policy() Policy { return c.policy }

// Params returns the sanitized params the clock was built from
func (c *Clock) Params() Params { return c.params }

// Phases returns the number of phases
func (c *Clock) Phases() int { return c.params.Phases }

// TicksPerSecond is TPQ * tempo / 60
func (c *Clock) TicksPerSecond() float64 { return c.ticksPerSec }

// TicksPerPhase is the length of every phase
func (c *Clock) TicksPerPhase() int { return c.ticksPerPhase }

// TotalTicks is the nominal length for Raw and the adjusted length for BarAligned
func (c *Clock) TotalTicks() int { return c.totalTicks }

// RunLength is how long a worker following this clock runs in wall time
func (c *Clock) RunLength() time.Duration { return c.runLength }

// BarTicks is one bar in ticks
func (c *Clock) BarTicks() int {
	return c.params.BeatsPerBar * c.params.TPQ
}

// StepTicks is the length of one drum grid slot
func (c *Clock) StepTicks() int {
	return max(1, c.BarTicks()/4)
}

// ticksPerMinute is TPQ * tempo, kept integral so tick/time conversions are exact
func (c *Clock) ticksPerMinute() uint64 {
	return uint64(c.params.TPQ) * uint64(c.params.Tempo)
}

// TickAt converts elapsed wall time into a tick position
func (c *Clock) TickAt(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	return int(mulDiv(uint64(elapsed), c.ticksPerMinute(), uint64(time.Minute), math.MaxInt))
}

// TickDuration converts ticks back into wall time
func (c *Clock) TickDuration(ticks int) time.Duration {
	if ticks <= 0 {
		return 0
	}
	return time.Duration(mulDiv(uint64(ticks), uint64(time.Minute), c.ticksPerMinute(), math.MaxInt64))
}

// mulDiv is a*b/d through a 128-bit product, saturating at limit
func mulDiv(a, b, d, limit uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return limit
	}
	q, _ := bits.Div64(hi, lo, d)
	return min(q, limit)
}

// PhaseAt returns the phase a tick falls in, clamped to the last phase
func (c *Clock) PhaseAt(tick int) int {
	if tick <= 0 {
		return 0
	}
	return min(tick/c.ticksPerPhase, c.params.Phases-1)
}

// PhaseStart is the boundary tick where a phase begins
func (c *Clock) PhaseStart(phase int) int {
	return phase * c.ticksPerPhase
}

// PhaseEnd is the boundary tick where the next phase begins
func (c *Clock) PhaseEnd(phase int) int {
	return (phase + 1) * c.ticksPerPhase
}

// StepPosition is the drum grid slot a tick falls in
func StepPosition(tick, stepTicks int) int {
	stepTicks = max(1, stepTicks)
	return (max(0, tick) / stepTicks) % 16
}

// StepTick quantizes a tick down to the start of its grid slot
func StepTick(tick, stepTicks int) int {
	stepTicks = max(1, stepTicks)
	return (max(0, tick) / stepTicks) * stepTicks
}
