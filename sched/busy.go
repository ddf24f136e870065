package sched

import (
	"math"
	"math/rand"
)

// Default busy-work bounds, in loop iterations
const (
	DefaultBusyMin = 500
	DefaultBusyMax = 10000
)

// BusyWork burns CPU for n iterations of trig math and returns the sum so the
// loop cannot be optimized away. It is not real work: it is the calibration
// knob that makes each worker compete for the CPU often enough to produce a
// measurable scheduling signal.
func BusyWork(n int) float64 {
	sum := 0.0
	for i := 0; i < n; i++ {
		x := float64(i)
		sum += math.Sin(x) * math.Cos(x)
	}
	return sum
}

// Pressure draws a busy-work amount per sensing iteration
type Pressure struct {
	min, max int
	rng      *rand.Rand
}

// NewPressure returns a generator for amounts in [lo, hi]. Swapped or
// negative bounds are corrected.
func NewPressure(lo, hi int, seed int64) *Pressure {
	lo = max(0, lo)
	hi = max(0, hi)
	if hi < lo {
		lo, hi = hi, lo
	}
	return &Pressure{min: lo, max: hi, rng: rand.New(rand.NewSource(seed))}
}

// Next returns the next amount
func (p *Pressure) Next() int {
	return p.min + p.rng.Intn(p.max-p.min+1)
}

// Apply draws an amount and burns it
func (p *Pressure) Apply() float64 {
	return BusyWork(p.Next())
}
