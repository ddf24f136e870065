// Package sched turns CPU-time and wall-time samples into a "currently
// scheduled" signal.
//
// The signal is a heuristic: it has no access to real scheduler events, only
// to how much CPU time was burned between two samples relative to how much
// wall time passed.
package sched

import (
	"math"
	"time"
)

// DefaultThreshold is the CPU/wall ratio above which a worker counts as
// scheduled. It was calibrated on one machine; see cmd/schedprobe.
const DefaultThreshold = 0.001

// Reading is the outcome of one sample
type Reading struct {
	WallDelta time.Duration
	CPUDelta  time.Duration
	Ratio     float64
	Scheduled bool
}

// Ratio is Δcpu/Δwall, defined as 0 when no wall time has passed
func Ratio(cpuDelta, wallDelta time.Duration) float64 {
	if wallDelta <= 0 {
		return 0
	}
	r := float64(cpuDelta) / float64(wallDelta)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// Sampler compares successive (wall, cpu) samples against a fixed threshold.
// It is owned by a single worker and is not safe for concurrent use.
type Sampler struct {
	threshold float64
	lastWall  time.Duration
	lastCPU   time.Duration
}

// NewSampler starts a sampler from a baseline sample
func NewSampler(threshold float64, wall, cpu time.Duration) *Sampler {
	return &Sampler{
		threshold: threshold,
		lastWall:  wall,
		lastCPU:   cpu,
	}
}

// Threshold returns the configured ratio threshold
func (s *Sampler) Threshold() float64 {
	return s.threshold
}

// Observe records a new sample and reports whether the worker was scheduled
// since the previous one
func (s *Sampler) Observe(wall, cpu time.Duration) Reading {
	r := Reading{
		WallDelta: wall - s.lastWall,
		CPUDelta:  cpu - s.lastCPU,
	}
	r.Ratio = Ratio(r.CPUDelta, r.WallDelta)
	r.Scheduled = r.Ratio > s.threshold

	s.lastWall = wall
	s.lastCPU = cpu
	return r
}
