package clock

import (
	"math"
	"testing"
	"time"
)

func TestRawClockScenario(t *testing.T) {
	c := NewRaw(Params{TPQ: 480, Tempo: 120, BeatsPerBar: 4, Phases: 2, Duration: 16 * time.Second})

	if c.TotalTicks() != 15360 {
		t.Fatalf("expected 15360 total ticks, got %d", c.TotalTicks())
	}
	if c.TicksPerPhase() != 7680 {
		t.Fatalf("expected 7680 ticks per phase, got %d", c.TicksPerPhase())
	}
	if c.PhaseStart(1) != 7680 {
		t.Fatalf("expected phase 2 boundary at 7680, got %d", c.PhaseStart(1))
	}
	if c.RunLength() != 16*time.Second {
		t.Fatalf("raw clock should run for the requested duration, got %v", c.RunLength())
	}
}

func TestPhaseAtClamps(t *testing.T) {
	c := NewRaw(Params{TPQ: 480, Tempo: 120, BeatsPerBar: 4, Phases: 2, Duration: 16 * time.Second})

	cases := []struct {
		tick  int
		phase int
	}{
		{-5, 0},
		{0, 0},
		{7679, 0},
		{7680, 1},
		{15359, 1},
		{15360, 1},
		{99999, 1},
	}
	for _, tc := range cases {
		if got := c.PhaseAt(tc.tick); got != tc.phase {
			t.Fatalf("PhaseAt(%d) = %d, want %d", tc.tick, got, tc.phase)
		}
	}
}

func TestBarAlignedRoundsToBars(t *testing.T) {
	c := NewBarAligned(Params{TPQ: 480, Tempo: 200, BeatsPerBar: 4, Phases: 3, Duration: 60 * time.Second})

	if c.Policy() != BarAligned || c.Policy().String() != "bar-aligned" {
		t.Fatalf("unexpected policy %v", c.Policy())
	}
	// 96000 nominal ticks / 3 = 32000 per phase = 16.67 bars -> 17 bars
	if c.TicksPerPhase() != 17*1920 {
		t.Fatalf("expected 17 bars per phase, got %d ticks", c.TicksPerPhase())
	}
	if c.TotalTicks() != 3*17*1920 {
		t.Fatalf("expected adjusted total %d, got %d", 3*17*1920, c.TotalTicks())
	}
	if c.RunLength() != 61200*time.Millisecond {
		t.Fatalf("expected adjusted run length 61.2s, got %v", c.RunLength())
	}
}

func TestBarAlignedProperties(t *testing.T) {
	for _, tempo := range []int{60, 120, 200, 333} {
		for _, phases := range []int{1, 2, 3, 7, 64} {
			for _, secs := range []int{1, 5, 16, 60, 301} {
				c := NewBarAligned(Params{TPQ: 480, Tempo: tempo, BeatsPerBar: 4, Phases: phases, Duration: time.Duration(secs) * time.Second})
				bar := c.BarTicks()
				if c.TotalTicks()%bar != 0 {
					t.Fatalf("tempo=%d phases=%d secs=%d: total %d not a multiple of bar %d", tempo, phases, secs, c.TotalTicks(), bar)
				}
				if c.TicksPerPhase() < bar {
					t.Fatalf("tempo=%d phases=%d secs=%d: phase %d shorter than a bar", tempo, phases, secs, c.TicksPerPhase())
				}
				for p := 1; p < phases; p++ {
					if c.PhaseStart(p) <= c.PhaseStart(p-1) {
						t.Fatalf("phase boundaries not increasing at %d", p)
					}
				}
			}
		}
	}
}

func TestDegenerateParamsAreFloored(t *testing.T) {
	c := NewRaw(Params{})
	if c.TicksPerPhase() < 1 {
		t.Fatalf("ticks per phase must be at least 1, got %d", c.TicksPerPhase())
	}
	if c.StepTicks() < 1 {
		t.Fatalf("step ticks must be at least 1, got %d", c.StepTicks())
	}
	if c.Phases() != 1 {
		t.Fatalf("expected phases floored to 1, got %d", c.Phases())
	}
	if c.PhaseAt(1000) != 0 {
		t.Fatalf("single phase clock must stay in phase 0")
	}

	short := NewRaw(Params{TPQ: 1, Tempo: 1, BeatsPerBar: 1, Phases: 50, Duration: time.Second})
	if short.TicksPerPhase() != 1 {
		t.Fatalf("expected floor of 1 tick per phase, got %d", short.TicksPerPhase())
	}
}

func TestTickAtAndBack(t *testing.T) {
	c := NewRaw(Params{TPQ: 480, Tempo: 120, BeatsPerBar: 4, Phases: 1, Duration: time.Minute})
	if got := c.TickAt(500 * time.Millisecond); got != 480 {
		t.Fatalf("expected one beat at 0.5s, got %d", got)
	}
	if got := c.TickAt(-time.Second); got != 0 {
		t.Fatalf("negative elapsed should map to tick 0, got %d", got)
	}
	if got := c.TickDuration(960); got != time.Second {
		t.Fatalf("expected 960 ticks = 1s, got %v", got)
	}
}

func TestStepPositionIsPureFunctionOfTick(t *testing.T) {
	c := NewRaw(Params{TPQ: 480, Tempo: 120, BeatsPerBar: 4, Phases: 1, Duration: time.Minute})
	step := c.StepTicks()
	if step != 480 {
		t.Fatalf("expected 480 ticks per slot, got %d", step)
	}

	cases := []struct {
		tick, pos, quant int
	}{
		{0, 0, 0},
		{479, 0, 0},
		{480, 1, 480},
		{15*480 + 7, 15, 15 * 480},
		{16 * 480, 0, 16 * 480},
		{17*480 + 1, 1, 17 * 480},
	}
	for _, tc := range cases {
		if got := StepPosition(tc.tick, step); got != tc.pos {
			t.Fatalf("StepPosition(%d) = %d, want %d", tc.tick, got, tc.pos)
		}
		if got := StepTick(tc.tick, step); got != tc.quant {
			t.Fatalf("StepTick(%d) = %d, want %d", tc.tick, got, tc.quant)
		}
	}
	if StepPosition(10, 0) != 10 {
		t.Fatalf("zero step length must be floored to 1")
	}
}

func TestLargeParamsDoNotOverflow(t *testing.T) {
	c := NewRaw(Params{TPQ: 32767, Tempo: 300, BeatsPerBar: 4, Phases: 3, Duration: 1000 * time.Second})
	if c.TotalTicks() != 163835000 {
		t.Fatalf("expected 163835000 total ticks, got %d", c.TotalTicks())
	}
	if c.TicksPerPhase() != 54611666 {
		t.Fatalf("expected 54611666 ticks per phase, got %d", c.TicksPerPhase())
	}
	if got := c.TickAt(999 * time.Second); got != 163671165 {
		t.Fatalf("TickAt(999s) = %d, want 163671165", got)
	}

	long := NewBarAligned(Params{TPQ: 480, Tempo: 200, BeatsPerBar: 4, Phases: 3, Duration: 30 * time.Hour})
	if long.TotalTicks() <= 0 || long.TotalTicks()%long.BarTicks() != 0 {
		t.Fatalf("bad total for a 30h run: %d", long.TotalTicks())
	}
	if got := long.TickAt(30 * time.Hour); got != 172800000 {
		t.Fatalf("TickAt(30h) = %d, want 172800000", got)
	}
	if d := long.RunLength(); d < 30*time.Hour-time.Minute || d > 30*time.Hour+time.Minute {
		t.Fatalf("expected run length near 30h, got %v", d)
	}
}

func TestTickConversionsSaturate(t *testing.T) {
	c := NewRaw(Params{TPQ: 32767, Tempo: math.MaxInt32, BeatsPerBar: 4, Phases: 1, Duration: time.Second})
	if got := c.TickAt(time.Duration(math.MaxInt64)); got != math.MaxInt {
		t.Fatalf("expected saturation at MaxInt, got %d", got)
	}
	if got := c.TickDuration(-5); got != 0 {
		t.Fatalf("negative ticks should map to 0, got %v", got)
	}
}
