package sequencer

import (
	"fmt"

	"go-threadmusic/clock"
	"go-threadmusic/debug"
	"go-threadmusic/midi"
	"go-threadmusic/music"
	"go-threadmusic/sched"
)

// DrumTrack is the fixed track of the rhythm worker
const DrumTrack = 0

// crashVelocity accents every phase boundary
const crashVelocity = 110

// DrumWorker walks the 16-step grid purely from tick position. It samples
// the scheduler like every worker, but only for the monitor.
type DrumWorker struct {
	patterns []music.DrumPattern // one per phase
	kit      music.DrumKit
	clock    *clock.Clock // raw
	sink     Sink

	phase    int // -1 until the first sample
	step     int // -1 so the first sample always fires
	lastTick int

	stats stats
}

// NewDrumWorker builds the rhythm worker
func NewDrumWorker(patterns []music.DrumPattern, kit music.DrumKit, clk *clock.Clock, sink Sink) *DrumWorker {
	w := &DrumWorker{
		patterns: patterns,
		kit:      kit,
		clock:    clk,
		sink:     sink,
		phase:    -1,
		step:     -1,
	}
	w.stats.phase.Store(-1)
	return w
}

func (w *DrumWorker) Name() string { return "Drum Track" }
func (w *DrumWorker) Track() int   { return DrumTrack }

func (w *DrumWorker) Status() Status {
	return w.stats.snapshot(w.Name(), "drums", DrumTrack, w.clock.TotalTicks())
}

// Pattern returns the pattern for a phase
func (w *DrumWorker) Pattern(phase int) music.DrumPattern {
	if len(w.patterns) == 0 {
		return music.DrumPattern{}
	}
	return w.patterns[max(0, phase)%len(w.patterns)]
}

// Run emits the track header, runs the sense loop and closes the track
func (w *DrumWorker) Run(env Env) {
	w.emit(midi.Name(DrumTrack, w.Name()))
	debug.Log("worker", "drums started: kit=%s step=%d ticks", w.kit.Name, w.clock.StepTicks())

	finished := senseLoop(env, w.clock, &w.stats, w.Name(), func(tick int, _ sched.Reading) {
		w.Step(tick)
	})

	w.Finish()
	w.stats.done.Store(true)
	debug.Log("worker", "drums finished (completed=%v, events=%d)", finished, w.stats.events.Load())
}

// Step emits the crash at a new phase and the hits of a newly reached slot
func (w *DrumWorker) Step(tick int) {
	w.lastTick = tick
	stepTicks := w.clock.StepTicks()

	if p := w.clock.PhaseAt(tick); p != w.phase {
		boundary := w.clock.PhaseStart(p)
		crash := w.kit.Note(music.SlotCrash)
		w.emit(midi.MarkerAt(DrumTrack, boundary, fmt.Sprintf("Phase %d", p+1)))
		w.emit(midi.On(DrumTrack, boundary, midi.PercussionChannel, crash, crashVelocity))
		// a phase can be shorter than a slot; release before the next boundary's crash
		ring := max(1, min(stepTicks, w.clock.TicksPerPhase()))
		w.emit(midi.Off(DrumTrack, boundary+ring, midi.PercussionChannel, crash))
		w.phase = p
		w.stats.phase.Store(int64(p))
	}

	pos := clock.StepPosition(tick, stepTicks)
	if pos == w.step {
		return
	}
	w.step = pos

	pat := w.Pattern(w.phase)
	at := clock.StepTick(tick, stepTicks)
	vel := pat.Velocity[pos]

	if pat.Kick[pos] {
		w.hit(at, stepTicks, w.kit.Note(music.SlotKick), vel)
	}
	if pat.Snare[pos] {
		w.hit(at, stepTicks, w.kit.Note(music.SlotSnare), vel)
	}
	if pat.HiHat[pos] {
		hat := w.kit.Note(music.SlotClosedHat)
		if pos%8 == 0 {
			hat = w.kit.Note(music.SlotOpenHat)
		}
		w.hit(at, stepTicks, hat, vel)
	}
}

// Finish marks where the requested duration ended
func (w *DrumWorker) Finish() {
	w.emit(midi.MarkerAt(DrumTrack, max(w.lastTick, w.clock.TotalTicks()), "Original End"))
}

func (w *DrumWorker) hit(at, stepTicks int, note, velocity uint8) {
	w.emit(midi.On(DrumTrack, at, midi.PercussionChannel, note, velocity))
	w.emit(midi.Off(DrumTrack, at+max(1, stepTicks-1), midi.PercussionChannel, note))
}

func (w *DrumWorker) emit(ev midi.Event) {
	w.sink.Append(ev)
	w.stats.events.Add(1)
}
