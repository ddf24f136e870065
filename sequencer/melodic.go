package sequencer

import (
	"fmt"

	"go-threadmusic/clock"
	"go-threadmusic/debug"
	"go-threadmusic/midi"
	"go-threadmusic/music"
	"go-threadmusic/sched"
)

// MelodicWorker plays its phase's snippet while it is being scheduled.
//
// A note starts on a rising scheduling edge and stops on a falling one.
// While the worker stays scheduled, an expired note is followed directly by
// the next note of the snippet.
type MelodicWorker struct {
	id       int
	voice    music.Voice
	snippets []music.Snippet // one per phase, read only
	clock    *clock.Clock    // bar-aligned
	sink     Sink

	phase        int // -1 until the first sample
	cursor       int
	wasScheduled bool
	sounding     bool
	pitch        uint8
	start        int
	length       int
	lastTick     int

	stats stats
}

// NewMelodicWorker builds worker id (>= 1) writing to track id
func NewMelodicWorker(id int, voice music.Voice, snippets []music.Snippet, clk *clock.Clock, sink Sink) *MelodicWorker {
	w := &MelodicWorker{
		id:       id,
		voice:    voice,
		snippets: snippets,
		clock:    clk,
		sink:     sink,
		phase:    -1,
	}
	w.stats.phase.Store(-1)
	return w
}

func (w *MelodicWorker) Name() string { return fmt.Sprintf("Thread %d", w.id) }
func (w *MelodicWorker) Track() int { return w.id }
func (w *MelodicWorker) Voice() music.Voice { return w.voice }

// Sounding reports whether a note is currently held
func (w *MelodicWorker) Sounding() bool { return w.sounding }

func (w *MelodicWorker) Status() Status {
	return w.stats.snapshot(w.Name(), w.voice.Band.Name, w.id, w.clock.TotalTicks())
}

// Run emits the track header, runs the sense loop and closes the track
func (w *MelodicWorker) Run(env Env) {
	w.emit(midi.Name(w.id, w.Name()))
	w.emit(midi.Patch(w.id, 0, w.voice.Channel, w.voice.Program))
	debug.Log("worker", "%s started: %s", w.Name(), w.voice)

	finished := senseLoop(env, w.clock, &w.stats, w.Name(), func(tick int, r sched.Reading) {
		w.Step(tick, r.Scheduled)
	})

	w.Finish(finished)
	w.stats.done.Store(true)
	debug.Log("worker", "%s finished (completed=%v, events=%d)", w.Name(), finished, w.stats.events.Load())
}

// Step advances the state machine by one sample
func (w *MelodicWorker) Step(tick int, scheduled bool) {
	w.lastTick = tick

	if p := w.clock.PhaseAt(tick); p != w.phase {
		boundary := w.clock.PhaseStart(p)
		if w.sounding {
			w.noteOff(max(w.start, boundary))
			// let a still-scheduled worker start the new phase on this sample
			w.wasScheduled = false
		}
		w.emit(midi.MarkerAt(w.id, boundary, fmt.Sprintf("Phase %d", p+1)))
		w.phase = p
		w.cursor = 0
		w.stats.phase.Store(int64(p))
	}

	next := w.clock.PhaseEnd(w.phase)

	switch {
	case scheduled != w.wasScheduled:
		if scheduled {
			if !w.sounding && tick < next {
				w.noteOn(tick)
			}
		} else if w.sounding {
			w.noteOff(min(tick, next))
		}
		w.wasScheduled = scheduled

	case scheduled && w.sounding && tick-w.start >= w.length:
		end := min(w.start+w.length, next)
		w.noteOff(end)
		if end < next {
			w.noteOn(end)
		}
	}
}

// Finish closes a dangling note and marks the end of the track. A completed
// run closes at the aligned total; a cancelled one at the last sampled tick.
func (w *MelodicWorker) Finish(completed bool) {
	total := w.clock.TotalTicks()
	if w.sounding {
		end := w.lastTick
		if completed {
			end = total
		}
		w.noteOff(max(w.start, end))
	}
	w.emit(midi.MarkerAt(w.id, max(w.lastTick, total), "Aligned End"))
}

// nextNote pulls from the current phase's snippet; false for an empty one
func (w *MelodicWorker) nextNote() (music.Note, bool) {
	if w.phase < 0 || len(w.snippets) == 0 {
		return music.Note{}, false
	}
	n, ok := w.snippets[w.phase%len(w.snippets)].At(w.cursor)
	if ok {
		w.cursor++
	}
	return n, ok
}

func (w *MelodicWorker) noteOn(at int) {
	n, ok := w.nextNote()
	if !ok {
		w.sounding = false
		return
	}
	w.pitch = n.Pitch
	w.length = max(1, n.Duration)
	w.start = at
	w.sounding = true
	w.emit(midi.On(w.id, at, w.voice.Channel, n.Pitch, n.Velocity))
}

func (w *MelodicWorker) noteOff(at int) {
	w.emit(midi.Off(w.id, at, w.voice.Channel, w.pitch))
	w.sounding = false
}

func (w *MelodicWorker) emit(ev midi.Event) {
	w.sink.Append(ev)
	w.stats.events.Add(1)
}
