package sequencer

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"go-threadmusic/clock"
	"go-threadmusic/config"
	"go-threadmusic/debug"
	"go-threadmusic/midi"
	"go-threadmusic/music"
	"go-threadmusic/sched"
	"go-threadmusic/timeline"
)

// Manager owns the run: it builds the workers, runs each on its own OS
// thread, and finalizes the timeline once they have all returned
type Manager struct {
	cfg  *config.Config
	sink *timeline.Sink

	raw     *clock.Clock
	aligned *clock.Clock

	drum     *DrumWorker
	melodic  []*MelodicWorker
	workers  []Worker
	patterns []music.DrumPattern
	seed     int64

	running atomic.Bool
	stopped atomic.Bool // latched by Stop, even before Run starts
	cpu     sched.CPUClock
	now     func() time.Time
	sleep   func(time.Duration)

	mu      sync.Mutex
	started bool
}

// NewManager builds one drum worker plus cfg.Workers-1 melodic workers, all
// writing to sink. Content is generated here, once.
func NewManager(cfg *config.Config, sink *timeline.Sink) (*Manager, error) {
	cfg.Sanitize()

	cpu, err := sched.NewCPUClock(cfg.CPUClock)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	params := cfg.ClockParams()
	m := &Manager{
		cfg:     cfg,
		sink:    sink,
		raw:     clock.NewRaw(params),
		aligned: clock.NewBarAligned(params),
		seed:    seed,
		cpu:     cpu,
		now:     time.Now,
		sleep:   time.Sleep,
	}

	for p := 0; p < cfg.Phases; p++ {
		m.patterns = append(m.patterns, music.GenerateDrumPattern(p))
	}
	m.drum = NewDrumWorker(m.patterns, music.GetKit(cfg.Kit), m.raw, sink)
	m.workers = append(m.workers, m.drum)

	rng := rand.New(rand.NewSource(seed))
	for i := 1; i < cfg.Workers; i++ {
		voice := music.VoiceFor(i)
		snippets := make([]music.Snippet, cfg.Phases)
		for p := range snippets {
			snippets[p] = music.GenerateSnippet(rng, cfg.TPQ, voice.Band, voice.ScaleFor(p), music.RootFor(p), voice.Bass)
		}
		w := NewMelodicWorker(i, voice, snippets, m.aligned, sink)
		m.melodic = append(m.melodic, w)
		m.workers = append(m.workers, w)
	}

	debug.Log("manager", "built %d workers, seed=%d, %s=%d ticks, %s=%d ticks",
		len(m.workers), seed, m.raw.Policy(), m.raw.TotalTicks(), m.aligned.Policy(), m.aligned.TotalTicks())
	return m, nil
}

// Run blocks until every worker has stopped and returns the sorted timeline.
// Cancelling ctx has the same effect as Stop.
func (m *Manager) Run(ctx context.Context) ([]midi.Event, error) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil, fault.New("manager already ran")
	}
	m.started = true
	m.mu.Unlock()

	m.running.Store(true)
	if m.stopped.Load() {
		m.running.Store(false)
	}
	stop := context.AfterFunc(ctx, m.Stop)
	defer stop()

	var wg sync.WaitGroup
	for i, w := range m.workers {
		env := m.env(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			// one OS thread per worker so the scheduler sees each separately
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			w.Run(env)
		}()
	}
	wg.Wait()
	m.running.Store(false)

	events, err := m.sink.Finalize()
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("finalize timeline"))
	}
	debug.Log("manager", "run complete: %d events", len(events))
	return events, nil
}

func (m *Manager) env(i int) Env {
	return Env{
		Running:   &m.running,
		CPU:       m.cpu,
		Now:       m.now,
		Sleep:     m.sleep,
		Interval:  m.cfg.SampleInterval,
		Threshold: m.cfg.Threshold,
		BusyMin:   m.cfg.BusyWorkMin,
		BusyMax:   m.cfg.BusyWorkMax,
		Seed:      m.seed + int64(i),
	}
}

// Stop clears the running flag; workers exit on their next wake. A Stop
// before Run makes Run return without sampling.
func (m *Manager) Stop() {
	m.stopped.Store(true)
	if m.running.Swap(false) {
		debug.Log("manager", "stop requested")
	}
}

// Running reports whether workers are still live
func (m *Manager) Running() bool {
	return m.running.Load()
}

// Status returns a snapshot of every worker, drums first
func (m *Manager) Status() []Status {
	out := make([]Status, len(m.workers))
	for i, w := range m.workers {
		out[i] = w.Status()
	}
	return out
}

// Workers returns all workers, drums first
func (m *Manager) Workers() []Worker {
	return m.workers
}

// DrumPattern returns the rhythm of a phase
func (m *Manager) DrumPattern(phase int) music.DrumPattern {
	return m.drum.Pattern(phase)
}

// Seed is the seed content was generated from
func (m *Manager) Seed() int64 { return m.seed }

// RawClock is the clock the drum worker follows
func (m *Manager) RawClock() *clock.Clock { return m.raw }

// AlignedClock is the clock melodic workers follow
func (m *Manager) AlignedClock() *clock.Clock { return m.aligned }

// RunLength is the longest wall time any worker runs for
func (m *Manager) RunLength() time.Duration {
	if len(m.melodic) == 0 {
		return m.raw.RunLength()
	}
	return max(m.raw.RunLength(), m.aligned.RunLength())
}

// Song wraps finalized events for the file writer
func (m *Manager) Song(events []midi.Event) midi.Song {
	return midi.Song{
		TPQ:         m.cfg.TPQ,
		Tempo:       m.cfg.Tempo,
		BeatsPerBar: m.cfg.BeatsPerBar,
		Tracks:      len(m.workers),
		Events:      events,
	}
}
