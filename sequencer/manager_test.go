package sequencer

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go-threadmusic/config"
	"go-threadmusic/midi"
	"go-threadmusic/timeline"
)

// fakeTime advances only when a worker sleeps
type fakeTime struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeTime) Sleep(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// fakeCPU burns CPU time on two reads out of three
type fakeCPU struct {
	mu    sync.Mutex
	n     int
	total time.Duration
}

func (f *fakeCPU) Now() (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	if f.n%3 != 0 {
		f.total += time.Millisecond
	}
	return f.total, nil
}

func testManager(t *testing.T, workers, secs, phases int) (*Manager, *timeline.Sink) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Workers = workers
	cfg.DurationSec = secs
	cfg.Phases = phases
	cfg.Tempo = 120
	cfg.Seed = 99
	cfg.SampleInterval = 5 * time.Millisecond
	cfg.BusyWorkMin, cfg.BusyWorkMax = 0, 10

	sink := timeline.New()
	m, err := NewManager(cfg, sink)
	if err != nil {
		t.Fatal(err)
	}

	ft := &fakeTime{now: time.Unix(0, 0)}
	m.now = ft.Now
	m.sleep = ft.Sleep
	m.cpu = &fakeCPU{}
	return m, sink
}

func TestManagerBuildsRoles(t *testing.T) {
	m, _ := testManager(t, 5, 16, 2)

	ws := m.Workers()
	if len(ws) != 5 {
		t.Fatalf("expected 5 workers, got %d", len(ws))
	}
	if _, ok := ws[0].(*DrumWorker); !ok || ws[0].Track() != DrumTrack {
		t.Fatalf("worker 0 must be the drum worker on track 0")
	}
	for i, w := range ws[1:] {
		mw, ok := w.(*MelodicWorker)
		if !ok {
			t.Fatalf("worker %d is not melodic", i+1)
		}
		if mw.Track() != i+1 || mw.Voice().Channel == midi.PercussionChannel {
			t.Fatalf("worker %d: bad track %d / channel %d", i+1, mw.Track(), mw.Voice().Channel)
		}
	}
	if m.RawClock().TotalTicks() != 15360 || m.RawClock().TicksPerPhase() != 7680 {
		t.Fatalf("unexpected raw clock %d/%d", m.RawClock().TotalTicks(), m.RawClock().TicksPerPhase())
	}
}

func TestManagerSeedIsReproducible(t *testing.T) {
	a, _ := testManager(t, 4, 8, 3)
	b, _ := testManager(t, 4, 8, 3)
	for i := 1; i < 4; i++ {
		sa := a.melodic[i-1].snippets
		sb := b.melodic[i-1].snippets
		for p := range sa {
			if len(sa[p].Notes) != len(sb[p].Notes) {
				t.Fatalf("worker %d phase %d: snippets differ", i, p)
			}
			for n := range sa[p].Notes {
				if sa[p].Notes[n] != sb[p].Notes[n] {
					t.Fatalf("worker %d phase %d note %d differs", i, p, n)
				}
			}
		}
	}
}

func TestManagerRunProducesConsistentTimeline(t *testing.T) {
	m, sink := testManager(t, 4, 4, 2)

	events, err := m.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(events) == 0 {
		t.Fatalf("expected events")
	}
	for i := 1; i < len(events); i++ {
		if events[i].Tick < events[i-1].Tick {
			t.Fatalf("timeline not sorted at %d", i)
		}
	}
	checkNoOverlap(t, events, false)
	checkMarkersIncrease(t, events)

	for _, s := range m.Status() {
		if !s.Done {
			t.Fatalf("%s not done after Run", s.Name)
		}
	}
	if m.Running() {
		t.Fatalf("running flag still set")
	}
	if _, err := sink.Finalize(); err == nil {
		t.Fatalf("timeline must already be finalized")
	}

	path := filepath.Join(t.TempDir(), "run.mid")
	if err := midi.WriteFile(path, m.Song(events)); err != nil {
		t.Fatal(err)
	}
	song, err := midi.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if song.Tracks != 4 || len(song.Events) != len(events) {
		t.Fatalf("file round trip: %d tracks, %d events (want 4, %d)", song.Tracks, len(song.Events), len(events))
	}
}

func TestSingleWorkerIsDrumsOnly(t *testing.T) {
	m, _ := testManager(t, 1, 3, 2)

	events, err := m.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, ev := range events {
		if ev.Track != DrumTrack {
			t.Fatalf("unexpected event on track %d: %v", ev.Track, ev)
		}
		if (ev.Kind == midi.NoteOn || ev.Kind == midi.NoteOff) && ev.Channel != midi.PercussionChannel {
			t.Fatalf("melodic note in a drums-only run: %v", ev)
		}
	}
	if len(ofKind(events, midi.NoteOn)) == 0 {
		t.Fatalf("expected percussion")
	}
}

func TestManagerStopsOnCancel(t *testing.T) {
	m, _ := testManager(t, 3, 600, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events, err := m.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	checkNoOverlap(t, events, false)

	ends := 0
	for _, ev := range ofKind(events, midi.Marker) {
		if ev.Text == "Aligned End" || ev.Text == "Original End" {
			ends++
		}
	}
	if ends != 3 {
		t.Fatalf("expected every worker to close its track, got %d end markers", ends)
	}

	if _, err := m.Run(context.Background()); err == nil {
		t.Fatalf("expected second Run to fail")
	}
}

func TestStopBeforeRunIsKept(t *testing.T) {
	m, _ := testManager(t, 3, 600, 2)

	var mu sync.Mutex
	sleeps := 0
	m.sleep = func(time.Duration) {
		mu.Lock()
		sleeps++
		mu.Unlock()
	}

	m.Stop()
	events, err := m.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sleeps != 0 {
		t.Fatalf("expected no sampling after an early Stop, got %d sleeps", sleeps)
	}
	if m.Running() {
		t.Fatalf("expected running flag cleared")
	}
	if n := len(ofKind(events, midi.NoteOn)); n != 0 {
		t.Fatalf("expected no notes, got %d", n)
	}
	checkNoOverlap(t, events, false)
}
