package midi

import (
	"bytes"
	"path/filepath"
	"testing"
)

func sampleSong() Song {
	return Song{
		TPQ:         480,
		Tempo:       200,
		BeatsPerBar: 4,
		Tracks:      2,
		Events: []Event{
			Name(0, "Drum Track"),
			MarkerAt(0, 0, "Phase 1"),
			On(0, 0, PercussionChannel, 36, 110),
			Off(0, 479, PercussionChannel, 36),
			Name(1, "Thread 1"),
			Patch(1, 0, 1, 33),
			On(1, 120, 1, 48, 100),
			Off(1, 600, 1, 48),
			On(1, 600, 1, 48, 100),
			Off(1, 960, 1, 48),
		},
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mid")
	if err := WriteFile(path, sampleSong()); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got.TPQ != 480 {
		t.Fatalf("expected TPQ 480, got %d", got.TPQ)
	}
	if got.Tempo != 200 {
		t.Fatalf("expected tempo 200, got %d", got.Tempo)
	}
	if got.BeatsPerBar != 4 {
		t.Fatalf("expected 4 beats per bar, got %d", got.BeatsPerBar)
	}
	if got.Tracks != 2 {
		t.Fatalf("expected 2 worker tracks, got %d", got.Tracks)
	}

	want := sampleSong().Events
	if len(got.Events) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(got.Events), got.Events)
	}
	for i := range want {
		w, g := want[i], got.Events[i]
		if g.Track != w.Track || g.Tick != w.Tick || g.Kind != w.Kind {
			t.Fatalf("event %d: expected %v, got %v", i, w, g)
		}
		if g.Note != w.Note || g.Channel != w.Channel || g.Text != w.Text || g.Program != w.Program {
			t.Fatalf("event %d payload: expected %v, got %v", i, w, g)
		}
	}
}

func TestEncodeKeepsSameTickOrder(t *testing.T) {
	// NoteOff then NoteOn of the same pitch at one tick must not be swapped
	song := Song{TPQ: 96, Tempo: 120, Tracks: 1, Events: []Event{
		On(0, 0, 2, 60, 90),
		Off(0, 96, 2, 60),
		On(0, 96, 2, 60, 90),
		Off(0, 192, 2, 60),
	}}

	var buf bytes.Buffer
	if _, err := WriteTo(&buf, song); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "order.mid")
	if err := WriteFile(path, song); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	kinds := []Kind{NoteOn, NoteOff, NoteOn, NoteOff}
	for i, k := range kinds {
		if got.Events[i].Kind != k {
			t.Fatalf("event %d: expected %v, got %v", i, k, got.Events[i].Kind)
		}
	}
}

func TestEncodeRejectsBadHeader(t *testing.T) {
	cases := []Song{
		{TPQ: 0, Tempo: 120},
		{TPQ: 480, Tempo: 0},
		{TPQ: 70000, Tempo: 120},
	}
	for _, song := range cases {
		if _, err := Encode(song); err == nil {
			t.Fatalf("expected error for TPQ=%d tempo=%d", song.TPQ, song.Tempo)
		}
	}
}

func TestEncodeCreatesEmptyTracks(t *testing.T) {
	s, err := Encode(Song{TPQ: 480, Tempo: 120, Tracks: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Tracks) != 4 {
		t.Fatalf("expected conductor + 3 tracks, got %d", len(s.Tracks))
	}
}

func TestKindString(t *testing.T) {
	if NoteOn.String() != "NoteOn" || Marker.String() != "Marker" {
		t.Fatalf("unexpected kind names")
	}
	if Kind(42).String() != "Kind(42)" {
		t.Fatalf("unexpected fallback name %q", Kind(42).String())
	}
}
