package music

import (
	"math/rand"
	"testing"
)

func TestGenerateSnippetStaysInBand(t *testing.T) {
	bands := []Band{BassBand, MidBand, HighBand}
	scales := []Scale{Major, Minor, Pentatonic}

	for seed := int64(1); seed <= 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		for _, band := range bands {
			for _, scale := range scales {
				for _, root := range PhaseRoots {
					s := GenerateSnippet(rng, 480, band, scale, root, band == BassBand)
					if s.Len() < 4 || s.Len() > 8 {
						t.Fatalf("expected 4-8 notes, got %d", s.Len())
					}
					for _, n := range s.Notes {
						if int(n.Pitch) < band.Low || int(n.Pitch) > band.High {
							t.Fatalf("pitch %d outside %s band %d-%d", n.Pitch, band.Name, band.Low, band.High)
						}
						if n.Duration <= 0 {
							t.Fatalf("non-positive duration %d", n.Duration)
						}
						if n.Velocity == 0 || n.Velocity > 127 {
							t.Fatalf("bad velocity %d", n.Velocity)
						}
					}
				}
			}
		}
	}
}

func TestGenerateSnippetIsSeeded(t *testing.T) {
	a := GenerateSnippet(rand.New(rand.NewSource(7)), 480, MidBand, Major, 0, false)
	b := GenerateSnippet(rand.New(rand.NewSource(7)), 480, MidBand, Major, 0, false)
	if a.Len() != b.Len() {
		t.Fatalf("expected same length, got %d and %d", a.Len(), b.Len())
	}
	for i := range a.Notes {
		if a.Notes[i] != b.Notes[i] {
			t.Fatalf("note %d differs: %+v vs %+v", i, a.Notes[i], b.Notes[i])
		}
	}
}

func TestBassSnippetAnchorsOnRoot(t *testing.T) {
	s := GenerateSnippet(rand.New(rand.NewSource(3)), 480, BassBand, Major, 7, true)
	if s.Notes[0].Pitch%12 != 7 {
		t.Fatalf("expected first bass note on root G, got pitch %d", s.Notes[0].Pitch)
	}
	for _, n := range s.Notes {
		if n.Velocity != 100 {
			t.Fatalf("expected fixed bass velocity 100, got %d", n.Velocity)
		}
	}
}

func TestSnippetAtWraps(t *testing.T) {
	s := Snippet{Notes: []Note{{Pitch: 60, Duration: 1}, {Pitch: 62, Duration: 1}}}
	n, ok := s.At(3)
	if !ok || n.Pitch != 62 {
		t.Fatalf("expected wrapped note 62, got %v %v", n, ok)
	}
	if _, ok := (Snippet{}).At(0); ok {
		t.Fatalf("expected empty snippet to yield nothing")
	}
}

func TestGenerateDrumPattern(t *testing.T) {
	rock := GenerateDrumPattern(0)
	if !rock.Kick[0] || !rock.Kick[8] || !rock.Snare[4] || !rock.Snare[12] {
		t.Fatalf("unexpected rock pattern: %+v", rock)
	}
	for i := 0; i < Steps; i++ {
		if rock.HiHat[i] != (i%2 == 0) {
			t.Fatalf("rock hi-hat slot %d = %v", i, rock.HiHat[i])
		}
	}

	sync := GenerateDrumPattern(1)
	if !sync.Kick[6] || !sync.Snare[10] || sync.HiHat[2] {
		t.Fatalf("unexpected syncopated pattern: %+v", sync)
	}

	half := GenerateDrumPattern(2)
	if half.Snare[4] || !half.Snare[8] {
		t.Fatalf("unexpected half-time pattern: %+v", half)
	}

	if GenerateDrumPattern(3) != rock {
		t.Fatalf("expected patterns to rotate every 3 phases")
	}

	wantVel := map[int]uint8{0: 110, 2: 90, 3: 70, 4: 110}
	for slot, v := range wantVel {
		if rock.Velocity[slot] != v {
			t.Fatalf("slot %d: expected velocity %d, got %d", slot, v, rock.Velocity[slot])
		}
	}
	if rock.Empty() || !(DrumPattern{}).Empty() {
		t.Fatalf("Empty() mismatch")
	}
}

func TestVoiceForSkipsPercussionChannel(t *testing.T) {
	seen := map[uint8]bool{}
	for i := 1; i <= 15; i++ {
		v := VoiceFor(i)
		if v.Channel == 9 {
			t.Fatalf("worker %d assigned percussion channel", i)
		}
		if v.Channel > 15 {
			t.Fatalf("worker %d assigned invalid channel %d", i, v.Channel)
		}
		if seen[v.Channel] {
			t.Fatalf("worker %d reuses channel %d", i, v.Channel)
		}
		seen[v.Channel] = true
	}
}

func TestVoiceForRotatesRegisters(t *testing.T) {
	cases := []struct {
		worker  int
		band    Band
		program uint8
	}{
		{1, BassBand, 33},
		{2, MidBand, 18},
		{3, HighBand, 83},
		{4, BassBand, 36},
	}
	for _, c := range cases {
		v := VoiceFor(c.worker)
		if v.Band != c.band || v.Program != c.program {
			t.Fatalf("worker %d: expected %s/%d, got %s/%d", c.worker, c.band.Name, c.program, v.Band.Name, v.Program)
		}
	}
	if VoiceFor(1).ScaleFor(1)[2] != Minor[2] {
		t.Fatalf("expected bass to use minor in odd phases")
	}
	if len(VoiceFor(3).ScaleFor(0)) != len(Pentatonic) {
		t.Fatalf("expected high voice to open with pentatonic")
	}
}

func TestGetKit(t *testing.T) {
	if GetKit("rd8").Note(SlotSnare) != 40 {
		t.Fatalf("expected RD-8 snare on 40")
	}
	if GetKit("nope").Name != "General MIDI" {
		t.Fatalf("expected fallback to GM")
	}
	for _, name := range KitNames() {
		if _, ok := Kits[name]; !ok {
			t.Fatalf("kit %q listed but missing", name)
		}
	}
}
