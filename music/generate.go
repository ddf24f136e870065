package music

import "math/rand"

// NoteInScale returns the MIDI pitch of a scale degree in an octave
func NoteInScale(scale Scale, octave, degree, root int) int {
	return octave*12 + root + scale[mod(degree, len(scale))]
}

// GenerateSnippet builds a 4-8 note phrase inside band. Melodic phrases rise
// through the first half and fall through the second; bass phrases anchor on
// the root and fifth.
func GenerateSnippet(rng *rand.Rand, tpq int, band Band, scale Scale, root int, bass bool) Snippet {
	if len(scale) == 0 {
		return Snippet{}
	}

	length := 4 + rng.Intn(5)
	lowOctave := band.Low / 12
	highOctave := band.High / 12

	notes := make([]Note, 0, length)
	if bass {
		octave := lowOctave
		for i := 0; i < length; i++ {
			var degree int
			switch i % 4 {
			case 0:
				degree = 0
			case 2:
				degree = 4 % len(scale)
			default:
				degree = rng.Intn(len(scale))
			}

			pitch, oct := fitBand(scale, octave, degree, root, band)
			octave = oct
			notes = append(notes, Note{
				Pitch:    pitch,
				Velocity: 100,
				Duration: pickDuration(rng, tpq, BassDurations),
			})
		}
		return Snippet{Notes: notes}
	}

	octave := lowOctave + (highOctave-lowOctave)/2
	degree := rng.Intn(len(scale))
	for i := 0; i < length; i++ {
		pitch, oct := fitBand(scale, octave, degree, root, band)
		octave = oct

		direction := 1
		if i >= length/2 {
			direction = -1
		}
		degree += direction
		if rng.Intn(4) == 0 {
			degree += direction * 2
		}

		if degree < 0 {
			degree += len(scale)
			if octave > lowOctave {
				octave--
			}
		}
		if degree >= len(scale) {
			degree -= len(scale)
			if octave < highOctave {
				octave++
			}
		}

		notes = append(notes, Note{
			Pitch:    pitch,
			Velocity: uint8(80 + rng.Intn(31)),
			Duration: pickDuration(rng, tpq, MelodyDurations),
		})
	}
	return Snippet{Notes: notes}
}

// fitBand shifts the octave until the pitch lands inside the band
func fitBand(scale Scale, octave, degree, root int, band Band) (uint8, int) {
	pitch := NoteInScale(scale, octave, degree, root)
	for pitch < band.Low {
		octave++
		pitch = NoteInScale(scale, octave, degree, root)
	}
	for pitch > band.High && octave > 0 {
		octave--
		pitch = NoteInScale(scale, octave, degree, root)
	}
	return uint8(min(max(pitch, 0), 127)), octave
}

func pickDuration(rng *rand.Rand, tpq int, weights []DurationWeight) int {
	total := 0.0
	for _, w := range weights {
		if w.Weight > 0 {
			total += w.Weight
		}
	}
	if total <= 0 {
		return max(1, tpq)
	}

	r := rng.Float64() * total
	for _, w := range weights {
		if w.Weight <= 0 {
			continue
		}
		if r < w.Weight {
			return w.Ticks(tpq)
		}
		r -= w.Weight
	}
	return weights[len(weights)-1].Ticks(tpq)
}

// GenerateDrumPattern returns the groove for a phase: rock, syncopated and
// half-time in rotation
func GenerateDrumPattern(phase int) DrumPattern {
	var p DrumPattern

	switch mod(phase, 3) {
	case 0:
		p.Kick[0], p.Kick[8] = true, true
		p.Snare[4], p.Snare[12] = true, true
		for i := 0; i < Steps; i += 2 {
			p.HiHat[i] = true
		}
	case 1:
		p.Kick[0], p.Kick[6], p.Kick[12] = true, true, true
		p.Snare[4], p.Snare[10] = true, true
		for i := 0; i < Steps; i += 4 {
			p.HiHat[i] = true
		}
	case 2:
		p.Kick[0], p.Kick[8] = true, true
		p.Snare[8] = true
		for i := 0; i < Steps; i += 4 {
			p.HiHat[i] = true
		}
	}

	for i := 0; i < Steps; i++ {
		switch {
		case i%4 == 0:
			p.Velocity[i] = 110
		case i%2 == 0:
			p.Velocity[i] = 90
		default:
			p.Velocity[i] = 70
		}
	}
	return p
}
