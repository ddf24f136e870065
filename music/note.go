package music

// Note is a single pitched event produced by a content generator
type Note struct {
	Pitch    uint8
	Velocity uint8
	Duration int // ticks, > 0
}

// Snippet is a cyclic phrase. It carries no cursor: whoever plays it keeps
// the position, so one Snippet can be read by any number of players.
type Snippet struct {
	Notes []Note
}

// Len returns the number of notes in the phrase
func (s Snippet) Len() int {
	return len(s.Notes)
}

// At returns the note at i, wrapping around the phrase
func (s Snippet) At(i int) (Note, bool) {
	if len(s.Notes) == 0 {
		return Note{}, false
	}
	return s.Notes[mod(i, len(s.Notes))], true
}

// Steps is the number of slots in a drum pattern
const Steps = 16

// DrumPattern is a 16-step kick/snare/hi-hat grid with per-slot velocity
type DrumPattern struct {
	Kick     [Steps]bool
	Snare    [Steps]bool
	HiHat    [Steps]bool
	Velocity [Steps]uint8
}

// Empty reports whether no lane has a hit
func (p DrumPattern) Empty() bool {
	for i := 0; i < Steps; i++ {
		if p.Kick[i] || p.Snare[i] || p.HiHat[i] {
			return false
		}
	}
	return true
}
