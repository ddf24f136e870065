package music

// Scale is an ordered set of semitone offsets from the root
type Scale []int

var (
	Major      = Scale{0, 2, 4, 5, 7, 9, 11}
	Minor      = Scale{0, 2, 3, 5, 7, 8, 10}
	Pentatonic = Scale{0, 2, 4, 7, 9}
)

// PhaseRoots are the root pitch classes cycled through by phase: C, G, F, D
var PhaseRoots = []int{0, 7, 5, 2}

// RootFor returns the root pitch class of a phase
func RootFor(phase int) int {
	return PhaseRoots[mod(phase, len(PhaseRoots))]
}

// Band is an inclusive MIDI note range
type Band struct {
	Name string
	Low  int
	High int
}

var (
	BassBand = Band{Name: "bass", Low: 36, High: 48} // C2-C3
	MidBand  = Band{Name: "mid", Low: 48, High: 60}  // C3-C4
	HighBand = Band{Name: "high", Low: 60, High: 72} // C4-C5
)

// GM percussion notes
const (
	Kick      uint8 = 36
	Snare     uint8 = 38
	ClosedHat uint8 = 42
	OpenHat   uint8 = 46
	Crash     uint8 = 49
)

// DurationWeight pairs a note length (in sixteenths) with its relative weight
type DurationWeight struct {
	Sixteenths int
	Weight     float64
}

// Melody lines favour eighths and quarters
var MelodyDurations = []DurationWeight{
	{Sixteenths: 1, Weight: 1},
	{Sixteenths: 2, Weight: 4},
	{Sixteenths: 4, Weight: 3},
	{Sixteenths: 8, Weight: 1},
}

// Bass lines sit on quarters and halves
var BassDurations = []DurationWeight{
	{Sixteenths: 2, Weight: 1},
	{Sixteenths: 4, Weight: 4},
	{Sixteenths: 8, Weight: 3},
	{Sixteenths: 16, Weight: 1},
}

// Ticks converts a duration in sixteenths to ticks, never less than one tick
func (d DurationWeight) Ticks(tpq int) int {
	return max(1, d.Sixteenths*tpq/4)
}

func mod(a, n int) int {
	if n <= 0 {
		return 0
	}
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
