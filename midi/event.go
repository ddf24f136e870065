package midi

import "fmt"

// Kind identifies what a timeline event does
type Kind uint8

const (
	NoteOn Kind = iota
	NoteOff
	Marker
	TrackName
	PatchChange
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	case Marker:
		return "Marker"
	case TrackName:
		return "TrackName"
	case PatchChange:
		return "PatchChange"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// PercussionChannel is the GM drum channel (0-based)
const PercussionChannel uint8 = 9

// Event is a single timestamped entry in the timeline
type Event struct {
	Track    int    // worker track (0 = drums)
	Tick     int    // absolute tick
	Kind     Kind   // NoteOn, NoteOff, Marker, TrackName, PatchChange
	Channel  uint8  // 0-15
	Note     uint8  // NoteOn/NoteOff
	Velocity uint8  // NoteOn
	Program  uint8  // PatchChange
	Text     string // Marker/TrackName
	Seq      uint64 // insertion order, stamped by the timeline
}

// On builds a NoteOn event
func On(track, tick int, channel, note, velocity uint8) Event {
	return Event{Track: track, Tick: tick, Kind: NoteOn, Channel: channel, Note: note, Velocity: velocity}
}

// Off builds a NoteOff event
func Off(track, tick int, channel, note uint8) Event {
	return Event{Track: track, Tick: tick, Kind: NoteOff, Channel: channel, Note: note}
}

// MarkerAt builds a marker meta event
func MarkerAt(track, tick int, text string) Event {
	return Event{Track: track, Tick: tick, Kind: Marker, Text: text}
}

// Name builds a track name meta event at tick 0
func Name(track int, text string) Event {
	return Event{Track: track, Kind: TrackName, Text: text}
}

// Patch builds a program change
func Patch(track, tick int, channel, program uint8) Event {
	return Event{Track: track, Tick: tick, Kind: PatchChange, Channel: channel, Program: program}
}

func (e Event) String() string {
	switch e.Kind {
	case NoteOn:
		return fmt.Sprintf("%6d t%-2d ch%-2d NoteOn  %3d vel=%d", e.Tick, e.Track, e.Channel, e.Note, e.Velocity)
	case NoteOff:
		return fmt.Sprintf("%6d t%-2d ch%-2d NoteOff %3d", e.Tick, e.Track, e.Channel, e.Note)
	case PatchChange:
		return fmt.Sprintf("%6d t%-2d ch%-2d Program %3d", e.Tick, e.Track, e.Channel, e.Program)
	default:
		return fmt.Sprintf("%6d t%-2d      %-7s %q", e.Tick, e.Track, e.Kind, e.Text)
	}
}
