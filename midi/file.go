package midi

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Song is a finalized timeline plus the header data needed to write it.
// Worker track i is written as SMF track i+1; SMF track 0 is the conductor
// track holding tempo and meter.
type Song struct {
	TPQ         int
	Tempo       int // BPM
	BeatsPerBar int
	Tracks      int // number of worker tracks
	Events      []Event
}

// Encode converts a song into an in-memory format 1 SMF
func Encode(song Song) (*smf.SMF, error) {
	if song.TPQ <= 0 || song.TPQ > math.MaxInt16 {
		return nil, fault.New(fmt.Sprintf("invalid resolution %d", song.TPQ))
	}
	if song.Tempo <= 0 {
		return nil, fault.New(fmt.Sprintf("invalid tempo %d", song.Tempo))
	}
	beats := song.BeatsPerBar
	if beats <= 0 || beats > math.MaxUint8 {
		beats = 4
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(uint16(song.TPQ))

	var conductor smf.Track
	conductor.Add(0, smf.MetaMeter(uint8(beats), 4))
	conductor.Add(0, smf.MetaTempo(float64(song.Tempo)))
	conductor.Close(0)
	if err := s.Add(conductor); err != nil {
		return nil, fault.Wrap(err, fmsg.With("add conductor track"))
	}

	for i, events := range splitTracks(song) {
		var track smf.Track
		last := 0
		for _, ev := range events {
			msg := encodeEvent(ev)
			if msg == nil {
				continue
			}
			tick := max(ev.Tick, last)
			track.Add(uint32(tick-last), msg)
			last = tick
		}
		track.Close(0)
		if err := s.Add(track); err != nil {
			return nil, fault.Wrap(err, fmsg.With(fmt.Sprintf("add track %d", i)))
		}
	}

	return s, nil
}

// WriteFile encodes the song and writes it to path
func WriteFile(path string, song Song) error {
	s, err := Encode(song)
	if err != nil {
		return err
	}
	if err := s.WriteFile(path); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("write midi file", fmt.Sprintf("Could not write %s", path)))
	}
	return nil
}

// WriteTo encodes the song to w
func WriteTo(w io.Writer, song Song) (int64, error) {
	s, err := Encode(song)
	if err != nil {
		return 0, err
	}
	n, err := s.WriteTo(w)
	if err != nil {
		return n, fault.Wrap(err, fmsg.With("write midi stream"))
	}
	return n, nil
}

// splitTracks groups events per worker track, keeping timeline order
func splitTracks(song Song) [][]Event {
	n := song.Tracks
	for _, ev := range song.Events {
		if ev.Track+1 > n {
			n = ev.Track + 1
		}
	}

	tracks := make([][]Event, n)
	for _, ev := range song.Events {
		if ev.Track < 0 {
			continue
		}
		tracks[ev.Track] = append(tracks[ev.Track], ev)
	}
	for _, events := range tracks {
		sort.SliceStable(events, func(a, b int) bool {
			return events[a].Tick < events[b].Tick
		})
	}
	return tracks
}

func encodeEvent(ev Event) []byte {
	switch ev.Kind {
	case NoteOn:
		return gomidi.NoteOn(ev.Channel, ev.Note, ev.Velocity)
	case NoteOff:
		return gomidi.NoteOff(ev.Channel, ev.Note)
	case PatchChange:
		return gomidi.ProgramChange(ev.Channel, ev.Program)
	case Marker:
		return smf.MetaMarker(ev.Text)
	case TrackName:
		return smf.MetaTrackSequenceName(ev.Text)
	}
	return nil
}

// ReadFile loads a file written by WriteFile back into a Song
func ReadFile(path string) (Song, error) {
	s, err := smf.ReadFile(path)
	if err != nil {
		return Song{}, fault.Wrap(err, fmsg.WithDesc("read midi file", fmt.Sprintf("Could not read %s", path)))
	}
	return decode(s), nil
}

func decode(s *smf.SMF) Song {
	var song Song
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		song.TPQ = int(mt)
	}
	if len(s.Tracks) > 1 {
		song.Tracks = len(s.Tracks) - 1
	}

	var seq uint64
	for ti, track := range s.Tracks {
		tick := 0
		for _, te := range track {
			tick += int(te.Delta)

			var bpm float64
			var num, denom uint8
			if ti == 0 {
				switch {
				case te.Message.GetMetaTempo(&bpm):
					song.Tempo = int(math.Round(bpm))
				case te.Message.GetMetaMeter(&num, &denom):
					song.BeatsPerBar = int(num)
				}
				continue
			}

			ev, ok := decodeEvent(te.Message)
			if !ok {
				continue
			}
			ev.Track = ti - 1
			ev.Tick = tick
			ev.Seq = seq
			seq++
			song.Events = append(song.Events, ev)
		}
	}
	return song
}

func decodeEvent(msg smf.Message) (Event, bool) {
	var ch, key, vel, prog uint8
	var text string

	cm := gomidi.Message(msg)
	switch {
	case cm.GetNoteStart(&ch, &key, &vel):
		return Event{Kind: NoteOn, Channel: ch, Note: key, Velocity: vel}, true
	case cm.GetNoteEnd(&ch, &key):
		return Event{Kind: NoteOff, Channel: ch, Note: key}, true
	case cm.GetProgramChange(&ch, &prog):
		return Event{Kind: PatchChange, Channel: ch, Program: prog}, true
	case msg.GetMetaMarker(&text):
		return Event{Kind: Marker, Text: text}, true
	case msg.GetMetaTrackName(&text):
		return Event{Kind: TrackName, Text: text}, true
	}
	return Event{}, false
}
