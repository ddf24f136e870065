package music

import "fmt"

// Voice is the register, instrument and channel a melodic worker plays with
type Voice struct {
	Band    Band
	Bass    bool
	Program uint8 // GM program, 0-based
	Channel uint8 // 0-based, never the percussion channel
}

// melodicChannels skips 9 (percussion). Workers beyond 15 share channels but
// always sit on their own track.
var melodicChannels = []uint8{1, 2, 3, 4, 5, 6, 7, 8, 10, 11, 12, 13, 14, 15, 0}

// VoiceFor assigns a voice to melodic worker i (i >= 1; worker 0 is drums).
// Workers rotate through bass, mid and high registers.
func VoiceFor(i int) Voice {
	v := Voice{Channel: melodicChannels[mod(i-1, len(melodicChannels))]}
	switch mod(i, 3) {
	case 1:
		v.Band, v.Bass, v.Program = BassBand, true, uint8(32+i%8)
	case 2:
		v.Band, v.Program = MidBand, uint8(16+i%8)
	default:
		v.Band, v.Program = HighBand, uint8(80+i%8)
	}
	return v
}

// ScaleFor picks the scale a voice uses in a phase
func (v Voice) ScaleFor(phase int) Scale {
	switch v.Band {
	case BassBand:
		if mod(phase, 2) == 0 {
			return Major
		}
		return Minor
	case MidBand:
		return []Scale{Major, Minor, Pentatonic}[mod(phase, 3)]
	default:
		return []Scale{Pentatonic, Major, Minor}[mod(phase, 3)]
	}
}

func (v Voice) String() string {
	return fmt.Sprintf("%s ch%d prog%d", v.Band.Name, v.Channel+1, v.Program)
}
