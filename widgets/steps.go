package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-threadmusic/music"
)

// StepSymbols are the runes a step lane is drawn with
type StepSymbols struct {
	Empty    rune
	Active   rune
	Playhead rune
	PlayHit  rune
}

// GridColors colour the parts of a drum grid
type GridColors struct {
	Label    lipgloss.Color
	Empty    lipgloss.Color
	Active   lipgloss.Color
	Playhead lipgloss.Color
}

// RenderStepLane draws one 16-slot lane. playhead < 0 hides the playhead.
// A gap separates each group of four slots.
func RenderStepLane(steps [music.Steps]bool, playhead int, sym StepSymbols, colors GridColors) string {
	empty := lipgloss.NewStyle().Foreground(colors.Empty)
	active := lipgloss.NewStyle().Foreground(colors.Active)
	head := lipgloss.NewStyle().Foreground(colors.Playhead)

	var out strings.Builder
	for i, on := range steps {
		if i > 0 && i%4 == 0 {
			out.WriteString(" ")
		}
		switch {
		case i == playhead && on:
			out.WriteString(head.Render(string(sym.PlayHit)))
		case i == playhead:
			out.WriteString(head.Render(string(sym.Playhead)))
		case on:
			out.WriteString(active.Render(string(sym.Active)))
		default:
			out.WriteString(empty.Render(string(sym.Empty)))
		}
	}
	return out.String()
}

// RenderDrumGrid draws the kick, snare and hi-hat lanes of a pattern
func RenderDrumGrid(p music.DrumPattern, playhead int, sym StepSymbols, colors GridColors) string {
	label := lipgloss.NewStyle().Foreground(colors.Label).Width(6)
	lanes := []struct {
		name  string
		steps [music.Steps]bool
	}{
		{"kick", p.Kick},
		{"snare", p.Snare},
		{"hat", p.HiHat},
	}

	lines := make([]string, len(lanes))
	for i, lane := range lanes {
		lines[i] = label.Render(lane.name) + RenderStepLane(lane.steps, playhead, sym, colors)
	}
	return strings.Join(lines, "\n")
}
