package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Drum grid
	StepEmpty    rune // · no hit
	StepActive   rune // ● hit
	StepPlayhead rune // ▶ current slot, no hit
	StepPlayHit  rune // ◉ current slot with a hit

	// Worker rows
	Scheduled rune // ■ got CPU since the last sample
	Idle      rune // □ did not
	Done      rune // ✓ worker returned
}

func New(palette *Palette) *Theme {
	if palette == nil || len(palette.Colors) == 0 {
		palette = Plasma()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			StepEmpty:    '·',
			StepActive:   '●',
			StepPlayhead: '▶',
			StepPlayHit:  '◉',

			Scheduled: '■',
			Idle:      '□',
			Done:      '✓',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleSurface = 0.1 // dark purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) FG() lipgloss.Color {
	return t.Color(RoleFG)
}

func (t *Theme) Accent() lipgloss.Color {
	return t.Color(RoleAccent)
}

func (t *Theme) Muted() lipgloss.Color {
	return t.Color(RoleMuted)
}

func (t *Theme) Active() lipgloss.Color {
	return t.Color(RoleActive)
}

func (t *Theme) Cursor() lipgloss.Color {
	return t.Color(RoleCursor)
}

func (t *Theme) Warning() lipgloss.Color {
	return t.Color(RoleWarning)
}

func (t *Theme) Success() lipgloss.Color {
	return t.Color(RoleSuccess)
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}

// Hex returns the #rrggbb form of a role, for progress bar gradients
func (t *Theme) Hex(norm float64) string {
	return t.Palette.Lookup(norm).Hex()
}

// Track returns a colour per worker track, spread across the palette
func (t *Theme) Track(track, tracks int) lipgloss.Color {
	if tracks <= 1 {
		return t.Accent()
	}
	return t.Color(RoleMuted + (RoleSuccess-RoleMuted)*float64(track)/float64(tracks-1))
}
