package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Sliders
	SliderFill  rune // █ filled part of the track
	SliderTrack rune // ░ empty part of the track

	// Toggles and latching pads
	On  rune // ◉
	Off rune // ○

	// Pad grids
	PadOn  rune // ■
	PadOff rune // □

	// Preset tree
	PresetOn  rune // ▣ switched on
	PresetOff rune // ▢ switched off
	Masked    rune // ▨ on, but muted by a disabled ancestor
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			SliderFill:  '█',
			SliderTrack: '░',

			On:  '◉',
			Off: '○',

			PadOn:  '■',
			PadOff: '□',

			PresetOn:  '▣',
			PresetOff: '▢',
			Masked:    '▨',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.1
	RoleMuted   = 0.25
	RoleFG      = 0.55
	RoleAccent  = 0.7
	RoleCursor  = 0.8
	RoleActive  = 0.9
	RoleWarning = 1.0
)

// Style helpers

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
