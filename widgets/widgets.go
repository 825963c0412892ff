package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderSlider renders a horizontal value bar of the given width.
func RenderSlider(value, min, max float64, width int, fill, track rune, fillColor, trackColor lipgloss.Color) string {
	if width < 1 {
		width = 1
	}
	norm := 0.0
	if max > min {
		norm = (value - min) / (max - min)
	}
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	filled := int(norm*float64(width) + 0.5)

	fillStyle := lipgloss.NewStyle().Foreground(fillColor)
	trackStyle := lipgloss.NewStyle().Foreground(trackColor)
	return fillStyle.Render(strings.Repeat(string(fill), filled)) +
		trackStyle.Render(strings.Repeat(string(track), width-filled))
}

// RenderPadGrid renders a rows x cols grid of pads from row-major states.
// A nil states slice renders every pad off (momentary grids). cursor is
// the row-major index of the highlighted pad, -1 for none.
func RenderPadGrid(states []bool, rows, cols, cursor int, on, off rune, onColor, offColor, cursorColor lipgloss.Color) string {
	onStyle := lipgloss.NewStyle().Foreground(onColor)
	offStyle := lipgloss.NewStyle().Foreground(offColor)
	cursorStyle := lipgloss.NewStyle().Foreground(cursorColor)

	var lines []string
	for r := 0; r < rows; r++ {
		var line strings.Builder
		for c := 0; c < cols; c++ {
			if c > 0 {
				line.WriteString(" ")
			}
			idx := r*cols + c
			active := idx < len(states) && states[idx]
			sym := off
			style := offStyle
			if active {
				sym = on
				style = onStyle
			}
			if idx == cursor {
				style = cursorStyle
			}
			line.WriteString(style.Render(string(sym)))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderChoice renders an option list on one line with the selection
// bracketed: "a  [b]  c".
func RenderChoice(options []string, selected int, selStyle, dimStyle lipgloss.Style) string {
	if len(options) == 0 {
		return dimStyle.Render("(no options)")
	}
	parts := make([]string, len(options))
	for i, opt := range options {
		if i == selected {
			parts[i] = selStyle.Render("[" + opt + "]")
		} else {
			parts[i] = dimStyle.Render(opt)
		}
	}
	return strings.Join(parts, "  ")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
