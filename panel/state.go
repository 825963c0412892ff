package panel

import (
	"time"

	"github.com/google/uuid"
)

// S is the global state singleton
var S *State

func init() {
	S = NewState()
}

// Default OSC destination for fresh state.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = "8000"
)

// State is the single source of truth for all application state
type State struct {
	Host             string    `json:"host"`
	Port             string    `json:"port"`
	Layouts          []*Layout `json:"layouts"`
	SelectedLayoutID string    `json:"selectedLayoutID,omitempty"`
}

// Layout is a named panel: its controls, its own preset tree, and an
// optional port override for the OSC destination.
type Layout struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Controls   []*Control `json:"controls"`
	Port       string     `json:"port,omitempty"`
	PresetTree *Tree      `json:"presetTree"`
}

// ControlType identifies what kind of control
type ControlType string

const (
	ControlSlider   ControlType = "slider"
	ControlButton   ControlType = "button"
	ControlToggle   ControlType = "toggle"
	ControlXYPad    ControlType = "xyPad"
	ControlColor    ControlType = "color"
	ControlTapTempo ControlType = "tapTempo"
	ControlPadGrid  ControlType = "padGrid"
	ControlChoice   ControlType = "choice"
)

// ControlTypes lists every control kind in UI order.
var ControlTypes = []ControlType{
	ControlSlider, ControlButton, ControlToggle, ControlXYPad,
	ControlColor, ControlTapTempo, ControlPadGrid, ControlChoice,
}

// Control is one widget on a panel. Type-specific fields live in exactly
// one config pointer, selected by Type (the others stay nil).
type Control struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Address       string      `json:"address"`
	Type          ControlType `json:"type"`
	AlwaysVisible bool        `json:"alwaysVisible"`
	PresetIDs     []string    `json:"presetIDs,omitempty"`

	// Type-specific state (only one populated based on Type)
	Slider   *SliderConfig   `json:"slider,omitempty"`
	Button   *ButtonConfig   `json:"button,omitempty"`
	Toggle   *ToggleConfig   `json:"toggle,omitempty"`
	XYPad    *XYPadConfig    `json:"xyPad,omitempty"`
	Color    *ColorConfig    `json:"color,omitempty"`
	TapTempo *TapTempoConfig `json:"tapTempo,omitempty"`
	PadGrid  *PadGridConfig  `json:"padGrid,omitempty"`
	Choice   *ChoiceConfig   `json:"choice,omitempty"`
}

// SliderConfig holds a continuous value in [Min, Max].
type SliderConfig struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Value float64 `json:"value"`
}

// ButtonConfig holds the value a button fires.
type ButtonConfig struct {
	Value float64 `json:"value"`
}

// ToggleConfig holds an on/off switch.
type ToggleConfig struct {
	On bool `json:"on"`
}

// XYPadConfig holds a two-axis position, both axes in [0, 1].
type XYPadConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ColorConfig holds RGBA components, each in [0, 1].
type ColorConfig struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// TapTempoConfig derives a BPM from successive taps. Taps further apart
// than ResetSeconds start a fresh measurement.
type TapTempoConfig struct {
	ResetSeconds float64 `json:"tapResetSeconds"`
	BPM          float64 `json:"bpm,omitempty"`

	Taps []time.Time `json:"-"` // runtime only
}

// PadGridConfig holds a Rows x Cols grid of pads. Momentary grids fire
// press/release and keep no per-pad state; latching grids keep one bool
// per pad in row-major States.
type PadGridConfig struct {
	Rows      int    `json:"gridRows"`
	Cols      int    `json:"gridCols"`
	Momentary bool   `json:"gridIsMomentary"`
	States    []bool `json:"gridStates,omitempty"`
}

// ChoiceConfig holds an exclusive selection out of Options.
type ChoiceConfig struct {
	Options []string `json:"choiceOptions"`
	Index   int      `json:"choiceIndex"`
}

// NewState creates a new state with defaults
func NewState() *State {
	return &State{
		Host: DefaultHost,
		Port: DefaultPort,
	}
}

// NewLayout creates an empty layout with a fresh id.
func NewLayout(name string) *Layout {
	return &Layout{
		ID:         uuid.NewString(),
		Name:       name,
		PresetTree: NewTree(),
	}
}

// NewControl creates a control of the given type with default settings.
func NewControl(name, address string, typ ControlType) *Control {
	c := &Control{
		ID:      uuid.NewString(),
		Name:    name,
		Address: NormalizeAddress(address),
		Type:    typ,
	}
	c.normalize()
	return c
}

// layoutByID returns the layout with the given id, or nil.
func (s *State) layoutByID(id string) *Layout {
	for _, l := range s.Layouts {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// SelectedLayout returns the currently selected layout, or nil.
func (s *State) SelectedLayout() *Layout {
	return s.layoutByID(s.SelectedLayoutID)
}

// LayoutNames returns the names of all layouts in order.
func (s *State) LayoutNames() []string {
	names := make([]string, len(s.Layouts))
	for i, l := range s.Layouts {
		names[i] = l.Name
	}
	return names
}

// normalize enforces every cross-entity invariant in one place. It runs
// after each mutation and after decode, so no mutation path has to repair
// state by hand:
//   - host and port are never empty
//   - every layout has a non-nil preset tree
//   - every control has exactly the config its type requires, with grid
//     and choice invariants restored
//   - SelectedLayoutID is either empty or refers to an existing layout,
//     defaulting to the first layout when one exists
func (s *State) normalize() {
	if s.Host == "" {
		s.Host = DefaultHost
	}
	if s.Port == "" {
		s.Port = DefaultPort
	}
	for _, l := range s.Layouts {
		if l.PresetTree == nil {
			l.PresetTree = NewTree()
		}
		for _, c := range l.Controls {
			c.normalize()
		}
	}
	if s.SelectedLayoutID != "" && s.layoutByID(s.SelectedLayoutID) == nil {
		s.SelectedLayoutID = ""
	}
	if s.SelectedLayoutID == "" && len(s.Layouts) > 0 {
		s.SelectedLayoutID = s.Layouts[0].ID
	}
}

// controlByID returns the control with the given id, or nil.
func (l *Layout) controlByID(id string) *Control {
	for _, c := range l.Controls {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// normalize materializes the config for the control's type with defaults
// and restores the per-type invariants.
func (c *Control) normalize() {
	c.Address = NormalizeAddress(c.Address)
	switch c.Type {
	case ControlSlider:
		if c.Slider == nil {
			c.Slider = &SliderConfig{Min: 0, Max: 1}
		}
		if c.Slider.Max <= c.Slider.Min {
			c.Slider.Max = c.Slider.Min + 1
		}
		c.Slider.Value = clamp(c.Slider.Value, c.Slider.Min, c.Slider.Max)
	case ControlButton:
		if c.Button == nil {
			c.Button = &ButtonConfig{Value: 1}
		}
	case ControlToggle:
		if c.Toggle == nil {
			c.Toggle = &ToggleConfig{}
		}
	case ControlXYPad:
		if c.XYPad == nil {
			c.XYPad = &XYPadConfig{X: 0.5, Y: 0.5}
		}
		c.XYPad.X = clamp(c.XYPad.X, 0, 1)
		c.XYPad.Y = clamp(c.XYPad.Y, 0, 1)
	case ControlColor:
		if c.Color == nil {
			c.Color = &ColorConfig{A: 1}
		}
		c.Color.R = clamp(c.Color.R, 0, 1)
		c.Color.G = clamp(c.Color.G, 0, 1)
		c.Color.B = clamp(c.Color.B, 0, 1)
		c.Color.A = clamp(c.Color.A, 0, 1)
	case ControlTapTempo:
		if c.TapTempo == nil {
			c.TapTempo = &TapTempoConfig{ResetSeconds: 2}
		}
		if c.TapTempo.ResetSeconds <= 0 {
			c.TapTempo.ResetSeconds = 2
		}
	case ControlPadGrid:
		if c.PadGrid == nil {
			c.PadGrid = &PadGridConfig{Rows: 2, Cols: 2}
		}
		g := c.PadGrid
		if g.Rows < 1 {
			g.Rows = 1
		}
		if g.Cols < 1 {
			g.Cols = 1
		}
		if g.Momentary {
			g.States = nil
		} else if len(g.States) != g.Rows*g.Cols {
			states := make([]bool, g.Rows*g.Cols)
			copy(states, g.States)
			g.States = states
		}
	case ControlChoice:
		if c.Choice == nil {
			c.Choice = &ChoiceConfig{}
		}
		if len(c.Choice.Options) == 0 {
			c.Choice.Index = 0
		} else if c.Choice.Index < 0 || c.Choice.Index >= len(c.Choice.Options) {
			c.Choice.Index = 0
		}
	}
}

// clone deep-copies the control with a fresh id, remapping preset
// references through idMap. References with no mapping are dropped rather
// than carried over broken.
func (c *Control) clone(idMap map[string]string) *Control {
	dup := *c
	dup.ID = uuid.NewString()
	dup.PresetIDs = nil
	for _, pid := range c.PresetIDs {
		if mapped, ok := idMap[pid]; ok {
			dup.PresetIDs = append(dup.PresetIDs, mapped)
		}
	}
	if c.Slider != nil {
		v := *c.Slider
		dup.Slider = &v
	}
	if c.Button != nil {
		v := *c.Button
		dup.Button = &v
	}
	if c.Toggle != nil {
		v := *c.Toggle
		dup.Toggle = &v
	}
	if c.XYPad != nil {
		v := *c.XYPad
		dup.XYPad = &v
	}
	if c.Color != nil {
		v := *c.Color
		dup.Color = &v
	}
	if c.TapTempo != nil {
		v := *c.TapTempo
		v.Taps = nil
		dup.TapTempo = &v
	}
	if c.PadGrid != nil {
		v := *c.PadGrid
		v.States = append([]bool(nil), c.PadGrid.States...)
		dup.PadGrid = &v
	}
	if c.Choice != nil {
		v := *c.Choice
		v.Options = append([]string(nil), c.Choice.Options...)
		dup.Choice = &v
	}
	return &dup
}

// NormValue returns the control's current value mapped to [0, 1], for
// mirrors that need a single normalized number per control.
func (c *Control) NormValue() float64 {
	switch c.Type {
	case ControlSlider:
		if c.Slider == nil || c.Slider.Max == c.Slider.Min {
			return 0
		}
		return (c.Slider.Value - c.Slider.Min) / (c.Slider.Max - c.Slider.Min)
	case ControlToggle:
		if c.Toggle != nil && c.Toggle.On {
			return 1
		}
	case ControlXYPad:
		if c.XYPad != nil {
			return c.XYPad.X
		}
	case ControlChoice:
		if c.Choice != nil && len(c.Choice.Options) > 1 {
			return float64(c.Choice.Index) / float64(len(c.Choice.Options)-1)
		}
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
