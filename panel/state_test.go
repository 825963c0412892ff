package panel

import "testing"

func TestNormalizeRepairsSelection(t *testing.T) {
	s := NewState()
	a := NewLayout("A")
	b := NewLayout("B")
	s.Layouts = []*Layout{a, b}

	// No selection: first layout wins.
	s.normalize()
	if s.SelectedLayoutID != a.ID {
		t.Errorf("selection = %q, want first layout", s.SelectedLayoutID)
	}

	// Valid selection is left alone.
	s.SelectedLayoutID = b.ID
	s.normalize()
	if s.SelectedLayoutID != b.ID {
		t.Error("normalize clobbered a valid selection")
	}

	// Dangling selection falls back to the first layout.
	s.SelectedLayoutID = "gone"
	s.normalize()
	if s.SelectedLayoutID != a.ID {
		t.Errorf("selection = %q, want fallback to first", s.SelectedLayoutID)
	}

	// No layouts at all: selection clears.
	s.Layouts = nil
	s.normalize()
	if s.SelectedLayoutID != "" {
		t.Errorf("selection = %q, want empty", s.SelectedLayoutID)
	}
}

func TestNormalizeMaterializesTree(t *testing.T) {
	s := NewState()
	l := &Layout{ID: "l1", Name: "Bare"}
	s.Layouts = []*Layout{l}
	s.normalize()
	if l.PresetTree == nil {
		t.Fatal("normalize must give every layout a tree")
	}
}

func TestControlNormalize(t *testing.T) {
	t.Run("defaults per type", func(t *testing.T) {
		for _, typ := range ControlTypes {
			c := NewControl("x", "/x", typ)
			populated := 0
			for _, p := range []bool{
				c.Slider != nil, c.Button != nil, c.Toggle != nil, c.XYPad != nil,
				c.Color != nil, c.TapTempo != nil, c.PadGrid != nil, c.Choice != nil,
			} {
				if p {
					populated++
				}
			}
			if populated != 1 {
				t.Errorf("%s: %d configs populated, want exactly 1", typ, populated)
			}
		}
	})

	t.Run("slider range", func(t *testing.T) {
		c := NewControl("s", "/s", ControlSlider)
		c.Slider.Min, c.Slider.Max, c.Slider.Value = 5, 5, 99
		c.normalize()
		if c.Slider.Max <= c.Slider.Min {
			t.Errorf("degenerate range survived: [%v, %v]", c.Slider.Min, c.Slider.Max)
		}
		if c.Slider.Value > c.Slider.Max {
			t.Errorf("value %v above max %v", c.Slider.Value, c.Slider.Max)
		}
	})

	t.Run("momentary grid drops states", func(t *testing.T) {
		c := NewControl("g", "/g", ControlPadGrid)
		c.PadGrid.Momentary = true
		c.PadGrid.States = []bool{true, true}
		c.normalize()
		if c.PadGrid.States != nil {
			t.Error("momentary grids keep no per-pad state")
		}
	})

	t.Run("latching grid resizes states", func(t *testing.T) {
		c := NewControl("g", "/g", ControlPadGrid)
		c.PadGrid.Rows, c.PadGrid.Cols = 3, 4
		c.PadGrid.States = []bool{true}
		c.normalize()
		if len(c.PadGrid.States) != 12 {
			t.Fatalf("states = %d, want 12", len(c.PadGrid.States))
		}
		if !c.PadGrid.States[0] {
			t.Error("resize lost existing pad state")
		}
	})

	t.Run("tap tempo reset floor", func(t *testing.T) {
		c := NewControl("t", "/t", ControlTapTempo)
		c.TapTempo.ResetSeconds = -1
		c.normalize()
		if c.TapTempo.ResetSeconds <= 0 {
			t.Error("reset seconds must be positive")
		}
	})
}

func TestNormValue(t *testing.T) {
	s := NewControl("s", "/s", ControlSlider)
	s.Slider.Min, s.Slider.Max, s.Slider.Value = 0, 200, 50
	if got := s.NormValue(); got != 0.25 {
		t.Errorf("slider norm = %v, want 0.25", got)
	}

	tog := NewControl("t", "/t", ControlToggle)
	tog.Toggle.On = true
	if tog.NormValue() != 1 {
		t.Error("toggle on should norm to 1")
	}

	ch := NewControl("c", "/c", ControlChoice)
	ch.Choice.Options = []string{"a", "b", "c"}
	ch.Choice.Index = 2
	if got := ch.NormValue(); got != 1 {
		t.Errorf("last choice norm = %v, want 1", got)
	}
}
