package panel

import "testing"

func sectionTitles(sections []Section) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Title
	}
	return out
}

func controlNames(cs []*Control) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestBuildControlSections(t *testing.T) {
	tree, nodes := buildTestTree(t)
	tree.SetOn(nodes["c"].ID, true)
	tree.SetOn(nodes["d"].ID, true)
	// All five presets enabled, pre-order a, b, d, c, e.

	master := NewControl("Master", "/master", ControlSlider)
	master.AlwaysVisible = true

	bass := NewControl("Bass", "/bass", ControlSlider)
	bass.PresetIDs = []string{nodes["b"].ID}

	// Linked to both c and b; b comes first in pre-order, so it groups
	// under b even though c appears first in its own link list.
	wide := NewControl("Wide", "/wide", ControlToggle)
	wide.PresetIDs = []string{nodes["c"].ID, nodes["b"].ID}

	echo := NewControl("Echo", "/echo", ControlButton)
	echo.PresetIDs = []string{nodes["e"].ID}

	orphan := NewControl("Orphan", "/orphan", ControlSlider)
	orphan.PresetIDs = []string{"deleted-preset"}

	controls := []*Control{master, bass, wide, echo, orphan}

	sections := BuildControlSections(tree, controls)
	wantTitles := []string{SectionAlways, "b", "e"}
	if !equalStrings(sectionTitles(sections), wantTitles) {
		t.Fatalf("sections = %v, want %v", sectionTitles(sections), wantTitles)
	}
	if !equalStrings(controlNames(sections[0].Controls), []string{"Master"}) {
		t.Errorf("always section = %v", controlNames(sections[0].Controls))
	}
	if !equalStrings(controlNames(sections[1].Controls), []string{"Bass", "Wide"}) {
		t.Errorf("b section = %v, want [Bass Wide]", controlNames(sections[1].Controls))
	}
	if sections[1].PresetID != nodes["b"].ID {
		t.Errorf("b section preset id = %s", sections[1].PresetID)
	}

	// Same inputs, same output.
	again := BuildControlSections(tree, controls)
	if !equalStrings(sectionTitles(again), wantTitles) {
		t.Error("grouping is not deterministic")
	}
}

func TestVisibilityFollowsToggles(t *testing.T) {
	// A (on) -> B (on), control X linked only to B.
	tree := NewTree()
	a := NewNode("A")
	b := NewNode("B")
	tree.AddRoot(a)
	tree.InsertChild(a.ID, b)

	x := NewControl("X", "/x", ControlSlider)
	x.PresetIDs = []string{b.ID}
	controls := []*Control{x}

	sections := BuildControlSections(tree, controls)
	if len(sections) != 1 || sections[0].Title != "B" {
		t.Fatalf("sections = %v, want just [B]", sectionTitles(sections))
	}

	// Toggling the ancestor off hides X even though B itself stays on.
	tree.SetOn(a.ID, false)
	if got := BuildControlSections(tree, controls); len(got) != 0 {
		t.Errorf("sections after masking = %v, want none", sectionTitles(got))
	}

	// And back.
	tree.SetOn(a.ID, true)
	if got := BuildControlSections(tree, controls); len(got) != 1 {
		t.Errorf("sections after unmasking = %v, want [B]", sectionTitles(got))
	}
}

func TestUnlinkedControlIsHidden(t *testing.T) {
	tree, _ := buildTestTree(t)
	c := NewControl("Free", "/free", ControlSlider)

	sections := BuildControlSections(tree, []*Control{c})
	if len(sections) != 0 {
		t.Errorf("a control with no links and no always flag must not show, got %v",
			sectionTitles(sections))
	}
}

func TestEmptySectionsAreOmitted(t *testing.T) {
	tree, nodes := buildTestTree(t)
	// Only e carries a control; a and b are enabled but must not appear.
	c := NewControl("Solo", "/solo", ControlSlider)
	c.PresetIDs = []string{nodes["e"].ID}

	sections := BuildControlSections(tree, []*Control{c})
	if !equalStrings(sectionTitles(sections), []string{"e"}) {
		t.Errorf("sections = %v, want [e]", sectionTitles(sections))
	}
}
