package panel

// Section titles for the two buckets that are not tied to a preset.
const (
	SectionAlways = "Always Visible"
	SectionOther  = "Other Controls"
)

// Section is one displayed group of controls. PresetID is empty for the
// Always Visible and Other Controls buckets.
type Section struct {
	Title    string
	PresetID string
	Controls []*Control
}

// BuildControlSections decides which controls are shown and how they are
// grouped, purely from the current tree state and control list:
//
//  1. a control is visible when it is always-visible or links to at least
//     one effectively enabled preset
//  2. always-visible controls form the first section
//  3. each remaining control groups under its primary preset: the first
//     effectively enabled preset, in tree pre-order, that it links to
//  4. preset sections appear in tree pre-order, non-empty only, followed
//     by a defensive Other Controls bucket for visible controls whose
//     primary preset could not be found
//
// Same inputs, same output: there is no hidden state and no randomness.
func BuildControlSections(tree *Tree, controls []*Control) []Section {
	var (
		enabled = tree.EnabledIDs()
		order   = tree.EnabledInOrder()
		always  []*Control
		other   []*Control
		grouped = make(map[string][]*Control)
	)

	for _, c := range controls {
		if c.AlwaysVisible {
			always = append(always, c)
			continue
		}
		visible := false
		for _, pid := range c.PresetIDs {
			if enabled[pid] {
				visible = true
				break
			}
		}
		if !visible {
			continue
		}
		primary := ""
		for _, ref := range order {
			if hasID(c.PresetIDs, ref.ID) {
				primary = ref.ID
				break
			}
		}
		if primary == "" {
			other = append(other, c)
			continue
		}
		grouped[primary] = append(grouped[primary], c)
	}

	var sections []Section
	if len(always) > 0 {
		sections = append(sections, Section{Title: SectionAlways, Controls: always})
	}
	for _, ref := range order {
		if cs := grouped[ref.ID]; len(cs) > 0 {
			sections = append(sections, Section{Title: ref.Name, PresetID: ref.ID, Controls: cs})
		}
	}
	if len(other) > 0 {
		sections = append(sections, Section{Title: SectionOther, Controls: other})
	}
	return sections
}

func hasID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
