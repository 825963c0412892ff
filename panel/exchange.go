package panel

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ImportLayout decodes a layout from JSON that holds either a full
// AppState export (the selected, else first, layout is extracted) or a
// single layout. The layout and its controls get fresh ids; preset node
// ids are kept as-is, so importing the same file twice yields layouts
// that share preset-node ids. The name is de-duplicated against
// takenNames with a " (2)", " (3)" suffix.
//
// A decode failure returns an error and produces no layout; callers
// surface the message and leave state untouched.
func ImportLayout(data []byte, takenNames []string) (*Layout, error) {
	l, err := decodeLayout(data)
	if err != nil {
		return nil, err
	}

	// Fresh identity for the layout and its controls. Preset node ids
	// are regenerated only on explicit duplication, not on import.
	l.ID = uuid.NewString()
	for _, c := range l.Controls {
		c.ID = uuid.NewString()
	}
	if l.PresetTree == nil {
		l.PresetTree = NewTree()
	}
	for _, c := range l.Controls {
		c.normalize()
	}
	l.Name = dedupeName(l.Name, takenNames)
	return l, nil
}

func decodeLayout(data []byte) (*Layout, error) {
	// A full state export carries a layouts array; try that shape first.
	var s State
	if err := json.Unmarshal(data, &s); err == nil && len(s.Layouts) > 0 {
		if sel := s.layoutByID(s.SelectedLayoutID); sel != nil {
			return sel, nil
		}
		return s.Layouts[0], nil
	}

	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(err, "decoding layout")
	}
	if l.Name == "" && len(l.Controls) == 0 {
		return nil, errors.New("file contains neither a layout nor app state")
	}
	return &l, nil
}

// dedupeName appends " (2)", " (3)", ... until name collides with none of
// the taken names.
func dedupeName(name string, taken []string) string {
	if name == "" {
		name = "Imported Layout"
	}
	candidate := name
	for n := 2; nameTaken(candidate, taken); n++ {
		candidate = fmt.Sprintf("%s (%d)", name, n)
	}
	return candidate
}

func nameTaken(name string, taken []string) bool {
	for _, t := range taken {
		if t == name {
			return true
		}
	}
	return false
}

// ExportLayout serializes a single layout as pretty-printed, key-sorted
// JSON. Sorting comes from re-encoding through a generic map: the json
// package writes map keys in sorted order.
func ExportLayout(l *Layout) ([]byte, error) {
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, errors.Wrap(err, "encoding layout")
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, errors.Wrap(err, "re-reading layout")
	}
	data, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "formatting layout")
	}
	return data, nil
}
