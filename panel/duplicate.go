package panel

import "github.com/google/uuid"

// DuplicateLayout deep-copies a layout: the preset tree is cloned with
// fresh node ids, every control gets a fresh id with its preset
// references remapped into the cloned tree, and the copy is marked in its
// name. Mutating the copy never touches the original.
func DuplicateLayout(l *Layout) *Layout {
	tree := NewTree()
	idMap := map[string]string{}
	if l.PresetTree != nil {
		tree, idMap = l.PresetTree.Clone()
	}
	dup := &Layout{
		ID:         uuid.NewString(),
		Name:       l.Name + " Copy",
		Port:       l.Port,
		PresetTree: tree,
	}
	for _, c := range l.Controls {
		dup.Controls = append(dup.Controls, c.clone(idMap))
	}
	return dup
}
