package panel

import (
	"encoding/json"
	"testing"
)

// buildTestTree builds:
//
//	a (on)
//	├── b (on)
//	│   └── d (off)
//	└── c (off)
//	e (on)
func buildTestTree(t *testing.T) (*Tree, map[string]*Node) {
	t.Helper()
	tree := NewTree()
	nodes := map[string]*Node{
		"a": NewNode("a"),
		"b": NewNode("b"),
		"c": NewNode("c"),
		"d": NewNode("d"),
		"e": NewNode("e"),
	}
	tree.AddRoot(nodes["a"])
	tree.AddRoot(nodes["e"])
	if !tree.InsertChild(nodes["a"].ID, nodes["b"]) {
		t.Fatal("insert b under a failed")
	}
	if !tree.InsertChild(nodes["a"].ID, nodes["c"]) {
		t.Fatal("insert c under a failed")
	}
	if !tree.InsertChild(nodes["b"].ID, nodes["d"]) {
		t.Fatal("insert d under b failed")
	}
	tree.SetOn(nodes["c"].ID, false)
	tree.SetOn(nodes["d"].ID, false)
	return tree, nodes
}

func names(refs []NodeRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Name
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEnabledRequiresWholeAncestorChain(t *testing.T) {
	tree, nodes := buildTestTree(t)

	enabled := tree.EnabledIDs()
	for name, want := range map[string]bool{
		"a": true, "b": true, "c": false, "d": false, "e": true,
	} {
		if enabled[nodes[name].ID] != want {
			t.Errorf("%s enabled = %v, want %v", name, enabled[nodes[name].ID], want)
		}
	}

	// Switching the root off masks the whole subtree, including nodes
	// that are themselves on.
	tree.SetOn(nodes["a"].ID, false)
	enabled = tree.EnabledIDs()
	if enabled[nodes["b"].ID] {
		t.Error("b should be masked by its disabled root")
	}
	if !enabled[nodes["e"].ID] {
		t.Error("e is an independent root and should stay enabled")
	}

	// Switching it back restores the previous picture: toggling an
	// ancestor never rewrites descendant flags.
	tree.SetOn(nodes["a"].ID, true)
	enabled = tree.EnabledIDs()
	if !enabled[nodes["b"].ID] {
		t.Error("b should be enabled again")
	}
	if enabled[nodes["c"].ID] {
		t.Error("c was off before the root toggled and must stay off")
	}
}

func TestEnabledInOrderIsPreOrder(t *testing.T) {
	tree, nodes := buildTestTree(t)
	tree.SetOn(nodes["c"].ID, true)
	tree.SetOn(nodes["d"].ID, true)

	got := names(tree.EnabledInOrder())
	want := []string{"a", "b", "d", "c", "e"}
	if !equalStrings(got, want) {
		t.Errorf("pre-order = %v, want %v", got, want)
	}
}

func TestDeleteCascades(t *testing.T) {
	tree, nodes := buildTestTree(t)

	deleted := tree.Delete(nodes["a"].ID)
	if len(deleted) != 4 {
		t.Fatalf("deleted %d nodes, want 4", len(deleted))
	}
	want := []string{nodes["a"].ID, nodes["b"].ID, nodes["d"].ID, nodes["c"].ID}
	if !equalStrings(deleted, want) {
		t.Errorf("deleted ids = %v, want pre-order %v", deleted, want)
	}
	if tree.Len() != 1 {
		t.Errorf("tree has %d nodes left, want 1", tree.Len())
	}
	if !tree.Contains(nodes["e"].ID) {
		t.Error("sibling root e should survive")
	}
	if tree.Delete("no-such-id") != nil {
		t.Error("deleting a missing id should return nil")
	}
}

func TestMove(t *testing.T) {
	t.Run("to new parent", func(t *testing.T) {
		tree, nodes := buildTestTree(t)
		if res := tree.Move(nodes["b"].ID, nodes["e"].ID); res != Moved {
			t.Fatalf("result = %v, want Moved", res)
		}
		// Subtree travels with the node.
		got := names(tree.EnabledInOrder())
		want := []string{"a", "e", "b"}
		if !equalStrings(got, want) {
			t.Errorf("order after move = %v, want %v", got, want)
		}
	})

	t.Run("to root", func(t *testing.T) {
		tree, nodes := buildTestTree(t)
		if res := tree.Move(nodes["b"].ID, ""); res != Moved {
			t.Fatalf("result = %v, want Moved", res)
		}
		roots := tree.Roots()
		if len(roots) != 3 || roots[2] != nodes["b"].ID {
			t.Errorf("roots = %v, want b appended", roots)
		}
	})

	t.Run("missing parent falls back to root", func(t *testing.T) {
		tree, nodes := buildTestTree(t)
		if res := tree.Move(nodes["b"].ID, "vanished"); res != MovedToRoot {
			t.Fatalf("result = %v, want MovedToRoot", res)
		}
		if !tree.Contains(nodes["d"].ID) {
			t.Error("subtree must stay intact on fallback")
		}
		roots := tree.Roots()
		if roots[len(roots)-1] != nodes["b"].ID {
			t.Errorf("b should be the last root, roots = %v", roots)
		}
	})

	t.Run("under own descendant falls back to root", func(t *testing.T) {
		tree, nodes := buildTestTree(t)
		if res := tree.Move(nodes["a"].ID, nodes["d"].ID); res != MovedToRoot {
			t.Fatalf("result = %v, want MovedToRoot", res)
		}
		if tree.Len() != 5 {
			t.Errorf("tree lost nodes: %d, want 5", tree.Len())
		}
	})

	t.Run("missing node", func(t *testing.T) {
		tree, _ := buildTestTree(t)
		if res := tree.Move("no-such-id", ""); res != MoveNotFound {
			t.Fatalf("result = %v, want MoveNotFound", res)
		}
	})
}

func TestInsertChildRejectsDetachedParent(t *testing.T) {
	tree, nodes := buildTestTree(t)
	tree.Extract(nodes["b"].ID)

	// b is still resident but no longer attached, so inserting under it
	// would create an orphan subtree.
	if tree.InsertChild(nodes["b"].ID, NewNode("x")) {
		t.Error("insert under a detached node should fail")
	}
	if tree.InsertChild("no-such-id", NewNode("y")) {
		t.Error("insert under a missing node should fail")
	}
}

func TestCloneRemapsEveryID(t *testing.T) {
	tree, nodes := buildTestTree(t)
	clone, idMap := tree.Clone()

	if len(idMap) != tree.Len() {
		t.Fatalf("idMap has %d entries, want %d", len(idMap), tree.Len())
	}
	seen := map[string]bool{}
	for oldID, newID := range idMap {
		if oldID == newID {
			t.Errorf("node %s kept its id", oldID)
		}
		if seen[newID] {
			t.Errorf("new id %s assigned twice", newID)
		}
		seen[newID] = true
		if !clone.Contains(newID) {
			t.Errorf("mapped id %s missing from clone", newID)
		}
	}

	// Same structure, same names, same flags.
	if !equalStrings(names(clone.EnabledInOrder()), names(tree.EnabledInOrder())) {
		t.Error("clone ordering differs from original")
	}

	// Independence: mutating the clone leaves the original alone.
	clone.SetOn(idMap[nodes["a"].ID], false)
	if !tree.EnabledIDs()[nodes["a"].ID] {
		t.Error("mutating the clone changed the original")
	}
}

func TestTreeJSONRoundTrip(t *testing.T) {
	tree, nodes := buildTestTree(t)

	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatal(err)
	}
	back := NewTree()
	if err := json.Unmarshal(data, back); err != nil {
		t.Fatal(err)
	}

	if back.Len() != tree.Len() {
		t.Fatalf("decoded %d nodes, want %d", back.Len(), tree.Len())
	}
	// Ids survive the round trip, so the enabled picture is identical.
	for name, n := range nodes {
		dn := back.Get(n.ID)
		if dn == nil {
			t.Fatalf("node %s missing after round trip", name)
		}
		if dn.Name != n.Name || dn.On != n.On {
			t.Errorf("node %s = %+v, want name %q on %v", name, dn, n.Name, n.On)
		}
	}
	if !equalStrings(names(back.EnabledInOrder()), names(tree.EnabledInOrder())) {
		t.Error("ordering changed across the round trip")
	}
}

func TestTreeJSONNull(t *testing.T) {
	tree := NewTree()
	if err := json.Unmarshal([]byte("null"), tree); err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 0 {
		t.Errorf("null should decode to an empty tree, got %d nodes", tree.Len())
	}
	if tree.InsertChild("anything", NewNode("x")) {
		t.Error("empty tree should reject child inserts")
	}
}
