package panel

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Node is a single preset in the tree. Presets gate control visibility:
// a control linked to a preset only shows while that preset (and every
// ancestor above it) is switched on.
//
// Nodes live in a flat arena keyed by id; a node records the ids of its
// children in order, and parents are looked up, never stored.
type Node struct {
	ID       string
	Name     string
	On       bool
	Children []string
}

// NewNode creates a preset node with a fresh id, switched on.
func NewNode(name string) *Node {
	return &Node{ID: uuid.NewString(), Name: name, On: true}
}

// Tree is a rooted forest of preset nodes.
type Tree struct {
	nodes map[string]*Node
	roots []string
}

// NewTree creates an empty preset tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[string]*Node)}
}

// NodeRef identifies an enabled preset in pre-order position.
type NodeRef struct {
	ID   string
	Name string
}

// MoveResult reports what Move did with a node.
type MoveResult int

const (
	MoveNotFound MoveResult = iota // node id not in the tree, nothing changed
	Moved                          // attached under the requested parent (or root, if asked)
	MovedToRoot                    // requested parent was missing; fell back to root
)

// Get returns the node with the given id, or nil.
func (t *Tree) Get(id string) *Node {
	return t.nodes[id]
}

// Contains reports whether id is present in the tree.
func (t *Tree) Contains(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Roots returns the root node ids in order.
func (t *Tree) Roots() []string {
	out := make([]string, len(t.roots))
	copy(out, t.roots)
	return out
}

// AddRoot appends a node (and any subtree hanging off it) as a new root.
func (t *Tree) AddRoot(n *Node) {
	t.adopt(n)
	t.roots = append(t.roots, n.ID)
}

// adopt registers a node in the arena. Descendants of a reattached node
// are already resident: Extract never evicts them.
func (t *Tree) adopt(n *Node) {
	if n == nil {
		return
	}
	t.nodes[n.ID] = n
}

// InsertChild appends n to parentID's children. Returns false when the
// parent is not attached to the tree, in which case nothing changes: the
// caller asked to insert under a node that vanished, and must not end up
// with a detached orphan.
func (t *Tree) InsertChild(parentID string, n *Node) bool {
	if !t.attached(parentID) {
		return false
	}
	t.adopt(n)
	parent := t.nodes[parentID]
	parent.Children = append(parent.Children, n.ID)
	return true
}

// attached reports whether id is reachable from the roots. A node that
// has been Extracted but not reinserted is in the arena but not attached;
// inserting under it would detach (or cycle) the new subtree.
func (t *Tree) attached(id string) bool {
	found := false
	t.Walk(func(n *Node, _ int) {
		if n.ID == id {
			found = true
		}
	})
	return found
}

// Extract detaches the node with the given id from its parent (or from
// the roots), leaving its own subtree intact under it. The detached node
// stays resident in the arena; callers must reattach it with InsertChild
// or AddRoot, or remove it with Delete.
func (t *Tree) Extract(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, false
	}
	if removed, rest := removeID(t.roots, id); removed {
		t.roots = rest
		return n, true
	}
	for _, p := range t.nodes {
		if removed, rest := removeID(p.Children, id); removed {
			p.Children = rest
			return n, true
		}
	}
	// Already detached (extracted twice).
	return n, true
}

func removeID(ids []string, id string) (bool, []string) {
	for i, v := range ids {
		if v == id {
			return true, append(ids[:i:i], ids[i+1:]...)
		}
	}
	return false, ids
}

// Move re-parents a node. An empty newParentID moves it to the root
// level. When the requested parent does not exist (or sits inside the
// moved subtree), the node is appended to the roots instead of being
// dropped, and the result says so.
func (t *Tree) Move(id, newParentID string) MoveResult {
	n, ok := t.Extract(id)
	if !ok {
		return MoveNotFound
	}
	if newParentID == "" {
		t.roots = append(t.roots, n.ID)
		return Moved
	}
	if t.InsertChild(newParentID, n) {
		return Moved
	}
	t.roots = append(t.roots, n.ID)
	return MovedToRoot
}

// Delete removes the node and its entire subtree, returning the deleted
// ids in pre-order. Returns nil when the id is not present.
func (t *Tree) Delete(id string) []string {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	if _, found := t.Extract(id); !found {
		return nil
	}
	var deleted []string
	var collect func(n *Node)
	collect = func(n *Node) {
		deleted = append(deleted, n.ID)
		for _, cid := range n.Children {
			if c, ok := t.nodes[cid]; ok {
				collect(c)
			}
		}
	}
	collect(n)
	for _, did := range deleted {
		delete(t.nodes, did)
	}
	return deleted
}

// SetOn switches a preset on or off. Returns false when id is missing.
func (t *Tree) SetOn(id string, on bool) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	n.On = on
	return true
}

// Toggle flips a preset and returns its new state.
func (t *Tree) Toggle(id string) (on bool, ok bool) {
	n, found := t.nodes[id]
	if !found {
		return false, false
	}
	n.On = !n.On
	return n.On, true
}

// Rename changes a preset's display name. Returns false when id is missing.
func (t *Tree) Rename(id, name string) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	n.Name = name
	return true
}

// Walk visits every attached node in pre-order (roots first, depth-first,
// children in stored order) with its depth.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	var visit func(id string, depth int)
	visit = func(id string, depth int) {
		n, ok := t.nodes[id]
		if !ok {
			return
		}
		fn(n, depth)
		for _, cid := range n.Children {
			visit(cid, depth+1)
		}
	}
	for _, rid := range t.roots {
		visit(rid, 0)
	}
}

// EnabledIDs returns the set of effectively enabled presets: a node
// counts only when it is on and every ancestor up to its root is on.
func (t *Tree) EnabledIDs() map[string]bool {
	enabled := make(map[string]bool)
	var visit func(id string, ancestorsOn bool)
	visit = func(id string, ancestorsOn bool) {
		n, ok := t.nodes[id]
		if !ok {
			return
		}
		on := ancestorsOn && n.On
		if on {
			enabled[n.ID] = true
		}
		for _, cid := range n.Children {
			visit(cid, on)
		}
	}
	for _, rid := range t.roots {
		visit(rid, true)
	}
	return enabled
}

// EnabledInOrder returns the effectively enabled presets in pre-order.
// This ordering decides which preset a multi-linked control groups under.
func (t *Tree) EnabledInOrder() []NodeRef {
	var refs []NodeRef
	var visit func(id string, ancestorsOn bool)
	visit = func(id string, ancestorsOn bool) {
		n, ok := t.nodes[id]
		if !ok {
			return
		}
		on := ancestorsOn && n.On
		if on {
			refs = append(refs, NodeRef{ID: n.ID, Name: n.Name})
		}
		for _, cid := range n.Children {
			visit(cid, on)
		}
	}
	for _, rid := range t.roots {
		visit(rid, true)
	}
	return refs
}

// Clone deep-copies the tree, giving every node a fresh id, and returns
// the old->new id mapping so callers can remap references held elsewhere.
func (t *Tree) Clone() (*Tree, map[string]string) {
	clone := NewTree()
	idMap := make(map[string]string, len(t.nodes))
	var copyNode func(id string) string
	copyNode = func(id string) string {
		src := t.nodes[id]
		dst := &Node{ID: uuid.NewString(), Name: src.Name, On: src.On}
		idMap[src.ID] = dst.ID
		clone.nodes[dst.ID] = dst
		for _, cid := range src.Children {
			if _, ok := t.nodes[cid]; ok {
				dst.Children = append(dst.Children, copyNode(cid))
			}
		}
		return dst.ID
	}
	for _, rid := range t.roots {
		if _, ok := t.nodes[rid]; ok {
			clone.roots = append(clone.roots, copyNode(rid))
		}
	}
	return clone, idMap
}

// nodeJSON is the nested wire shape of a preset node.
type nodeJSON struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	IsOn     bool       `json:"isOn"`
	Children []nodeJSON `json:"children,omitempty"`
}

// MarshalJSON encodes the forest as nested node objects.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var encode func(id string) (nodeJSON, bool)
	encode = func(id string) (nodeJSON, bool) {
		n, ok := t.nodes[id]
		if !ok {
			return nodeJSON{}, false
		}
		out := nodeJSON{ID: n.ID, Name: n.Name, IsOn: n.On}
		for _, cid := range n.Children {
			if child, ok := encode(cid); ok {
				out.Children = append(out.Children, child)
			}
		}
		return out, true
	}
	forest := []nodeJSON{}
	for _, rid := range t.roots {
		if root, ok := encode(rid); ok {
			forest = append(forest, root)
		}
	}
	return json.Marshal(forest)
}

// UnmarshalJSON rebuilds the arena from nested node objects. A JSON null
// decodes to an empty tree.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var forest []nodeJSON
	if err := json.Unmarshal(data, &forest); err != nil {
		return err
	}
	t.nodes = make(map[string]*Node)
	t.roots = nil
	var decode func(j nodeJSON) string
	decode = func(j nodeJSON) string {
		n := &Node{ID: j.ID, Name: j.Name, On: j.IsOn}
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		for _, cj := range j.Children {
			n.Children = append(n.Children, decode(cj))
		}
		t.nodes[n.ID] = n
		return n.ID
	}
	for _, rj := range forest {
		t.roots = append(t.roots, decode(rj))
	}
	return nil
}
