// Package scene holds the in-memory scene graph: a flat arena of
// line/rect/group nodes addressed by ID, a z-ordered top-level
// registry, and the structural operations (group, ungroup, clone,
// delete, spatial selection) the editor dispatches onto it.
package scene

import (
	"fmt"
	"slices"

	"github.com/vectorpad/vectorpad/internal/geometry"
	"github.com/vectorpad/vectorpad/internal/style"
	"github.com/vectorpad/vectorpad/internal/typeid"
)

// Scene is the entity arena plus the top-level registry. Invariants:
// every node in the arena is either top-level (Parent nil, ID present
// in topLevel) or owned by exactly one group (Parent set, ID present in
// that group's Children); the ownership graph is acyclic.
//
// Scene is not safe for concurrent use. All mutation happens on the
// single session event loop.
type Scene struct {
	nodes    map[string]*Node
	topLevel []string // z-order: later entries paint on top
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{nodes: make(map[string]*Node)}
}

// Get looks up a node by ID.
func (s *Scene) Get(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// TopLevel returns the top-level entity IDs in z-order (first entry
// paints first, last entry is topmost).
func (s *Scene) TopLevel() []string {
	return slices.Clone(s.topLevel)
}

// Len returns the total number of nodes in the arena, owned members
// included.
func (s *Scene) Len() int {
	return len(s.nodes)
}

// Register adds a node to the arena as a new top-level entity, on top
// of the z-order. The node's subtree, if it has one, must already be
// in the arena.
func (s *Scene) Register(n *Node) error {
	if _, exists := s.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}
	n.Parent = nil
	s.nodes[n.ID] = n
	s.topLevel = append(s.topLevel, n.ID)
	return nil
}

// Unregister removes a top-level entity from the registry and the
// arena, along with everything it owns. Unregistering an owned entity
// is an error; detach it from its group first.
func (s *Scene) Unregister(id string) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if n.Parent != nil {
		return fmt.Errorf("%w: %s is owned by %s", ErrNotTopLevel, id, *n.Parent)
	}
	s.topLevel = slices.DeleteFunc(s.topLevel, func(e string) bool { return e == id })
	s.deleteSubtree(id)
	return nil
}

// Delete unregisters and destroys the given top-level entities. The
// whole call is validated up front so it either applies to all IDs or
// to none.
func (s *Scene) Delete(ids []string) error {
	for _, id := range ids {
		n, ok := s.nodes[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if n.Parent != nil {
			return fmt.Errorf("%w: %s", ErrNotTopLevel, id)
		}
	}
	for _, id := range ids {
		if err := s.Unregister(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) deleteSubtree(id string) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	for _, child := range n.Children {
		s.deleteSubtree(child)
	}
	delete(s.nodes, id)
}

// Group removes the given top-level entities from the registry and
// replaces them with a new group owning exactly those entities, member
// order following z-order. Fewer than two IDs is
// ErrInsufficientSelection; nothing is mutated on any error.
func (s *Scene) Group(ids []string) (string, error) {
	if len(ids) < 2 {
		return "", fmt.Errorf("%w: got %d", ErrInsufficientSelection, len(ids))
	}
	for _, id := range ids {
		n, ok := s.nodes[id]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if n.Parent != nil {
			return "", fmt.Errorf("%w: %s", ErrNotTopLevel, id)
		}
	}

	g := NewGroup()
	s.nodes[g.ID] = g
	member := make(map[string]bool, len(ids))
	for _, id := range ids {
		member[id] = true
	}
	// Members keep their relative z-order inside the group.
	for _, id := range s.topLevel {
		if member[id] {
			g.Children = append(g.Children, id)
			s.nodes[id].Parent = &g.ID
		}
	}
	s.topLevel = slices.DeleteFunc(s.topLevel, func(e string) bool { return member[e] })
	s.topLevel = append(s.topLevel, g.ID)
	return g.ID, nil
}

// AddToGroup appends an existing top-level entity to a group. Adding a
// group to itself or to one of its own descendants fails with ErrCycle
// and leaves the scene unchanged.
func (s *Scene) AddToGroup(groupID, memberID string) error {
	g, ok := s.nodes[groupID]
	if !ok || g.Kind != KindGroup {
		return fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	m, ok := s.nodes[memberID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, memberID)
	}
	if m.Parent != nil {
		return fmt.Errorf("%w: %s", ErrNotTopLevel, memberID)
	}
	if memberID == groupID || s.reachable(memberID, groupID) {
		return fmt.Errorf("%w: %s contains %s", ErrCycle, memberID, groupID)
	}
	s.topLevel = slices.DeleteFunc(s.topLevel, func(e string) bool { return e == memberID })
	g.Children = append(g.Children, memberID)
	m.Parent = &g.ID
	return nil
}

// RemoveFromGroup detaches a member from a group and promotes it back
// to top level. ErrNotFound if the entity is not an immediate member.
func (s *Scene) RemoveFromGroup(groupID, memberID string) error {
	g, ok := s.nodes[groupID]
	if !ok || g.Kind != KindGroup {
		return fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	if !slices.Contains(g.Children, memberID) {
		return fmt.Errorf("%w: %s is not a member of %s", ErrNotFound, memberID, groupID)
	}
	g.Children = slices.DeleteFunc(g.Children, func(e string) bool { return e == memberID })
	s.nodes[memberID].Parent = nil
	s.topLevel = append(s.topLevel, memberID)
	return nil
}

// reachable reports whether toID can be reached from fromID by walking
// child references.
func (s *Scene) reachable(fromID, toID string) bool {
	n, ok := s.nodes[fromID]
	if !ok {
		return false
	}
	for _, child := range n.Children {
		if child == toID || s.reachable(child, toID) {
			return true
		}
	}
	return false
}

// Ungroup destroys a group and promotes its immediate members to the
// group's former scope, in the group's place: one level of hierarchy
// undone per call, nested sub-groups stay intact. Returns the promoted
// member IDs.
func (s *Scene) Ungroup(id string) ([]string, error) {
	g, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if g.Kind != KindGroup {
		return nil, fmt.Errorf("%w: %s is not a group", ErrNotFound, id)
	}

	members := slices.Clone(g.Children)
	if g.Parent == nil {
		// Splice members into the z-order where the group sat.
		at := slices.Index(s.topLevel, id)
		s.topLevel = slices.Delete(s.topLevel, at, at+1)
		s.topLevel = slices.Insert(s.topLevel, at, members...)
		for _, m := range members {
			s.nodes[m].Parent = nil
		}
	} else {
		parent := s.nodes[*g.Parent]
		at := slices.Index(parent.Children, id)
		parent.Children = slices.Delete(parent.Children, at, at+1)
		parent.Children = slices.Insert(parent.Children, at, members...)
		for _, m := range members {
			s.nodes[m].Parent = g.Parent
		}
	}
	delete(s.nodes, id)
	return members, nil
}

// Translate shifts an entity and, for groups, every member transitively
// by the same delta.
func (s *Scene) Translate(id string, dx, dy float64) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	n.Translate(dx, dy)
	for _, child := range n.Children {
		if err := s.Translate(child, dx, dy); err != nil {
			return err
		}
	}
	return nil
}

// Restyle updates a leaf shape's style. Restyling a group is not a
// scene-level concept; the editor rejects it before getting here.
func (s *Scene) Restyle(id, color string, fill *style.Fill) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !n.IsShape() {
		return fmt.Errorf("%w: %s is a group", ErrNotFound, id)
	}
	n.Restyle(color, fill)
	return nil
}

// Bounds returns the bounding box of an entity: the shape's own box
// for leaves, the recursive union of member boxes for groups. An empty
// group has a zero box.
func (s *Scene) Bounds(id string) geometry.Rect {
	box, _ := s.bounds(id)
	return box
}

// bounds reports whether the entity has any geometry at all, so that
// empty groups do not drag a zero box at the origin into unions.
func (s *Scene) bounds(id string) (geometry.Rect, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return geometry.Rect{}, false
	}
	if n.IsShape() {
		return n.ShapeBounds(), true
	}
	var box geometry.Rect
	have := false
	for _, child := range n.Children {
		cb, ok := s.bounds(child)
		if !ok {
			continue
		}
		if !have {
			box, have = cb, true
		} else {
			box = box.Union(cb)
		}
	}
	return box, have
}

// SelectionBounds returns the collective bounding box of a selection.
func (s *Scene) SelectionBounds(ids []string) geometry.Rect {
	var box geometry.Rect
	have := false
	for _, id := range ids {
		b, ok := s.bounds(id)
		if !ok {
			continue
		}
		if !have {
			box, have = b, true
		} else {
			box = box.Union(b)
		}
	}
	return box
}

// Clone deep-copies the given top-level entities, translated by
// (dx, dy), and registers the copies on top of the z-order. Copies get
// fresh IDs throughout but preserve internal group structure, geometry
// and style; they are fully independent of the originals. Returns the
// new top-level IDs.
func (s *Scene) Clone(ids []string, dx, dy float64) ([]string, error) {
	for _, id := range ids {
		n, ok := s.nodes[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if n.Parent != nil {
			return nil, fmt.Errorf("%w: %s", ErrNotTopLevel, id)
		}
	}
	clones := make([]string, 0, len(ids))
	for _, id := range ids {
		cloneID := s.cloneSubtree(id, nil, dx, dy)
		s.topLevel = append(s.topLevel, cloneID)
		clones = append(clones, cloneID)
	}
	return clones, nil
}

func (s *Scene) cloneSubtree(id string, parent *string, dx, dy float64) string {
	src := s.nodes[id]
	dup := &Node{
		Kind:   src.Kind,
		Parent: parent,
		A:      src.A.Translate(dx, dy),
		B:      src.B.Translate(dx, dy),
		Color:  src.Color,
		Fill:   src.Fill,
	}
	if src.Kind == KindGroup {
		dup.ID = typeid.NewGroupID()
	} else {
		dup.ID = typeid.NewShapeID()
	}
	s.nodes[dup.ID] = dup
	for _, child := range src.Children {
		dup.Children = append(dup.Children, s.cloneSubtree(child, &dup.ID, dx, dy))
	}
	return dup.ID
}

// SelectInRegion returns the top-level entities whose bounding box
// intersects the drag region, in z-order. The test is box-vs-box, not
// exact geometry: a region overlapping a group's box selects the group
// as a unit even when no individual leaf box is touched. An empty
// region selects nothing.
func (s *Scene) SelectInRegion(region geometry.Rect) []string {
	if region.Width <= 0 && region.Height <= 0 {
		return nil
	}
	var out []string
	for _, id := range s.topLevel {
		if s.Bounds(id).Intersects(region) {
			out = append(out, id)
		}
	}
	return out
}
