package scene

import (
	"github.com/vectorpad/vectorpad/internal/geometry"
	"github.com/vectorpad/vectorpad/internal/style"
	"github.com/vectorpad/vectorpad/internal/typeid"
)

// Kind discriminates the closed set of entity variants. Operations
// switch exhaustively on it; there is no open subclassing.
type Kind string

const (
	KindLine  Kind = "line"
	KindRect  Kind = "rect"
	KindGroup Kind = "group"
)

// Node is an entity in the scene arena: a line, a rectangle, or a
// group. Nodes reference each other by ID rather than by pointer, so
// ownership is explicit and cycle detection is a plain reachability
// walk over the arena.
type Node struct {
	ID   string
	Kind Kind

	// Parent is nil for top-level entities, otherwise the owning
	// group's ID. Every node has at most one owner.
	Parent   *string
	Children []string // groups only, in z-order

	// Geometry. For a line, A and B are its endpoints. For a rect,
	// A is the top-left and B the bottom-right corner; the pair is
	// normalized on construction and stays normalized under
	// translation. Groups carry no geometry of their own.
	A geometry.Point
	B geometry.Point

	// Style. Fill applies to rects only.
	Color string
	Fill  style.Fill
}

// NewLine creates an unregistered line shape.
func NewLine(a, b geometry.Point, color string) *Node {
	return &Node{
		ID:    typeid.NewShapeID(),
		Kind:  KindLine,
		A:     a,
		B:     b,
		Color: color,
	}
}

// NewRect creates an unregistered rectangle shape. The corners may
// arrive in any order; they are normalized so A is top-left.
func NewRect(a, b geometry.Point, color string, fill style.Fill) *Node {
	r := geometry.RectFromPoints(a, b)
	return &Node{
		ID:    typeid.NewShapeID(),
		Kind:  KindRect,
		A:     r.Min(),
		B:     r.Max(),
		Color: color,
		Fill:  fill,
	}
}

// NewGroup creates an unregistered, empty group.
func NewGroup() *Node {
	return &Node{
		ID:   typeid.NewGroupID(),
		Kind: KindGroup,
	}
}

// IsShape reports whether the node is a leaf shape.
func (n *Node) IsShape() bool {
	return n.Kind == KindLine || n.Kind == KindRect
}

// ShapeBounds returns the axis-aligned bounding box of a leaf shape's
// geometry. Group bounds are a scene-level computation, see
// Scene.Bounds.
func (n *Node) ShapeBounds() geometry.Rect {
	return geometry.RectFromPoints(n.A, n.B)
}

// Translate shifts the node's own geometry by (dx, dy). Rect corner
// normalization is preserved because both corners move together.
// Group members are translated by Scene.Translate, not here.
func (n *Node) Translate(dx, dy float64) {
	n.A = n.A.Translate(dx, dy)
	n.B = n.B.Translate(dx, dy)
}

// Restyle replaces the shape's style attributes in place. A nil fill
// leaves the fill unchanged; a fill supplied for a line is ignored,
// per the edit-dialog contract.
func (n *Node) Restyle(color string, fill *style.Fill) {
	n.Color = color
	if fill != nil && n.Kind == KindRect {
		n.Fill = *fill
	}
}
