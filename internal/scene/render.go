package scene

import (
	"github.com/vectorpad/vectorpad/internal/style"
)

// DrawCommand is a single drawing operation for the renderer
// collaborator to execute. Commands carry resolved geometry and style;
// the renderer needs no access to the scene itself.
type DrawCommand struct {
	Op       string     `json:"op"` // "line" or "rect"
	EntityID string     `json:"entityId"`
	X1       float64    `json:"x1"`
	Y1       float64    `json:"y1"`
	X2       float64    `json:"x2"`
	Y2       float64    `json:"y2"`
	Color    string     `json:"color"`
	Hex      string     `json:"hex"`
	Fill     style.Fill `json:"fill,omitempty"` // rects only
}

// CompileDrawCommands flattens the scene into painter's-order draw
// commands: top-level z-order first, then group members in member
// order, so later commands paint on top.
func CompileDrawCommands(s *Scene) []DrawCommand {
	var commands []DrawCommand
	for _, id := range s.TopLevel() {
		compileNode(s, id, &commands)
	}
	return commands
}

func compileNode(s *Scene, id string, commands *[]DrawCommand) {
	n, ok := s.Get(id)
	if !ok {
		return
	}

	switch n.Kind {
	case KindLine:
		*commands = append(*commands, DrawCommand{
			Op:       "line",
			EntityID: n.ID,
			X1:       n.A.X,
			Y1:       n.A.Y,
			X2:       n.B.X,
			Y2:       n.B.Y,
			Color:    n.Color,
			Hex:      style.Hex(n.Color),
		})
	case KindRect:
		*commands = append(*commands, DrawCommand{
			Op:       "rect",
			EntityID: n.ID,
			X1:       n.A.X,
			Y1:       n.A.Y,
			X2:       n.B.X,
			Y2:       n.B.Y,
			Color:    n.Color,
			Hex:      style.Hex(n.Color),
			Fill:     n.Fill,
		})
	case KindGroup:
		for _, child := range n.Children {
			compileNode(s, child, commands)
		}
	}
}

// CompileEntity flattens a single entity's subtree into draw commands,
// member order preserved.
func CompileEntity(s *Scene, id string) []DrawCommand {
	var commands []DrawCommand
	compileNode(s, id, &commands)
	return commands
}
