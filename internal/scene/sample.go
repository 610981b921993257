package scene

import (
	"github.com/vectorpad/vectorpad/internal/geometry"
	"github.com/vectorpad/vectorpad/internal/style"
)

// NewSampleScene builds the scene a fresh session starts with when no
// snapshot exists: two shapes grouped together plus a free line, enough
// to exercise selection and grouping from the first gesture.
func NewSampleScene() *Scene {
	s := New()

	frame := NewRect(
		geometry.Point{X: 120, Y: 120},
		geometry.Point{X: 320, Y: 240},
		"blue", style.FillOutline,
	)
	diagonal := NewLine(
		geometry.Point{X: 120, Y: 240},
		geometry.Point{X: 320, Y: 120},
		"blue",
	)
	free := NewLine(
		geometry.Point{X: 400, Y: 100},
		geometry.Point{X: 560, Y: 300},
		"black",
	)

	// Registration order fixes z-order; errors are impossible with
	// fresh IDs.
	_ = s.Register(frame)
	_ = s.Register(diagonal)
	_ = s.Register(free)
	_, _ = s.Group([]string{frame.ID, diagonal.ID})

	return s
}
