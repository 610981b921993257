// Package style holds the stroke-color and fill-style vocabulary shared by
// the shape model, the edit dialog boundary, and the persistence codecs.
package style

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrInvalidColor = errors.New("invalid color")

// Fill is the fill style of a rectangle. The set is closed; lines have
// no fill.
type Fill string

const (
	FillSolid   Fill = "solid"
	FillHatched Fill = "hatched"
	FillOutline Fill = "outline"
)

// DefaultFill is applied to new rectangles until the user picks another.
const DefaultFill = FillOutline

// DefaultColor is applied to new shapes until the user picks another.
const DefaultColor = "black"

// ParseFill validates a fill style string.
func ParseFill(s string) (Fill, error) {
	switch Fill(s) {
	case FillSolid, FillHatched, FillOutline:
		return Fill(s), nil
	default:
		return "", fmt.Errorf("unknown fill style %q", s)
	}
}

// namedColors is the menu palette. Hex colors are accepted too.
var namedColors = map[string]string{
	"black": "#000000",
	"blue":  "#0000ff",
	"green": "#008000",
	"red":   "#ff0000",
}

// ParseColor validates a color at the dialog/protocol boundary and
// returns it in canonical form: palette names stay names, hex strings
// are lowercased #rrggbb.
func ParseColor(s string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if _, ok := namedColors[name]; ok {
		return name, nil
	}
	c, err := colorful.Hex(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c.Hex(), nil
}

// Hex resolves a canonical color to its #rrggbb form for renderers that
// do not understand palette names.
func Hex(color string) string {
	if hex, ok := namedColors[color]; ok {
		return hex
	}
	return color
}

// DrawStyle is the dispatcher-owned current drawing style. It is plain
// state threaded through the editor, not a process-wide global; the
// last-chosen values persist across draw actions.
type DrawStyle struct {
	Color string `json:"color"`
	Fill  Fill   `json:"fill"`
}

// Default returns the style new sessions start with.
func Default() DrawStyle {
	return DrawStyle{Color: DefaultColor, Fill: DefaultFill}
}
