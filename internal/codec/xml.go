// Package codec serializes the scene to the XML save format and the
// JSON export format. Both share the same z-order traversal of the
// scene tree; they differ only in target representation.
package codec

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/vectorpad/vectorpad/internal/geometry"
	"github.com/vectorpad/vectorpad/internal/scene"
	"github.com/vectorpad/vectorpad/internal/style"
	"github.com/vectorpad/vectorpad/internal/typeid"
)

// ErrMalformedDocument reports a save document that cannot be decoded
// into a scene.
var ErrMalformedDocument = errors.New("malformed document")

// Save format:
//
//	<drawing>
//	  <line id="..." x1="..." y1="..." x2="..." y2="..." color="..."/>
//	  <rect id="..." x1="..." y1="..." x2="..." y2="..." color="..." fill="..."/>
//	  <group id="...">...nested line/rect/group...</group>
//	</drawing>
//
// Document order is z-order; entity IDs round-trip.

// Encode writes the scene to w in the XML save format.
func Encode(s *scene.Scene, w io.Writer) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "drawing"}}
	if err := enc.EncodeToken(root); err != nil {
		return fmt.Errorf("encode drawing: %w", err)
	}
	for _, id := range s.TopLevel() {
		if err := encodeEntity(enc, s, id); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return fmt.Errorf("encode drawing: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("flush document: %w", err)
	}
	return nil
}

func encodeEntity(enc *xml.Encoder, s *scene.Scene, id string) error {
	n, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("encode entity %s: %w", id, scene.ErrNotFound)
	}

	switch n.Kind {
	case scene.KindLine, scene.KindRect:
		start := xml.StartElement{
			Name: xml.Name{Local: string(n.Kind)},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "id"}, Value: n.ID},
				{Name: xml.Name{Local: "x1"}, Value: formatCoord(n.A.X)},
				{Name: xml.Name{Local: "y1"}, Value: formatCoord(n.A.Y)},
				{Name: xml.Name{Local: "x2"}, Value: formatCoord(n.B.X)},
				{Name: xml.Name{Local: "y2"}, Value: formatCoord(n.B.Y)},
				{Name: xml.Name{Local: "color"}, Value: n.Color},
			},
		}
		if n.Kind == scene.KindRect {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "fill"}, Value: string(n.Fill)})
		}
		if err := enc.EncodeToken(start); err != nil {
			return fmt.Errorf("encode %s: %w", n.Kind, err)
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return fmt.Errorf("encode %s: %w", n.Kind, err)
		}

	case scene.KindGroup:
		start := xml.StartElement{
			Name: xml.Name{Local: "group"},
			Attr: []xml.Attr{{Name: xml.Name{Local: "id"}, Value: n.ID}},
		}
		if err := enc.EncodeToken(start); err != nil {
			return fmt.Errorf("encode group: %w", err)
		}
		for _, child := range n.Children {
			if err := encodeEntity(enc, s, child); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return fmt.Errorf("encode group: %w", err)
		}
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Decode reads an XML save document and rebuilds the scene. Any
// structural or value problem is reported as ErrMalformedDocument.
func Decode(r io.Reader) (*scene.Scene, error) {
	dec := xml.NewDecoder(r)
	s := scene.New()

	root, err := nextStart(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if root == nil || root.Name.Local != "drawing" {
		return nil, fmt.Errorf("%w: missing <drawing> root", ErrMalformedDocument)
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: unterminated <drawing>", ErrMalformedDocument)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if _, err := decodeEntity(dec, t, s); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return s, nil
		}
	}
}

// decodeEntity registers the element (and its subtree) as a top-level
// entity and returns its ID. Group callers re-own the result through
// AddToGroup, which keeps every intermediate state a valid scene.
func decodeEntity(dec *xml.Decoder, start xml.StartElement, s *scene.Scene) (string, error) {
	switch start.Name.Local {
	case "line", "rect":
		return decodeShape(dec, start, s)
	case "group":
		return decodeGroup(dec, start, s)
	default:
		return "", fmt.Errorf("%w: unexpected element <%s>", ErrMalformedDocument, start.Name.Local)
	}
}

func decodeShape(dec *xml.Decoder, start xml.StartElement, s *scene.Scene) (string, error) {
	var (
		id, color, fill string
		coords          = map[string]float64{}
	)
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "id":
			id = attr.Value
		case "color":
			color = attr.Value
		case "fill":
			fill = attr.Value
		case "x1", "y1", "x2", "y2":
			v, err := strconv.ParseFloat(attr.Value, 64)
			if err != nil {
				return "", fmt.Errorf("%w: bad coordinate %s=%q", ErrMalformedDocument, attr.Name.Local, attr.Value)
			}
			coords[attr.Name.Local] = v
		}
	}
	for _, key := range []string{"x1", "y1", "x2", "y2"} {
		if _, ok := coords[key]; !ok {
			return "", fmt.Errorf("%w: <%s> missing %s", ErrMalformedDocument, start.Name.Local, key)
		}
	}
	canonical, err := style.ParseColor(color)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	a := geometry.Point{X: coords["x1"], Y: coords["y1"]}
	b := geometry.Point{X: coords["x2"], Y: coords["y2"]}

	var n *scene.Node
	if start.Name.Local == "line" {
		n = scene.NewLine(a, b, canonical)
	} else {
		parsedFill, err := style.ParseFill(fill)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		n = scene.NewRect(a, b, canonical, parsedFill)
	}
	if id != "" {
		if err := typeid.Validate(id, typeid.PrefixShape); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		n.ID = id
	}
	if err := s.Register(n); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if err := dec.Skip(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return n.ID, nil
}

func decodeGroup(dec *xml.Decoder, start xml.StartElement, s *scene.Scene) (string, error) {
	g := scene.NewGroup()
	for _, attr := range start.Attr {
		if attr.Name.Local == "id" {
			if err := typeid.Validate(attr.Value, typeid.PrefixGroup); err != nil {
				return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
			}
			g.ID = attr.Value
		}
	}
	if err := s.Register(g); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("%w: unterminated <group>: %v", ErrMalformedDocument, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			childID, err := decodeEntity(dec, t, s)
			if err != nil {
				return "", err
			}
			if err := s.AddToGroup(g.ID, childID); err != nil {
				return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
			}
		case xml.EndElement:
			return g.ID, nil
		}
	}
}

func nextStart(dec *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return &start, nil
		}
	}
}
