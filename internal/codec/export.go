package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vectorpad/vectorpad/internal/scene"
	"github.com/vectorpad/vectorpad/internal/style"
)

// ExportDocument is the JSON interchange representation of a scene:
// entity records in z-order with full geometry, style, and membership.
// It is an output artifact; the XML save format is the one that loads
// back.
type ExportDocument struct {
	Version  int            `json:"version"`
	Entities []ExportEntity `json:"entities"`
}

// ExportEntity is one entity record. Groups carry Children and no
// geometry; shapes carry corner coordinates and style.
type ExportEntity struct {
	ID       string         `json:"id"`
	Kind     scene.Kind     `json:"kind"`
	X1       float64        `json:"x1,omitempty"`
	Y1       float64        `json:"y1,omitempty"`
	X2       float64        `json:"x2,omitempty"`
	Y2       float64        `json:"y2,omitempty"`
	Color    string         `json:"color,omitempty"`
	Hex      string         `json:"hex,omitempty"`
	Fill     style.Fill     `json:"fill,omitempty"`
	Children []ExportEntity `json:"children,omitempty"`
}

const exportVersion = 1

// BuildExport assembles the export document from the scene.
func BuildExport(s *scene.Scene) (*ExportDocument, error) {
	doc := &ExportDocument{Version: exportVersion}
	for _, id := range s.TopLevel() {
		entity, err := exportEntity(s, id)
		if err != nil {
			return nil, err
		}
		doc.Entities = append(doc.Entities, entity)
	}
	return doc, nil
}

func exportEntity(s *scene.Scene, id string) (ExportEntity, error) {
	n, ok := s.Get(id)
	if !ok {
		return ExportEntity{}, fmt.Errorf("export entity %s: %w", id, scene.ErrNotFound)
	}

	out := ExportEntity{ID: n.ID, Kind: n.Kind}
	switch n.Kind {
	case scene.KindLine, scene.KindRect:
		out.X1, out.Y1 = n.A.X, n.A.Y
		out.X2, out.Y2 = n.B.X, n.B.Y
		out.Color = n.Color
		out.Hex = style.Hex(n.Color)
		if n.Kind == scene.KindRect {
			out.Fill = n.Fill
		}
	case scene.KindGroup:
		for _, childID := range n.Children {
			child, err := exportEntity(s, childID)
			if err != nil {
				return ExportEntity{}, err
			}
			out.Children = append(out.Children, child)
		}
	}
	return out, nil
}

// Export writes the scene to w as indented JSON.
func Export(s *scene.Scene, w io.Writer) error {
	doc, err := BuildExport(s)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}
