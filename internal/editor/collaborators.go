package editor

import (
	"github.com/vectorpad/vectorpad/internal/scene"
	"github.com/vectorpad/vectorpad/internal/style"
)

// Canvas is the rendering collaborator. The editor tells it which
// shapes to draw and erase; how pixels happen is not the core's
// concern.
type Canvas interface {
	DrawShape(cmd scene.DrawCommand)
	EraseShape(id string)
}

// StyleRequest describes the shape an edit dialog should offer styling
// for. Lines take a color only; rects take color and fill.
type StyleRequest struct {
	EntityID string     `json:"entityId"`
	Kind     scene.Kind `json:"kind"`
	Color    string     `json:"color"`
	Fill     style.Fill `json:"fill,omitempty"`
}

// Dialog is the style-dialog collaborator. RequestStyle is
// fire-and-forget: the collaborator answers later through
// Editor.SubmitStyle or Editor.CancelEdit, keeping the single control
// thread unblocked while the user decides.
type Dialog interface {
	RequestStyle(req StyleRequest)
}

// Notifier receives user-facing success and failure messages for
// structural actions.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}
