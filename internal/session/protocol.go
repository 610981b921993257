package session

import "encoding/json"

// Message is the envelope for both directions of the editing protocol.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound message types (frontend → editor).
const (
	TypeModeSet     = "mode.set"
	TypeStyleSet    = "style.set"
	TypePointerDown = "pointer.down"
	TypePointerUp   = "pointer.up"
	TypeStyleSubmit = "style.submit"
	TypeStyleCancel = "style.cancel"
	TypeDocSave     = "doc.save"
	TypeDocOpen     = "doc.open"
)

// Outbound message types (editor → frontend).
const (
	TypeCanvasDraw    = "canvas.draw"
	TypeCanvasErase   = "canvas.erase"
	TypeSceneRender   = "scene.render"
	TypeDialogRequest = "dialog.request"
	TypeNotify        = "notify"
	TypeDocSaved      = "doc.saved"
	TypeError         = "error"
)

type ModeSetPayload struct {
	Mode string `json:"mode"`
}

type StyleSetPayload struct {
	Color string `json:"color"`
	Fill  string `json:"fill,omitempty"`
}

type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StyleSubmitPayload answers a dialog.request. Fill is optional and
// ignored for lines.
type StyleSubmitPayload struct {
	Color string `json:"color"`
	Fill  string `json:"fill,omitempty"`
}

type ErasePayload struct {
	EntityID string `json:"entityId"`
}

type NotifyPayload struct {
	Level   string `json:"level"` // "info" or "error"
	Message string `json:"message"`
}

type DocSavedPayload struct {
	SnapshotID string `json:"snapshotId"`
	Version    int64  `json:"version"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
