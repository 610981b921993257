// Package editor is the action dispatcher: a mode state machine that
// routes pointer gestures onto the scene registry and talks to the
// canvas, dialog, and notifier collaborators. All methods run on the
// single session event loop; nothing here is safe for concurrent use.
package editor

import (
	"errors"
	"log/slog"

	"github.com/vectorpad/vectorpad/internal/geometry"
	"github.com/vectorpad/vectorpad/internal/scene"
	"github.com/vectorpad/vectorpad/internal/style"
)

// ErrAmbiguousEditTarget reports an edit gesture that selected a group
// or more than one entity; edit applies to exactly one shape.
var ErrAmbiguousEditTarget = errors.New("edit requires exactly one shape")

// Mode is the dispatcher state. A menu choice moves the machine out of
// Idle; most actions return to Idle on completion, the draw modes stay
// armed until another mode is chosen.
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeDrawLine Mode = "draw-line"
	ModeDrawRect Mode = "draw-rect"
	ModeCopy     Mode = "copy"
	ModeMove     Mode = "move"
	ModeDelete   Mode = "delete"
	ModeEdit     Mode = "edit"
	ModeGroup    Mode = "group"
	ModeUngroup  Mode = "ungroup"
)

// Copies land at a fixed offset from their originals.
const (
	copyOffsetX = 50
	copyOffsetY = 50
)

// Editor owns the scene during an action and dispatches gestures
// according to the current mode.
type Editor struct {
	scene    *scene.Scene
	canvas   Canvas
	dialog   Dialog
	notifier Notifier

	mode  Mode
	style style.DrawStyle

	// dragStart is the press position of an in-flight gesture.
	dragStart *geometry.Point

	// pendingMove is the selection captured by a move drag, waiting
	// for its anchor click. It waits indefinitely; choosing any mode
	// discards it.
	pendingMove []string

	// pendingEdit is the shape waiting on a style dialog answer.
	pendingEdit string
}

// New creates an editor over the given scene.
func New(s *scene.Scene, canvas Canvas, dialog Dialog, notifier Notifier) *Editor {
	return &Editor{
		scene:    s,
		canvas:   canvas,
		dialog:   dialog,
		notifier: notifier,
		mode:     ModeIdle,
		style:    style.Default(),
	}
}

// Scene returns the scene the editor operates on.
func (e *Editor) Scene() *scene.Scene {
	return e.scene
}

// SetScene replaces the scene (open/new document) and repaints it.
func (e *Editor) SetScene(s *scene.Scene) {
	for _, cmd := range scene.CompileDrawCommands(e.scene) {
		e.canvas.EraseShape(cmd.EntityID)
	}
	e.scene = s
	e.resetPending()
	e.mode = ModeIdle
	for _, cmd := range scene.CompileDrawCommands(s) {
		e.canvas.DrawShape(cmd)
	}
}

// Mode returns the current dispatcher state.
func (e *Editor) Mode() Mode {
	return e.mode
}

// Style returns the current drawing style.
func (e *Editor) Style() style.DrawStyle {
	return e.style
}

// SetMode transitions the state machine. Selecting a mode cancels any
// pending partial gesture: an in-flight drag, a move awaiting its
// anchor, an edit awaiting its dialog.
func (e *Editor) SetMode(m Mode) {
	e.resetPending()
	e.mode = m
}

// SetStyle updates the current drawing style. The last-chosen style
// persists across draw actions; there is no reset.
func (e *Editor) SetStyle(s style.DrawStyle) {
	e.style = s
}

func (e *Editor) resetPending() {
	e.dragStart = nil
	e.pendingMove = nil
	e.pendingEdit = ""
}

// PointerDown starts a gesture.
func (e *Editor) PointerDown(p geometry.Point) {
	e.dragStart = &p
}

// PointerUp finishes a gesture. A release at the press position is a
// click; anything else is a drag whose normalized region drives the
// current mode's action.
func (e *Editor) PointerUp(p geometry.Point) {
	if e.dragStart == nil {
		return
	}
	start := *e.dragStart
	e.dragStart = nil

	if start == p {
		e.click(p)
		return
	}
	e.drag(start, p)
}

// click handles a press-release without movement. Only a pending move
// consumes clicks; elsewhere they are no-ops.
func (e *Editor) click(p geometry.Point) {
	if e.mode != ModeMove || e.pendingMove == nil {
		return
	}
	e.applyMove(p)
}

func (e *Editor) drag(start, end geometry.Point) {
	region := geometry.RectFromPoints(start, end)

	switch e.mode {
	case ModeDrawLine:
		e.drawLine(start, end)
	case ModeDrawRect:
		e.drawRect(region)
	case ModeCopy:
		e.copy(region)
	case ModeMove:
		e.captureMove(region)
	case ModeDelete:
		e.delete(region)
	case ModeEdit:
		e.edit(region)
	case ModeGroup:
		e.group(region)
	case ModeUngroup:
		e.ungroup(region)
	case ModeIdle:
		// Drags in idle select nothing and change nothing.
	}
}

// --- Draw ---

func (e *Editor) drawLine(a, b geometry.Point) {
	n := scene.NewLine(a, b, e.style.Color)
	if err := e.scene.Register(n); err != nil {
		slog.Error("register line", "error", err)
		return
	}
	e.drawEntity(n.ID)
	// Draw modes stay armed for repeated drawing.
}

func (e *Editor) drawRect(region geometry.Rect) {
	if region.IsEmpty() {
		return
	}
	n := scene.NewRect(region.Min(), region.Max(), e.style.Color, e.style.Fill)
	if err := e.scene.Register(n); err != nil {
		slog.Error("register rect", "error", err)
		return
	}
	e.drawEntity(n.ID)
}

// --- Copy ---

func (e *Editor) copy(region geometry.Rect) {
	defer func() { e.mode = ModeIdle }()

	selected := e.scene.SelectInRegion(region)
	if len(selected) == 0 {
		return
	}
	clones, err := e.scene.Clone(selected, copyOffsetX, copyOffsetY)
	if err != nil {
		slog.Error("clone selection", "error", err)
		e.notifier.Error("copy failed")
		return
	}
	for _, id := range clones {
		e.drawEntity(id)
	}
	slog.Info("copied entities", "count", len(clones))
}

// --- Move ---

func (e *Editor) captureMove(region geometry.Rect) {
	selected := e.scene.SelectInRegion(region)
	if len(selected) == 0 {
		// Nothing captured; stay in move mode for another try.
		return
	}
	e.pendingMove = selected
}

func (e *Editor) applyMove(anchor geometry.Point) {
	selected := e.pendingMove
	e.pendingMove = nil
	e.mode = ModeIdle

	// Every selected entity translates by the same delta: the vector
	// from the selection's collective box origin to the anchor, so
	// relative offsets are preserved.
	origin := e.scene.SelectionBounds(selected).Min()
	dx, dy := anchor.X-origin.X, anchor.Y-origin.Y

	for _, id := range selected {
		e.eraseEntity(id)
		if err := e.scene.Translate(id, dx, dy); err != nil {
			slog.Error("translate entity", "id", id, "error", err)
		}
		e.drawEntity(id)
	}
}

// --- Delete ---

func (e *Editor) delete(region geometry.Rect) {
	defer func() { e.mode = ModeIdle }()

	selected := e.scene.SelectInRegion(region)
	if len(selected) == 0 {
		return
	}
	for _, id := range selected {
		e.eraseEntity(id)
	}
	if err := e.scene.Delete(selected); err != nil {
		slog.Error("delete selection", "error", err)
		e.notifier.Error("delete failed")
	}
}

// --- Edit ---

func (e *Editor) edit(region geometry.Rect) {
	selected := e.scene.SelectInRegion(region)
	if len(selected) == 0 {
		e.mode = ModeIdle
		return
	}
	if len(selected) > 1 {
		e.notifier.Error(ErrAmbiguousEditTarget.Error())
		e.mode = ModeIdle
		return
	}
	n, ok := e.scene.Get(selected[0])
	if !ok || !n.IsShape() {
		e.notifier.Error(ErrAmbiguousEditTarget.Error())
		e.mode = ModeIdle
		return
	}

	e.pendingEdit = n.ID
	e.dialog.RequestStyle(StyleRequest{
		EntityID: n.ID,
		Kind:     n.Kind,
		Color:    n.Color,
		Fill:     n.Fill,
	})
}

// SubmitStyle completes a pending edit with the dialog's answer. The
// color must already be canonical (style.ParseColor is the protocol
// boundary's job). A nil fill, or any fill on a line, leaves the fill
// alone. Without a pending edit this is a no-op.
func (e *Editor) SubmitStyle(color string, fill *style.Fill) {
	id := e.pendingEdit
	e.pendingEdit = ""
	e.mode = ModeIdle
	if id == "" {
		return
	}

	e.eraseEntity(id)
	if err := e.scene.Restyle(id, color, fill); err != nil {
		slog.Error("restyle entity", "id", id, "error", err)
		e.notifier.Error("edit failed")
	}
	e.drawEntity(id)
}

// CancelEdit abandons a pending edit without mutation.
func (e *Editor) CancelEdit() {
	e.pendingEdit = ""
	e.mode = ModeIdle
}

// --- Group / Ungroup ---

func (e *Editor) group(region geometry.Rect) {
	defer func() { e.mode = ModeIdle }()

	selected := e.scene.SelectInRegion(region)
	if len(selected) == 0 {
		return
	}
	if _, err := e.scene.Group(selected); err != nil {
		if errors.Is(err, scene.ErrInsufficientSelection) {
			e.notifier.Error("select at least two objects to group")
		} else {
			slog.Error("group selection", "error", err)
			e.notifier.Error("group failed")
		}
		return
	}
	e.notifier.Info("group formed")
}

func (e *Editor) ungroup(region geometry.Rect) {
	defer func() { e.mode = ModeIdle }()

	ungrouped := 0
	for _, id := range e.scene.SelectInRegion(region) {
		n, ok := e.scene.Get(id)
		if !ok || n.Kind != scene.KindGroup {
			continue // non-groups are filtered, not errors
		}
		if _, err := e.scene.Ungroup(id); err != nil {
			slog.Error("ungroup", "id", id, "error", err)
			e.notifier.Error("ungroup failed")
			return
		}
		ungrouped++
	}
	if ungrouped > 0 {
		e.notifier.Info("objects ungrouped")
	}
}

// --- Canvas plumbing ---

func (e *Editor) drawEntity(id string) {
	for _, cmd := range e.compileEntity(id) {
		e.canvas.DrawShape(cmd)
	}
}

func (e *Editor) eraseEntity(id string) {
	for _, cmd := range e.compileEntity(id) {
		e.canvas.EraseShape(cmd.EntityID)
	}
}

func (e *Editor) compileEntity(id string) []scene.DrawCommand {
	return scene.CompileEntity(e.scene, id)
}
