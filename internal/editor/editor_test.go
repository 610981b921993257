package editor

import (
	"slices"
	"strings"
	"testing"

	"github.com/vectorpad/vectorpad/internal/geometry"
	"github.com/vectorpad/vectorpad/internal/scene"
	"github.com/vectorpad/vectorpad/internal/style"
)

type fakeCanvas struct {
	drawn  []string
	erased []string
}

func (c *fakeCanvas) DrawShape(cmd scene.DrawCommand) { c.drawn = append(c.drawn, cmd.EntityID) }
func (c *fakeCanvas) EraseShape(id string)            { c.erased = append(c.erased, id) }

type fakeDialog struct {
	requests []StyleRequest
}

func (d *fakeDialog) RequestStyle(req StyleRequest) { d.requests = append(d.requests, req) }

type fakeNotifier struct {
	infos  []string
	errors []string
}

func (n *fakeNotifier) Info(msg string)  { n.infos = append(n.infos, msg) }
func (n *fakeNotifier) Error(msg string) { n.errors = append(n.errors, msg) }

type harness struct {
	ed       *Editor
	canvas   *fakeCanvas
	dialog   *fakeDialog
	notifier *fakeNotifier
}

func newHarness() *harness {
	h := &harness{
		canvas:   &fakeCanvas{},
		dialog:   &fakeDialog{},
		notifier: &fakeNotifier{},
	}
	h.ed = New(scene.New(), h.canvas, h.dialog, h.notifier)
	return h
}

func (h *harness) drag(x1, y1, x2, y2 float64) {
	h.ed.PointerDown(geometry.Point{X: x1, Y: y1})
	h.ed.PointerUp(geometry.Point{X: x2, Y: y2})
}

func (h *harness) click(x, y float64) {
	h.ed.PointerDown(geometry.Point{X: x, Y: y})
	h.ed.PointerUp(geometry.Point{X: x, Y: y})
}

func TestDraw_StaysArmed(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeDrawLine)
	h.drag(0, 0, 10, 10)
	h.drag(20, 20, 30, 30)

	if got := len(h.ed.Scene().TopLevel()); got != 2 {
		t.Fatalf("shapes after two draws: got %d, want 2", got)
	}
	if h.ed.Mode() != ModeDrawLine {
		t.Errorf("draw mode should stay armed, got %s", h.ed.Mode())
	}
	if len(h.canvas.drawn) != 2 {
		t.Errorf("canvas draws: got %d, want 2", len(h.canvas.drawn))
	}
}

func TestDraw_AppliesCurrentStyle(t *testing.T) {
	h := newHarness()
	h.ed.SetStyle(style.DrawStyle{Color: "red", Fill: style.FillHatched})
	h.ed.SetMode(ModeDrawRect)
	h.drag(30, 40, 10, 20) // reversed corners normalize

	ids := h.ed.Scene().TopLevel()
	if len(ids) != 1 {
		t.Fatalf("shapes: got %d, want 1", len(ids))
	}
	n, _ := h.ed.Scene().Get(ids[0])
	if n.Kind != scene.KindRect || n.Color != "red" || n.Fill != style.FillHatched {
		t.Errorf("rect style: %+v", n)
	}
	if n.A != (geometry.Point{X: 10, Y: 20}) || n.B != (geometry.Point{X: 30, Y: 40}) {
		t.Errorf("rect corners not normalized: A=%+v B=%+v", n.A, n.B)
	}

	// The style persists for the next draw action with no reset.
	h.drag(100, 100, 120, 120)
	ids = h.ed.Scene().TopLevel()
	n2, _ := h.ed.Scene().Get(ids[1])
	if n2.Color != "red" || n2.Fill != style.FillHatched {
		t.Errorf("style did not persist: %+v", n2)
	}
}

func TestDraw_DegenerateRectIsNoOp(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeDrawRect)
	h.drag(10, 10, 10, 40) // zero width

	if got := len(h.ed.Scene().TopLevel()); got != 0 {
		t.Errorf("degenerate rect created %d shapes", got)
	}
}

func TestCopy_OffsetClone(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeDrawLine)
	h.drag(0, 0, 10, 10)
	orig := h.ed.Scene().TopLevel()[0]

	h.ed.SetMode(ModeCopy)
	h.drag(-5, -5, 15, 15)

	top := h.ed.Scene().TopLevel()
	if len(top) != 2 {
		t.Fatalf("entities after copy: got %d, want 2", len(top))
	}
	if h.ed.Mode() != ModeIdle {
		t.Errorf("copy should return to idle, got %s", h.ed.Mode())
	}

	clone, _ := h.ed.Scene().Get(top[1])
	if clone.A != (geometry.Point{X: 50, Y: 50}) || clone.B != (geometry.Point{X: 60, Y: 60}) {
		t.Errorf("clone offset: A=%+v B=%+v", clone.A, clone.B)
	}
	origNode, _ := h.ed.Scene().Get(orig)
	if origNode.A != (geometry.Point{X: 0, Y: 0}) {
		t.Errorf("original moved by copy: %+v", origNode)
	}
}

func TestCopy_EmptySelectionIsSilent(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeCopy)
	h.drag(500, 500, 600, 600)

	if h.ed.Mode() != ModeIdle {
		t.Errorf("mode: got %s", h.ed.Mode())
	}
	if len(h.notifier.errors) != 0 {
		t.Errorf("empty copy should be silent, got %v", h.notifier.errors)
	}
}

func TestMove_DeltaConsistency(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeDrawLine)
	h.drag(10, 10, 20, 20)
	h.drag(40, 10, 60, 30)

	h.ed.SetMode(ModeMove)
	h.drag(0, 0, 100, 100) // capture both
	if h.ed.Mode() != ModeMove {
		t.Fatalf("move should wait for anchor, mode %s", h.ed.Mode())
	}
	h.click(110, 60) // selection box origin is (10,10): delta (100,50)

	s := h.ed.Scene()
	a, _ := s.Get(s.TopLevel()[0])
	b, _ := s.Get(s.TopLevel()[1])
	if a.A != (geometry.Point{X: 110, Y: 60}) || a.B != (geometry.Point{X: 120, Y: 70}) {
		t.Errorf("first entity after move: A=%+v B=%+v", a.A, a.B)
	}
	if b.A != (geometry.Point{X: 140, Y: 60}) || b.B != (geometry.Point{X: 160, Y: 80}) {
		t.Errorf("second entity after move: A=%+v B=%+v", b.A, b.B)
	}
	// Relative offset preserved.
	if b.A.X-a.A.X != 30 || b.A.Y-a.A.Y != 0 {
		t.Error("relative offsets changed by move")
	}
	if h.ed.Mode() != ModeIdle {
		t.Errorf("move should return to idle, got %s", h.ed.Mode())
	}
}

func TestMove_PendingDiscardedByModeChange(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeDrawLine)
	h.drag(10, 10, 20, 20)

	h.ed.SetMode(ModeMove)
	h.drag(0, 0, 50, 50)
	h.ed.SetMode(ModeDelete) // cancels the pending move
	h.ed.SetMode(ModeMove)
	h.click(200, 200) // no pending selection: click is a no-op

	s := h.ed.Scene()
	n, _ := s.Get(s.TopLevel()[0])
	if n.A != (geometry.Point{X: 10, Y: 10}) {
		t.Errorf("entity moved by discarded gesture: %+v", n.A)
	}
}

func TestDelete_RemovesSelection(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeDrawLine)
	h.drag(0, 0, 10, 10)
	h.drag(100, 100, 110, 110)

	h.ed.SetMode(ModeDelete)
	h.drag(-5, -5, 20, 20)

	top := h.ed.Scene().TopLevel()
	if len(top) != 1 {
		t.Fatalf("entities after delete: got %d, want 1", len(top))
	}
	if len(h.canvas.erased) != 1 {
		t.Errorf("canvas erases: got %d, want 1", len(h.canvas.erased))
	}
	if h.ed.Mode() != ModeIdle {
		t.Errorf("mode after delete: %s", h.ed.Mode())
	}
}

func TestEdit_SingleShapeFlow(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeDrawRect)
	h.drag(0, 0, 20, 20)
	id := h.ed.Scene().TopLevel()[0]

	h.ed.SetMode(ModeEdit)
	h.drag(-5, -5, 25, 25)

	if len(h.dialog.requests) != 1 {
		t.Fatalf("dialog requests: got %d, want 1", len(h.dialog.requests))
	}
	req := h.dialog.requests[0]
	if req.EntityID != id || req.Kind != scene.KindRect {
		t.Errorf("request: %+v", req)
	}

	solid := style.FillSolid
	h.ed.SubmitStyle("green", &solid)

	n, _ := h.ed.Scene().Get(id)
	if n.Color != "green" || n.Fill != style.FillSolid {
		t.Errorf("restyle not applied: %+v", n)
	}
	if h.ed.Mode() != ModeIdle {
		t.Errorf("mode after edit: %s", h.ed.Mode())
	}
}

func TestEdit_CancelLeavesShapeAlone(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeDrawLine)
	h.drag(0, 0, 20, 20)
	id := h.ed.Scene().TopLevel()[0]

	h.ed.SetMode(ModeEdit)
	h.drag(-5, -5, 25, 25)
	h.ed.CancelEdit()

	n, _ := h.ed.Scene().Get(id)
	if n.Color != style.DefaultColor {
		t.Errorf("cancelled edit mutated shape: %+v", n)
	}
	// A late submit after cancel is ignored.
	h.ed.SubmitStyle("red", nil)
	n, _ = h.ed.Scene().Get(id)
	if n.Color != style.DefaultColor {
		t.Errorf("submit after cancel mutated shape: %+v", n)
	}
}

func TestEdit_AmbiguousTargets(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeDrawLine)
	h.drag(0, 0, 10, 10)
	h.drag(20, 20, 30, 30)

	t.Run("multiple entities", func(t *testing.T) {
		h.notifier.errors = nil
		h.ed.SetMode(ModeEdit)
		h.drag(-5, -5, 40, 40)
		if len(h.notifier.errors) != 1 || !strings.Contains(h.notifier.errors[0], "single shape") &&
			!strings.Contains(h.notifier.errors[0], "exactly one") {
			t.Errorf("expected ambiguity error, got %v", h.notifier.errors)
		}
		if len(h.dialog.requests) != 0 {
			t.Error("dialog opened for ambiguous selection")
		}
		if h.ed.Mode() != ModeIdle {
			t.Errorf("mode: %s", h.ed.Mode())
		}
	})

	t.Run("group target", func(t *testing.T) {
		h.ed.SetMode(ModeGroup)
		h.drag(-5, -5, 40, 40)

		h.notifier.errors = nil
		h.ed.SetMode(ModeEdit)
		h.drag(-5, -5, 40, 40)
		if len(h.notifier.errors) != 1 {
			t.Errorf("expected ambiguity error for group, got %v", h.notifier.errors)
		}
		if len(h.dialog.requests) != 0 {
			t.Error("dialog opened for group selection")
		}
	})
}

func TestGroup_Flow(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeDrawLine)
	h.drag(0, 0, 10, 10)
	h.drag(20, 20, 30, 30)

	h.ed.SetMode(ModeGroup)
	h.drag(-5, -5, 40, 40)

	top := h.ed.Scene().TopLevel()
	if len(top) != 1 {
		t.Fatalf("top-level after group: got %v", top)
	}
	g, _ := h.ed.Scene().Get(top[0])
	if g.Kind != scene.KindGroup || len(g.Children) != 2 {
		t.Errorf("group node: %+v", g)
	}
	if !slices.Contains(h.notifier.infos, "group formed") {
		t.Errorf("missing success notification, got %v", h.notifier.infos)
	}
}

func TestGroup_InsufficientSelection(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeDrawLine)
	h.drag(0, 0, 10, 10)

	h.ed.SetMode(ModeGroup)
	h.drag(-5, -5, 15, 15)

	if len(h.notifier.errors) != 1 {
		t.Fatalf("expected one error, got %v", h.notifier.errors)
	}
	top := h.ed.Scene().TopLevel()
	if len(top) != 1 {
		t.Errorf("registry mutated by failed group: %v", top)
	}
	n, _ := h.ed.Scene().Get(top[0])
	if n.Kind != scene.KindLine {
		t.Errorf("entity replaced by failed group: %+v", n)
	}
}

func TestUngroup_Flow(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeDrawLine)
	h.drag(0, 0, 10, 10)
	h.drag(20, 20, 30, 30)
	h.ed.SetMode(ModeGroup)
	h.drag(-5, -5, 40, 40)

	h.ed.SetMode(ModeUngroup)
	h.drag(-5, -5, 40, 40)

	top := h.ed.Scene().TopLevel()
	if len(top) != 2 {
		t.Fatalf("top-level after ungroup: got %v", top)
	}
	if !slices.Contains(h.notifier.infos, "objects ungrouped") {
		t.Errorf("missing success notification, got %v", h.notifier.infos)
	}
}

func TestUngroup_FiltersNonGroups(t *testing.T) {
	h := newHarness()
	h.ed.SetMode(ModeDrawLine)
	h.drag(0, 0, 10, 10)

	h.ed.SetMode(ModeUngroup)
	h.drag(-5, -5, 15, 15)

	if len(h.notifier.errors) != 0 || len(h.notifier.infos) != 0 {
		t.Errorf("plain-shape ungroup should be silent: %v / %v", h.notifier.errors, h.notifier.infos)
	}
	if got := len(h.ed.Scene().TopLevel()); got != 1 {
		t.Errorf("entities: got %d, want 1", got)
	}
}
