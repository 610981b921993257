// Package session runs one editing session over a WebSocket: it
// deserializes frontend events, feeds them to the action dispatcher on
// a single event-loop goroutine, and streams canvas, dialog, and
// notification traffic back. The session is the concrete Canvas,
// Dialog, and Notifier collaborator for its editor.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/vectorpad/vectorpad/internal/codec"
	"github.com/vectorpad/vectorpad/internal/editor"
	"github.com/vectorpad/vectorpad/internal/geometry"
	"github.com/vectorpad/vectorpad/internal/scene"
	"github.com/vectorpad/vectorpad/internal/store"
	"github.com/vectorpad/vectorpad/internal/style"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
)

type Session struct {
	ID string

	conn    *websocket.Conn
	send    chan []byte
	events  chan *Message
	editor  *editor.Editor
	store   *store.Store
	started time.Time
}

// New creates a session over the given connection, editing the scene
// from the latest snapshot (or the sample scene on an empty store).
func New(ctx context.Context, conn *websocket.Conn, snapshots *store.Store) *Session {
	s := &Session{
		ID:      uuid.New().String(),
		conn:    conn,
		send:    make(chan []byte, 256),
		events:  make(chan *Message, 64),
		store:   snapshots,
		started: time.Now(),
	}
	s.editor = editor.New(s.loadInitialScene(ctx), s, s, s)
	return s
}

func (s *Session) loadInitialScene(ctx context.Context) *scene.Scene {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNoSnapshot) {
			slog.Error("load latest snapshot", "error", err, "session", s.ID)
		}
		return scene.NewSampleScene()
	}
	loaded, err := codec.Decode(strings.NewReader(snap.Document))
	if err != nil {
		slog.Error("decode snapshot", "error", err, "snapshot", snap.ID)
		return scene.NewSampleScene()
	}
	slog.Info("session resumed from snapshot", "session", s.ID, "version", snap.Version)
	return loaded
}

// Run drives the session: read pump, write pump, and the event loop
// that owns the editor. It returns when the connection closes, after a
// final autosave.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.writePump(ctx)

	done := make(chan struct{})
	go s.eventLoop(ctx, done)

	s.sendMessage(TypeSceneRender, scene.CompileDrawCommands(s.editor.Scene()))
	s.readPump(ctx)

	// The read pump was the only sender; closing the channel lets the
	// event loop drain what the client sent before the socket closed.
	// The loop must be fully stopped before autosave touches the
	// scene: the loop goroutine is the editor's only control thread.
	close(s.events)
	<-done

	s.autosave()
}

// eventLoop is the single control thread of the editor. Every editor
// call in the session goes through here. It exits once the events
// channel is closed and drained, or the context is cancelled.
func (s *Session) eventLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case msg, ok := <-s.events:
			if !ok {
				return
			}
			s.dispatch(ctx, msg)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) dispatch(ctx context.Context, msg *Message) {
	switch msg.Type {
	case TypeModeSet:
		var p ModeSetPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError("invalid mode payload")
			return
		}
		mode, ok := parseMode(p.Mode)
		if !ok {
			s.sendError("unknown mode " + p.Mode)
			return
		}
		s.editor.SetMode(mode)

	case TypeStyleSet:
		var p StyleSetPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError("invalid style payload")
			return
		}
		ds, err := parseStyle(p.Color, p.Fill, s.editor.Style())
		if err != nil {
			s.sendError(err.Error())
			return
		}
		s.editor.SetStyle(ds)

	case TypePointerDown:
		if p, ok := s.pointer(msg); ok {
			s.editor.PointerDown(p)
		}

	case TypePointerUp:
		if p, ok := s.pointer(msg); ok {
			s.editor.PointerUp(p)
		}

	case TypeStyleSubmit:
		var p StyleSubmitPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError("invalid style payload")
			return
		}
		color, err := style.ParseColor(p.Color)
		if err != nil {
			s.sendError(err.Error())
			return
		}
		var fill *style.Fill
		if p.Fill != "" {
			parsed, err := style.ParseFill(p.Fill)
			if err != nil {
				s.sendError(err.Error())
				return
			}
			fill = &parsed
		}
		s.editor.SubmitStyle(color, fill)

	case TypeStyleCancel:
		s.editor.CancelEdit()

	case TypeDocSave:
		s.save(ctx)

	case TypeDocOpen:
		s.open(ctx)

	default:
		slog.Warn("unknown message type", "type", msg.Type, "session", s.ID)
	}
}

func (s *Session) pointer(msg *Message) (geometry.Point, bool) {
	var p PointerPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		s.sendError("invalid pointer payload")
		return geometry.Point{}, false
	}
	return geometry.Point{X: p.X, Y: p.Y}, true
}

func (s *Session) save(ctx context.Context) {
	var buf strings.Builder
	if err := codec.Encode(s.editor.Scene(), &buf); err != nil {
		slog.Error("encode scene", "error", err, "session", s.ID)
		s.sendError("save failed")
		return
	}
	snap, err := s.store.Save(ctx, buf.String())
	if err != nil {
		slog.Error("save snapshot", "error", err, "session", s.ID)
		s.sendError("save failed")
		return
	}
	s.sendMessage(TypeDocSaved, DocSavedPayload{SnapshotID: snap.ID, Version: snap.Version})
}

func (s *Session) open(ctx context.Context) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoSnapshot) {
			s.sendError("nothing to open")
		} else {
			slog.Error("load snapshot", "error", err, "session", s.ID)
			s.sendError("open failed")
		}
		return
	}
	loaded, err := codec.Decode(strings.NewReader(snap.Document))
	if err != nil {
		// The in-memory scene stays untouched on a corrupt document.
		slog.Error("decode snapshot", "error", err, "snapshot", snap.ID)
		s.sendError("open failed: corrupt document")
		return
	}
	s.editor.SetScene(loaded)
	s.sendMessage(TypeSceneRender, scene.CompileDrawCommands(loaded))
}

func (s *Session) autosave() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var buf strings.Builder
	if err := codec.Encode(s.editor.Scene(), &buf); err != nil {
		slog.Error("autosave encode", "error", err, "session", s.ID)
		return
	}
	if _, err := s.store.Save(ctx, buf.String()); err != nil {
		slog.Error("autosave", "error", err, "session", s.ID)
		return
	}
	slog.Info("session autosaved", "session", s.ID, "duration", time.Since(s.started))
}

// --- editor collaborators ---

func (s *Session) DrawShape(cmd scene.DrawCommand) {
	s.sendMessage(TypeCanvasDraw, cmd)
}

func (s *Session) EraseShape(id string) {
	s.sendMessage(TypeCanvasErase, ErasePayload{EntityID: id})
}

func (s *Session) RequestStyle(req editor.StyleRequest) {
	s.sendMessage(TypeDialogRequest, req)
}

func (s *Session) Info(msg string) {
	s.sendMessage(TypeNotify, NotifyPayload{Level: "info", Message: msg})
}

func (s *Session) Error(msg string) {
	s.sendMessage(TypeNotify, NotifyPayload{Level: "error", Message: msg})
}

// --- wire plumbing ---

func (s *Session) sendMessage(msgType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "type", msgType, "error", err)
		return
	}
	out, err := json.Marshal(Message{Type: msgType, Payload: data})
	if err != nil {
		slog.Error("marshal message", "type", msgType, "error", err)
		return
	}
	select {
	case s.send <- out:
	default:
		slog.Warn("session send buffer full, dropping message", "session", s.ID, "type", msgType)
	}
}

func (s *Session) sendError(msg string) {
	s.sendMessage(TypeError, ErrorPayload{Message: msg})
}

func (s *Session) readPump(ctx context.Context) {
	defer s.conn.Close(websocket.StatusNormalClosure, "")

	s.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "session", s.ID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "session", s.ID)
			continue
		}

		select {
		case s.events <- &msg:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-s.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "session", s.ID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func parseMode(m string) (editor.Mode, bool) {
	switch mode := editor.Mode(m); mode {
	case editor.ModeIdle, editor.ModeDrawLine, editor.ModeDrawRect,
		editor.ModeCopy, editor.ModeMove, editor.ModeDelete,
		editor.ModeEdit, editor.ModeGroup, editor.ModeUngroup:
		return mode, true
	default:
		return "", false
	}
}

func parseStyle(color, fill string, current style.DrawStyle) (style.DrawStyle, error) {
	out := current
	if color != "" {
		canonical, err := style.ParseColor(color)
		if err != nil {
			return style.DrawStyle{}, err
		}
		out.Color = canonical
	}
	if fill != "" {
		parsed, err := style.ParseFill(fill)
		if err != nil {
			return style.DrawStyle{}, err
		}
		out.Fill = parsed
	}
	return out, nil
}
