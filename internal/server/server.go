// Package server exposes the editor over HTTP: a WebSocket endpoint
// for live editing sessions plus document endpoints serving the saved
// XML and the JSON export.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/vectorpad/vectorpad/internal/codec"
	"github.com/vectorpad/vectorpad/internal/session"
	"github.com/vectorpad/vectorpad/internal/store"
)

type Server struct {
	snapshots      *store.Store
	allowedOrigins []string
}

func New(snapshots *store.Store, allowedOrigins string) *Server {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, strings.TrimPrefix(strings.TrimPrefix(o, "https://"), "http://"))
		}
	}
	return &Server{snapshots: snapshots, allowedOrigins: origins}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/document", s.handleDocument).Methods("GET")
	r.HandleFunc("/document/export", s.handleExport).Methods("GET")
	r.HandleFunc("/document/snapshots", s.handleSnapshots).Methods("GET")
	r.HandleFunc("/ws", s.handleWebSocket)

	return r
}

// handleDocument serves the latest saved drawing in the XML save
// format.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Latest(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNoSnapshot) {
			http.Error(w, "no document", http.StatusNotFound)
			return
		}
		slog.Error("load snapshot", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(snap.Document))
}

// handleExport serves the latest saved drawing converted to the JSON
// export format.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Latest(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNoSnapshot) {
			http.Error(w, "no document", http.StatusNotFound)
			return
		}
		slog.Error("load snapshot", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	loaded, err := codec.Decode(strings.NewReader(snap.Document))
	if err != nil {
		slog.Error("decode snapshot", "error", err, "snapshot", snap.ID)
		http.Error(w, "corrupt document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := codec.Export(loaded, w); err != nil {
		slog.Error("export document", "error", err)
	}
}

// handleSnapshots lists saved versions, newest first.
func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.snapshots.List(r.Context())
	if err != nil {
		slog.Error("list snapshots", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	type entry struct {
		ID        string `json:"id"`
		Version   int64  `json:"version"`
		CreatedAt string `json:"createdAt"`
	}
	out := make([]entry, len(snaps))
	for i, snap := range snaps {
		out[i] = entry{ID: snap.ID, Version: snap.Version, CreatedAt: snap.CreatedAt}
	}
	writeJSON(w, out)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.allowedOrigins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	sess := session.New(r.Context(), conn, s.snapshots)
	slog.Info("session started", "session", sess.ID)
	sess.Run(r.Context())
	slog.Info("session ended", "session", sess.ID)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json", "error", err)
	}
}
