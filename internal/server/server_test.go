package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vectorpad/vectorpad/internal/codec"
	"github.com/vectorpad/vectorpad/internal/scene"
	"github.com/vectorpad/vectorpad/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st, "http://localhost:5173"), st
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status %d", rec.Code)
	}
}

func TestDocument_EmptyStore(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/document", "/document/export"} {
		if rec := get(t, srv, path); rec.Code != http.StatusNotFound {
			t.Errorf("%s on empty store: status %d, want 404", path, rec.Code)
		}
	}
}

func TestDocument_ServesLatestSnapshot(t *testing.T) {
	srv, st := newTestServer(t)

	var buf strings.Builder
	if err := codec.Encode(scene.NewSampleScene(), &buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := st.Save(context.Background(), buf.String()); err != nil {
		t.Fatalf("save: %v", err)
	}

	rec := get(t, srv, "/document")
	if rec.Code != http.StatusOK {
		t.Fatalf("document: status %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/xml" {
		t.Errorf("content type: %q", got)
	}
	if rec.Body.String() != buf.String() {
		t.Errorf("document body does not match saved snapshot")
	}

	rec = get(t, srv, "/document/export")
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status %d", rec.Code)
	}
	var doc codec.ExportDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if doc.Version != 1 || len(doc.Entities) == 0 {
		t.Errorf("export document: %+v", doc)
	}
}

func TestSnapshots_NewestFirst(t *testing.T) {
	srv, st := newTestServer(t)

	ctx := context.Background()
	for range 3 {
		if _, err := st.Save(ctx, "<drawing></drawing>"); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	rec := get(t, srv, "/document/snapshots")
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshots: status %d", rec.Code)
	}
	var entries []struct {
		ID      string `json:"id"`
		Version int64  `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("snapshots payload: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries: got %d, want 3", len(entries))
	}
	for i, e := range entries {
		if want := int64(3 - i); e.Version != want {
			t.Errorf("entry %d: version %d, want %d", i, e.Version, want)
		}
	}
}
