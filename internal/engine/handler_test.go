package engine

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T, mode Mode) (*chi.Mux, *Engine) {
	t.Helper()
	eng := New(testCatalog(), testLogger(), Options{Mode: mode})
	h := NewHandler(eng, testLogger(), nil)
	r := chi.NewRouter()
	h.Routes(r)
	return r, eng
}

func postTick(t *testing.T, r *chi.Mux, observations []map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(map[string]interface{}{"observations": observations})
	req := httptest.NewRequest(http.MethodPost, "/ticks", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_IngestTick(t *testing.T) {
	r, _ := newTestRouter(t, ModeRanked)

	rec := postTick(t, r, []map[string]interface{}{
		{"label": "Happy", "confidence": 0.93},
	})
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}
}

func TestHandler_IngestTick_bad_request(t *testing.T) {
	r, _ := newTestRouter(t, ModeRanked)

	req := httptest.NewRequest(http.MethodPost, "/ticks", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_ticks_not_mounted_in_events_mode(t *testing.T) {
	r, _ := newTestRouter(t, ModeEvents)

	rec := postTick(t, r, nil)
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("ticks endpoint should not exist in events mode, got %d", rec.Code)
	}
}

func TestHandler_MarkerFound(t *testing.T) {
	r, eng := newTestRouter(t, ModeEvents)

	req := httptest.NewRequest(http.MethodPost, "/markers/0/found", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}
	if owner, ok := eng.ActiveOwner(); !ok || owner != 0 {
		t.Errorf("expected owner 0 after found, got %d ok=%v", owner, ok)
	}
}

func TestHandler_MarkerFound_unknown_symbol(t *testing.T) {
	r, _ := newTestRouter(t, ModeEvents)

	req := httptest.NewRequest(http.MethodPost, "/markers/42/found", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown symbol, got %d", rec.Code)
	}
}

func TestHandler_MarkerFound_bad_id(t *testing.T) {
	r, _ := newTestRouter(t, ModeEvents)

	req := httptest.NewRequest(http.MethodPost, "/markers/abc/found", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-integer id, got %d", rec.Code)
	}
}

func TestHandler_MarkerLost_fallback(t *testing.T) {
	r, eng := newTestRouter(t, ModeEvents)

	for _, path := range []string{"/markers/0/found", "/markers/1/found", "/markers/1/lost"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("%s: expected 202, got %d", path, rec.Code)
		}
	}

	if owner, ok := eng.ActiveOwner(); !ok || owner != 0 {
		t.Errorf("expected owner back to 0, got %d ok=%v", owner, ok)
	}
}

func TestHandler_transport_and_state(t *testing.T) {
	r, _ := newTestRouter(t, ModeRanked)

	// Stabilize "Happy" so the session has a playlist.
	for i := 0; i < 8; i++ {
		rec := postTick(t, r, []map[string]interface{}{
			{"label": "Happy", "confidence": 0.9},
		})
		if rec.Code != http.StatusAccepted {
			t.Fatalf("tick %d: expected 202, got %d", i, rec.Code)
		}
	}

	for _, path := range []string{"/session/play", "/session/next", "/session/track-end", "/session/previous", "/session/pause"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("state: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected json content type, got %s", ct)
	}

	var snap Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if snap.Mode != ModeRanked {
		t.Errorf("expected ranked mode, got %s", snap.Mode)
	}
	if snap.ComboKey != "Happy|—" {
		t.Errorf("expected combo key Happy|—, got %q", snap.ComboKey)
	}
	if snap.Playing {
		t.Error("expected paused after pause")
	}
	if snap.Track == nil || snap.Track.Title == "" {
		t.Errorf("expected a loaded track in state, got %+v", snap.Track)
	}
}
