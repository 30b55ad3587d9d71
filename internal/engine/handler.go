package engine

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"cue-orchestrator/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

// Handler exposes engine HTTP endpoints using go-chi.
type Handler struct {
	eng     *Engine
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler that uses the given Engine, Logger, and
// optional Metrics. Metrics may be nil to disable metric recording
// (e.g. in tests).
func NewHandler(eng *Engine, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{eng: eng, log: log, metrics: m}
}

// Routes mounts the handler's endpoints on r. Producer endpoints are
// mounted only for the engine's configured mode, so a deployment cannot
// mix the ranked and event drivers.
func (h *Handler) Routes(r chi.Router) {
	switch h.eng.Mode() {
	case ModeRanked:
		r.Post("/ticks", h.IngestTick)
	case ModeEvents:
		r.Route("/markers/{symbol_id}", func(r chi.Router) {
			r.Post("/found", h.MarkerFound)
			r.Post("/lost", h.MarkerLost)
		})
	}
	r.Route("/session", func(r chi.Router) {
		r.Post("/track-end", h.TrackEnd)
		r.Post("/play", h.Play)
		r.Post("/pause", h.Pause)
		r.Post("/next", h.Next)
		r.Post("/previous", h.Previous)
	})
	r.Get("/state", h.GetState)
}

// tickRequest is the JSON body of POST /ticks.
type tickRequest struct {
	Observations []RankedObservation `json:"observations"`
}

// IngestTick handles POST /ticks.
// Body: { "observations": [ { "label": "Happy", "confidence": 0.93 } ] }.
func (h *Handler) IngestTick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req tickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid tick body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	key, changed, err := h.eng.IngestTick(req.Observations)
	if err != nil {
		h.log.Info("tick rejected", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusConflict)
		return
	}

	h.log.Debug("tick ingested",
		slog.String("key", string(key)),
		slog.Bool("changed", changed))
	w.WriteHeader(http.StatusAccepted)
	if h.metrics != nil {
		h.metrics.IncTicks()
		if changed {
			h.metrics.IncKeyChanges()
		}
	}
}

// MarkerFound handles POST /markers/{symbol_id}/found.
func (h *Handler) MarkerFound(w http.ResponseWriter, r *http.Request) {
	h.markerEvent(w, r, h.eng.MarkerFound)
}

// MarkerLost handles POST /markers/{symbol_id}/lost.
func (h *Handler) MarkerLost(w http.ResponseWriter, r *http.Request) {
	h.markerEvent(w, r, h.eng.MarkerLost)
}

func (h *Handler) markerEvent(w http.ResponseWriter, r *http.Request, apply func(SymbolID) (bool, error)) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	raw := chi.URLParam(r, "symbol_id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	changed, err := apply(SymbolID(id))
	if err != nil {
		switch err {
		case ErrUnknownSymbol:
			h.log.Info("event for unknown symbol", slog.Int("symbol_id", id))
			w.WriteHeader(http.StatusNotFound)
		case ErrWrongMode:
			w.WriteHeader(http.StatusConflict)
		default:
			h.log.Error("marker event failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	h.log.Debug("marker event processed",
		slog.Int("symbol_id", id),
		slog.Bool("owner_changed", changed))
	w.WriteHeader(http.StatusAccepted)
	if h.metrics != nil {
		h.metrics.IncEvents()
		if changed {
			h.metrics.IncOwnerChanges()
		}
	}
}

// TrackEnd handles POST /session/track-end, the sink's end-of-track signal.
func (h *Handler) TrackEnd(w http.ResponseWriter, r *http.Request) {
	h.transport(w, r, h.eng.TrackEnded)
}

// Play handles POST /session/play.
func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	h.transport(w, r, h.eng.Play)
}

// Pause handles POST /session/pause.
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.transport(w, r, h.eng.Pause)
}

// Next handles POST /session/next.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	h.transport(w, r, h.eng.Next)
}

// Previous handles POST /session/previous.
func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	h.transport(w, r, h.eng.Previous)
}

func (h *Handler) transport(w http.ResponseWriter, r *http.Request, apply func()) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	apply()
	w.WriteHeader(http.StatusOK)
}

// GetState handles GET /state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.eng.CurrentSnapshot()); err != nil {
		h.log.Error("encode state failed", slog.String("error", err.Error()))
	}
}
