package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ayusman/sixseven/internal/store"
)

// MaxListLimit caps ?limit on /api/detections.
const MaxListLimit = 500

// DetectionHandler serves the detection history.
type DetectionHandler struct {
	store *store.Store
}

// NewDetectionHandler creates a DetectionHandler with the given store.
func NewDetectionHandler(s *store.Store) *DetectionHandler {
	return &DetectionHandler{store: s}
}

// ServeHTTP routes /api/detections and /api/detections/{id}.
func (h *DetectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := itemID(r.URL.Path, "/api/detections")

	if id == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type detectionResponse struct {
	ID            string  `json:"id"`
	Gesture       string  `json:"gesture"`
	StartedAt     string  `json:"started_at"`
	EndedAt       *string `json:"ended_at"`
	DurationMS    int64   `json:"duration_ms"`
	ZeroCrossings int     `json:"zero_crossings"`
	Amplitude     float64 `json:"amplitude"`
	OppositeMoves int     `json:"opposite_moves"`
	Samples       int     `json:"samples"`
	Action        string  `json:"action,omitempty"`
	ActionError   string  `json:"action_error,omitempty"`
}

type listDetectionsResponse struct {
	Detections []detectionResponse `json:"detections"`
	Total      int                 `json:"total"`
}

func toDetectionResponse(d *store.Detection) detectionResponse {
	resp := detectionResponse{
		ID:            d.ID,
		Gesture:       d.Gesture,
		StartedAt:     d.StartedAt.Format(timeFormat),
		DurationMS:    d.Duration().Milliseconds(),
		ZeroCrossings: d.ZeroCrossings,
		Amplitude:     d.Amplitude,
		OppositeMoves: d.OppositeMoves,
		Samples:       d.Samples,
		Action:        d.Action,
		ActionError:   d.ActionError,
	}
	if d.EndedAt != nil {
		s := d.EndedAt.Format(timeFormat)
		resp.EndedAt = &s
	}
	return resp
}

func (h *DetectionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxListLimit)
	}

	detections, err := h.store.Detections().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list detections")
		return
	}
	total, err := h.store.Detections().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count detections")
		return
	}

	response := listDetectionsResponse{
		Detections: make([]detectionResponse, 0, len(detections)),
		Total:      total,
	}
	for _, d := range detections {
		response.Detections = append(response.Detections, toDetectionResponse(d))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *DetectionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	d, err := h.store.Detections().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Detection not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get detection")
		return
	}

	writeJSON(w, http.StatusOK, toDetectionResponse(d))
}

func (h *DetectionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Detections().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Detection not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete detection")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
