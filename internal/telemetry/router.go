package telemetry

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/laneracer/internal/race"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// EventsResponse is the body of GET /events.
type EventsResponse struct {
	Tick    uint64       `json:"tick"`
	Events  []race.Event `json:"events"`
	Dropped uint64       `json:"dropped"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Frames  uint64 `json:"frames"`
	Clients int    `json:"clients"`
	Dropped uint64 `json:"dropped_clients"`
}

// NewRouter returns the telemetry HTTP API backed by hub.
func NewRouter(hub *Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", hub.handleHealth)
	r.Get("/snapshot", hub.handleSnapshot)
	r.Get("/events", hub.handleEvents)
	r.Get("/cars/{id}", hub.handleCar)
	r.Get("/ws", hub.serveWS)

	return r
}

func (h *Hub) handleHealth(w http.ResponseWriter, _ *http.Request) {
	frames, clients, dropped := h.Stats()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Frames:  frames,
		Clients: clients,
		Dropped: dropped,
	})
}

func (h *Hub) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap := h.Latest()
	if snap == nil {
		writeNoFrame(w)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Hub) handleEvents(w http.ResponseWriter, r *http.Request) {
	snap := h.Latest()
	if snap == nil {
		writeNoFrame(w)
		return
	}

	kind := race.EventKind(r.URL.Query().Get("kind"))
	var after int64
	if s := r.URL.Query().Get("after"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_after", "after must be an integer sequence number")
			return
		}
		after = n
	}

	events := make([]race.Event, 0, len(snap.Events))
	for _, ev := range snap.Events {
		if ev.Seq <= after || (kind != "" && ev.Kind != kind) {
			continue
		}
		events = append(events, ev)
	}

	writeJSON(w, http.StatusOK, EventsResponse{
		Tick:    snap.Tick,
		Events:  events,
		Dropped: snap.EventsDropped,
	})
}

func (h *Hub) handleCar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid_id", "car id must be a positive integer")
		return
	}
	snap := h.Latest()
	if snap == nil {
		writeNoFrame(w)
		return
	}
	car, ok := snap.Car(race.CarID(id))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no car with id "+strconv.Itoa(id))
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func writeNoFrame(w http.ResponseWriter) {
	writeError(w, http.StatusServiceUnavailable, "no_frame", "no snapshot has been rendered yet")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
