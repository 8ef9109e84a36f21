package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aerosense/aerosense/internal/airlines"
	"github.com/aerosense/aerosense/internal/airquality"
	"github.com/aerosense/aerosense/internal/insights"
	"github.com/aerosense/aerosense/internal/monitor"
	"github.com/aerosense/aerosense/internal/session"
	"github.com/aerosense/aerosense/internal/settings"
	"github.com/aerosense/aerosense/internal/websocket"
	"github.com/aerosense/aerosense/pkg/logger"
)

// Handler holds the API's request handlers.
type Handler struct {
	monitor  *monitor.Service
	insights *insights.Service
	wsServer *websocket.Server
	logger   *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(monitorService *monitor.Service, insightsService *insights.Service, wsServer *websocket.Server, logger *logger.Logger) *Handler {
	return &Handler{
		monitor:  monitorService,
		insights: insightsService,
		wsServer: wsServer,
		logger:   logger.Named("api-handler"),
	}
}

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", logger.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, errorResponse{Error: message})
}

// GetHealth returns service health and connection state.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"state":      h.monitor.ConnectionState(),
		"ws_clients": h.wsServer.ClientCount(),
	})
}

// GetCurrentReading returns the most recent sensor reading.
func (h *Handler) GetCurrentReading(w http.ResponseWriter, r *http.Request) {
	reading := h.monitor.CurrentReading()
	if reading == nil {
		h.respondError(w, http.StatusNotFound, "no reading available")
		return
	}
	h.respondJSON(w, http.StatusOK, reading)
}

// ScanDevices runs a BLE scan and returns discovered devices.
func (h *Handler) ScanDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.monitor.Scan(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, devices)
}

// GetDevice returns the connected device.
func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	device := h.monitor.Device()
	if device == nil {
		h.respondError(w, http.StatusNotFound, "no device connected")
		return
	}
	h.respondJSON(w, http.StatusOK, device)
}

// ConnectDevice connects to a device by ID and starts sampling.
func (h *Handler) ConnectDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")

	info, err := h.monitor.Connect(r.Context(), deviceID)
	if err != nil {
		h.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, info)
}

// DisconnectDevice disconnects the current device.
func (h *Handler) DisconnectDevice(w http.ResponseWriter, r *http.Request) {
	if err := h.monitor.Disconnect(); err != nil {
		h.respondError(w, http.StatusConflict, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type startSessionRequest struct {
	Airline      *string `json:"airline"`
	FlightNumber *string `json:"flight_number"`
	Seat         *string `json:"seat"`
}

// StartSession begins tracking a new flight.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	sess, err := h.monitor.StartSession(req.Airline, req.FlightNumber, req.Seat)
	if err != nil {
		if errors.Is(err, monitor.ErrSessionActive) {
			h.respondError(w, http.StatusConflict, err.Error())
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusCreated, sess)
}

// GetActiveSession returns the in-progress session.
func (h *Handler) GetActiveSession(w http.ResponseWriter, r *http.Request) {
	sess := h.monitor.ActiveSession()
	if sess == nil {
		h.respondError(w, http.StatusNotFound, "no active session")
		return
	}
	h.respondJSON(w, http.StatusOK, sess)
}

// EndSession freezes and archives the active session.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.monitor.EndSession()
	if err != nil {
		h.respondError(w, http.StatusConflict, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, sess)
}

type setPhaseRequest struct {
	Phase string `json:"phase"`
}

// SetPhase moves the active session to a new flight phase.
func (h *Handler) SetPhase(w http.ResponseWriter, r *http.Request) {
	var req setPhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.monitor.SetPhase(airquality.FlightPhase(req.Phase)); err != nil {
		if errors.Is(err, monitor.ErrNoActiveSession) {
			h.respondError(w, http.StatusConflict, err.Error())
			return
		}
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type hydrationRequest struct {
	Ml int `json:"ml"`
}

// AddHydration adds to the active session's hydration accumulator.
func (h *Handler) AddHydration(w http.ResponseWriter, r *http.Request) {
	var req hydrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.monitor.AddHydration(req.Ml); err != nil {
		if errors.Is(err, monitor.ErrNoActiveSession) {
			h.respondError(w, http.StatusConflict, err.Error())
			return
		}
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSessions returns archived sessions, most recent first.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.monitor.Sessions())
}

// GetSession returns one session by ID.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.monitor.Session(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, sess)
}

// DeleteSession removes an archived session.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.monitor.DeleteSession(chi.URLParam(r, "id")); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSessionStats returns the aggregate summary for one session.
func (h *Handler) GetSessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.monitor.SessionStats(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}

// GetSessionInsight generates a natural-language summary of a session.
func (h *Handler) GetSessionInsight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := h.monitor.Session(id)
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	stats, err := h.monitor.SessionStats(id)
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	summary, err := h.insights.Summarize(r.Context(), sess, stats)
	if err != nil {
		if errors.Is(err, insights.ErrDisabled) {
			h.respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// ListAlerts returns active alerts, newest first.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.monitor.Alerts())
}

// DismissAlert removes the alert with the given ID.
func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	if !h.monitor.DismissAlert(chi.URLParam(r, "id")) {
		h.respondError(w, http.StatusNotFound, "alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchAirlines searches the carrier directory.
func (h *Handler) SearchAirlines(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, airlines.Search(r.URL.Query().Get("q")))
}

// GetAirlineRankings computes per-airline air-quality rankings across
// archived sessions.
func (h *Handler) GetAirlineRankings(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, airlines.Rank(h.monitor.Sessions()))
}

// GetSessionsByAirline is a helper endpoint backing the rankings
// drill-down view.
func (h *Handler) GetSessionsByAirline(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	matched := []*session.FlightSession{}
	for _, s := range h.monitor.Sessions() {
		if s.Airline != nil && strings.EqualFold(*s.Airline, code) {
			matched = append(matched, s)
		}
	}
	h.respondJSON(w, http.StatusOK, matched)
}

// GetSettings returns the current user settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.monitor.Settings())
}

// UpdateSettings overwrites user settings wholesale.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.UserSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.monitor.UpdateSettings(req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, req)
}

// HandleWebSocket upgrades the connection for live updates.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsServer.HandleConnection(w, r)
}
