package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aerosense/aerosense/internal/config"
	"github.com/aerosense/aerosense/internal/insights"
	"github.com/aerosense/aerosense/internal/monitor"
	"github.com/aerosense/aerosense/internal/websocket"
	"github.com/aerosense/aerosense/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.Config
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(monitorService *monitor.Service, insightsService *insights.Service, wsServer *websocket.Server, config *config.Config, logger *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(monitorService, insightsService, wsServer, logger),
		middleware: NewMiddleware(logger),
		config:     config,
		logger:     logger.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.Server.CORSAllowedOrigins))

	// API routes
	router.Route("/api/v1", func(router chi.Router) {
		// Current reading
		router.Get("/reading", r.handler.GetCurrentReading)

		// Device routes
		router.Post("/devices/scan", r.handler.ScanDevices)
		router.Get("/devices/current", r.handler.GetDevice)
		router.Post("/devices/{id}/connect", r.handler.ConnectDevice)
		router.Post("/devices/disconnect", r.handler.DisconnectDevice)

		// Session routes
		router.Post("/sessions", r.handler.StartSession)
		router.Get("/sessions", r.handler.ListSessions)
		router.Get("/sessions/active", r.handler.GetActiveSession)
		router.Post("/sessions/active/end", r.handler.EndSession)
		router.Put("/sessions/active/phase", r.handler.SetPhase)
		router.Post("/sessions/active/hydration", r.handler.AddHydration)
		router.Get("/sessions/{id}", r.handler.GetSession)
		router.Delete("/sessions/{id}", r.handler.DeleteSession)
		router.Get("/sessions/{id}/stats", r.handler.GetSessionStats)
		router.Post("/sessions/{id}/insight", r.handler.GetSessionInsight)

		// Alert routes
		router.Get("/alerts", r.handler.ListAlerts)
		router.Delete("/alerts/{id}", r.handler.DismissAlert)

		// Airline routes
		router.Get("/airlines", r.handler.SearchAirlines)
		router.Get("/airlines/rankings", r.handler.GetAirlineRankings)
		router.Get("/airlines/{code}/sessions", r.handler.GetSessionsByAirline)

		// Settings
		router.Get("/settings", r.handler.GetSettings)
		router.Put("/settings", r.handler.UpdateSettings)

		// WebSocket route
		router.Get("/ws", r.handler.HandleWebSocket)

		// Health check
		router.Get("/health", r.handler.GetHealth)
	})

	return router
}
