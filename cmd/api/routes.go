package main

import (
	"net/http"

	httphandlers "saledash/internal/interfaces/http"
	"saledash/internal/shared/config"
	"saledash/internal/shared/middleware"

	"github.com/rs/zerolog/log"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Static pages
	mux.HandleFunc("/", httphandlers.HandleDashboard)
	mux.HandleFunc("/dashboard", httphandlers.HandleDashboard)

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Ingestion
	mux.HandleFunc("/api/init", deps.TransactionHandler.HandleInit)
	mux.HandleFunc("/api/sync", deps.TransactionHandler.HandleSync)
	mux.HandleFunc("/api/sync/status", deps.TransactionHandler.HandleSyncStatus)

	// Monthly views
	mux.HandleFunc("/api/transactions", deps.TransactionHandler.HandleTransactions)
	mux.HandleFunc("/api/statistics", deps.TransactionHandler.HandleStatistics)
	mux.HandleFunc("/api/bar-chart", deps.TransactionHandler.HandleBarChart)
	mux.HandleFunc("/api/bar-chart.png", deps.TransactionHandler.HandleBarChartPNG)
	mux.HandleFunc("/api/combined-data", deps.TransactionHandler.HandleCombined)

	// Apply global middleware
	handler := middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(mux))
	handler = middleware.Telemetry(middleware.Tracing(handler))

	if cfg.TLS.Enabled {
		handler = middleware.HSTS(handler)
		log.Info().Msg("TLS security middleware enabled (HSTS)")
	}

	return handler
}
