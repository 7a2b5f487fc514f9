package routing

import (
	"net/http"

	"brewlog/internal/handlers"
	"brewlog/internal/middleware"

	"github.com/rs/zerolog"
)

// Config holds the configuration needed for setting up routes
type Config struct {
	Handlers *handlers.Handler
	Logger   zerolog.Logger
	// RateLimits overrides the default per-client limits when set
	RateLimits *middleware.RateLimitConfig
}

// SetupRouter creates and configures the HTTP router with all routes and middleware
func SetupRouter(cfg Config) http.Handler {
	h := cfg.Handlers
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.HandleHealth)

	// Brew log entries
	mux.HandleFunc("GET /api/brews", h.HandleBrewList)
	mux.HandleFunc("POST /api/brews", h.HandleBrewCreate)
	mux.HandleFunc("GET /api/brews/export", h.HandleBrewExport) // more specific than /{id}
	mux.HandleFunc("GET /api/brews/{id}", h.HandleBrewGet)
	mux.HandleFunc("PUT /api/brews/{id}", h.HandleBrewUpdate)
	mux.HandleFunc("DELETE /api/brews/{id}", h.HandleBrewDelete)
	mux.HandleFunc("POST /api/brews/{id}/photo", h.HandleBrewPhoto)

	// Tasting wheel
	mux.HandleFunc("GET /api/wheel", h.HandleWheel)
	mux.HandleFunc("POST /api/wheel/hit", h.HandleWheelHit)

	// Catch-all 404 handler - must be last, catches any unmatched routes
	mux.HandleFunc("/", h.HandleNotFound)

	// Apply middleware in order (outermost first, innermost last)
	var handler http.Handler = mux

	// 1. Limit request body size (innermost - runs first on request)
	handler = middleware.LimitBodyMiddleware(handler)

	// 2. Apply rate limiting
	rateLimits := cfg.RateLimits
	if rateLimits == nil {
		rateLimits = middleware.NewDefaultRateLimitConfig()
	}
	handler = middleware.RateLimitMiddleware(rateLimits)(handler)

	// 3. Apply security headers
	handler = middleware.SecurityHeadersMiddleware(handler)

	// 4. Apply logging middleware
	handler = middleware.LoggingMiddleware(cfg.Logger)(handler)

	// 5. Assign request IDs (outermost so the logger sees them)
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}
