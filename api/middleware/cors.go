package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/hostelgrievance/grievance-backend/pkg/config"
)

// CORS returns middleware that applies the configured allowed origin policy.
// Credentials are allowed so the session cookie survives cross-origin calls.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Refresh-Token", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Refresh-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
