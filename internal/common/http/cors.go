package http

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/AlibekovAA/linkmark/internal/common/constants"
)

// CORSMiddleware answers preflight requests and lets browsers on origins call
// the API with a bearer token. A single "*" allows any origin.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{traceIDHeader},
		MaxAge:         constants.CORSMaxAge,
	})
}
