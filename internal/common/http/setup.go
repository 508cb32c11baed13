package http

import (
	"net/http"

	"github.com/AlibekovAA/linkmark/internal/common/constants"
	"github.com/AlibekovAA/linkmark/internal/common/httpmetrics"
	"github.com/AlibekovAA/linkmark/internal/common/logger"
)

// BuildBaseHandler wraps a service router with the middleware shared by every
// binary. Preflight requests are answered before they reach the router.
func BuildBaseHandler(appName string, log *logger.Logger, handler http.Handler, corsOrigins []string) http.Handler {
	metrics := httpmetrics.New(appName)
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	allowOrigins := CORSMiddleware(corsOrigins)

	return SecurityHeadersMiddleware(TraceIDMiddleware(allowOrigins(recovery(maxRequestSize(metrics.Wrap(handler))))))
}
