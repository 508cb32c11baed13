package service

import (
	"github.com/AlibekovAA/linkmark/internal/observability/metrics"
)

func incrementBookmarksCreated() {
	metrics.BookmarksCreated.Inc()
}

func incrementBookmarksUpdated() {
	metrics.BookmarksUpdated.Inc()
}

func incrementBookmarksDeleted() {
	metrics.BookmarksDeleted.Inc()
}

func incrementOwnershipDenied(operation string) {
	metrics.BookmarkOwnershipDenied.WithLabelValues(operation).Inc()
}

func incrementInsertRetries() {
	metrics.ShortCodeInsertRetries.Inc()
}

func incrementRedirects(result string) {
	metrics.RedirectsTotal.WithLabelValues(result).Inc()
}

func incrementMissCacheHits() {
	metrics.RedirectMissCacheHits.Inc()
}
