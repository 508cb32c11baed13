package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookmarksCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookmarks_created_total",
			Help:      "Total number of bookmarks created",
		},
	)

	BookmarksUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookmarks_updated_total",
			Help:      "Total number of bookmarks updated",
		},
	)

	BookmarksDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookmarks_deleted_total",
			Help:      "Total number of bookmarks deleted",
		},
	)

	BookmarkOwnershipDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookmark_ownership_denied_total",
			Help:      "Total number of operations rejected because the caller does not own the bookmark",
		},
		[]string{"operation"},
	)

	ShortCodeCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "short_code_collisions_total",
			Help:      "Total number of generated short codes that were already taken",
		},
	)

	ShortCodeAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "short_code_generation_attempts",
			Help:      "Number of candidates drawn per generated short code",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 50, 100},
		},
	)

	ShortCodeInsertRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "short_code_insert_retries_total",
			Help:      "Total number of bookmark inserts retried after a short code unique violation",
		},
	)

	RedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redirects_total",
			Help:      "Total number of short code resolutions by result",
		},
		[]string{"result"},
	)

	RedirectMissCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redirect_miss_cache_hits_total",
			Help:      "Total number of unknown short codes answered from the miss cache",
		},
	)
)
