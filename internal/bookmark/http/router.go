package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlibekovAA/linkmark/internal/bookmark/domain"
	"github.com/AlibekovAA/linkmark/internal/bookmark/service"
	commonerrors "github.com/AlibekovAA/linkmark/internal/common/errors"
	commonhttp "github.com/AlibekovAA/linkmark/internal/common/http"
	"github.com/AlibekovAA/linkmark/internal/common/logger"
	"github.com/AlibekovAA/linkmark/internal/common/mapper"
	identitydomain "github.com/AlibekovAA/linkmark/internal/identity/domain"
	identityhttp "github.com/AlibekovAA/linkmark/internal/identity/http"
)

type bookmarkRequest struct {
	Body string `json:"body"`
	URL  string `json:"url" validate:"required"`
}

type Handler struct {
	bookmarks    *service.BookmarkService
	defaultLimit int
	log          *logger.Logger
}

type Config struct {
	Bookmarks      *service.BookmarkService
	Authenticator  identityhttp.Authenticator
	RateLimiter    *commonhttp.StrictRateLimiter
	RequestTimeout time.Duration
	HealthChecks   map[string]commonhttp.HealthCheck
	DefaultLimit   int
	Log            *logger.Logger
}

func NewHandler(cfg Config) http.Handler {
	h := &Handler{bookmarks: cfg.Bookmarks, defaultLimit: cfg.DefaultLimit, log: cfg.Log}

	r := chi.NewRouter()
	r.NotFound(commonhttp.NotFoundHandler)
	r.MethodNotAllowed(commonhttp.MethodNotAllowedHandler)

	r.Get("/health", commonhttp.HealthHandler(cfg.Log, cfg.HealthChecks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(commonhttp.WithTimeout(cfg.RequestTimeout))

		r.With(limit(cfg.RateLimiter, "/find")).Get("/find/{short_url}", h.redirect)

		r.Route("/bookmarks", func(r chi.Router) {
			r.Use(limit(cfg.RateLimiter, "/bookmarks"))
			r.Use(identityhttp.RequireIdentity(cfg.Authenticator, cfg.Log))

			r.Get("/stats", h.stats)
			r.Get("/", h.list)
			r.Post("/", h.create)
			r.Get("/{id}", h.get)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})

	return r
}

func limit(rl *commonhttp.StrictRateLimiter, path string) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.MiddlewareForPath(path)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	pageSize, err := commonhttp.ParseIntQuery(r, "limit", h.defaultLimit)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	skip, err := commonhttp.ParseIntQuery(r, "skip", 0)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	bookmarks, err := h.bookmarks.List(r.Context(), identity, service.ListInput{
		Search: r.URL.Query().Get("search"),
		Limit:  pageSize,
		Offset: skip,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, mapper.BookmarksToDTO(bookmarks))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req bookmarkRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	bookmark, err := h.bookmarks.Create(r.Context(), identity, service.Input{Body: req.Body, URL: req.URL})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, mapper.BookmarkToDTO(bookmark))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	id, ok := h.bookmarkID(w, r)
	if !ok {
		return
	}

	bookmark, err := h.bookmarks.Get(r.Context(), identity, id)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, mapper.BookmarkToDTO(bookmark))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	id, ok := h.bookmarkID(w, r)
	if !ok {
		return
	}

	var req bookmarkRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	bookmark, err := h.bookmarks.Update(r.Context(), identity, id, service.Input{Body: req.Body, URL: req.URL})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, mapper.BookmarkToDTO(bookmark))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	id, ok := h.bookmarkID(w, r)
	if !ok {
		return
	}

	if err := h.bookmarks.Delete(r.Context(), identity, id); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	stats, err := h.bookmarks.Stats(r.Context(), identity)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, mapper.StatsToDTO(stats))
}

// redirect is public: it only needs the short code.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request) {
	visit, err := h.bookmarks.Resolve(r.Context(), chi.URLParam(r, "short_url"))
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	http.Redirect(w, r, visit.URL, http.StatusTemporaryRedirect)
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (identitydomain.Identity, bool) {
	identity, ok := identityhttp.FromContext(r.Context())
	if !ok {
		commonhttp.HandleError(w, r, commonerrors.ErrUnauthorized, h.log)
		return identitydomain.Identity{}, false
	}
	return identity, true
}

func (h *Handler) bookmarkID(w http.ResponseWriter, r *http.Request) (domain.ID, bool) {
	id, err := commonhttp.ParseInt64Param(chi.URLParam(r, "id"), "id")
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return 0, false
	}
	return domain.ID(id), true
}
