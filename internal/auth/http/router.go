package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlibekovAA/linkmark/internal/auth/service"
	commonerrors "github.com/AlibekovAA/linkmark/internal/common/errors"
	commonhttp "github.com/AlibekovAA/linkmark/internal/common/http"
	"github.com/AlibekovAA/linkmark/internal/common/logger"
	"github.com/AlibekovAA/linkmark/internal/common/mapper"
	identityhttp "github.com/AlibekovAA/linkmark/internal/identity/http"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Handler struct {
	auth *service.AuthService
	log  *logger.Logger
}

type Config struct {
	Auth           *service.AuthService
	Authenticator  identityhttp.Authenticator
	RateLimiter    *commonhttp.StrictRateLimiter
	RequestTimeout time.Duration
	HealthChecks   map[string]commonhttp.HealthCheck
	Log            *logger.Logger
}

func NewHandler(cfg Config) http.Handler {
	h := &Handler{auth: cfg.Auth, log: cfg.Log}

	r := chi.NewRouter()
	r.NotFound(commonhttp.NotFoundHandler)
	r.MethodNotAllowed(commonhttp.MethodNotAllowedHandler)

	r.Get("/health", commonhttp.HealthHandler(cfg.Log, cfg.HealthChecks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(commonhttp.WithTimeout(cfg.RequestTimeout))

		r.With(limit(cfg.RateLimiter, "/users/")).Post("/users/", h.register)
		r.With(limit(cfg.RateLimiter, "/users/")).Post("/users", h.register)
		r.Get("/users/{id}", h.getUser)
		r.With(limit(cfg.RateLimiter, "/login")).Post("/login", h.login)
		r.With(
			limit(cfg.RateLimiter, "/logout"),
			identityhttp.RequireIdentity(cfg.Authenticator, cfg.Log),
		).Post("/logout", h.logout)
	})

	return r
}

// Merge serves the account routes from authHandler and every other path from
// next, for a single process hosting both APIs.
func Merge(authHandler, next http.Handler) http.Handler {
	r := chi.NewRouter()
	for _, pattern := range []string{"/users", "/users/*", "/login", "/logout"} {
		r.Handle(pattern, authHandler)
	}
	r.Handle("/*", next)
	return r
}

func limit(rl *commonhttp.StrictRateLimiter, path string) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.MiddlewareForPath(path)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, mapper.UserToDTO(user))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.HandleError(w, r, commonerrors.ErrUserNotFound.WithMessage("User with id: "+id+" does not exist"), h.log)
		return
	}

	user, err := h.auth.GetUser(r.Context(), id)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, mapper.UserToDTO(user))
}

// login accepts a JSON body or an OAuth2 password form (username/password).
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			commonhttp.HandleError(w, r, commonerrors.ErrInvalidPayload.WithCause(err), h.log)
			return
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		if err := commonhttp.ValidateStruct(req); err != nil {
			commonhttp.HandleError(w, r, err, h.log)
			return
		}
	} else if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	token, err := h.auth.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityhttp.FromContext(r.Context())
	if !ok {
		commonhttp.HandleError(w, r, commonerrors.ErrUnauthorized, h.log)
		return
	}

	if err := h.auth.Logout(r.Context(), identity); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
