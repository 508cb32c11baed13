package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	authhttp "github.com/AlibekovAA/linkmark/internal/auth/http"
	authrepo "github.com/AlibekovAA/linkmark/internal/auth/repository"
	authservice "github.com/AlibekovAA/linkmark/internal/auth/service"
	"github.com/AlibekovAA/linkmark/internal/bookmark/repository"
	"github.com/AlibekovAA/linkmark/internal/bookmark/service"
	"github.com/AlibekovAA/linkmark/internal/bookmark/shortcode"
	"github.com/AlibekovAA/linkmark/internal/common/clock"
	"github.com/AlibekovAA/linkmark/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/linkmark/internal/common/crypto"
	"github.com/AlibekovAA/linkmark/internal/common/dto"
	commonhttp "github.com/AlibekovAA/linkmark/internal/common/http"
	"github.com/AlibekovAA/linkmark/internal/common/logger"
	identityservice "github.com/AlibekovAA/linkmark/internal/identity/service"
	userrepo "github.com/AlibekovAA/linkmark/internal/user/repository"
)

type scenario struct {
	t       *testing.T
	handler http.Handler
}

func newScenario(t *testing.T) *scenario {
	t.Helper()
	log, err := logger.New("", "test", "info")
	require.NoError(t, err)

	users := userrepo.NewMemoryRepository()
	revoked := authrepo.NewMemoryRevokedTokenRepository(func() time.Time { return time.Now().UTC() })
	ids := commoncrypto.NewUUIDGenerator()
	clk := clock.NewRealClock()

	guard := identityservice.NewGuard(
		constants.TestJWTSecret,
		log,
		identityservice.WithRevocationChecker(revoked),
		identityservice.WithUserLookup(users),
	)

	auth := authservice.NewAuthService(
		users,
		revoked,
		commoncrypto.NewBcryptHasher(bcrypt.MinCost),
		ids,
		authservice.NewTokenIssuer(constants.TestJWTSecret, ids, constants.TestAccessTokenTTL, clk),
		clk,
		log,
	)
	authHandler := authhttp.NewHandler(authhttp.Config{
		Auth:           auth,
		Authenticator:  guard,
		RequestTimeout: time.Second,
		Log:            log,
	})

	bookmarks := service.NewBookmarkService(
		repository.NewMemoryRepository(users),
		shortcode.NewGenerator(constants.ShortCodeLength, constants.ShortCodeMaxAttempts),
		guard,
		log,
	)
	bookmarkHandler := NewHandler(Config{
		Bookmarks:      bookmarks,
		Authenticator:  guard,
		RequestTimeout: time.Second,
		DefaultLimit:   constants.DefaultBookmarkLimit,
		Log:            log,
	})

	return &scenario{t: t, handler: commonhttp.BuildBaseHandler("test", log, authhttp.Merge(authHandler, bookmarkHandler), []string{"*"})}
}

func (s *scenario) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *scenario) register(email, password string) dto.User {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/users/", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.User](s.t, rec)
}

func (s *scenario) login(email, password string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(s.t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func TestScenario_BookmarkLifecycle(t *testing.T) {
	s := newScenario(t)

	userA := s.register("a@x.com", "Password1")
	s.register("b@x.com", "Password2")
	tokenA := s.login("a@x.com", "Password1")
	tokenB := s.login("b@x.com", "Password2")

	rec := s.do(http.MethodPost, "/bookmarks/", tokenA, map[string]string{"body": "GitHub", "url": "https://github.com/x"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[dto.Bookmark](t, rec)
	assert.Len(t, created.ShortURL, 3)
	assert.Zero(t, created.Visits)
	assert.Equal(t, userA.ID, created.User.ID)
	assert.Equal(t, "a@x.com", created.User.Email)

	rec = s.do(http.MethodGet, "/find/"+created.ShortURL, "", nil)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://github.com/x", rec.Header().Get("Location"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = s.do(http.MethodGet, "/bookmarks/1", tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[dto.Bookmark](t, rec).Visits)

	rec = s.do(http.MethodPost, "/bookmarks/", tokenB, map[string]string{"body": "copy", "url": "https://github.com/x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/bookmarks/1", tokenB, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodDelete, "/bookmarks/1", tokenA, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/bookmarks/1", tokenA, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/find/"+created.ShortURL, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScenario_LogoutRevokesToken(t *testing.T) {
	s := newScenario(t)

	s.register("a@x.com", "Password1")
	token := s.login("a@x.com", "Password1")

	rec := s.do(http.MethodGet, "/bookmarks/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/bookmarks/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestScenario_AuthRejections(t *testing.T) {
	s := newScenario(t)

	rec := s.do(http.MethodPost, "/users/", "", map[string]string{"email": "a@x.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(decode[commonhttp.ErrorEnvelope](t, rec).Detail, "password requirements"))

	rec = s.do(http.MethodPost, "/users/", "", map[string]string{"email": "not-an-email", "password": "Password1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.register("a@x.com", "Password1")
	rec = s.do(http.MethodPost, "/users/", "", map[string]string{"email": "a@x.com", "password": "Password1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/login", "", map[string]string{"email": "a@x.com", "password": "Wrong1234"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Invalid Credentials", decode[commonhttp.ErrorEnvelope](t, rec).Detail)

	rec = s.do(http.MethodPost, "/login", "", map[string]string{"email": "nobody@x.com", "password": "Password1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestScenario_UserLookup(t *testing.T) {
	s := newScenario(t)

	user := s.register("a@x.com", "Password1")

	rec := s.do(http.MethodGet, "/users/"+user.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", decode[dto.User](t, rec).Email)

	rec = s.do(http.MethodGet, "/users/00000000-0000-0000-0000-000000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScenario_FormLogin(t *testing.T) {
	s := newScenario(t)
	s.register("a@x.com", "Password1")

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=a%40x.com&password=Password1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "access_token")
}
