package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	userdomain "github.com/AlibekovAA/linkmark/internal/user/domain"
)

type testServer struct {
	handler http.Handler
	issuer  *authservice.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log, err := logger.New("", "test", "info")
	require.NoError(t, err)

	guard := identityservice.NewGuard(constants.TestJWTSecret, log)
	bookmarks := service.NewBookmarkService(
		repository.NewMemoryRepository(nil),
		shortcode.NewGenerator(constants.ShortCodeLength, constants.ShortCodeMaxAttempts),
		guard,
		log,
	)

	handler := NewHandler(Config{
		Bookmarks:      bookmarks,
		Authenticator:  guard,
		RequestTimeout: time.Second,
		DefaultLimit:   constants.DefaultBookmarkLimit,
		Log:            log,
	})

	return &testServer{
		handler: commonhttp.TraceIDMiddleware(handler),
		issuer: authservice.NewTokenIssuer(
			constants.TestJWTSecret,
			commoncrypto.NewUUIDGenerator(),
			constants.TestAccessTokenTTL,
			clock.NewRealClock(),
		),
	}
}

func (s *testServer) token(t *testing.T, id, email string) string {
	t.Helper()
	token, err := s.issuer.IssueAccessToken(userdomain.User{ID: userdomain.ID(id), Email: email})
	require.NoError(t, err)
	return token.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestBookmarks_RequireToken(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/bookmarks/"},
		{http.MethodGet, "/bookmarks/stats"},
		{http.MethodPost, "/bookmarks/"},
		{http.MethodGet, "/bookmarks/1"},
		{http.MethodPut, "/bookmarks/1"},
		{http.MethodDelete, "/bookmarks/1"},
	} {
		rec := srv.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

		env := decode[commonhttp.ErrorEnvelope](t, rec)
		assert.NotEmpty(t, env.Detail)
	}

	rec := srv.do(t, http.MethodGet, "/bookmarks/", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAndGet(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, "user-a", "a@x.com")

	rec := srv.do(t, http.MethodPost, "/bookmarks/", token, map[string]string{"body": "GitHub", "url": "https://github.com/x"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[dto.Bookmark](t, rec)
	assert.Len(t, created.ShortURL, 3)
	assert.Zero(t, created.Visits)
	assert.Equal(t, "user-a", created.UserID)
	assert.Equal(t, "a@x.com", created.User.Email)

	rec = srv.do(t, http.MethodGet, "/bookmarks/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dto.Bookmark](t, rec)
	assert.Equal(t, created.ShortURL, got.ShortURL)
}

func TestCreate_Rejections(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, "user-a", "a@x.com")

	rec := srv.do(t, http.MethodPost, "/bookmarks/", token, map[string]string{"body": "x", "url": "not-a-url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide a valid URL", decode[commonhttp.ErrorEnvelope](t, rec).Detail)

	rec = srv.do(t, http.MethodPost, "/bookmarks/", token, map[string]string{"body": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/bookmarks/", bytes.NewBufferString("{broken"))
	req.Header.Set("Authorization", "Bearer "+token)
	raw := httptest.NewRecorder()
	srv.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)

	rec = srv.do(t, http.MethodPost, "/bookmarks/", token, map[string]string{"url": "https://a.example"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = srv.do(t, http.MethodPost, "/bookmarks/", token, map[string]string{"url": "https://a.example"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Bookmark already exists", decode[commonhttp.ErrorEnvelope](t, rec).Detail)
}

func TestGet_InvalidAndMissingID(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, "user-a", "a@x.com")

	rec := srv.do(t, http.MethodGet, "/bookmarks/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/bookmarks/99", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decode[commonhttp.ErrorEnvelope](t, rec)
	assert.Equal(t, "Bookmark with id:99 was not found", env.Detail)
	assert.NotEmpty(t, env.TraceID)
}

func TestUpdate(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.token(t, "user-a", "a@x.com")
	bob := srv.token(t, "user-b", "b@x.com")

	rec := srv.do(t, http.MethodPost, "/bookmarks/", alice, map[string]string{"body": "old", "url": "https://a.example"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[dto.Bookmark](t, rec)

	rec = srv.do(t, http.MethodPut, "/bookmarks/1", bob, map[string]string{"body": "new", "url": "https://b.example"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPut, "/bookmarks/2", bob, map[string]string{"body": "new", "url": "https://b.example"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPut, "/bookmarks/1", alice, map[string]string{"body": "new", "url": "https://b.example"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[dto.Bookmark](t, rec)
	assert.Equal(t, "new", updated.Body)
	assert.Equal(t, "https://b.example", updated.URL)
	assert.Equal(t, created.ShortURL, updated.ShortURL)
}

func TestListAndStats(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.token(t, "user-a", "a@x.com")
	bob := srv.token(t, "user-b", "b@x.com")

	for _, u := range []string{"https://go.dev", "https://go.dev/doc", "https://example.org"} {
		rec := srv.do(t, http.MethodPost, "/bookmarks/", alice, map[string]string{"url": u})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := srv.do(t, http.MethodPost, "/bookmarks/", bob, map[string]string{"url": "https://go.dev/blog"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, http.MethodGet, "/bookmarks/?search=GO.DEV", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dto.Bookmark](t, rec), 2)

	rec = srv.do(t, http.MethodGet, "/bookmarks?limit=1&skip=2", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[[]dto.Bookmark](t, rec)
	require.Len(t, page, 1)
	assert.Equal(t, "https://example.org", page[0].URL)

	rec = srv.do(t, http.MethodGet, "/bookmarks/?limit=-1", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/bookmarks/stats", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[[]dto.BookmarkStat](t, rec)
	require.Len(t, stats, 1)
	assert.Equal(t, "https://go.dev/blog", stats[0].URL)
	assert.Len(t, stats[0].ShortCode, 3)
}

func TestRedirect(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, "user-a", "a@x.com")

	rec := srv.do(t, http.MethodPost, "/bookmarks/", token, map[string]string{"url": "https://github.com/x"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[dto.Bookmark](t, rec)

	rec = srv.do(t, http.MethodGet, "/find/"+created.ShortURL, "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://github.com/x", rec.Header().Get("Location"))

	rec = srv.do(t, http.MethodGet, "/bookmarks/stats", token, nil)
	stats := decode[[]dto.BookmarkStat](t, rec)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats[0].Visits)

	rec = srv.do(t, http.MethodGet, "/find/!!!", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
