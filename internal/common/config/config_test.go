package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/linkmark/internal/common/constants"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoadAuthConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("DATABASE_URL", "postgres://localhost/linkmark")

	cfg, err := LoadAuthConfig()
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultAuthHTTPPort, cfg.HTTPPort)
	assert.Equal(t, constants.DefaultAccessTokenTTL, cfg.AccessTokenTTL)
	assert.Equal(t, constants.DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, "postgres://localhost/linkmark", cfg.DatabaseURL)
}

func TestLoadAuthConfig_MissingSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/linkmark")

	_, err := LoadAuthConfig()
	require.ErrorIs(t, err, ErrMissingRequiredEnv)
}

func TestLoadAuthConfig_ShortSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("DATABASE_URL", "postgres://localhost/linkmark")

	_, err := LoadAuthConfig()
	require.ErrorIs(t, err, ErrInvalidJWTSecret)
}

func TestLoadBookmarksConfig_MemoryStorageSkipsDatabase(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("BOOKMARKS_STORAGE", StorageMemory)
	unsetEnv(t, "DATABASE_URL")

	cfg, err := LoadBookmarksConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, constants.ShortCodeLength, cfg.ShortCodeLength)
	assert.Equal(t, constants.DefaultBookmarkLimit, cfg.DefaultListLimit)
}

func TestLoadBookmarksConfig_InvalidStorage(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("BOOKMARKS_STORAGE", "sqlite")

	_, err := LoadBookmarksConfig()
	require.ErrorIs(t, err, ErrInvalidStorage)
}

func TestLoadBookmarksConfig_FileValuesWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "JWT_SECRET: " + validSecret + "\n" +
		"BOOKMARKS_STORAGE: memory\n" +
		"BOOKMARKS_HTTP_PORT: \"9000\"\n" +
		"REDIRECT_MISS_TTL: 30s\n" +
		"SHORT_CODE_MAX_ATTEMPTS: \"7\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	unsetEnv(t, "JWT_SECRET")
	unsetEnv(t, "BOOKMARKS_STORAGE")
	unsetEnv(t, "BOOKMARKS_HTTP_PORT")
	unsetEnv(t, "REDIRECT_MISS_TTL")
	t.Setenv("SHORT_CODE_MAX_ATTEMPTS", "12")

	cfg, err := LoadBookmarksConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.RedirectMissTTL)
	assert.Equal(t, 12, cfg.ShortCodeMaxAttempts)
}

func TestLoadBookmarksConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("BOOKMARKS_STORAGE", StorageMemory)
	t.Setenv("BOOKMARKS_REQUEST_TIMEOUT", "soon")
	t.Setenv("BOOKMARKS_MAX_LIMIT", "many")

	cfg, err := LoadBookmarksConfig()
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, constants.MaxBookmarkLimit, cfg.MaxListLimit)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := LoadAuthConfig()
	require.Error(t, err)
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadAuthConfig_CORSOrigins(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("DATABASE_URL", "postgres://localhost/linkmark")

	unsetEnv(t, "CORS_ALLOWED_ORIGINS")
	cfg, err := LoadAuthConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example, ,https://b.example ")
	cfg, err = LoadAuthConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}
