package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 10, cfg.List.PageSize)
	assert.Equal(t, 100, cfg.List.MaxPageSize)
	assert.False(t, cfg.List.StrictPaging)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "600-M", cfg.HTTP.RateLimit)
	assert.Equal(t, language.English, cfg.List.Tag())
}

func TestParse_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LIST_PAGE_SIZE", "25")
	t.Setenv("LIST_STRICT_PAGING", "true")
	t.Setenv("LIST_LOCALE", "de")
	t.Setenv("DATA_DIR", "/srv/data")
	t.Setenv("DATA_WATCH", "true")
	t.Setenv("HTTP_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 25, cfg.List.PageSize)
	assert.True(t, cfg.List.StrictPaging)
	assert.Equal(t, language.German, cfg.List.Tag())
	assert.Equal(t, "/srv/data", cfg.Data.Dir)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"zero page size", map[string]string{"LIST_PAGE_SIZE": "0"}, "LIST_PAGE_SIZE"},
		{"max below default", map[string]string{"LIST_PAGE_SIZE": "50", "LIST_MAX_PAGE_SIZE": "20"}, "LIST_MAX_PAGE_SIZE"},
		{"tables without url", map[string]string{"DATABASE_TABLES": "employees=hr.employees"}, "DATABASE_URL"},
		{"watch without dir", map[string]string{"DATA_WATCH": "true"}, "DATA_DIR"},
		{"not a number", map[string]string{"LIST_PAGE_SIZE": "ten"}, "parse environment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("LIST_MAX_PAGE_SIZE=500\n"), 0o644))
	t.Setenv("LIST_MAX_PAGE_SIZE", "")
	require.NoError(t, os.Unsetenv("LIST_MAX_PAGE_SIZE"))

	n, err := LoadEnv([]string{path, filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.List.MaxPageSize)
}

func TestListOptions_BadLocaleFallsBack(t *testing.T) {
	assert.Equal(t, language.English, ListOptions{Locale: "not-a-locale!"}.Tag())
}
