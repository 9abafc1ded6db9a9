package app

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LOCALE", "en_US.UTF-8")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "http://127.0.0.1:8080/api", cfg.BackendURL)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 75, cfg.DisclosurePreviewChars)
	assert.Equal(t, 25, cfg.TablePageSize)
	assert.False(t, cfg.BackendEnabled())
	assert.False(t, cfg.IsProduction())

	tag, err := cfg.LocaleTag()
	require.NoError(t, err)
	assert.Equal(t, language.AmericanEnglish, tag)

	links, err := cfg.LinkTemplates()
	require.NoError(t, err)
	_ = links
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"BACKEND_URL":               "ftp://backend",
		"TABLE_PAGE_SIZE":           "0",
		"DISCLOSURE_PREVIEW_CHARS":  "-1",
		"CORPORATION_LINK_TEMPLATE": "/corp/0",
		"LOCALE":                    "!!",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEDGERVIEW_ENV_SAMPLE=from-file\n"), 0o600))
	t.Setenv("LEDGERVIEW_ENV_SAMPLE", "")
	require.NoError(t, os.Unsetenv("LEDGERVIEW_ENV_SAMPLE"))
	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("LEDGERVIEW_ENV_SAMPLE"))
}

func TestLoggerHonoursFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"})
	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"k":"v"`)

	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
}
