package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, cfg.Web.ListenPort, DefaultWebPort)
	assert.Equal(t, cfg.API.BaseURL, DefaultAPIURL)
	assert.Equal(t, cfg.API.Timeout, time.Duration(0))
	assert.Equal(t, cfg.Display.Locale, "en-US")
	assert.NilError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postboard.yaml")
	err := os.WriteFile(path, []byte(`
web:
  listen_port: 8088
api:
  base_url: http://api.internal:5000
  timeout: 15s
display:
  locale: de-DE
  time_zone: Europe/Berlin
`), 0o644)
	assert.NilError(t, err)

	cfg, err := LoadFile(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Web.ListenPort, 8088)
	assert.Equal(t, cfg.API.BaseURL, "http://api.internal:5000")
	assert.Equal(t, cfg.API.Timeout, 15*time.Second)
	assert.Equal(t, cfg.Display.Locale, "de-DE")
	// untouched defaults survive
	assert.Equal(t, cfg.API.ListenPort, DefaultAPIPort)
	assert.Equal(t, cfg.Database.Path, DefaultDBPath)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("web: [1, 2"), 0o644))
	_, err = LoadFile(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("POSTBOARD_WEB_PORT", "12000")
	t.Setenv("POSTBOARD_API_URL", "http://posts.example:5000")
	t.Setenv("POSTBOARD_API_TIMEOUT", "5s")
	t.Setenv("POSTBOARD_LOCALE", "en-GB")

	cfg := NewDefaultConfig()
	assert.NilError(t, cfg.ApplyEnv(""))
	assert.Equal(t, cfg.Web.ListenPort, 12000)
	assert.Equal(t, cfg.API.BaseURL, "http://posts.example:5000")
	assert.Equal(t, cfg.API.Timeout, 5*time.Second)
	assert.Equal(t, cfg.Display.Locale, "en-GB")
}

func TestApplyEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	assert.NilError(t, os.WriteFile(path, []byte("POSTBOARD_TZ=UTC\nPOSTBOARD_SITE_TITLE=\"Team board\"\n"), 0o644))
	// godotenv must not override variables that are already set
	t.Setenv("POSTBOARD_SITE_TITLE", "From shell")
	t.Cleanup(func() { os.Unsetenv("POSTBOARD_TZ") })

	cfg := NewDefaultConfig()
	assert.NilError(t, cfg.ApplyEnv(path))
	assert.Equal(t, cfg.Display.TimeZone, "UTC")
	assert.Equal(t, cfg.Display.SiteTitle, "From shell")
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("POSTBOARD_WEB_PORT", "eighty")
	t.Setenv("POSTBOARD_API_TIMEOUT", "soon")
	cfg := NewDefaultConfig()
	err := cfg.ApplyEnv("")
	assert.ErrorContains(t, err, "POSTBOARD_WEB_PORT")
	assert.ErrorContains(t, err, "POSTBOARD_API_TIMEOUT")
	assert.Equal(t, cfg.Web.ListenPort, DefaultWebPort)
}

func TestValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Web.ListenPort = 80
	assert.ErrorContains(t, cfg.Validate(), "invalid web port number: 80")

	cfg = NewDefaultConfig()
	cfg.Web.SSL = true
	assert.ErrorContains(t, cfg.Validate(), "cert_file or key_file")

	cfg = NewDefaultConfig()
	cfg.API.BaseURL = ""
	assert.ErrorContains(t, cfg.Validate(), "base URL is empty")
}
