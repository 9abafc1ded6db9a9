package app

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/ledgerview/internal/format"
	"github.com/odyssey-erp/ledgerview/internal/outstanding"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://127.0.0.1:8080/api"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`

	// PGDSN enables the built-in /api backend when set.
	PGDSN string `envconfig:"PG_DSN"`

	Locale                 string `envconfig:"LOCALE"`
	DisclosurePreviewChars int    `envconfig:"DISCLOSURE_PREVIEW_CHARS" default:"75"`
	TablePageSize          int    `envconfig:"TABLE_PAGE_SIZE" default:"25"`

	CorporationLinkTemplate string `envconfig:"CORPORATION_LINK_TEMPLATE" default:"/ledger/corporation/{id}"`
	CharacterLinkTemplate   string `envconfig:"CHARACTER_LINK_TEMPLATE" default:"/ledger/character/{id}"`
}

// LoadEnvFile reads path into the environment without overriding set variables.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("app: load %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend url %q must be an absolute http(s) url", c.BackendURL)
	}
	if c.DisclosurePreviewChars <= 0 {
		return errors.New("disclosure preview chars must be positive")
	}
	if c.TablePageSize <= 0 {
		return errors.New("table page size must be positive")
	}
	if _, err := c.LinkTemplates(); err != nil {
		return err
	}
	if _, err := c.LocaleTag(); err != nil {
		return err
	}
	return nil
}

// LinkTemplates returns the validated outstanding detail templates.
func (c *Config) LinkTemplates() (outstanding.LinkTemplates, error) {
	return outstanding.NewLinkTemplates(c.CorporationLinkTemplate, c.CharacterLinkTemplate)
}

// LocaleTag resolves LOCALE, falling back to the process locale.
func (c *Config) LocaleTag() (language.Tag, error) {
	if c.Locale == "" {
		return format.EnvironmentLocale(), nil
	}
	return format.ParseLocale(c.Locale)
}

// BackendEnabled reports whether the built-in backend is served.
func (c *Config) BackendEnabled() bool {
	return c != nil && c.PGDSN != ""
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
