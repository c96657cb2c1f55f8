// Package config provides configuration management for go-postboard.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var AppVersion = "-unset-" // will be set at build time

const (
	// environment variables override file values, flags override both
	EnvPrefix = "POSTBOARD_"

	DefaultWebPort = 11980
	DefaultAPIPort = 5000
	DefaultAPIURL  = "http://localhost:5000"
	DefaultDBPath  = "data/posts.sq3"
)

// MainConfig holds the main configuration for go-postboard
type MainConfig struct {
	// Mutex for thread-safe access
	mux sync.Mutex `json:"-" yaml:"-"`

	// Board web interface settings
	Web WebConfig `json:"web" yaml:"web"`

	// Posts API client and reference server settings
	API APIConfig `json:"api" yaml:"api"`

	// Reference server storage
	Database DatabaseConfig `json:"database" yaml:"database"`

	// How posts are shown
	Display DisplayConfig `json:"display" yaml:"display"`

	AppVersion string `json:"app_version" yaml:"-"` // Application version, set at build time
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenPort     int      `json:"listen_port" yaml:"listen_port"`
	SSL            bool     `json:"ssl" yaml:"ssl"`
	CertFile       string   `json:"cert_file,omitempty" yaml:"cert_file,omitempty"`
	KeyFile        string   `json:"key_file,omitempty" yaml:"key_file,omitempty"`
	TrustedProxies []string `json:"trusted_proxies" yaml:"trusted_proxies"`
	Debug          bool     `json:"debug" yaml:"debug"` // gin debug mode
}

// APIConfig holds the posts API endpoint used by the board and the reference server port
type APIConfig struct {
	BaseURL       string        `json:"base_url" yaml:"base_url"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout"` // 0 = no timeout
	ProxyAddr     string        `json:"proxy_addr,omitempty" yaml:"proxy_addr,omitempty"`
	ProxyUsername string        `json:"proxy_username,omitempty" yaml:"proxy_username,omitempty"`
	ProxyPassword string        `json:"proxy_password,omitempty" yaml:"proxy_password,omitempty"`
	ListenPort    int           `json:"listen_port" yaml:"listen_port"` // cmd/posts-api
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"` // Path to the sqlite posts database
}

// DisplayConfig controls rendering
type DisplayConfig struct {
	SiteTitle string `json:"site_title" yaml:"site_title"`
	Locale    string `json:"locale" yaml:"locale"`       // BCP 47 tag for dates, e.g. en-US
	TimeZone  string `json:"time_zone" yaml:"time_zone"` // IANA name or Local
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *MainConfig {
	maincfg := &MainConfig{
		AppVersion: AppVersion,
		Web: WebConfig{
			ListenPort:     DefaultWebPort,
			TrustedProxies: []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
		},
		API: APIConfig{
			BaseURL:    DefaultAPIURL,
			ListenPort: DefaultAPIPort,
		},
		Database: DatabaseConfig{
			Path: DefaultDBPath,
		},
		Display: DisplayConfig{
			SiteTitle: "Posts",
			Locale:    "en-US",
			TimeZone:  "Local",
		},
	}
	return maincfg
}

// LoadFile reads a YAML (or JSON) config file on top of the defaults
func LoadFile(path string) (*MainConfig, error) {
	cfg := NewDefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	log.Printf("[CONFIG]: Loaded config file %s", path)
	return cfg, nil
}

// ApplyEnv loads envFile (if it exists, without overriding already set variables)
// and applies POSTBOARD_* variables to the config
func (c *MainConfig) ApplyEnv(envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			log.Printf("[CONFIG]: Loaded environment from %s", envFile)
		}
	}

	c.mux.Lock()
	defer c.mux.Unlock()

	var errs []error
	setInt := func(name string, dst *int) {
		if v, ok := lookupEnv(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: invalid number '%s'", EnvPrefix, name, v))
				return
			}
			*dst = n
		}
	}
	setString := func(name string, dst *string) {
		if v, ok := lookupEnv(name); ok {
			*dst = v
		}
	}

	setInt("WEB_PORT", &c.Web.ListenPort)
	setInt("API_PORT", &c.API.ListenPort)
	setString("API_URL", &c.API.BaseURL)
	setString("PROXY", &c.API.ProxyAddr)
	setString("PROXY_USERNAME", &c.API.ProxyUsername)
	setString("PROXY_PASSWORD", &c.API.ProxyPassword)
	setString("DB", &c.Database.Path)
	setString("LOCALE", &c.Display.Locale)
	setString("TZ", &c.Display.TimeZone)
	setString("SITE_TITLE", &c.Display.SiteTitle)
	if v, ok := lookupEnv("API_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sAPI_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.API.Timeout = d
		}
	}
	if v, ok := lookupEnv("WEB_SSL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sWEB_SSL: %w", EnvPrefix, err))
		} else {
			c.Web.SSL = b
		}
	}
	return errors.Join(errs...)
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Validate checks ports and required values
func (c *MainConfig) Validate() error {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.Web.ListenPort < 1024 || c.Web.ListenPort > 65535 {
		return fmt.Errorf("invalid web port number: %d (must be between 1024 and 65535)", c.Web.ListenPort)
	}
	if c.API.ListenPort < 1024 || c.API.ListenPort > 65535 {
		return fmt.Errorf("invalid API port number: %d (must be between 1024 and 65535)", c.API.ListenPort)
	}
	if c.Web.SSL && (c.Web.CertFile == "" || c.Web.KeyFile == "") {
		return errors.New("SSL enabled but cert_file or key_file not specified in config")
	}
	if c.API.BaseURL == "" {
		return errors.New("posts API base URL is empty")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("invalid API timeout %s", c.API.Timeout)
	}
	return nil
}
