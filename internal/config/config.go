package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	// Port is the HTTP server port.
	Port int `yaml:"port"`

	// DatabaseDriver selects the gorm dialector: "postgres" or "sqlite".
	DatabaseDriver string `yaml:"database_driver"`

	// DatabaseURL is the DSN handed to the driver.
	DatabaseURL string `yaml:"-"`

	// SessionSecret signs the session cookie.
	SessionSecret string `yaml:"-"`

	// PostsPerPage is the page size of every post listing.
	PostsPerPage int `yaml:"posts_per_page"`

	TemplatesDir string `yaml:"templates_dir"`
	StaticDir    string `yaml:"static_dir"`
	MediaDir     string `yaml:"media_dir"`

	// SiteName is shown in page titles.
	SiteName string `yaml:"site_name"`

	// SiteURL is the public base URL used in the sitemap and the feed.
	SiteURL string `yaml:"site_url"`

	// GinMode is passed to gin.SetMode (debug, release, test).
	GinMode string `yaml:"gin_mode"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:           8080,
		DatabaseDriver: "postgres",
		DatabaseURL:    "host=localhost user=postgres password=postgres dbname=blogicum port=5432 sslmode=disable TimeZone=UTC",
		SessionSecret:  "secret_key_change_me",
		PostsPerPage:   10,
		TemplatesDir:   "./web/templates",
		StaticDir:      "./web/static",
		MediaDir:       "./media",
		SiteName:       "Blogicum",
		SiteURL:        "http://localhost:8080",
		GinMode:        "debug",
	}
}

// Load reads .env (if present), then the optional YAML file named by
// CONFIG_FILE, then environment variables. Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, reading env vars from system")
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		c.Port = port
	}

	if n := os.Getenv("POSTS_PER_PAGE"); n != "" {
		perPage, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("invalid POSTS_PER_PAGE: %w", err)
		}
		c.PostsPerPage = perPage
	}

	setString(&c.DatabaseDriver, "DATABASE_DRIVER")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.SessionSecret, "SESSION_SECRET")
	setString(&c.TemplatesDir, "TEMPLATES_DIR")
	setString(&c.StaticDir, "STATIC_DIR")
	setString(&c.MediaDir, "MEDIA_DIR")
	setString(&c.SiteName, "SITE_NAME")
	setString(&c.SiteURL, "SITE_URL")
	setString(&c.GinMode, "GIN_MODE")
	return nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	c.SiteURL = strings.TrimRight(c.SiteURL, "/")
	if c.PostsPerPage <= 0 {
		return fmt.Errorf("POSTS_PER_PAGE must be positive, got %d", c.PostsPerPage)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
