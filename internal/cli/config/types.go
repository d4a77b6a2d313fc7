// Package config loads the console configuration from file, environment
// variables, and flags, and owns the logger plumbing shared by every
// command.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/openradius/radops/internal/grid"
	"github.com/openradius/radops/internal/radacct"
)

// Default configuration values.
const (
	DefaultAPIURL   = "http://localhost:4000"
	DefaultPageSize = 25
	DefaultTheme    = "dark"
	DefaultLogLevel = "info"
)

// Config is the full console configuration.
type Config struct {
	Verbose bool    `koanf:"verbose"`
	Output  string  `koanf:"output"`
	API     API     `koanf:"api"`
	Radacct Radacct `koanf:"radacct"`
	UI      UI      `koanf:"ui"`
	Log     Log     `koanf:"log"`
}

// API holds the backend connection settings.
type API struct {
	URL     string        `koanf:"url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"`
}

// Radacct holds the optional FreeRADIUS accounting database connection.
// When unset the sessions table is hidden.
type Radacct struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"sslmode"`
}

// StoreConfig converts to the accounting store's connection config.
func (r Radacct) StoreConfig() radacct.Config {
	return radacct.Config{
		Host:     r.Host,
		Port:     r.Port,
		Database: r.Database,
		Username: r.Username,
		Password: r.Password,
		SSLMode:  r.SSLMode,
	}
}

// UI holds console appearance and behavior settings.
type UI struct {
	PageSize int    `koanf:"page_size"`
	Theme    string `koanf:"theme"`
	Mouse    bool   `koanf:"mouse"`
}

// Log holds logging settings. While the console owns the terminal, log
// output goes to a file; stderr would corrupt the display.
type Log struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

// Validate checks the loaded configuration for values that would fail
// later in confusing ways.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return fmt.Errorf("api.url is required")
	}
	u, err := url.Parse(c.API.URL)
	if err != nil {
		return fmt.Errorf("api.url %q is not a valid URL: %w", c.API.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.url %q must use http or https", c.API.URL)
	}

	if !validPageSize(c.UI.PageSize) {
		return fmt.Errorf("ui.page_size %d is not an offered page size", c.UI.PageSize)
	}

	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("ui.theme %q must be dark or light", c.UI.Theme)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func validPageSize(size int) bool {
	for _, s := range grid.PageSizes {
		if size == s {
			return true
		}
	}
	return false
}
