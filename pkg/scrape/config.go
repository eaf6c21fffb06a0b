package scrape

import (
	"errors"
	"time"
)

// Static errors for configuration validation
var (
	ErrBaseURLRequired = errors.New("base URL is required")
	ErrSiteURLRequired = errors.New("site URL is required")
)

// Config contains upstream fetch settings.
type Config struct {
	// BaseURL is the draw search endpoint.
	BaseURL string `yaml:"baseUrl" default:"https://www.loteriasyapuestas.es/servicios/buscadorSorteos"`
	// SiteURL is the public site root used to build per-game referers.
	SiteURL     string        `yaml:"siteUrl" default:"https://www.loteriasyapuestas.es"`
	UserAgent   string        `yaml:"userAgent" default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"`
	Timeout     time.Duration `yaml:"timeout" default:"30s"`
	MaxAttempts int           `yaml:"maxAttempts" default:"4"`
	// DaysBack is how far the daily fetch window reaches into the past.
	DaysBack int `yaml:"daysBack" default:"3"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrBaseURLRequired
	}

	if c.SiteURL == "" {
		return ErrSiteURLRequired
	}

	return nil
}
