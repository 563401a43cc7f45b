package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/routing"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/tenant"
	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Platform     PlatformConfig     `mapstructure:"platform"`
	Backend      BackendConfig      `mapstructure:"backend"`
	Upstream     UpstreamConfig     `mapstructure:"upstream"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Invalidation InvalidationConfig `mapstructure:"invalidation"`
	Router       RouterConfig       `mapstructure:"router"`
	Admin        AdminConfig        `mapstructure:"admin"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PlatformConfig describes the operator's domain and its path layout.
type PlatformConfig struct {
	Domain           string   `mapstructure:"domain"`
	Scheme           string   `mapstructure:"scheme"`
	MarketingPrefix  string   `mapstructure:"marketing_prefix"`
	OnboardingPrefix string   `mapstructure:"onboarding_prefix"`
	SuperAdminPrefix string   `mapstructure:"super_admin_prefix"`
	ReservedSlugs    []string `mapstructure:"reserved_slugs"`
	PreviewDomains   []string `mapstructure:"preview_domains"`
}

// BackendConfig holds the tenant validation backend configuration.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// UpstreamConfig holds the web front-end the edge forwards to.
type UpstreamConfig struct {
	URL string `mapstructure:"url"`
}

// CacheConfig holds validation cache configuration.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Size        int           `mapstructure:"size"`
	TTL         time.Duration `mapstructure:"ttl"`
	NegativeTTL time.Duration `mapstructure:"negative_ttl"`
}

// InvalidationConfig holds the tenant-changed listener configuration.
// The listener runs only when RedisURL is set.
type InvalidationConfig struct {
	RedisURL string `mapstructure:"redis_url"`
	Channel  string `mapstructure:"channel"`
}

// RouterConfig holds request router configuration.
type RouterConfig struct {
	// Enforcement is "redirect" (browser clients) or "status" (404/403).
	Enforcement string `mapstructure:"enforcement"`
}

// AdminConfig holds admin API configuration.
type AdminConfig struct {
	// SharedSecret gates /_edge. The admin API is not mounted when empty.
	SharedSecret string `mapstructure:"shared_secret"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("platform.domain", "")
	v.SetDefault("platform.scheme", "https")
	v.SetDefault("platform.marketing_prefix", "/platform")
	v.SetDefault("platform.onboarding_prefix", "/onboarding")
	v.SetDefault("platform.super_admin_prefix", "/super-admin")
	v.SetDefault("platform.reserved_slugs", tenant.DefaultReservedSlugs())
	v.SetDefault("platform.preview_domains", tenant.DefaultPreviewDomains())

	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.timeout", "3s")
	v.SetDefault("upstream.url", "http://localhost:3000")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 1024)
	v.SetDefault("cache.ttl", "60s")
	v.SetDefault("cache.negative_ttl", "10s")

	v.SetDefault("invalidation.redis_url", "")
	v.SetDefault("invalidation.channel", "tenant.changed")

	v.SetDefault("router.enforcement", string(routing.EnforceRedirect))
	v.SetDefault("admin.shared_secret", "")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// A missing file falls back to defaults and environment
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("EDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Platform.Domain = tenant.NormalizeHost(cfg.Platform.Domain)
	cfg.Router.Enforcement = strings.ToLower(strings.TrimSpace(cfg.Router.Enforcement))

	return &cfg, nil
}

// =============================================================================
// Validation
// =============================================================================

// ValidatePlatform checks the settings the pure resolver depends on.
func (c *Config) ValidatePlatform() error {
	var errs []error
	if c.Platform.Domain == "" {
		errs = append(errs, errors.New("platform.domain is required"))
	}
	switch c.Platform.Scheme {
	case "http", "https":
	default:
		errs = append(errs, fmt.Errorf("platform.scheme must be http or https, got %q", c.Platform.Scheme))
	}
	prefixes := []struct {
		name  string
		value string
	}{
		{"platform.marketing_prefix", c.Platform.MarketingPrefix},
		{"platform.onboarding_prefix", c.Platform.OnboardingPrefix},
		{"platform.super_admin_prefix", c.Platform.SuperAdminPrefix},
	}
	for _, p := range prefixes {
		if !strings.HasPrefix(p.value, "/") {
			errs = append(errs, fmt.Errorf("%s must start with /, got %q", p.name, p.value))
		}
	}
	switch routing.Enforcement(c.Router.Enforcement) {
	case routing.EnforceRedirect, routing.EnforceStatus:
	default:
		errs = append(errs, fmt.Errorf("router.enforcement must be redirect or status, got %q", c.Router.Enforcement))
	}
	return errors.Join(errs...)
}

// Validate checks everything needed to serve traffic.
func (c *Config) Validate() error {
	errs := []error{c.ValidatePlatform()}

	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("backend.base_url is required"))
	} else if err := validateAbsoluteURL(c.Backend.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("backend.base_url: %w", err))
	}
	if err := validateAbsoluteURL(c.Upstream.URL); err != nil {
		errs = append(errs, fmt.Errorf("upstream.url: %w", err))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend.timeout must not be negative"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	return errors.Join(errs...)
}

func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q must be an absolute URL", raw)
	}
	return nil
}

// =============================================================================
// Core Values
// =============================================================================

// Resolver builds the tenant resolver for this configuration.
func (c *Config) Resolver() tenant.Resolver {
	return tenant.NewResolver(c.Platform.Domain, c.Platform.PreviewDomains, c.Platform.ReservedSlugs)
}

// Policy builds the routing policy for this configuration.
func (c *Config) Policy() routing.Policy {
	p := routing.DefaultPolicy(c.Platform.Domain)
	p.Scheme = c.Platform.Scheme
	p.MarketingPrefix = c.Platform.MarketingPrefix
	p.OnboardingPrefix = c.Platform.OnboardingPrefix
	p.SuperAdminPrefix = c.Platform.SuperAdminPrefix
	p.Enforcement = routing.Enforcement(c.Router.Enforcement)
	return p
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
