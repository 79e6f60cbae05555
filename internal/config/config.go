// Package config loads and validates gateway configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Site      SiteConfig      `mapstructure:"site"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// SiteConfig describes the public site the edge fronts.
type SiteConfig struct {
	// BaseURL is the canonical origin, e.g. https://salambumi.xyz.
	BaseURL string `mapstructure:"base_url"`
	// Name fills og:site_name and page titles.
	Name string `mapstructure:"name"`
	// PlaceholderImage backs listings without photos.
	PlaceholderImage string `mapstructure:"placeholder_image"`
}

// SupabaseConfig points at the backing store's REST endpoint.
type SupabaseConfig struct {
	URL             string `mapstructure:"url"`
	AnonKey         string `mapstructure:"anon_key"`
	PropertiesTable string `mapstructure:"properties_table"`
	LeadsTable      string `mapstructure:"leads_table"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
}

// GeminiConfig configures the description-generation client.
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// TierLimit is one rate-limit budget.
type TierLimit struct {
	WindowMs    int `mapstructure:"window_ms"`
	MaxRequests int `mapstructure:"max_requests"`
}

// RateLimitConfig holds the per-tier budgets.
type RateLimitConfig struct {
	Default TierLimit `mapstructure:"default"`
	API     TierLimit `mapstructure:"api"`
	Upload  TierLimit `mapstructure:"upload"`
}

// CORSConfig whitelists browser origins for the API routes.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig guards the admin-only endpoints.
type AuthConfig struct {
	AdminAPIKey string `mapstructure:"admin_api_key"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("site.base_url", "https://salambumi.xyz")
	v.SetDefault("site.name", "Salam Bumi Property")
	v.SetDefault("site.placeholder_image", "https://images.unsplash.com/photo-1560518883-ce09059eeffa?w=800&h=600&fit=crop")
	v.SetDefault("supabase.properties_table", "properties")
	v.SetDefault("supabase.leads_table", "lead_captures")
	v.SetDefault("supabase.timeout_seconds", 10)
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.timeout_seconds", 30)
	v.SetDefault("ratelimit.default.window_ms", 60000)
	v.SetDefault("ratelimit.default.max_requests", 100)
	v.SetDefault("ratelimit.api.window_ms", 60000)
	v.SetDefault("ratelimit.api.max_requests", 30)
	v.SetDefault("ratelimit.upload.window_ms", 60000)
	v.SetDefault("ratelimit.upload.max_requests", 10)
	v.SetDefault("cors.allowed_origins", []string{
		"https://salambumi.xyz",
		"https://www.salambumi.xyz",
		"http://localhost:5173",
		"http://localhost:3000",
		"http://localhost:4173",
	})
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url must be set")
	}
	if c.Supabase.TimeoutSeconds <= 0 {
		return fmt.Errorf("supabase.timeout_seconds must be > 0")
	}
	for name, tier := range map[string]TierLimit{
		"default": c.RateLimit.Default,
		"api":     c.RateLimit.API,
		"upload":  c.RateLimit.Upload,
	} {
		if tier.WindowMs <= 0 {
			return fmt.Errorf("ratelimit.%s.window_ms must be > 0", name)
		}
		if tier.MaxRequests <= 0 {
			return fmt.Errorf("ratelimit.%s.max_requests must be > 0", name)
		}
	}
	return nil
}

// SupabaseTimeout converts the configured seconds into a duration.
func (c Config) SupabaseTimeout() time.Duration {
	return time.Duration(c.Supabase.TimeoutSeconds) * time.Second
}

// GeminiTimeout converts the configured seconds into a duration.
func (c Config) GeminiTimeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}
