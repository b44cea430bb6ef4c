package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Gem sources and geocoders selectable via GEMS_SOURCE and GEOCODER.
const (
	SourceAPI      = "api"
	SourceSupabase = "supabase"

	GeocoderGoogle = "google"
	GeocoderMapbox = "mapbox"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Gem list/create collaborator.
	GemsSource     string
	GemsAPIURL     string
	SupabaseURL    string
	SupabaseKey    string
	SupabaseTable  string
	SupabaseBucket string
	AuthJWTSecret  string

	// Lookup providers.
	GoogleMapsAPIKey  string
	Geocoder          string
	MapboxToken       string
	LookupTimeout     time.Duration
	PhotoRateLimit    int
	PhotoMaxWidth     int
	EnrichConcurrency int

	MaxImageBytes   int64
	RefreshInterval time.Duration // 0 disables periodic refresh

	// Event stream; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	lookupTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("LOOKUP_TIMEOUT", "5s"))
	if err != nil || lookupTimeout <= 0 {
		return nil, errors.New("invalid LOOKUP_TIMEOUT")
	}

	photoRate, err := parsePositiveInt("PHOTO_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	photoWidth, err := parsePositiveInt("PHOTO_MAX_WIDTH", 800)
	if err != nil {
		return nil, err
	}
	concurrency, err := parsePositiveInt("ENRICH_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}
	maxImage, err := parsePositiveInt("MAX_IMAGE_BYTES", 5*1024*1024)
	if err != nil {
		return nil, err
	}

	refresh, err := time.ParseDuration(sharedcfg.EnvOrDefault("REFRESH_INTERVAL", "0s"))
	if err != nil || refresh < 0 {
		return nil, errors.New("invalid REFRESH_INTERVAL")
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GemsSource:     strings.ToLower(sharedcfg.EnvOrDefault("GEMS_SOURCE", SourceAPI)),
		GemsAPIURL:     strings.TrimRight(sharedcfg.EnvOrDefault("GEMS_API_URL", "http://localhost:5000/api"), "/"),
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		SupabaseTable:  sharedcfg.EnvOrDefault("SUPABASE_TABLE", "hidden_gems"),
		SupabaseBucket: sharedcfg.EnvOrDefault("SUPABASE_BUCKET", "hidden-gems"),
		AuthJWTSecret:  os.Getenv("AUTH_JWT_SECRET"),

		GoogleMapsAPIKey:  os.Getenv("GOOGLE_MAPS_API_KEY"),
		Geocoder:          strings.ToLower(sharedcfg.EnvOrDefault("GEOCODER", GeocoderGoogle)),
		MapboxToken:       os.Getenv("MAPBOX_TOKEN"),
		LookupTimeout:     lookupTimeout,
		PhotoRateLimit:    photoRate,
		PhotoMaxWidth:     photoWidth,
		EnrichConcurrency: concurrency,

		MaxImageBytes:   int64(maxImage),
		RefreshInterval: refresh,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "hidden-gems-events"),
	}

	switch cfg.GemsSource {
	case SourceAPI:
		if cfg.GemsAPIURL == "" {
			return nil, errors.New("GEMS_API_URL is required when GEMS_SOURCE=api")
		}
	case SourceSupabase:
	default:
		return nil, fmt.Errorf("invalid GEMS_SOURCE %q", cfg.GemsSource)
	}

	switch cfg.Geocoder {
	case GeocoderGoogle:
	case GeocoderMapbox:
		if cfg.MapboxToken == "" {
			return nil, errors.New("GEOCODER is mapbox but MAPBOX_TOKEN is not set")
		}
	default:
		return nil, fmt.Errorf("invalid GEOCODER %q", cfg.Geocoder)
	}

	if (cfg.SupabaseURL == "") != (cfg.SupabaseKey == "") {
		return nil, errors.New("SUPABASE_URL and SUPABASE_KEY must be set together")
	}
	if cfg.GemsSource == SourceSupabase && cfg.SupabaseURL == "" {
		return nil, errors.New("GEMS_SOURCE is supabase but SUPABASE_URL is not set")
	}

	return cfg, nil
}

// SupabaseEnabled reports whether Supabase credentials are configured.
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// EventsEnabled reports whether gem events are published to Kafka.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
