// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/stelios-avg/locom/internal/domain/geo"
	"github.com/stelios-avg/locom/internal/domain/municipality"
)

// Config holds all application configuration
type Config struct {
	Environment  string
	Server       ServerConfig
	Database     DatabaseConfig
	NATS         NATSConfig
	Redis        RedisConfig
	Feed         FeedConfig
	Moderation   ModerationConfig
	RateLimit    RateLimitConfig
	Municipality MunicipalityConfig
	Cache        CacheConfig
	Admin        AdminConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration. An empty host selects the in-memory store.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxLifetime  time.Duration
	SSLMode      string
	AutoMigrate  bool
}

// NATSConfig holds NATS configuration. An empty URL disables event publishing.
type NATSConfig struct {
	URL            string
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// RedisConfig holds Redis configuration. An empty address disables rate limiting.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// FeedConfig holds radius selection and paging configuration
type FeedConfig struct {
	DefaultRadius    float64
	MaxRadius        float64
	DefaultLatitude  float64
	DefaultLongitude float64
	PageSize         int
	AdminPageSize    int
	AutoApprove      bool
}

// ModerationConfig holds content filter configuration
type ModerationConfig struct {
	// DenylistFile replaces the built-in denylist when set
	DenylistFile string
}

// RateLimitConfig holds per-user creation limits
type RateLimitConfig struct {
	PostsPerWindow    int
	CommentsPerWindow int
	Window            time.Duration
}

// MunicipalityConfig holds feed import configuration
type MunicipalityConfig struct {
	FeedURL      string
	SyncSecret   string
	OwnerID      string
	Location     string
	ServiceDSN   string
	SyncInterval time.Duration
	HTTPTimeout  time.Duration
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	ProfileTTL time.Duration
}

// AdminConfig lists the moderator identities
type AdminConfig struct {
	UserIDs []string
}

// Load loads configuration from a .env file, if present, and the environment
func Load() (Config, error) {
	// A missing .env is fine outside development
	_ = godotenv.Load()

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", ""),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "locom"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			AutoMigrate:  getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			SubjectPrefix:  getEnv("NATS_SUBJECT_PREFIX", "locom"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Feed: FeedConfig{
			DefaultRadius:    getEnvAsFloat("FEED_DEFAULT_RADIUS_KM", 5.0),
			MaxRadius:        getEnvAsFloat("FEED_MAX_RADIUS_KM", 100.0),
			DefaultLatitude:  getEnvAsFloat("FEED_DEFAULT_LATITUDE", 35.1856),
			DefaultLongitude: getEnvAsFloat("FEED_DEFAULT_LONGITUDE", 33.3823),
			PageSize:         getEnvAsInt("FEED_PAGE_SIZE", 50),
			AdminPageSize:    getEnvAsInt("FEED_ADMIN_PAGE_SIZE", 100),
			AutoApprove:      getEnvAsBool("FEED_AUTO_APPROVE", true),
		},
		Moderation: ModerationConfig{
			DenylistFile: getEnv("MODERATION_DENYLIST_FILE", ""),
		},
		RateLimit: RateLimitConfig{
			PostsPerWindow:    getEnvAsInt("RATE_LIMIT_POSTS", 10),
			CommentsPerWindow: getEnvAsInt("RATE_LIMIT_COMMENTS", 30),
			Window:            getEnvAsDuration("RATE_LIMIT_WINDOW", time.Hour),
		},
		Municipality: MunicipalityConfig{
			FeedURL:      getEnv("MUNICIPALITY_FEED_URL", ""),
			SyncSecret:   getEnv("MUNICIPALITY_SYNC_SECRET", ""),
			OwnerID:      getEnv("MUNICIPALITY_USER_ID", ""),
			Location:     getEnv("MUNICIPALITY_LOCATION", ""),
			ServiceDSN:   getEnv("MUNICIPALITY_SERVICE_DSN", ""),
			SyncInterval: getEnvAsDuration("MUNICIPALITY_SYNC_INTERVAL", 0),
			HTTPTimeout:  getEnvAsDuration("MUNICIPALITY_HTTP_TIMEOUT", 20*time.Second),
		},
		Cache: CacheConfig{
			ProfileTTL: getEnvAsDuration("CACHE_PROFILE_TTL", 5*time.Minute),
		},
		Admin: AdminConfig{
			UserIDs: getEnvAsSlice("ADMIN_USER_IDS", nil),
		},
	}

	return config, validate(config)
}

// DSN returns the Postgres connection URL
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// Enabled reports whether a database is configured
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// DefaultObserver returns the fallback observer coordinate
func (c FeedConfig) DefaultObserver() geo.Coordinate {
	return geo.Coordinate{Latitude: c.DefaultLatitude, Longitude: c.DefaultLongitude}
}

// ParsedLocation returns the configured municipality location, or nil when unset
func (c MunicipalityConfig) ParsedLocation() (*municipality.Location, error) {
	if c.Location == "" {
		return nil, nil
	}
	return municipality.ParseLocation(c.Location)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Municipality.FeedURL != "" && config.Municipality.SyncSecret == "" && config.Environment != "development" {
		return fmt.Errorf("municipality sync secret must be set in non-development environments")
	}

	if _, err := config.Municipality.ParsedLocation(); err != nil {
		return fmt.Errorf("invalid MUNICIPALITY_LOCATION: %w", err)
	}

	if config.Feed.DefaultRadius <= 0 || config.Feed.MaxRadius < config.Feed.DefaultRadius {
		return fmt.Errorf("feed radius bounds are inconsistent: default %.1f, max %.1f",
			config.Feed.DefaultRadius, config.Feed.MaxRadius)
	}

	if !config.Feed.DefaultObserver().Valid() {
		return fmt.Errorf("default feed coordinate is out of range")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
