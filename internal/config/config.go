package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env          string
	Port         string
	RealtimePort string
	DatabaseURL  string
	RedisURL     string
	CORSOrigin   string
	LogLevel     string

	AuthProvider            string // firebase | hmac
	FirebaseCredentialsFile string
	FirebaseProjectID       string
	AuthHMACSecret          string
	AuthHMACIssuer          string
	TokenCacheTTL           time.Duration

	EventsPollInterval time.Duration
	EventsChannel      string

	HealthAdminKeyHash string // bcrypt hash of the key accepted by POST /health/reset
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8000")
	v.SetDefault("REALTIME_PORT", "8001")
	v.SetDefault("CORS_ORIGIN", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUTH_PROVIDER", "firebase")
	v.SetDefault("AUTH_HMAC_ISSUER", "dwello")
	v.SetDefault("TOKEN_CACHE_TTL", "5m")
	v.SetDefault("EVENTS_POLL_INTERVAL", "1s")
	v.SetDefault("EVENTS_CHANNEL", "dwello:events")

	env := v.GetString("NODE_ENV")
	if env == "" {
		env = v.GetString("APP_ENV")
	}
	if env == "" {
		env = "development"
	}

	return &Config{
		Env:                     env,
		Port:                    v.GetString("PORT"),
		RealtimePort:            v.GetString("REALTIME_PORT"),
		DatabaseURL:             v.GetString("DATABASE_URL"),
		RedisURL:                v.GetString("REDIS_URL"),
		CORSOrigin:              v.GetString("CORS_ORIGIN"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		AuthProvider:            strings.ToLower(v.GetString("AUTH_PROVIDER")),
		FirebaseCredentialsFile: v.GetString("FIREBASE_CREDENTIALS_FILE"),
		FirebaseProjectID:       v.GetString("FIREBASE_PROJECT_ID"),
		AuthHMACSecret:          v.GetString("AUTH_HMAC_SECRET"),
		AuthHMACIssuer:          v.GetString("AUTH_HMAC_ISSUER"),
		TokenCacheTTL:           v.GetDuration("TOKEN_CACHE_TTL"),
		EventsPollInterval:      v.GetDuration("EVENTS_POLL_INTERVAL"),
		EventsChannel:           v.GetString("EVENTS_CHANNEL"),
		HealthAdminKeyHash:      v.GetString("HEALTH_ADMIN_KEY_HASH"),
	}, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
