package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPass      string
	DBName      string
	SQLitePath  string
	RedisURL    string

	JWTSecret string
	JWTTTL    time.Duration

	RawgAPIKey  string
	RawgBaseURL string

	TwitchClientID     string
	TwitchClientSecret string
	TwitchTokenURL     string
	IGDBBaseURL        string
	IGDBTokenTTL       time.Duration

	OutboundTimeout time.Duration

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryURL          string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	RateLimitContent time.Duration
	XPWorkerInterval time.Duration

	LogLevel  string
	LogFormat string

	SeedAdminEmail    string
	SeedAdminPassword string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "3000"),
		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", getEnv("FRONTEND_URL", "http://localhost:5173"))),

		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPass:      os.Getenv("DB_PASS"),
		DBName:      getEnv("DB_NAME", "mymemorycard"),
		SQLitePath:  getEnv("SQLITE_PATH", "mymemorycard.db"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RawgAPIKey:  os.Getenv("RAWG_API_KEY"),
		RawgBaseURL: getEnv("RAWG_BASE_URL", "https://api.rawg.io/api"),

		TwitchClientID:     os.Getenv("TWITCH_CLIENT_ID"),
		TwitchClientSecret: os.Getenv("TWITCH_CLIENT_SECRET"),
		TwitchTokenURL:     getEnv("TWITCH_TOKEN_URL", "https://id.twitch.tv/oauth2/token"),
		IGDBBaseURL:        getEnv("IGDB_BASE_URL", "https://api.igdb.com/v4"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "mymemorycard"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		SeedAdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"JWT_TTL", "168h", &cfg.JWTTTL},
		{"IGDB_TOKEN_TTL", "1416h", &cfg.IGDBTokenTTL},
		{"OUTBOUND_TIMEOUT", "10s", &cfg.OutboundTimeout},
		{"RATE_LIMIT_CONTENT", "3s", &cfg.RateLimitContent},
		{"XP_WORKER_INTERVAL", "30s", &cfg.XPWorkerInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "change-me"
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// IGDBEnabled reports whether cover enrichment has credentials.
func (c *Config) IGDBEnabled() bool {
	return c.TwitchClientID != "" && c.TwitchClientSecret != ""
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryURL != "" || (c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != "")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
