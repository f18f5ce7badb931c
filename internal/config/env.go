package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string

	JWTSecret string
	JWTExpiry time.Duration

	FrontendURL string

	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	GeminiAPIKey string
	GenModel     string
}

// LoadConfig loads the environment variables and returns the config.
// Optional external API keys may be absent; the corresponding clients then
// run in simulated mode instead of failing at startup.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Port:               getEnv("PORT", "3001"),
		Env:                getEnv("APP_ENV", "development"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpiry:          getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		OpenWeatherAPIKey:  getEnv("OPENWEATHERMAP_API_KEY", ""),
		OpenWeatherBaseURL: getEnv("OPENWEATHERMAP_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GenModel:           getEnv("GEN_MODEL", "gemini-1.5-flash"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	return cfg
}

// Development reports whether error details may be exposed in responses.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	// Accept either a Go duration ("24h") or a plain number of hours.
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Hour
	}
	log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
	return def
}
