package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sableforge/gatekeeper/pkg/jwtx"
)

type Config struct {
	Issuer   string   // iss claim on minted tokens
	Audience []string // aud claim on minted tokens, first entry is canonical

	KeyID          string // kid for the active signing key
	PrivateKeyFile string // PEM file with the RSA signing key; empty = ephemeral dev key
	RSABits        int    // key size when generating an ephemeral key

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	DatabaseFile string // path to SQLite database file
	PepperFile   string // path to the password-hash pepper file

	// Optional one-shot bootstrap of the first admin account. All three
	// must be set for it to run.
	BootstrapAdminEmail    string
	BootstrapAdminName     string
	BootstrapAdminPassword string

	Env                  string
	LogLevel             string
	LogFormat            string
	Port                 int
	ShutdownGracePeriod  time.Duration
	HousekeepingInterval time.Duration
}

func LoadConfig() Config {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg := Config{
		Issuer:         getEnvOrDefault("AUTH_ISSUER", "gatekeeper"),
		KeyID:          getEnvOrDefault("AUTH_KEY_ID", "gatekeeper-1"),
		PrivateKeyFile: os.Getenv("AUTH_PRIVATE_KEY_FILE"),
		RSABits:        getEnvIntOrDefault("AUTH_RSA_BITS", 2048),

		AccessTokenTTL:  getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "gatekeeper.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminName:     getEnvOrDefault("BOOTSTRAP_ADMIN_NAME", "Administrator"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	aud := getEnvOrDefault("AUTH_AUDIENCE", "gatekeeper-api")
	for _, a := range strings.Split(aud, ",") {
		if a = strings.TrimSpace(a); a != "" {
			cfg.Audience = append(cfg.Audience, a)
		}
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
