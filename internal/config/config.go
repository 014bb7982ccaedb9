package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration values. Each field maps to
// an environment variable. Strings for identifiers and secrets, ints
// for durations and costs; optional collaborators (queue, redis) have
// their own loaders and may be absent at runtime.
type Config struct {
	Env              string   // application environment ("dev", "prod")
	Port             string   // HTTP port to listen on
	DBUser           string   // database username
	DBPass           string   // database password (optional)
	DBHost           string   // database host address
	DBPort           string   // database port number
	DBName           string   // database name
	JWTSecret        string   // secret used to sign JWTs
	AccessTTLMin     int      // access token time-to-live in minutes
	RefreshTTLDays   int      // refresh token time-to-live in days
	BcryptCost       int      // bcrypt cost for password hashing
	QueueURL         string   // AMQP broker URL (optional; events disabled when empty)
	SupportedLocales []string // locales the service can render, first entry is the default
}

// Load reads configuration from the environment and returns a
// Config. Required variables are enforced by must(); a missing one
// exits the process with a fatal log message so misconfiguration is
// caught at startup, not on the first request.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"), // empty password allowed for local dev
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		AccessTTLMin:     mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:   mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:       mustInt("BCRYPT_COST"),
		QueueURL:         os.Getenv("QUEUE_URL"),
		SupportedLocales: splitLocales(getenv("SUPPORTED_LOCALES", "en,es")),
	}
}

// DefaultLocale returns the first supported locale, the one used
// when no Accept-Language preference can be honored.
func (c Config) DefaultLocale() string {
	if len(c.SupportedLocales) == 0 {
		return "en"
	}
	return c.SupportedLocales[0]
}

func splitLocales(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// must retrieves the value of a required environment variable. If
// the variable is unset or empty the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer, exiting on conversion failure.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
