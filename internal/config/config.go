package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits comma-separated values
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must() at load
// time; business settings fall back to sensible defaults so a development
// instance can start with only the secrets configured.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	// OpenRouter settings for the generation client.
	OpenRouterKey     string // API key sent as a bearer token
	OpenRouterBaseURL string // API base, default https://openrouter.ai/api/v1
	OpenRouterReferer string // HTTP-Referer header required by the provider
	OpenRouterSite    string // X-Title header required by the provider
	DefaultModel      string // model id used when a template has no preference

	// Business settings.
	FreeUsageLimit int      // free generations per actor before premium is required
	CORSOrigins    []string // allowed cross-origin request origins
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   intDefault("ACCESS_TOKEN_TTL_MIN", 30),
		RefreshTTLDays: intDefault("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:     intDefault("BCRYPT_COST", 12),

		OpenRouterKey:     must("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: getenv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterReferer: getenv("OPENROUTER_REFERER", "http://localhost:3000"),
		OpenRouterSite:    getenv("OPENROUTER_SITE_NAME", "FateWave"),
		DefaultModel:      getenv("DEFAULT_MODEL", "deepseek/deepseek-chat-v3-0324"),

		FreeUsageLimit: intDefault("FREE_USAGE_LIMIT", 50),
		CORSOrigins:    splitCSV(getenv("CORS_ORIGINS", "http://localhost:3000")),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intDefault reads an integer environment variable, falling back to def when
// the variable is unset.  An unparsable value is a fatal configuration error.
func intDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// splitCSV splits a comma-separated list and trims whitespace around each item.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
