package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Strings for identifiers and secrets, ints for
// durations and costs.  MySQL backs the identity store (users, refresh
// tokens); MongoDB backs the document store (favorites, profiles, settings).
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // MySQL username
	DBPass         string // MySQL password (optional)
	DBHost         string // MySQL host address
	DBPort         string // MySQL port number
	DBName         string // MySQL database name
	MongoURI       string // MongoDB connection URI
	MongoDB        string // MongoDB database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	PokeAPIBaseURL string // base URL of the upstream Pokémon REST API
	PokeAPIRPS     int    // client-side requests-per-second cap for the upstream
	PokeAPIRetries int    // max retries on 429/5xx upstream responses

	DetailTTL        time.Duration // wall-clock lifetime of memoized detail entries
	DetailMaxEntries int           // bound on memoized detail entries before eviction
	PageSize         int           // default catalog page size
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Upstream and cache
// knobs fall back to sane defaults so a minimal .env still boots.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getenv("MONGO_DB", "pokedex"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		PokeAPIBaseURL: getenv("POKEAPI_BASE_URL", "https://pokeapi.co/api/v2"),
		PokeAPIRPS:     atoiDef(getenv("POKEAPI_RPS", "10"), 10),
		PokeAPIRetries: atoiDef(getenv("POKEAPI_MAX_RETRIES", "3"), 3),

		DetailTTL:        parseDur(getenv("DETAIL_CACHE_TTL", "24h")),
		DetailMaxEntries: atoiDef(getenv("DETAIL_CACHE_MAX_ENTRIES", "500"), 500),
		PageSize:         atoiDef(getenv("CATALOG_PAGE_SIZE", "20"), 20),
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func atoiDef(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
