package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	KeyModeGlobal = "global"
	KeyModeIP     = "ip"

	// MaxNodeID is the largest snowflake node ID (10 node bits).
	MaxNodeID = 1023
)

type Config struct {
	Addr       string
	Env        string
	CORSOrigin string
	LogLevel   string
	NodeID     int64
	MaxConns   int

	Store       string
	DBPath      string
	PostgresDSN string
	StaticDir   string
	Swagger     bool

	RedisURL     string
	RateLimit    int
	RateWindow   time.Duration
	RateKey      string
	RateKeyMode  string
	RateTimeout  time.Duration
	JanitorEvery time.Duration
	TrustProxy   bool
}

// IsProduction reports whether the process runs with NOTES_ENV=production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func Load() Config {
	addr := os.Getenv("NOTES_ADDR")
	if addr == "" {
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			addr = ":" + port
		} else {
			addr = ":5001"
		}
	}
	path := os.Getenv("NOTES_DB_PATH")
	if path == "" {
		path = "./data/notes.db"
	}
	staticDir := os.Getenv("NOTES_STATIC_DIR")
	if staticDir == "" {
		staticDir = detectStaticDir()
	}
	store := strings.ToLower(strings.TrimSpace(os.Getenv("NOTES_STORE")))
	if store != StorePostgres {
		store = StoreSQLite
	}
	keyMode := strings.ToLower(strings.TrimSpace(os.Getenv("NOTES_RATE_KEY_MODE")))
	if keyMode != KeyModeIP {
		keyMode = KeyModeGlobal
	}

	return Config{
		Addr:       addr,
		Env:        envDefault("NOTES_ENV", "development"),
		CORSOrigin: envDefault("NOTES_CORS_ORIGIN", "http://localhost:5173"),
		LogLevel:   envDefault("NOTES_LOG_LEVEL", "info"),
		NodeID:     int64(envIntRange("NOTES_NODE_ID", 0, 0, MaxNodeID)),
		MaxConns:   envIntRange("NOTES_MAX_CONNS", 0, 0, 1<<20),

		Store:       store,
		DBPath:      filepath.Clean(path),
		PostgresDSN: os.Getenv("NOTES_POSTGRES_DSN"),
		StaticDir:   filepath.Clean(staticDir),
		Swagger:     envBool("NOTES_SWAGGER", false),

		RedisURL:     strings.TrimSpace(os.Getenv("NOTES_REDIS_URL")),
		RateLimit:    envInt("NOTES_RATE_LIMIT", 100),
		RateWindow:   envDuration("NOTES_RATE_WINDOW", time.Minute),
		RateKey:      envDefault("NOTES_RATE_KEY", "my-limit-key"),
		RateKeyMode:  keyMode,
		RateTimeout:  envDuration("NOTES_RATE_TIMEOUT", 2*time.Second),
		JanitorEvery: envDuration("NOTES_RATE_JANITOR_INTERVAL", 5*time.Minute),
		TrustProxy:   envBool("NOTES_TRUST_PROXY", false),
	}
}

func envDefault(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(name)))
	if err != nil {
		return fallback
	}
	return v
}

// envIntRange is envInt restricted to [lo, hi]; out-of-range values use fallback.
func envIntRange(name string, fallback, lo, hi int) int {
	v := envInt(name, fallback)
	if v < lo || v > hi {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(name)))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(name string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(name)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func detectStaticDir() string {
	candidates := []string{
		"./frontend/dist",
		"../frontend/dist",
	}
	for _, candidate := range candidates {
		indexPath := filepath.Join(candidate, "index.html")
		if info, err := os.Stat(indexPath); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return "./frontend/dist"
}
