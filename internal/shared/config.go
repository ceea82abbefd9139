package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	// terminal client
	SearchAPIURL string
	SearchRPS    int
	SessionID    string

	// importer
	ImportFile    string
	ImportWorkers int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/trip?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", 0),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		SearchAPIURL:  env("SEARCH_API_URL", "http://localhost:8080"),
		SearchRPS:     atoi("SEARCH_RPS", 5),
		SessionID:     env("SESSION_ID", ""),
		ImportFile:    env("IMPORT_FILE", ""),
		ImportWorkers: atoi("IMPORT_WORKERS", 8),
	}
	if c.SessionID == "" {
		c.SessionID = defaultSessionID()
	}
	if c.ImportWorkers <= 0 {
		c.ImportWorkers = 1
	}
	return c
}

// defaultSessionID is stable for one user on one machine, so history and
// favorites survive restarts without SESSION_ID being set.
func defaultSessionID() string {
	host, _ := os.Hostname()
	home, _ := os.UserHomeDir()
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("trip_hotel:"+host+":"+home)).String()
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
