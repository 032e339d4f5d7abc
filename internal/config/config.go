package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageFile     = "file"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	apiPathPrefix = "API_PATH_"
)

type Config struct {
	App       AppConfig
	API       APIConfig
	Session   SessionConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Scheduler SchedulerConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	// BridgeToken, when set, must be presented as a bearer token by every bridge client.
	BridgeToken string
}

type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// PathOverrides maps an endpoint name, taken from API_PATH_<NAME>, to its path.
	PathOverrides map[string]string
}

type SessionConfig struct {
	Storage string
	Dir     string
	Secret  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Prefix   string
}

// DatabaseConfig locates the Postgres database used by the postgres session storage. URL, when
// set, takes precedence over the individual fields.
type DatabaseConfig struct {
	URL            string
	DBHost         string
	DBPort         string
	DBName         string
	DBUser         string
	DBPassword     string
	DBSSLMode      string
	ConnectTimeout time.Duration
	PoolMaxConns   int32
	Table          string
}

type SchedulerConfig struct {
	RefreshSchedule string
}

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")
)

// LoadDotEnv loads variables from .env style files without overriding the environment. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func Load() (Config, error) {
	cfg := Config{}

	var missing, invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		return v
	}
	duration := func(key string, def time.Duration) time.Duration {
		v := opt(key, "")
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			invalid = append(invalid, key)
			return def
		}
		return d
	}
	integer := func(key string, def int) int {
		v := opt(key, "")
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			invalid = append(invalid, key)
			return def
		}
		return n
	}

	cfg.App = AppConfig{
		AppName:     opt("APP_NAME", "hirepath"),
		Environment: opt("APP_ENV", "development"),
		HTTPPort:    opt("HTTP_PORT", "8787"),
		BridgeToken: opt("BRIDGE_TOKEN", ""),
	}

	cfg.API = APIConfig{
		BaseURL:       strings.TrimRight(req("API_BASE_URL"), "/"),
		Timeout:       duration("API_TIMEOUT", 15*time.Second),
		UserAgent:     opt("API_USER_AGENT", "hirepath/1.0"),
		PathOverrides: pathOverrides(os.Environ()),
	}

	cfg.Session = SessionConfig{
		Storage: strings.ToLower(opt("SESSION_STORAGE", StorageFile)),
		Dir:     opt("SESSION_FILE", defaultSessionDir()),
		Secret:  opt("SESSION_SECRET", ""),
	}
	switch cfg.Session.Storage {
	case StorageFile, StorageRedis, StorageMemory, StoragePostgres:
	default:
		invalid = append(invalid, "SESSION_STORAGE")
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST", "localhost"),
		Port:     opt("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD", ""),
		DB:       integer("REDIS_DB", 0),
		Prefix:   opt("REDIS_PREFIX", "hirepath:"),
	}

	cfg.Database = DatabaseConfig{
		URL:            opt("DATABASE_URL", ""),
		DBHost:         opt("DB_HOST", "localhost"),
		DBPort:         opt("DB_PORT", "5432"),
		DBName:         opt("DB_NAME", "hirepath"),
		DBUser:         opt("DB_USER", ""),
		DBPassword:     opt("DB_PASSWORD", ""),
		DBSSLMode:      opt("DB_SSL_MODE", "disable"),
		ConnectTimeout: duration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:   int32(integer("DB_POOL_MAX_CONNS", 4)),
		Table:          opt("SESSION_TABLE", "hirepath_session_kv"),
	}

	cfg.Scheduler = SchedulerConfig{
		RefreshSchedule: opt("REFRESH_SCHEDULE", "@every 1m"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func pathOverrides(environ []string) map[string]string {
	out := make(map[string]string)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, apiPathPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(k, apiPathPrefix))
		if v = strings.TrimSpace(v); name != "" && v != "" {
			out[name] = v
		}
	}
	return out
}

func defaultSessionDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "hirepath")
	}
	return filepath.Join(dir, "hirepath")
}
