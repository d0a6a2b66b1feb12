package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port         string
	DatabaseURL  string
	JWTSecret    string
	JWTAlgorithm string
	JWTIssuer    string
	JWTTTL       time.Duration
	CORSOrigins  []string
	LogLevel     string

	BackupDir     string
	PgDumpPath    string
	PgRestorePath string
	BackupTimeout time.Duration
	BackupWorkers int

	RedisURL          string
	SeedUsersPath     string
	AuthRatePerMinute int
}

// DatabaseTarget is the subset of the connection string the dump and restore
// utilities need.
type DatabaseTarget struct {
	Host     string
	Port     uint16
	User     string
	Password string
	Database string
}

var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTAlgorithm:  strings.ToUpper(fallback(os.Getenv("JWT_ALGORITHM"), "HS256")),
		JWTIssuer:     fallback(os.Getenv("JWT_ISSUER"), "dbgate"),
		CORSOrigins:   parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		LogLevel:      fallback(os.Getenv("LOG_LEVEL"), "info"),
		BackupDir:     fallback(os.Getenv("BACKUP_DIR"), "./backups"),
		PgDumpPath:    fallback(os.Getenv("PG_DUMP_PATH"), "pg_dump"),
		PgRestorePath: fallback(os.Getenv("PG_RESTORE_PATH"), "pg_restore"),
		RedisURL:      strings.TrimSpace(os.Getenv("REDIS_URL")),
		SeedUsersPath: strings.TrimSpace(os.Getenv("SEED_USERS_PATH")),
	}

	cfg.JWTTTL = time.Duration(positiveInt(os.Getenv("JWT_TTL_MINUTES"), 60)) * time.Minute
	cfg.BackupWorkers = positiveInt(os.Getenv("BACKUP_WORKERS"), 2)
	cfg.AuthRatePerMinute = positiveInt(os.Getenv("AUTH_RATE_PER_MINUTE"), 30)

	cfg.BackupTimeout = 10 * time.Minute
	if raw := strings.TrimSpace(os.Getenv("BACKUP_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid BACKUP_TIMEOUT %q", raw)
		}
		cfg.BackupTimeout = d
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if _, ok := supportedAlgorithms[cfg.JWTAlgorithm]; !ok {
		return Config{}, fmt.Errorf("unsupported JWT_ALGORITHM %q", cfg.JWTAlgorithm)
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// DatabaseTarget parses DatabaseURL into the connection parameters handed to
// pg_dump and pg_restore.
func (c Config) DatabaseTarget() (DatabaseTarget, error) {
	pc, err := pgconn.ParseConfig(c.DatabaseURL)
	if err != nil {
		return DatabaseTarget{}, fmt.Errorf("parse database url: %w", err)
	}
	return DatabaseTarget{
		Host:     pc.Host,
		Port:     pc.Port,
		User:     pc.User,
		Password: pc.Password,
		Database: pc.Database,
	}, nil
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return n
	}
	return def
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
