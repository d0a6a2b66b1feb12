package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://admin:admin@db:5432/ultragedy?sslmode=disable")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, "dbgate", cfg.JWTIssuer)
	assert.Equal(t, 60*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "./backups", cfg.BackupDir)
	assert.Equal(t, "pg_dump", cfg.PgDumpPath)
	assert.Equal(t, "pg_restore", cfg.PgRestorePath)
	assert.Equal(t, 10*time.Minute, cfg.BackupTimeout)
	assert.Equal(t, 2, cfg.BackupWorkers)
	assert.Equal(t, 30, cfg.AuthRatePerMinute)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("JWT_TTL_MINUTES", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, http://127.0.0.1:3000 ,")
	t.Setenv("BACKUP_TIMEOUT", "90s")
	t.Setenv("BACKUP_WORKERS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "HS512", cfg.JWTAlgorithm)
	assert.Equal(t, 5*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 90*time.Second, cfg.BackupTimeout)
	assert.Equal(t, 4, cfg.BackupWorkers)
}

func TestLoad_InvalidTTLFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_TTL_MINUTES", "-3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, cfg.JWTTTL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": "", "JWT_SECRET": "s"}},
		{"missing secret", map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": ""}},
		{"bad algorithm", map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "s", "JWT_ALGORITHM": "RS256"}},
		{"bad timeout", map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "s", "BACKUP_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestDatabaseTarget(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://admin:s3cret@db:6543/ultragedy?sslmode=disable"}

	target, err := cfg.DatabaseTarget()
	require.NoError(t, err)

	assert.Equal(t, DatabaseTarget{
		Host:     "db",
		Port:     6543,
		User:     "admin",
		Password: "s3cret",
		Database: "ultragedy",
	}, target)
}
