package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/dbgate/internal/admin"
	"github.com/hongminglow/dbgate/internal/audit"
	"github.com/hongminglow/dbgate/internal/auth"
	"github.com/hongminglow/dbgate/internal/backup"
	"github.com/hongminglow/dbgate/internal/config"
	"github.com/hongminglow/dbgate/internal/logging"
	"github.com/hongminglow/dbgate/internal/middleware"
	"github.com/hongminglow/dbgate/internal/schema"
	"github.com/hongminglow/dbgate/internal/storage/memory"
)

func testHandler(t *testing.T, cfg config.Config) (http.Handler, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	log := logging.NewJSON(&logs, "info")
	store := memory.NewStore()

	tokens, err := auth.NewTokenManager("secret", "HS256", "dbgate", time.Hour)
	require.NoError(t, err)
	authSvc := auth.NewService(store, tokens, auth.BcryptHasher{Cost: bcrypt.MinCost})
	runner := backup.NewPgRunner("pg_dump", "pg_restore", config.DatabaseTarget{Database: "test"})
	backups := backup.NewManager(filepath.Join(t.TempDir(), "backups"), runner, log)
	adminSvc := admin.NewService(authSvc, schema.NewGuard(store), store, backups, audit.NewRecorder(store, log), log)

	return Handler(cfg, Deps{Auth: authSvc, Admin: adminSvc, Log: log}), &logs
}

func TestHandler_Wiring(t *testing.T) {
	h, logs := testHandler(t, config.Config{CORSOrigins: []string{"https://admin.example.com"}, AuthRatePerMinute: 30})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Contains(t, logs.String(), `"path":"/health"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/backup/list", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/backup/list", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNew_WriteTimeoutCoversBackups(t *testing.T) {
	s := New(config.Config{Port: "0", BackupTimeout: 5 * time.Minute}, Deps{Log: logging.NewJSON(&bytes.Buffer{}, "info")})
	assert.Greater(t, s.inner.WriteTimeout, 5*time.Minute)
	assert.Equal(t, ":0", s.inner.Addr)
}
