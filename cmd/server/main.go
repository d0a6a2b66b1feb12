package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/dbgate/internal/admin"
	"github.com/hongminglow/dbgate/internal/audit"
	"github.com/hongminglow/dbgate/internal/auth"
	"github.com/hongminglow/dbgate/internal/backup"
	"github.com/hongminglow/dbgate/internal/config"
	"github.com/hongminglow/dbgate/internal/logging"
	"github.com/hongminglow/dbgate/internal/schema"
	"github.com/hongminglow/dbgate/internal/server"
	"github.com/hongminglow/dbgate/internal/storage/postgres"
	"github.com/hongminglow/dbgate/internal/storage/redisstore"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	ctx := context.Background()
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *logging.SlogLogger) error {
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		return err
	}

	var opts []auth.Option
	if cfg.RedisURL != "" {
		revocations, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer revocations.Close()
		opts = append(opts, auth.WithRevocationStore(revocations))
		logger.Info(ctx, "token revocation enabled")
	}
	authSvc := auth.NewService(store, tokens, auth.NewBcryptHasher(), opts...)

	if cfg.SeedUsersPath != "" {
		n, err := authSvc.SeedFromFile(ctx, cfg.SeedUsersPath)
		if err != nil {
			return err
		}
		logger.Info(ctx, "seeded users", "path", cfg.SeedUsersPath, "created", n)
	}

	target, err := cfg.DatabaseTarget()
	if err != nil {
		return err
	}
	backups := backup.NewManager(
		cfg.BackupDir,
		backup.NewPgRunner(cfg.PgDumpPath, cfg.PgRestorePath, target),
		logger.With("component", "backup"),
		backup.WithTimeout(cfg.BackupTimeout),
		backup.WithWorkers(cfg.BackupWorkers),
	)
	recorder := audit.NewRecorder(store, logger.With("component", "audit"))
	adminSvc := admin.NewService(authSvc, schema.NewGuard(store), store, backups, recorder, logger)

	srv := server.New(cfg, server.Deps{Auth: authSvc, Admin: adminSvc, DB: store, Log: logger})

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "dbgate listening", "addr", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info(ctx, "shutting down", "signal", sig.String())
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Warn(ctx, "graceful shutdown error", "err", err)
	}
	return nil
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
