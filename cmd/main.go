package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dtroode/heartcare-server/internal/api/cli/handler"
	"github.com/dtroode/heartcare-server/internal/api/cli/router"
	"github.com/dtroode/heartcare-server/internal/api/cli/server"
	"github.com/dtroode/heartcare-server/internal/api/cli/session"
	"github.com/dtroode/heartcare-server/internal/classifier"
	"github.com/dtroode/heartcare-server/internal/config"
	"github.com/dtroode/heartcare-server/internal/logger"
	"github.com/dtroode/heartcare-server/internal/model"
	"github.com/dtroode/heartcare-server/internal/repository/jsonfile"
	"github.com/dtroode/heartcare-server/internal/repository/postgres"
	"github.com/dtroode/heartcare-server/internal/service"
	localstorage "github.com/dtroode/heartcare-server/internal/storage/local"
	miniostorage "github.com/dtroode/heartcare-server/internal/storage/minio"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	logAppVersion(logger)

	artifacts, err := newArtifactStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize artifact storage", "error", err)
	}

	users, closeStore, err := newUserStore(ctx, cfg, artifacts, logger)
	if err != nil {
		logger.Fatal("failed to initialize user store", "error", err)
	}
	defer closeStore()

	if err := users.EnsureInitialized(ctx); err != nil {
		logger.Fatal("failed to initialize user store", "error", err)
	}

	ecg, err := newClassifier(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize classifier", "error", err)
	}

	authService := service.NewAuth(users, logger)
	analysisService := service.NewAnalysis(users, artifacts, ecg, logger)

	holder := session.NewHolder()
	terminal := server.NewTerminal(os.Stdin, os.Stdout)

	authHandler := handler.NewAuth(authService, holder, terminal, os.Stdout, logger)
	analysisHandler := handler.NewAnalysis(analysisService, os.Stdout, logger)
	mux := router.New(authHandler, analysisHandler, holder, os.Stdout, logger).Register()

	repl := server.NewREPL(mux, terminal, holder, os.Stdout, logger)

	done := make(chan error, 1)
	go func() {
		done <- repl.Start(ctx)
	}()

	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			logger.Error("terminal session failed", "error", err)
		}
	case <-ctx.Done():
		// A blocked terminal read cannot be interrupted; store writes are
		// atomic so leaving it behind is safe.
		logger.Info("received interruption signal, shutting down")
	}

	logger.Info("shutdown complete")
}

func newArtifactStorage(ctx context.Context, cfg *config.Config) (model.ArtifactStorage, error) {
	if cfg.Storage.Backend != config.BackendMinio {
		return localstorage.NewClient(cfg.Storage.UploadDir), nil
	}

	minioClient, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return miniostorage.NewClient(ctx, minioClient, cfg.Minio.Bucket)
}

func newUserStore(
	ctx context.Context,
	cfg *config.Config,
	artifacts model.ArtifactStorage,
	logger *logger.Logger,
) (model.UserStore, func(), error) {
	if cfg.Store.Backend != config.BackendPostgres {
		return jsonfile.NewUserRepository(cfg.Store.UsersFile, artifacts, logger), func() {}, nil
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN, logger)
	if err != nil {
		return nil, nil, err
	}

	return postgres.NewUserRepository(db, artifacts, logger), func() { _ = db.Close() }, nil
}

func newClassifier(cfg *config.Config, logger *logger.Logger) (model.Classifier, error) {
	if cfg.Classifier.URL == "" {
		logger.Warn("classifier URL not set, results will be recorded as " + string(model.LabelUnavailable))
		return classifier.Unavailable{}, nil
	}

	c, err := classifier.NewClient(cfg.Classifier.URL, cfg.Classifier.Model, &http.Client{}, logger)
	if err != nil {
		return nil, err
	}

	return classifier.WithTimeout(c, cfg.Classifier.Timeout), nil
}

func logAppVersion(logger *logger.Logger) {
	logger.Info("starting heartcare",
		"version", buildVersion,
		"date", buildDate,
		"commit", buildCommit)
}
