package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/anonto42/cookbook/backend/internal/handlers"
	"github.com/anonto42/cookbook/backend/internal/router"
	"github.com/anonto42/cookbook/backend/internal/tokenstore"
	"github.com/anonto42/cookbook/backend/pkg/config"
	"github.com/anonto42/cookbook/backend/pkg/firebase"
	"github.com/anonto42/cookbook/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	config.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	if err := router.Migrate(db.Postgres); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	deps := router.Dependencies{
		DB:              db.Postgres,
		Redis:           db.Redis,
		KeyPrefix:       cfg.Redis.KeyPrefix,
		LoginRateLimit:  cfg.Auth.LoginRateLimit,
		LoginRateWindow: cfg.Auth.LoginRateWindow(),
	}

	if deps.Tokens, err = newTokenStore(cfg, db); err != nil {
		logrus.Fatalf("Failed to initialize token store: %v", err)
	}
	if deps.Images, deps.Media, err = newImageStore(ctx, cfg, db); err != nil {
		logrus.Fatalf("Failed to initialize image store: %v", err)
	}

	// Initialize Firebase
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.Firebase.CredentialsPath)
	if err != nil {
		logrus.Fatalf("Failed to initialize Firebase: %v", err)
	}
	if firebaseApp != nil {
		deps.Firebase = firebaseApp.AuthClient
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e, cfg)
	if err := router.SetupRoutes(e, deps); err != nil {
		logrus.Fatalf("Failed to set up routes: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
		defer cancel()
		logrus.Info("Shutting down HTTP server")
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("Server stopped with error")
	}
}

func newTokenStore(cfg *config.Config, db *config.DB) (tokenstore.Store, error) {
	if cfg.Auth.TokenBackend == "jwt" {
		revocations := tokenstore.NewRedisRevocations(db.Redis, cfg.Redis.KeyPrefix)
		return tokenstore.NewJWTStore(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL(), revocations)
	}
	return tokenstore.NewRedisStore(db.Redis, cfg.Redis.KeyPrefix, cfg.Auth.TokenTTL()), nil
}

func newImageStore(ctx context.Context, cfg *config.Config, db *config.DB) (storage.ImageStore, handlers.ImageOpener, error) {
	if cfg.Storage.Backend == "s3" {
		s3cfg := cfg.Storage.S3
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    s3cfg.Bucket,
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			PublicURL: s3cfg.PublicURL,
		})
		return store, nil, err
	}
	store, err := storage.NewGridFSStore(db.Mongo.Database(cfg.Storage.MongoDatabase))
	if err != nil {
		return nil, nil, err
	}
	return store, store, nil
}
