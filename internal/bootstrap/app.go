package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leslie0605/magic-prep-backend/internal/documents"
	"github.com/leslie0605/magic-prep-backend/internal/notifications"
	"github.com/leslie0605/magic-prep-backend/internal/reviewer"
	"github.com/leslie0605/magic-prep-backend/internal/reviewer/openai"
	"github.com/leslie0605/magic-prep-backend/internal/shared/config"
	"github.com/leslie0605/magic-prep-backend/internal/shared/server"
	"github.com/leslie0605/magic-prep-backend/internal/shared/storage/db"
	"github.com/leslie0605/magic-prep-backend/internal/shared/storage/object"
	localstore "github.com/leslie0605/magic-prep-backend/internal/shared/storage/object/local"
	s3store "github.com/leslie0605/magic-prep-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies wired from configuration.
type App struct {
	Config               config.Config
	Router               *gin.Engine
	DB                   *sql.DB
	Store                object.ObjectStore
	DocumentsRepo        documents.Repo
	DocumentsService     *documents.Service
	NotificationsProj    *notifications.Projector
	DocumentsHandler     *documents.Handler
	NotificationsHandler *notifications.Handler
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reviewClient, err := buildReviewer(cfg)
	if err != nil {
		return nil, err
	}

	var repo documents.Repo
	if sqlDB != nil {
		repo = &documents.PGRepo{DB: sqlDB}
	} else {
		repo = documents.NewMemoryRepo()
	}

	docSvc := &documents.Service{
		Repo:     repo,
		Store:    store,
		Reviewer: reviewClient,
	}
	projector := &notifications.Projector{Repo: repo}

	app := &App{
		Config:               cfg,
		DB:                   sqlDB,
		Store:                store,
		DocumentsRepo:        repo,
		DocumentsService:     docSvc,
		NotificationsProj:    projector,
		DocumentsHandler:     &documents.Handler{Service: docSvc},
		NotificationsHandler: &notifications.Handler{Projector: projector},
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:               cfg,
		DocumentsHandler:     app.DocumentsHandler,
		NotificationsHandler: app.NotificationsHandler,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildReviewer(cfg config.Config) (reviewer.Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if cfg.ReviewProvider != "openai" || apiKey == "" {
		return reviewer.PlaceholderClient{}, nil
	}
	return openai.NewClient(apiKey, cfg.ReviewModel)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
