package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "classroom-backend/internal/auth"
	"classroom-backend/internal/batch"
	"classroom-backend/internal/batches"
	"classroom-backend/internal/documents"
	"classroom-backend/internal/exports"
	"classroom-backend/internal/llm"
	openai "classroom-backend/internal/llm/openai"
	"classroom-backend/internal/queue"
	"classroom-backend/internal/runs"
	"classroom-backend/internal/shared/config"
	"classroom-backend/internal/shared/server"
	"classroom-backend/internal/shared/server/middleware"
	"classroom-backend/internal/shared/storage/db"
	"classroom-backend/internal/shared/storage/object"
	localstore "classroom-backend/internal/shared/storage/object/local"
	s3store "classroom-backend/internal/shared/storage/object/s3"
	"classroom-backend/internal/users"
	"classroom-backend/internal/workerproc"
)

// App holds shared dependencies for the API, worker and CLI entry points.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	DB           *sql.DB
	Store        object.ObjectStore
	Queue        queue.Client
	LocalQueue   *queue.LocalQueue
	RunStore     runs.Store
	Provider     llm.Provider
	Orchestrator *batch.Orchestrator

	DocumentsService *documents.Service
	ExportsService   *exports.Service
	UsersService     *users.Service
	BatchesService   *batches.Service
	RunsService      *runs.Service

	closers []func() error
}

// Build prepares shared dependencies and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	app := &App{Config: cfg}
	var err error

	if app.DB, err = buildDB(ctx, cfg); err != nil {
		return nil, err
	}
	if app.DB != nil {
		app.closers = append(app.closers, app.DB.Close)
	}
	if app.Store, err = buildStore(ctx, cfg); err != nil {
		return nil, err
	}
	if app.RunStore, err = buildRunStore(ctx, cfg); err != nil {
		return nil, err
	}
	if rs, ok := app.RunStore.(*runs.RedisStore); ok {
		app.closers = append(app.closers, rs.Close)
	}
	if app.Queue, app.LocalQueue, err = buildQueue(ctx, cfg); err != nil {
		return nil, err
	}
	if app.Provider, err = BuildProvider(cfg); err != nil {
		return nil, err
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		BatchHandler:    batches.NewHandler(app.BatchesService),
		RunHandler:      runs.NewHandler(app.RunsService),
		DocumentHandler: documents.NewHandler(app.DocumentsService),
		ExportHandler:   exports.NewHandler(app.ExportsService),
		UserHandler:     users.NewHandler(app.UsersService),
		GoogleAuth: googleauth.NewGoogleService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			cfg.UIRedirectURL,
			app.UsersService,
		),
		RateLimiter: middleware.NewRateLimiter(nil),
	})

	return app, nil
}

// StartWorkers drains the in-process queue. It is a no-op when runs go to SQS.
func (a *App) StartWorkers(ctx context.Context) {
	if a.LocalQueue == nil {
		return
	}
	a.LocalQueue.Start(ctx, a.Config.RunWorkers, func(ctx context.Context, msg queue.Message) error {
		return workerproc.Dispatch(ctx, a.RunsService, msg)
	})
	log.Printf("bootstrap: local run workers started count=%d", a.Config.RunWorkers)
}

// Close drains local workers and releases connections.
func (a *App) Close() error {
	if a.LocalQueue != nil {
		a.LocalQueue.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.RuntimeOptions())
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildRunStore uses Redis when configured so the API and workers share run
// state. Without Redis, runs live in this process only.
func buildRunStore(ctx context.Context, cfg config.Config) (runs.Store, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		if strings.TrimSpace(cfg.SQSQueueURL) != "" {
			return nil, fmt.Errorf("REDIS_URL is required when SQS_QUEUE_URL is set")
		}
		return runs.NewMemoryStore(), nil
	}
	store, err := runs.NewRedisStore(ctx, cfg.RedisURL, cfg.RunTTL)
	if err != nil {
		if isDevLike(cfg.Env) && strings.TrimSpace(cfg.SQSQueueURL) == "" {
			log.Printf("bootstrap: redis unavailable; using in-memory run store: %v", err)
			return runs.NewMemoryStore(), nil
		}
		return nil, err
	}
	return store, nil
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, *queue.LocalQueue, error) {
	if strings.TrimSpace(cfg.SQSQueueURL) == "" {
		local := queue.NewLocalQueue(0)
		return local, local, nil
	}
	client, err := queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.SQSQueueURL)
	if err != nil {
		return nil, nil, err
	}
	return client, nil, nil
}

// BuildProvider selects the demo provider or an OpenAI-compatible client.
func BuildProvider(cfg config.Config) (llm.Provider, error) {
	if cfg.LLMProvider == "demo" {
		log.Printf("bootstrap: LLM_PROVIDER=demo; drafts are generated locally")
		return llm.DemoProvider{}, nil
	}
	client, err := openai.NewClient(openai.Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.LLMModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) && isDevLike(cfg.Env) {
			log.Printf("bootstrap: %v; falling back to the demo provider", err)
			return llm.DemoProvider{}, nil
		}
		return nil, err
	}
	return client, nil
}

func buildServices(app *App) {
	var docRepo documents.DocumentsRepo
	var exportRepo exports.Repo
	var userRepo users.Repo
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		exportRepo = &exports.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		exportRepo = exports.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	cfg := app.Config
	app.Orchestrator = &batch.Orchestrator{
		Generator:   batch.NewGenerator(app.Provider, cfg.GenerationTimeout),
		Concurrency: cfg.BatchConcurrency,
	}
	app.DocumentsService = &documents.Service{Repo: docRepo}
	app.ExportsService = &exports.Service{Repo: exportRepo, Store: app.Store}
	app.UsersService = users.NewService(userRepo)
	app.BatchesService = &batches.Service{
		Orchestrator: app.Orchestrator,
		Documents:    app.DocumentsService,
		Exports:      app.ExportsService,
		MaxItems:     cfg.BatchMaxItems,
		SaveTimeout:  cfg.SaveTimeout,
	}
	app.RunsService = &runs.Service{
		Store:        app.RunStore,
		Queue:        app.Queue,
		Orchestrator: app.Orchestrator,
		Documents:    app.DocumentsService,
		SaveTimeout:  cfg.SaveTimeout,
		MaxItems:     cfg.BatchMaxItems,
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
