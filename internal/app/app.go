// Package app assembles the server from configuration: the document store
// and its decorators, repositories, the locker and the services.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"postsurvey/internal/config"
	"postsurvey/internal/docstore"
	"postsurvey/internal/lock"
	"postsurvey/internal/log"
	"postsurvey/internal/repository"
	"postsurvey/internal/service"
	"postsurvey/internal/transport/rest"
)

// App holds the wired dependencies of one server process.
type App struct {
	Config *config.Config

	Store        docstore.Client
	SurveyRepo   repository.SurveyRepo
	ResponseRepo repository.ResponseRepo
	Locker       lock.Locker

	SurveyService    *service.SurveyService
	ResponseService  *service.ResponseService
	DashboardService *service.DashboardService

	logger  zerolog.Logger
	closers []func(context.Context) error
}

// New connects the configured backends and builds the services. The
// returned App must be closed.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, logger: log.WithComponent("app")}

	raw, err := a.openStore(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	storeLogger := log.WithComponent("docstore")
	retryCfg := docstore.DefaultRetryConfig()
	retryCfg.Retries = cfg.StoreRetries
	retryCfg.Timeout = cfg.StoreTimeout
	a.Store = docstore.WithMetrics(docstore.WithRetry(raw, retryCfg, storeLogger), storeLogger)

	a.SurveyRepo = repository.NewSurveyRepo(a.Store, docstore.Entity{Name: cfg.SurveyEntity, Schema: cfg.SurveySchema})
	a.ResponseRepo = repository.NewResponseRepo(a.Store, docstore.Entity{Name: cfg.ResponseEntity, Schema: cfg.ResponseSchema})

	if err := a.SurveyRepo.EnsureIndexes(ctx); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to create survey indexes: %w", err)
	}
	if err := a.ResponseRepo.EnsureIndexes(ctx, cfg.UniqueOrderResponses); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to create response indexes: %w", err)
	}

	if a.Locker, err = a.openLocker(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.SurveyService = service.NewSurveyService(a.SurveyRepo, a.Locker)
	a.ResponseService = service.NewResponseService(a.ResponseRepo, a.SurveyRepo, a.Locker)
	a.DashboardService = service.NewDashboardService(a.SurveyRepo, a.ResponseRepo)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (docstore.Client, error) {
	cfg := a.Config
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		a.closers = append(a.closers, client.Disconnect)

		pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		a.logger.Info().Str("db", cfg.MongoDB).Msg("Connected to MongoDB")
		return docstore.NewMongoClient(client.Database(cfg.MongoDB)), nil

	case config.BackendBolt:
		client, err := docstore.NewBoltClient(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		a.logger.Info().Str("path", cfg.BoltPath).Msg("Opened bolt store")
		return client, nil

	case config.BackendMemory:
		a.logger.Warn().Msg("Using in-memory store, data is lost on exit")
		return docstore.NewMemoryClient(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// openLocker picks the lock backend. Redis serializes across instances.
// Without Redis the embedded backends, which serve a single process anyway,
// get an in-process locker; a shared Mongo store runs unlocked.
func (a *App) openLocker(ctx context.Context) (lock.Locker, error) {
	cfg := a.Config
	if cfg.RedisURI == "" {
		if cfg.StoreBackend == config.BackendMongo {
			a.logger.Warn().Msg("REDIS_URI not set, activation and submission run unlocked")
			return nil, nil
		}
		return lock.NewLocalLocker(cfg.LockTTL), nil
	}

	opts, err := redisOptions(cfg.RedisURI)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	a.logger.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
	return lock.NewRedisLocker(rdb, cfg.LockTTL), nil
}

// redisOptions accepts a redis:// URL or a bare host:port.
func redisOptions(uri string) (*redis.Options, error) {
	if strings.Contains(uri, "://") {
		opts, err := redis.ParseURL(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URI: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: uri}, nil
}

// Router builds the HTTP handler over the services.
func (a *App) Router() http.Handler {
	return rest.NewRouter(&rest.Container{
		SurveyService:    a.SurveyService,
		ResponseService:  a.ResponseService,
		DashboardService: a.DashboardService,
		AllowedOrigins:   a.Config.CORSAllowedOrigins,
	})
}

// Close releases connections in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
