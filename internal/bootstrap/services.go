package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/docuflow/ingest-api/config"
	"github.com/docuflow/ingest-api/internal/adapters/mockapi"
	redisstore "github.com/docuflow/ingest-api/internal/adapters/redis"
	"github.com/docuflow/ingest-api/internal/adapters/retrier"
	"github.com/docuflow/ingest-api/internal/data"
	"github.com/docuflow/ingest-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Ingestions *service.IngestionService
	Documents  *service.DocumentService
	Auth       *service.AuthService
	Retrier    *service.RetrierService
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	IngestionRepo *data.IngestionRepo
	UserRepo      *data.UserRepo
	DocumentRepo  *data.DocumentRepo
	Sessions      *redisstore.SessionStore
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redisClient redis.UniversalClient, logger *slog.Logger) *serviceRepositories {
	return &serviceRepositories{
		IngestionRepo: data.NewIngestionRepo(db, data.IngestionRepoConfig{Logger: logger}),
		UserRepo:      data.NewUserRepo(db),
		DocumentRepo:  data.NewDocumentRepo(db),
		Sessions:      redisstore.NewSessionStore(redisClient),
	}
}

// NewServices wires repositories and services for the configured application.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, errors.New("service deps are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := deps.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	repos := buildRepositories(deps.DB, deps.RedisClient, logger)

	executor := mockapi.NewExecutor(mockapi.Options{
		MinLatency:  appCfg.Executor.MinLatency,
		MaxLatency:  appCfg.Executor.MaxLatency,
		SuccessRate: appCfg.Executor.SuccessRate,
		Logger:      logger,
	})

	ingestions, err := service.NewIngestionService(service.IngestionServiceOptions{
		Repo:       repos.IngestionRepo,
		Executor:   executor,
		Principals: repos.UserRepo,
		Config:     service.IngestionServiceConfig{ExecuteTimeout: appCfg.Ingest.ExecuteTimeout},
		Logger:     logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build ingestion service: %w", err)
	}

	documents, err := service.NewDocumentService(service.DocumentServiceOptions{
		Repo:       repos.DocumentRepo,
		Principals: repos.UserRepo,
		Logger:     logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build document service: %w", err)
	}

	auth, err := service.NewAuthService(service.AuthServiceOptions{
		Users:    repos.UserRepo,
		Sessions: repos.Sessions,
		Config: service.AuthServiceConfig{
			SessionTTL: appCfg.Auth.SessionTTL,
			BcryptCost: appCfg.Auth.BcryptCost,
		},
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build auth service: %w", err)
	}

	retrierSvc, err := service.NewRetrierService(service.RetrierServiceOptions{
		Repo:       repos.IngestionRepo,
		Dispatcher: ingestions,
		Config: service.RetrierConfig{
			BatchLimit: appCfg.Retrier.BatchLimit,
			Pacing:     appCfg.Retrier.Pacing,
		},
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build retrier service: %w", err)
	}

	return ServiceContainer{
		Ingestions: ingestions,
		Documents:  documents,
		Auth:       auth,
		Retrier:    retrierSvc,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// executionDrainTimeout is the maximum time to wait for in-flight ingestion
// executions to settle during shutdown.
const executionDrainTimeout = 15 * time.Second

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	if enabled[config.ServiceModeHTTP] {
		server := StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
		group.Go(func() error {
			<-groupCtx.Done()
			return ShutdownHTTPServer(ShutdownConfig{
				Context: context.Background(),
				Server:  server,
				Logger:  logger,
			})
		})
	}

	if enabled[config.ServiceModeRetrier] {
		runner, runnerErr := retrier.NewRunner(retrier.RunnerOptions{
			Sweeper:  cfg.Services.Retrier,
			Interval: cfg.Config.Retrier.Interval,
			Logger:   logger,
		})
		if runnerErr != nil {
			return fmt.Errorf("build retry runner: %w", runnerErr)
		}
		group.Go(func() error {
			return runner.Run(groupCtx)
		})
	}

	runErr := group.Wait()

	// Let in-flight executions record their outcomes before exiting.
	drainExecutions(cfg.Services.Ingestions, logger)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func drainExecutions(ingestions *service.IngestionService, logger *slog.Logger) {
	if ingestions == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		ingestions.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("in-flight executions drained")
	case <-time.After(executionDrainTimeout):
		logger.Warn("timeout waiting for in-flight executions to drain")
	}
}
