package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"pubops-backend/internal/config"
	infraCache "pubops-backend/internal/infrastructure/cache"
	"pubops-backend/internal/infrastructure/database"
	"pubops-backend/internal/infrastructure/database/migrations"
	"pubops-backend/internal/infrastructure/queue"
	"pubops-backend/internal/infrastructure/storage"
	pkgdb "pubops-backend/pkg/database"
	"pubops-backend/pkg/jwt"

	accessHandler "pubops-backend/internal/domains/access/handler"
	accessRepo "pubops-backend/internal/domains/access/repository"
	accessService "pubops-backend/internal/domains/access/service"
	attachmentHandler "pubops-backend/internal/domains/attachment/handler"
	attachmentJob "pubops-backend/internal/domains/attachment/job"
	attachmentRepo "pubops-backend/internal/domains/attachment/repository"
	attachmentService "pubops-backend/internal/domains/attachment/service"
	bookHandler "pubops-backend/internal/domains/book/handler"
	bookRepo "pubops-backend/internal/domains/book/repository"
	bookService "pubops-backend/internal/domains/book/service"
	contributorHandler "pubops-backend/internal/domains/contributor/handler"
	contributorJob "pubops-backend/internal/domains/contributor/job"
	contributorRepo "pubops-backend/internal/domains/contributor/repository"
	contributorService "pubops-backend/internal/domains/contributor/service"
	historyHandler "pubops-backend/internal/domains/history/handler"
	"pubops-backend/internal/domains/history/recorder"
	historyRepo "pubops-backend/internal/domains/history/repository"
	historyService "pubops-backend/internal/domains/history/service"
	imprintHandler "pubops-backend/internal/domains/imprint/handler"
	imprintRepo "pubops-backend/internal/domains/imprint/repository"
	imprintService "pubops-backend/internal/domains/imprint/service"
	marketingHandler "pubops-backend/internal/domains/marketing/handler"
	marketingRepo "pubops-backend/internal/domains/marketing/repository"
	marketingService "pubops-backend/internal/domains/marketing/service"
	releaseHandler "pubops-backend/internal/domains/release/handler"
	releaseRepo "pubops-backend/internal/domains/release/repository"
	releaseService "pubops-backend/internal/domains/release/service"
	userHandler "pubops-backend/internal/domains/user/handler"
	userRepo "pubops-backend/internal/domains/user/repository"
	userService "pubops-backend/internal/domains/user/service"
)

// Container is the root of the dependency graph. cmd/api, cmd/worker and
// cmd/consolidate all build one and use the parts they need.
type Container struct {
	// Infrastructure
	Config     *config.Config
	DB         *database.PostgresDB
	Redis      *infraCache.RedisClient
	Storage    *storage.MinIOStorage
	Queue      *asynq.Client
	JWTManager *jwt.Manager
	Tx         pkgdb.Transactor

	// Repositories
	AccessRepo      accessRepo.RepositoryInterface
	HistoryRepo     *historyRepo.PostgresRepository
	ImprintRepo     imprintRepo.RepositoryInterface
	BookRepo        bookRepo.RepositoryInterface
	ContributorRepo contributorRepo.RepositoryInterface
	ReleaseRepo     releaseRepo.RepositoryInterface
	MarketingRepo   marketingRepo.RepositoryInterface
	AttachmentRepo  attachmentRepo.RepositoryInterface
	UserRepo        userRepo.RepositoryInterface

	// Cross-cutting services
	Recorder     recorder.ChangeRecorder
	Resolver     accessService.ScopeResolver
	BookGate     *accessService.BookGate
	Consolidator *contributorService.Consolidator

	// Services
	AccessService      accessService.ServiceInterface
	HistoryService     historyService.ServiceInterface
	ImprintService     imprintService.ServiceInterface
	BookService        bookService.ServiceInterface
	ContributorService contributorService.ServiceInterface
	ReleaseService     releaseService.ServiceInterface
	MarketingService   marketingService.ServiceInterface
	AttachmentService  attachmentService.ServiceInterface
	UserService        userService.ServiceInterface

	// HTTP handlers
	AccessHandler      *accessHandler.AccessHandler
	HistoryHandler     *historyHandler.HistoryHandler
	ImprintHandler     *imprintHandler.ImprintHandler
	BookHandler        *bookHandler.BookHandler
	ContributorHandler *contributorHandler.ContributorHandler
	ReleaseHandler     *releaseHandler.ReleaseHandler
	MarketingHandler   *marketingHandler.ChecklistHandler
	AttachmentHandler  *attachmentHandler.AttachmentHandler
	UserHandler        *userHandler.UserHandler

	// Task handlers
	ConsolidateJob  *contributorJob.ConsolidateHandler
	DeleteObjectJob *attachmentJob.DeleteObjectHandler
}

// NewContainer connects to every backing service and builds the graph
// bottom-up: infrastructure, repositories, services, handlers.
// Postgres and Redis failures are fatal; Redis backs the consolidation lock.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Info().Str("env", cfg.App.Environment).Msg("initializing container")

	c := &Container{Config: cfg}

	if err := c.initDatabase(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	if err := c.initRedis(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	store, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = store
	log.Info().Str("bucket", cfg.MinIO.Bucket).Msg("object storage ready")

	c.Queue = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("container initialized")
	return c, nil
}

// NewConsolidationContainer builds only what a consolidation run touches:
// Postgres, the Redis lock and the Consolidator.
func NewConsolidationContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	if err := c.initDatabase(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initRedis(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.ContributorRepo = contributorRepo.NewPostgresRepository(c.DB.Pool)
	c.HistoryRepo = historyRepo.NewPostgresRepository(c.DB.Pool)
	c.Recorder = recorder.New(c.HistoryRepo)
	c.Consolidator = newConsolidator(c)
	return c, nil
}

func newConsolidator(c *Container) *contributorService.Consolidator {
	return contributorService.NewConsolidator(
		c.ContributorRepo,
		c.HistoryRepo,
		c.Recorder,
		c.Tx,
		c.Redis,
		c.Config.Consolidation.LockTTL,
	)
}

func (c *Container) initDatabase(ctx context.Context) error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	if c.Config.Database.AutoMigrate {
		if err := database.RunMigrations(ctx, dbConfig.DSN(), migrations.FS); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	c.Tx = pkgdb.NewPoolTransactor(db.Pool)
	log.Info().Msg("database connected")
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	rc := infraCache.NewRedisClient(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := rc.Connect(ctx); err != nil {
		_ = rc.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Redis = rc
	log.Info().Str("addr", c.Config.Redis.Host).Msg("redis connected")
	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.AccessRepo = accessRepo.NewPostgresRepository(pool)
	c.HistoryRepo = historyRepo.NewPostgresRepository(pool)
	c.ImprintRepo = imprintRepo.NewPostgresRepository(pool)
	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.ContributorRepo = contributorRepo.NewPostgresRepository(pool)
	c.ReleaseRepo = releaseRepo.NewPostgresRepository(pool)
	c.MarketingRepo = marketingRepo.NewPostgresRepository(pool)
	c.AttachmentRepo = attachmentRepo.NewPostgresRepository(pool)
	c.UserRepo = userRepo.NewPostgresRepository(pool, c.Redis)
}

func (c *Container) initServices() {
	c.Recorder = recorder.New(c.HistoryRepo)
	c.Resolver = accessService.NewResolver(c.AccessRepo)
	c.BookGate = accessService.NewBookGate(c.Resolver, c.BookRepo)
	c.Consolidator = newConsolidator(c)

	c.AccessService = accessService.NewAccessService(c.AccessRepo, c.Tx)
	c.HistoryService = historyService.NewHistoryService(c.HistoryRepo, c.HistoryRepo, c.Resolver)
	c.ImprintService = imprintService.NewImprintService(c.ImprintRepo, c.Tx, c.Resolver, c.Recorder)
	c.BookService = bookService.NewBookService(c.BookRepo, c.Tx, c.Resolver, c.Recorder, c.Queue)
	c.ContributorService = contributorService.NewContributorService(c.ContributorRepo, c.Tx, c.Resolver, c.Recorder, c.Queue)
	c.ReleaseService = releaseService.NewReleaseService(c.ReleaseRepo, c.Tx, c.BookGate, c.Recorder)
	c.MarketingService = marketingService.NewChecklistService(c.MarketingRepo, c.Tx, c.BookGate, c.Recorder)
	c.AttachmentService = attachmentService.NewAttachmentService(
		c.AttachmentRepo,
		c.Tx,
		c.BookGate,
		c.Recorder,
		c.Storage,
		c.Queue,
		c.Config.MinIO.MaxUploadBytes,
	)
	c.UserService = userService.NewUserService(c.UserRepo, c.Resolver)
}

func (c *Container) initHandlers() {
	c.AccessHandler = accessHandler.NewAccessHandler(c.AccessService)
	c.HistoryHandler = historyHandler.NewHistoryHandler(c.HistoryService)
	c.ImprintHandler = imprintHandler.NewImprintHandler(c.ImprintService)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.ContributorHandler = contributorHandler.NewContributorHandler(c.ContributorService)
	c.ReleaseHandler = releaseHandler.NewReleaseHandler(c.ReleaseService)
	c.MarketingHandler = marketingHandler.NewChecklistHandler(c.MarketingService)
	c.AttachmentHandler = attachmentHandler.NewAttachmentHandler(c.AttachmentService, c.Config.MinIO.MaxUploadBytes)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)

	c.ConsolidateJob = contributorJob.NewConsolidateHandler(c.Consolidator)
	c.DeleteObjectJob = attachmentJob.NewDeleteObjectHandler(c.Storage)
}

// Cleanup releases connections. Safe on a partially built container.
func (c *Container) Cleanup() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close task queue client")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}

	if c.DB != nil {
		_ = c.DB.Close()
	}

	log.Info().Msg("container cleanup completed")
}
