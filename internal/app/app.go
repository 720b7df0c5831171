package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/auth"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/config"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/event"
	handler "github.com/ThanhDoDuy/order-system-hani-BE/internal/handler/http"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/repository/postgres"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/service"
	"github.com/ThanhDoDuy/order-system-hani-BE/migrations"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/database"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/health"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/httpclient"
	pkgkafka "github.com/ThanhDoDuy/order-system-hani-BE/pkg/kafka"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/tracing"
)

const version = "0.1.0"

// App wires together all dependencies and runs the back-office API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing(version))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, cfg.ServiceName)

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Redis holds the dashboard stats cache. Losing it degrades the
	// dashboard to uncached queries, so a failed connection is not fatal.
	var redisClient *redis.Client
	redisClient, err = database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		logger.Warn("redis unavailable, dashboard cache disabled",
			slog.String("error", err.Error()),
		)
		redisClient = nil
	}

	// Initialize Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Google ID token verifier. Without a client id (bare development
	// environment) logins are impossible but the rest of the API boots.
	var verifier auth.IDTokenVerifier
	var authCodeURL func(state string) string
	if cfg.GoogleClientID != "" {
		gv, err := auth.NewGoogleVerifier(ctx, cfg.GoogleClientID, cfg.GoogleRedirectURI, httpclient.New(httpclient.DefaultConfig()))
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init google verifier: %w", err)
		}
		verifier = gv
		authCodeURL = gv.AuthCodeURL
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, google login disabled")
		verifier = &auth.GoogleVerifier{}
	}

	// Build the dependency graph.
	tokens := auth.NewTokenManager(
		cfg.JWTAccessSecret,
		cfg.JWTRefreshSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		cfg.ServiceName,
	)

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	permRepo := postgres.NewPermissionRepository(pool)

	events := event.NewProducer(producer, logger)

	var cache redis.Cmdable
	if redisClient != nil {
		cache = redisClient
	}

	authService := service.NewAuthService(userRepo, verifier, tokens, events, cfg.SuperAdminEmail, logger)
	userService := service.NewUserService(userRepo, events, logger)
	productService := service.NewProductService(productRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, events, logger)
	roleService := service.NewRoleService(roleRepo, permRepo, logger)
	dashboardService := service.NewDashboardService(orderRepo, productRepo, cache, cfg.StatsCacheTTL, logger)

	// Seed the built-in roles and permission catalog. Racing replicas are
	// tolerated inside SeedDefaults.
	if err := roleService.SeedDefaults(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("seed default roles: %w", err)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(handler.RouterDeps{
		AuthService:      authService,
		UserService:      userService,
		ProductService:   productService,
		CategoryService:  categoryService,
		OrderService:     orderService,
		RoleService:      roleService,
		DashboardService: dashboardService,

		Guard:       handler.NewGuard(tokens, userRepo),
		AuthCodeURL: authCodeURL,
		Health:      healthHandler,
		Logger:      logger,

		ServiceName:   cfg.ServiceName,
		CORS:          cfg.CORS(),
		AuthRateLimit: cfg.AuthRateLimit(),
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Redis client
// 5. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
