package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/kirinyoku/antrian-go/internal/config"
	"github.com/kirinyoku/antrian-go/internal/domain"
	"github.com/kirinyoku/antrian-go/internal/events"
	"github.com/kirinyoku/antrian-go/internal/migrations"
	"github.com/kirinyoku/antrian-go/internal/postgres"
	"github.com/kirinyoku/antrian-go/internal/redis"
	postgresrepo "github.com/kirinyoku/antrian-go/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/antrian-go/internal/repository/redis"
	"github.com/kirinyoku/antrian-go/internal/service"
	"github.com/kirinyoku/antrian-go/internal/service/query"
	"github.com/kirinyoku/antrian-go/internal/service/queue"
	httpgin "github.com/kirinyoku/antrian-go/internal/transport/http/gin"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	rdb        *goredis.Client
	pubsub     *redisrepo.QueuePubSub
	hub        *events.Hub
	httpServer *http.Server
}

// PostgresConfig maps the loaded settings onto the pool bootstrap.
func PostgresConfig(cfg *config.Config) postgres.Config {
	return postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Name:     cfg.Postgres.Name,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.MaxConns,
		TimeZone: cfg.Queue.Location.String(),
	}
}

// migrate applies pending migrations through a migrator that is released
// before returning; the pool stays open.
func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	m, err := migrations.New(pool, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Up(ctx)
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	pgxPool, err := postgres.New(ctx, PostgresConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	if cfg.AutoMigrate {
		if err := migrate(ctx, pgxPool, logger); err != nil {
			pgxPool.Close()
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	clock := domain.NewClock(cfg.Queue.Location)

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisrepo.NewQueuePubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, redisrepo.KeyTakeCooldown, 1, cfg.Queue.TakeCooldown)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 24*time.Hour)

	// Initialize services
	services := service.NewServices(store, cache, pubsub, limiter, logger, service.Config{
		Queue: queue.Config{
			Clock:    clock,
			Cooldown: cfg.Queue.TakeCooldown,
		},
		Query: query.Config{
			Clock:         clock,
			SnapshotTTL:   cfg.Queue.StatusCacheTTL,
			WaitPerTicket: cfg.Queue.WaitPerTicket,
			HourFrom:      cfg.Queue.HourlyFrom,
			HourTo:        cfg.Queue.HourlyTo,
		},
	})

	hub := events.NewHub(32)

	// Initialize Gin router
	router := httpgin.NewRouter(services, idempotencyStore, logger, httpgin.Options{
		AdminToken:     cfg.Server.AdminToken,
		TrustedProxies: cfg.Server.TrustedProxies,
		Events:         hub,
		Health: map[string]httpgin.HealthCheck{
			"postgres": store.Ping,
			"redis": func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		},
	})

	if cfg.Server.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN is empty, staff endpoints are open")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	// open event streams would otherwise hold Shutdown until its deadline
	srv.RegisterOnShutdown(hub.Close)

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pgxPool,
		rdb:        rdb,
		pubsub:     pubsub,
		hub:        hub,
		httpServer: srv,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Queue events for /queue/stream
	g.Go(func() error {
		for {
			err := a.hub.Run(gCtx, a.pubsub)
			if gCtx.Err() != nil {
				return nil
			}
			a.logger.Warn("queue event subscription dropped, resubscribing", slog.Any("err", err))

			select {
			case <-gCtx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) close() {
	if err := a.rdb.Close(); err != nil {
		a.logger.Warn("closing redis", slog.Any("err", err))
	}
	a.pool.Close()
}
