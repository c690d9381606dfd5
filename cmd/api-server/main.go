package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/caresched/caresched/internal/api"
	"github.com/caresched/caresched/internal/availability"
	"github.com/caresched/caresched/internal/booking"
	"github.com/caresched/caresched/internal/config"
	"github.com/caresched/caresched/internal/db"
	"github.com/caresched/caresched/internal/docstore"
	"github.com/caresched/caresched/internal/notification"
	redisclient "github.com/caresched/caresched/internal/redis"
	"github.com/caresched/caresched/internal/schedule"
)

const version = "0.3.0"

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}
	if cfg.Env == "prod" {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	logger.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("storage", cfg.StorageBackend).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store docstore.Store
	var pgPool *pgxpool.Pool
	var rdb *goredis.Client

	if cfg.RedisAddr != "" {
		rdb, err = redisclient.NewClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing redis")
			}
		}()
		logger.Info().Msg("connected to Redis")
	}

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection error")
		}
		defer pgPool.Close()
		logger.Info().Msg("connected to Postgres")

		pgStore := docstore.NewPgStore(pgPool)
		if err := pgStore.Migrate(rootCtx); err != nil {
			logger.Fatal().Err(err).Msg("postgres migration error")
		}
		store = pgStore
	case config.BackendRedis:
		store = docstore.NewRedisStore(rdb)
	default:
		logger.Warn().Msg("using in-memory storage, data will not survive a restart")
		store = docstore.NewMemoryStore()
	}

	var locker booking.Locker
	if rdb != nil {
		locker = redisclient.NewBookingLocker(rdb, cfg.LockTTL)
	} else {
		locker = booking.NewLocalLocker()
	}

	schedules := schedule.NewService(schedule.NewRepository(store), logger)
	bookings := booking.NewService(booking.NewRepository(store), locker, nil, logger)
	resolver := availability.NewResolver(schedules, bookings, logger)
	notifications := notification.NewService(notification.NewRepository(store), nil, logger)
	bookings.SetNotifier(notifications)

	router := api.NewRouter(api.RouterConfig{
		Schedules:     schedules,
		Bookings:      bookings,
		Resolver:      resolver,
		Notifications: notifications,
		SlotMinutes:   cfg.SlotMinutes,
		PgPool:        pgPool,
		Redis:         rdb,
		Env:           cfg.Env,
		Version:       version,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()

	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
