// @title                       Yoga Studio Booking API
// @version                     1.0
// @description                 Session scheduling and participation for studio members.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	_ "github.com/yogastudio/booking/docs"
	"github.com/yogastudio/booking/internal/api"
	"github.com/yogastudio/booking/internal/core/ports"
	"github.com/yogastudio/booking/internal/core/service"
	"github.com/yogastudio/booking/internal/infrastructure/db/memory"
	"github.com/yogastudio/booking/internal/infrastructure/db/mongo"
	"github.com/yogastudio/booking/internal/infrastructure/db/redis"
	"github.com/yogastudio/booking/internal/infrastructure/lock"
	"github.com/yogastudio/booking/internal/infrastructure/queue"
	"github.com/yogastudio/booking/internal/pkg/config"
	"github.com/yogastudio/booking/pkg/logger"
)

type storage struct {
	sessions ports.SessionRepository
	teachers ports.TeacherRepository
	users    ports.UserRepository
	events   ports.EventRepository
	db       *mongodriver.Database
	close    func(context.Context)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Str("service", "booking-api").Logger()
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "booking-api",
		Env:     cfg.Env,
	})

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.Storage).Msg("failed to open storage")
	}
	defer store.close(context.Background())

	locks, err := openLockers(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("lock_backend", cfg.LockBackend).Msg("failed to open lock backend")
	}
	rdb := locks.rdb
	if rdb != nil {
		defer func() {
			if cerr := rdb.Close(); cerr != nil {
				log.Error().Err(cerr).Msg("failed to close redis")
			}
		}()
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, store.events, log.With().Str("component", "audit").Logger())
	dispatcher.Start(workerCtx)

	sessionService := service.NewSessionService(store.sessions, store.teachers, locks.sessions, dispatcher,
		log.With().Str("component", "session_store").Logger())
	participationService := service.NewParticipationService(store.sessions, store.users, locks.sessions, locks.users,
		dispatcher, log.With().Str("component", "participation").Logger())
	userService := service.NewUserService(store.users, store.sessions, locks.sessions, locks.users,
		dispatcher, log.With().Str("component", "user_directory").Logger())

	router := api.NewRouter(api.Dependencies{
		Sessions:      sessionService,
		Participation: participationService,
		Teachers:      service.NewTeacherService(store.teachers),
		Users:         userService,
		JWTSecret:     cfg.JWTSecret,
		Logger:        log,
		Mongo:         store.db,
		Redis:         rdb,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to shutdown server")
		}
	}()

	log.Info().
		Str("addr", server.Addr).
		Str("storage", cfg.Storage).
		Str("lock_backend", cfg.LockBackend).
		Msg("booking API listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server encountered error")
		return
	}
	log.Info().Msg("server stopped")
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		now := time.Now().UTC()
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return &storage{
			sessions: memory.NewSessionRepository(),
			teachers: memory.NewTeacherRepository(memory.SeedTeachers(now)...),
			users:    memory.NewUserRepository(memory.SeedUsers(now)...),
			events:   memory.NewEventRepository(),
			close:    func(context.Context) {},
		}, nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &storage{
		sessions: mongo.NewSessionRepository(db),
		teachers: mongo.NewTeacherRepository(db),
		users:    mongo.NewUserRepository(db),
		events:   mongo.NewEventRepository(db),
		db:       db,
		close: func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				log.Error().Err(err).Msg("failed to disconnect mongo")
			}
		},
	}, nil
}

type lockers struct {
	sessions ports.SessionLocker
	users    ports.UserLocker
	rdb      *goredis.Client
}

func openLockers(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*lockers, error) {
	if cfg.LockBackend == config.LockMemory {
		return &lockers{
			sessions: lock.NewKeyedMutex(cfg.LockWait),
			users:    lock.NewKeyedMutex(cfg.LockWait),
		}, nil
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	lockLog := log.With().Str("component", "locker").Logger()
	return &lockers{
		sessions: redis.NewLocker(rdb, redis.ScopeSession, cfg.LockTTL, cfg.LockWait, lockLog),
		users:    redis.NewLocker(rdb, redis.ScopeUser, cfg.LockTTL, cfg.LockWait, lockLog),
		rdb:      rdb,
	}, nil
}
