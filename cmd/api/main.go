// @title                       Aurora Advisory API
// @version                     1.0
// @description                 Consultation requests between clients and financial advisors.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "github.com/aurora-advisory/advisory-api/docs"
	"github.com/aurora-advisory/advisory-api/internal/api"
	"github.com/aurora-advisory/advisory-api/internal/api/handler"
	"github.com/aurora-advisory/advisory-api/internal/api/metrics"
	"github.com/aurora-advisory/advisory-api/internal/core/ports"
	"github.com/aurora-advisory/advisory-api/internal/core/service"
	"github.com/aurora-advisory/advisory-api/internal/infrastructure/config"
	mongostore "github.com/aurora-advisory/advisory-api/internal/infrastructure/db/mongo"
	pgstore "github.com/aurora-advisory/advisory-api/internal/infrastructure/db/postgres"
	redisstore "github.com/aurora-advisory/advisory-api/internal/infrastructure/db/redis"
	"github.com/aurora-advisory/advisory-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// stores groups the repositories of the selected backend.
type stores struct {
	users    ports.UserRepository
	profiles ports.ProfileRepository
	requests ports.RequestRepository
	ping     handler.HealthCheck
	close    func(context.Context) error
}

func main() {
	// A missing .env file is fine; the environment wins anyway.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "advisory-api",
	})

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	observer := metrics.Observer{}
	authService := service.NewAuthService(
		st.users,
		redisstore.NewLoginLimiter(rdb, redisstore.LimiterConfig{
			MaxAttempts: cfg.Auth.LoginMaxAttempts,
			Window:      cfg.Auth.LoginWindow,
		}),
		observer,
		service.TokenConfig{
			Secret:    cfg.Auth.JWTSecret,
			AccessTTL: cfg.Auth.AccessTTL,
			Issuer:    cfg.Auth.Issuer,
		},
		log,
	)
	workflowService := service.NewWorkflowService(
		st.requests,
		redisstore.NewIdempotencyStore(rdb, cfg.Auth.IdempotencyTTL),
		observer,
		log,
	)

	e := api.NewRouter(api.RouterDeps{
		Logger:   log,
		Auth:     authService,
		Profiles: service.NewProfileService(st.profiles, log),
		Workflow: workflowService,
		Query:    service.NewQueryService(st.requests),
		HealthChecks: map[string]handler.HealthCheck{
			cfg.StoreDriver: st.ping,
			"redis":         redisstore.Ping(rdb),
		},
		Registerer:       prometheus.DefaultRegisterer,
		Gatherer:         prometheus.DefaultGatherer,
		CORSAllowOrigins: cfg.CORSOrigins,
		FrontendDir:      cfg.FrontendDir,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
		return &stores{
			users:    mongostore.NewUserRepository(db),
			profiles: mongostore.NewProfileRepository(db),
			requests: mongostore.NewRequestRepository(db),
			ping:     mongostore.Ping(client),
			close:    client.Disconnect,
		}, nil

	default:
		db, err := pgstore.Connect(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, err
		}
		if err := pgstore.Migrate(ctx, db); err != nil {
			_ = pgstore.Close(db)
			return nil, err
		}
		return &stores{
			users:    pgstore.NewUserRepository(db),
			profiles: pgstore.NewProfileRepository(db),
			requests: pgstore.NewRequestRepository(db),
			ping:     pgstore.Ping(db),
			close: func(context.Context) error {
				return pgstore.Close(db)
			},
		}, nil
	}
}
