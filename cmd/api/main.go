// Command api serves the CargoLive authentication endpoints.
//
//	@title						CargoLive API
//	@version					1.0
//	@description				Authentication service for the CargoLive backend.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/cargolive/cargolive-api/internal/api"
	"github.com/cargolive/cargolive-api/internal/api/handler"
	"github.com/cargolive/cargolive-api/internal/core/ports"
	"github.com/cargolive/cargolive-api/internal/core/service"
	"github.com/cargolive/cargolive-api/internal/infrastructure/db/mongo"
	"github.com/cargolive/cargolive-api/internal/infrastructure/db/postgres"
	"github.com/cargolive/cargolive-api/internal/infrastructure/db/redis"
	"github.com/cargolive/cargolive-api/internal/pkg/config"
	"github.com/cargolive/cargolive-api/internal/pkg/password"
	"github.com/cargolive/cargolive-api/internal/pkg/token"
	"github.com/cargolive/cargolive-api/pkg/logger"
)

const serviceName = "cargolive-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

// run wires every component and blocks until ctx is cancelled. Config, token
// and store errors abort startup; Redis and bootstrap errors only degrade.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	tokens, err := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}
	hasher := password.New(cfg.Auth.BcryptCost)

	users, readiness, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var locker service.Locker
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:       cfg.Redis.Addr,
			DB:         cfg.Redis.DB,
			ClientName: serviceName,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, bootstrap lock disabled")
		} else {
			defer rdb.Close()
			locker = redis.NewLocker(rdb)
			readiness["redis"] = redis.Ping(rdb)
		}
	}

	authService := service.NewAuthService(users, hasher, tokens, log.With().Str("component", "auth").Logger())

	if cfg.DemoBootstrap {
		service.NewDemoBootstrapper(users, hasher, locker, log.With().Str("component", "bootstrap").Logger()).Run(ctx)
	}

	e := api.NewRouter(api.Deps{
		AuthService:    authService,
		Readiness:      readiness,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// openStore connects the configured user store and returns its repository,
// its readiness checks and a close function.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.UserRepository, map[string]handler.PingFunc, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  serviceName,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		repo := mongo.NewUserRepository(db, cfg.Postgres.QueryTimeout)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		}
		return repo, map[string]handler.PingFunc{"mongodb": mongo.Ping(client)}, closeFn, nil

	default:
		db, err := postgres.Connect(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN(),
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
			Timeout:         cfg.Postgres.QueryTimeout,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("host", cfg.Postgres.Host).Str("database", cfg.Postgres.Name).Msg("connected to postgres")

		closeFn := func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("postgres close")
			}
		}
		repo := postgres.NewUserRepository(db, cfg.Postgres.QueryTimeout)
		return repo, map[string]handler.PingFunc{"postgres": db.PingContext}, closeFn, nil
	}
}
