// @title                       User Admin API
// @version                     1.0
// @description                 Session-gated, role-based user administration.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/user-admin/internal/api"
	"github.com/99minutos/user-admin/internal/api/handler"
	"github.com/99minutos/user-admin/internal/core/guard"
	"github.com/99minutos/user-admin/internal/core/ports"
	"github.com/99minutos/user-admin/internal/core/service"
	"github.com/99minutos/user-admin/internal/infrastructure/config"
	"github.com/99minutos/user-admin/internal/infrastructure/db/memory"
	mongodb "github.com/99minutos/user-admin/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/user-admin/internal/infrastructure/db/redis"
	"github.com/99minutos/user-admin/internal/infrastructure/queue"
	"github.com/99minutos/user-admin/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "user-admin: %v\n", err)
		os.Exit(1)
	}
}

// storage bundles the driver-specific implementations of the ports.
type storage struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	audit    ports.AuditRepository
	tx       ports.Transactor
	throttle ports.LoginThrottle
	checks   map[string]handler.Check
	close    func(context.Context)
}

func run(ctx context.Context) error {
	// .env is optional outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "user-admin",
	})

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close(context.Background())

	var authOpts []service.AuthOption
	if cfg.SignIn.MaxAttempts > 0 {
		authOpts = append(authOpts, service.WithLoginThrottle(store.throttle))
	}
	auth := service.NewAuthService(store.users, store.sessions, cfg.Auth.Secret, cfg.Auth.SessionTTL,
		log.With().Str("component", "auth").Logger(), authOpts...)

	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, store.audit,
		log.With().Str("component", "audit").Logger())
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	users := service.NewUserService(service.UserServiceOptions{
		Repo:     store.users,
		Sessions: auth,
		Tx:       store.tx,
		Audit:    dispatcher,
		AuditLog: store.audit,
		Logger:   log.With().Str("component", "users").Logger(),
	})

	if err := service.BootstrapAdmin(ctx, store.users, auth, ports.SignUpInput{
		Name:     cfg.Bootstrap.Name,
		Email:    cfg.Bootstrap.Email,
		Password: cfg.Bootstrap.Password,
	}, log); err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		Logger:   log,
		Users:    users,
		Sessions: auth,
		Guard:    guard.New(guard.WithWaitTimeout(cfg.Guard.WaitTimeout)),
		Health:   handler.NewHealthHandler(store.checks),
		Cookie: handler.CookieConfig{
			Name:   cfg.Auth.SessionCookie,
			Secure: cfg.IsProduction(),
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Storage == config.DriverMemory {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return &storage{
			users:    memory.NewUserRepository(),
			sessions: memory.NewSessionStore(),
			audit:    memory.NewAuditRepository(),
			tx:       memory.Transactor{},
			throttle: memory.NewLoginThrottle(cfg.SignIn.MaxAttempts, cfg.SignIn.Lockout),
			close:    func(context.Context) {},
		}, nil
	}

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, err
	}

	users := mongodb.NewUserRepository(db)
	audit := mongodb.NewAuditRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure user indexes")
	}
	if err := audit.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure audit indexes")
	}

	return &storage{
		users:    users,
		sessions: redisdb.NewSessionStore(rdb),
		audit:    audit,
		tx:       mongodb.NewTransactor(mongoClient, cfg.Mongo.Transactions),
		throttle: redisdb.NewLoginThrottle(rdb, cfg.SignIn.MaxAttempts, cfg.SignIn.Lockout),
		checks: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		close: func(ctx context.Context) {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close")
			}
			if err := mongoClient.Disconnect(ctx); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		},
	}, nil
}
