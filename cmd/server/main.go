// @title                       Membership Auth API
// @version                     1.0
// @description                 Authentication and authorization for the association membership platform.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
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
	"github.com/rs/zerolog"

	"github.com/elikia/membership-auth/internal/api"
	"github.com/elikia/membership-auth/internal/api/handler"
	"github.com/elikia/membership-auth/internal/api/metrics"
	"github.com/elikia/membership-auth/internal/core/ports"
	"github.com/elikia/membership-auth/internal/core/service"
	"github.com/elikia/membership-auth/internal/infrastructure/config"
	"github.com/elikia/membership-auth/internal/infrastructure/db/mongo"
	"github.com/elikia/membership-auth/internal/infrastructure/db/redis"
	"github.com/elikia/membership-auth/internal/infrastructure/queue"
	"github.com/elikia/membership-auth/pkg/logger"
)

const (
	serviceName     = "membership-auth"
	shutdownTimeout = 10 * time.Second
)

func main() {
	// .env is for local development; deployed environments set variables directly.
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger depends on config; fall back to a bare one to report why we cannot start.
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	// --- Core services (configuration errors are fatal) ---
	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret:   cfg.Auth.JWTSecret,
		Lifetime: cfg.Auth.TokenLifetime,
		Issuer:   cfg.Auth.TokenIssuer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("token service")
	}
	passwords, err := service.NewCredentialVerifier(cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("credential verifier")
	}
	lockout, err := service.NewLockoutPolicy(cfg.Auth.LockoutThreshold, cfg.Auth.LockoutDuration)
	if err != nil {
		log.Fatal().Err(err).Msg("lockout policy")
	}

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	identities := mongo.NewIdentityRepository(db)
	roleRepo := mongo.NewRoleRepository(db)
	loginEvents := mongo.NewLoginEventRepository(db)
	if err := identities.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("identity indexes")
	}
	if err := roleRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("role indexes")
	}
	roles := service.NewRoleService(roleRepo, logger.Component("roles"))
	if err := roles.EnsureDefaults(ctx); err != nil {
		log.Fatal().Err(err).Msg("seed roles")
	}
	if err := loginEvents.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("login event indexes")
	}

	health := map[string]handler.HealthCheck{
		"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	// Redis only coordinates login attempts across replicas; without it each
	// replica serializes locally and the versioned writes keep counts exact.
	var locker ports.IdentityLocker = service.NewLocalLocker()
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, login lock is process-local")
	} else {
		defer rdb.Close()
		locker = redis.NewLoginLocker(rdb, cfg.Auth.LoginLockTTL, cfg.Auth.LoginLockTTL).
			WithFallback(locker, logger.Component("login-lock"))
		health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// --- Login audit ---
	audit := queue.NewAuditDispatcher(cfg.AuditWorkers, loginEvents, logger.Component("audit"), metrics.AuditEventsDroppedTotal.Inc)
	auditCtx, stopAudit := context.WithCancel(context.Background())
	audit.Start(auditCtx)

	login := service.NewLoginService(service.LoginDeps{
		Identities: identities,
		Passwords:  passwords,
		Tokens:     tokens,
		Lockout:    lockout,
		Locker:     locker,
		Auditor:    metrics.ObserveLoginEvents(audit),
		Log:        logger.Component("login"),
	})
	accounts := service.NewAccountService(identities, identities, roleRepo, passwords, logger.Component("accounts"))

	e := api.NewRouter(api.RouterDeps{
		Login:          login,
		Accounts:       accounts,
		Roles:          roles,
		Tokens:         tokens,
		Health:         health,
		Log:            log,
		LoginRateLimit: cfg.Auth.LoginRateLimit,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	// In-flight logins are done; flush what is left of the audit queue.
	stopAudit()
	audit.Wait()

	log.Info().Msg("server stopped")
}
