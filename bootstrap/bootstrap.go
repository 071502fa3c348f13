// Package bootstrap assembles the process from configuration: persistence, Redis, the
// identity verifier, the realtime hub, the outbox dispatcher and the HTTP app.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"dwello-backend/internal/application/events"
	"dwello-backend/internal/config"
	"dwello-backend/internal/infrastructure/database"
	"dwello-backend/internal/infrastructure/identity"
	"dwello-backend/internal/infrastructure/realtime"
	"dwello-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Runtime is a fully wired process. Start launches the background loops; Close releases
// connections after the listeners have stopped.
type Runtime struct {
	Config     *config.Config
	App        *fiber.App
	Realtime   *http.Server
	Hub        *realtime.Hub
	Dispatcher *events.Dispatcher
	DB         *gorm.DB
	Rdb        *redis.Client
}

// Build opens every dependency named by cfg. DATABASE_URL is required; REDIS_URL is optional.
func Build(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("database migrate: %w", err)
	}
	log.Info().Msg("Postgres connected")

	rdb, err := OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	verifier, err := NewVerifier(ctx, cfg, rdb)
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(cfg.CORSOrigin)
	dispatcher := events.NewDispatcher(db, NewPublisher(cfg, rdb, hub), cfg.EventsPollInterval)

	app, err := router.CreateApp(router.Deps{
		Config:   cfg,
		DB:       db,
		Rdb:      rdb,
		Verifier: verifier,
		Events:   dispatcher,
		Clients:  hub.ClientCount,
	})
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Config:     cfg,
		App:        app,
		Realtime:   realtime.NewServer(net.JoinHostPort("", cfg.RealtimePort), hub, cfg.CORSOrigin),
		Hub:        hub,
		Dispatcher: dispatcher,
		DB:         db,
		Rdb:        rdb,
	}, nil
}

// OpenRedis parses url and pings the server. An empty url returns a nil client.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		log.Warn().Msg("REDIS_URL not set; health counters, token cache and cross-instance events disabled")
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info().Msg("Redis connected")
	return rdb, nil
}

// NewVerifier picks the identity provider from AUTH_PROVIDER and puts the Redis cache in
// front of it when both Redis and a positive TOKEN_CACHE_TTL are configured.
func NewVerifier(ctx context.Context, cfg *config.Config, rdb *redis.Client) (identity.Verifier, error) {
	var v identity.Verifier
	switch cfg.AuthProvider {
	case "firebase", "":
		fv, err := identity.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		v = fv
	case "hmac":
		if cfg.AuthHMACSecret == "" {
			return nil, errors.New("AUTH_HMAC_SECRET is required when AUTH_PROVIDER=hmac")
		}
		if cfg.IsProduction() {
			log.Warn().Msg("hmac identity provider enabled in production")
		}
		v = &identity.HMACVerifier{Secret: []byte(cfg.AuthHMACSecret), Issuer: cfg.AuthHMACIssuer}
	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.AuthProvider)
	}
	if rdb != nil && cfg.TokenCacheTTL > 0 {
		v = &identity.CachedVerifier{Next: v, Rdb: rdb, TTL: cfg.TokenCacheTTL}
	}
	return v, nil
}

// NewPublisher fans events out through Redis when available so every instance's hub
// receives them; otherwise straight to the local hub.
func NewPublisher(cfg *config.Config, rdb *redis.Client, hub *realtime.Hub) events.Publisher {
	if rdb != nil {
		return &realtime.RedisPublisher{Rdb: rdb, Channel: cfg.EventsChannel}
	}
	return &realtime.HubPublisher{Hub: hub}
}

// Start runs the hub, the Redis subscriber and the dispatcher until ctx is done.
func (r *Runtime) Start(ctx context.Context) {
	go r.Hub.Run(ctx)
	if r.Rdb != nil {
		go realtime.Subscribe(ctx, r.Rdb, r.Config.EventsChannel, r.Hub)
	}
	go r.Dispatcher.Run(ctx)
}

// Close releases Redis and the database pool.
func (r *Runtime) Close() {
	if r.Rdb != nil {
		if err := r.Rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}
	if sqlDB, err := r.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Warn().Err(err).Msg("database close")
		}
	}
}
