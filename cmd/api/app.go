package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hms-api/internal/config"
	"github.com/jwalitptl/hms-api/internal/repository/postgres"
	"github.com/jwalitptl/hms-api/internal/service/auth"
	"github.com/jwalitptl/hms-api/internal/service/event"
	pkgauth "github.com/jwalitptl/hms-api/pkg/auth"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/messaging/redis"
	"github.com/jwalitptl/hms-api/pkg/security"
)

// app holds what every subcommand needs: configuration, the application
// logger and the database pool.
type app struct {
	cfg *config.Config
	log *logger.Logger
	db  *sqlx.DB
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	l := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})
	log.Logger = *l.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: l, db: db}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Error(err, "Failed to close database")
	}
}

// redisClient connects to Redis when a URL is configured. Development runs
// fall back to nil on failure so the API can start without Redis.
func (a *app) redisClient(ctx context.Context) (*goredis.Client, error) {
	if a.cfg.Redis.URL == "" {
		return nil, nil
	}
	client, err := redis.NewClient(ctx, redis.Config{
		URL:          a.cfg.Redis.URL,
		MaxRetries:   a.cfg.Redis.MaxRetries,
		RetryBackoff: a.cfg.Redis.RetryBackoff,
		PoolSize:     a.cfg.Redis.PoolSize,
		MinIdleConns: a.cfg.Redis.MinIdleConns,
	})
	if err != nil {
		if a.cfg.IsDevelopment() {
			a.log.Warn("Redis unavailable, continuing without it", "error", err.Error())
			return nil, nil
		}
		return nil, fmt.Errorf("redis: %w", err)
	}
	return client, nil
}

// authService builds the credential service. Revoked tokens live in Redis
// when available so every API instance sees a logout.
func (a *app) authService(base postgres.BaseRepository, rdb *goredis.Client) *auth.Service {
	denylist := pkgauth.NewMemoryDenylist()
	if rdb != nil {
		denylist = pkgauth.NewRedisDenylist(rdb)
	}

	return auth.NewService(
		postgres.NewTransactor(base),
		postgres.NewUserRepository(base),
		postgres.NewProfileRepository(base),
		pkgauth.NewTokenService(a.cfg.JWT.Secret, a.cfg.JWT.Expiry(), a.cfg.JWT.Issuer),
		denylist,
		security.NewBcryptHasher(0),
		event.NewEventService(postgres.NewOutboxRepository(base)),
	)
}
