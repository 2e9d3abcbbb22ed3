package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/accounthub/internal/account"
	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/geocoder89/accounthub/internal/repo/memory"
	"github.com/geocoder89/accounthub/internal/repo/postgres"
	redisrepo "github.com/geocoder89/accounthub/internal/repo/redis"
	"github.com/geocoder89/accounthub/internal/repo/sqlite"
)

// Store is the initialized credential store handle. It is created once at
// startup and passed explicitly to the account service and health checks.
type Store struct {
	Driver string
	Users  account.UserStore

	ping  func(ctx context.Context) error
	close func()
}

func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the configured backend and applies migrations where the
// backend has a schema.
func Open(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := NewPool(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}

		if err := MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}

		log.Info("credential store ready", "driver", cfg.StoreDriver)
		return &Store{
			Driver: cfg.StoreDriver,
			Users:  postgres.NewUsersRepo(pool, prom),
			ping:   pool.Ping,
			close:  pool.Close,
		}, nil

	case config.DriverSQLite:
		sqlDB, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}

		if err := MigrateSQLite(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}

		log.Info("credential store ready", "driver", cfg.StoreDriver, "path", cfg.SQLitePath)
		return &Store{
			Driver: cfg.StoreDriver,
			Users:  sqlite.NewUsersRepo(sqlDB, prom),
			ping:   sqlDB.PingContext,
			close:  func() { _ = sqlDB.Close() },
		}, nil

	case config.DriverRedis:
		rdb, err := redisrepo.Connect(ctx, redisrepo.ClientConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis connect failed: %w", err)
		}

		repo := redisrepo.NewUsersRepo(rdb, redisrepo.DefaultKeyPrefix)

		log.Info("credential store ready", "driver", cfg.StoreDriver, "addr", cfg.RedisAddr)
		return &Store{
			Driver: cfg.StoreDriver,
			Users:  repo,
			ping:   repo.Ping,
			close:  func() { _ = rdb.Close() },
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory credential store; accounts are lost on restart")
		repo := memory.NewUsersRepo()
		return &Store{
			Driver: cfg.StoreDriver,
			Users:  repo,
			ping:   repo.Ping,
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
