// PostgreSQL pool construction.
//
// Connection parameters come from config: DATABASE_URL wins, otherwise the
// individual PG* variables are assembled into a DSN. Pool sizing is explicit:
// DB_POOL_MAX caps outstanding connections, DB_IDLE_TIMEOUT evicts idle ones,
// DB_CONNECT_TIMEOUT fails fast instead of queueing.

package db

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/crushd/backend/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPostgresPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	dsn, err := buildPostgresURL(cfg)
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	if maxConns, err := strconv.ParseInt(cfg.PoolMax, 10, 32); err == nil && maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	if idle, err := time.ParseDuration(cfg.IdleTimeout); err == nil && idle > 0 {
		poolCfg.MaxConnIdleTime = idle
	}
	if connect, err := time.ParseDuration(cfg.ConnectTimeout); err == nil && connect > 0 {
		poolCfg.ConnConfig.ConnectTimeout = connect
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return pool, nil
}

func buildPostgresURL(cfg config.PostgresConfig) (string, error) {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL, nil
	}

	if cfg.User == "" || cfg.Database == "" {
		return "", fmt.Errorf("missing required env: DATABASE_URL or PGUSER/PGDATABASE")
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, cfg.Port),
		Path:   cfg.Database,
	}
	if cfg.Password == "" {
		u.User = url.User(cfg.User)
	} else {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
