// Package db opens the optional PostgreSQL connection backing the delivery
// history store and owns its schema migrations.
package db

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ConnectionConfig sizes the sql.DB pool. History writes are best-effort
// fire-and-forget, so the pool stays modest.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the pool defaults: 25 open, 10 idle,
// recycled after an hour, idle-closed after 30 minutes.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Open connects to the database named by DATABASE_URL through the pgx stdlib
// driver, applies the pool configuration, and verifies the connection with a
// bounded ping. Callers gate on DATABASE_URL being set before calling: a
// missing or unreachable database here is fatal.
func Open() *sql.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal(err)
	}

	cfg := poolConfigFromEnv()
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	slog.Info("database connection established successfully")
	return pool
}

// poolConfigFromEnv overlays DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME and DB_CONN_MAX_IDLE_TIME onto the defaults.
// Unparseable or non-positive values keep the default.
func poolConfigFromEnv() ConnectionConfig {
	cfg := DefaultConnectionConfig()

	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.MaxOpenConns = v
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.MaxIdleConns = v
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME"); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil && v > 0 {
			cfg.ConnMaxLifetime = v
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_TIME"); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil && v > 0 {
			cfg.ConnMaxIdleTime = v
		}
	}
	return cfg
}
