// Package store implements the Row Store Gateway (spec §4.A) over PostgreSQL
// using bun, with bounded jittered retry and error-class mapping.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// Config configures the underlying *sql.DB/bun.DB connection pool.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	Debug           bool
}

// NewDB opens a bun.DB backed by pgdriver over the configured DSN, wires a
// bundebug query hook (logging every query when Debug is set, only failed
// queries otherwise), and ensures the uuid-ossp extension is present.
func NewDB(cfg *Config) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(cfg.Debug)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	return db, nil
}

// Ping verifies the connection is alive.
func Ping(ctx context.Context, db *bun.DB) error {
	return db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func Close(db *bun.DB) error {
	return db.Close()
}

// Stats exposes *sql.DB pool statistics; no HTTP endpoint currently reports them.
func Stats(db *bun.DB) sql.DBStats {
	return db.DB.Stats()
}

// jitteredDelay returns delay scaled by a random factor in [0.5, 1.5), matching
// the "at most 3 attempts, jittered" requirement of spec §4.A.
func jitteredDelay(delay time.Duration) time.Duration {
	factor := 0.5 + rand.Float64()
	return time.Duration(float64(delay) * factor)
}
