package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	cfg  *Config
	pool *pgxpool.Pool
}

func NewDB(cfg *Config) *DB {
	return &DB{cfg: cfg}
}

func (d *DB) Pool() *pgxpool.Pool {
	if d.pool == nil {
		panic("db not connected, call DB.Connect() first")
	}
	return d.pool
}

// Connect opens the pool and optionally creates the schema.
func (d *DB) Connect(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, d.cfg.DSN())
	if err != nil {
		return fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	// Optional schema creation for local/dev environments.
	if d.cfg.AutoMigrate {
		if err := ensureSchema(ctx, pool); err != nil {
			return fmt.Errorf("create schema resources: %w", err)
		}
	}

	d.pool = pool

	return nil
}

func (d *DB) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS items (
  id bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  seller_id bigint NOT NULL,
  title text NOT NULL,
  description text NOT NULL DEFAULT '',
  category text NOT NULL,
  price double precision NOT NULL DEFAULT 0,
  active boolean NOT NULL DEFAULT true,
  image_url text NOT NULL DEFAULT '',
  address text NOT NULL DEFAULT '',
  city_name text NOT NULL DEFAULT '',
  view_count integer NOT NULL DEFAULT 0,
  created_at timestamptz NOT NULL DEFAULT now(),
  updated_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_items_active ON items (active);
CREATE INDEX IF NOT EXISTS idx_items_seller ON items (seller_id, created_at DESC);

CREATE TABLE IF NOT EXISTS user_events (
  id bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  user_id bigint NOT NULL,
  kind text NOT NULL,
  item_id bigint,
  keyword text,
  created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_user_events_user ON user_events (user_id, created_at DESC);
`

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("exec schema ddl: %w", err)
	}
	return nil
}
