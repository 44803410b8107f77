package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		slug TEXT NOT NULL UNIQUE,
		image_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS subcategories (
		id BIGSERIAL PRIMARY KEY,
		category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		image_url TEXT NOT NULL DEFAULT '',
		UNIQUE (category_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS sizes (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		abbreviation TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		sub_category_id BIGINT REFERENCES subcategories(id) ON DELETE SET NULL,
		description TEXT NOT NULL DEFAULT '',
		regular_price NUMERIC(10,2) NOT NULL,
		sale_price NUMERIC(10,2),
		size_value NUMERIC(10,2),
		size_id BIGINT REFERENCES sizes(id) ON DELETE RESTRICT,
		image_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		on_sale BOOLEAN NOT NULL DEFAULT FALSE,
		is_new BOOLEAN NOT NULL DEFAULT FALSE,
		slug TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_open ON orders (user_id) WHERE NOT completed`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity INT NOT NULL DEFAULT 1 CHECK (quantity >= 1),
		UNIQUE (order_id, product_id)
	)`,
}

// EnsureSchema creates the tables the services expect. Every statement is
// idempotent, so running it on each start is safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
