package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id UUID PRIMARY KEY,
        email TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        first_name TEXT NOT NULL DEFAULT '',
        last_name TEXT NOT NULL DEFAULT '',
        points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
        avatar_url TEXT,
        is_admin BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS locations (
        id UUID PRIMARY KEY,
        latitude DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
        longitude DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
        address TEXT NOT NULL,
        image_url TEXT,
        owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_locations_owner ON locations(owner_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS guesses (
        id UUID PRIMARY KEY,
        guessed_latitude DOUBLE PRECISION NOT NULL,
        guessed_longitude DOUBLE PRECISION NOT NULL,
        address TEXT NOT NULL,
        error_distance DOUBLE PRECISION NOT NULL CHECK (error_distance >= 0),
        owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        location_id UUID NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_guesses_owner_location ON guesses(owner_id, location_id)`,
	`CREATE INDEX IF NOT EXISTS idx_guesses_leaderboard ON guesses(location_id, error_distance, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_guesses_history ON guesses(owner_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS action_logs (
        id UUID PRIMARY KEY,
        user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        action TEXT NOT NULL,
        component_type TEXT,
        new_value TEXT,
        location TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_action_logs_created ON action_logs(created_at DESC)`,
}

// EnsureSchema creates tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, s := range schemaStatements {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
