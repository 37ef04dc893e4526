package sqlite

import (
	"database/sql"
	"fmt"
)

// EnsureSchema creates tables and indexes if they do not exist.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
            avatar_url TEXT,
            is_admin BOOLEAN NOT NULL DEFAULT 0,
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS locations (
            id TEXT PRIMARY KEY,
            latitude REAL NOT NULL CHECK (latitude BETWEEN -90 AND 90),
            longitude REAL NOT NULL CHECK (longitude BETWEEN -180 AND 180),
            address TEXT NOT NULL,
            image_url TEXT,
            owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_locations_owner ON locations(owner_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS guesses (
            id TEXT PRIMARY KEY,
            guessed_latitude REAL NOT NULL,
            guessed_longitude REAL NOT NULL,
            address TEXT NOT NULL,
            error_distance REAL NOT NULL CHECK (error_distance >= 0),
            owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            location_id TEXT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_guesses_owner_location ON guesses(owner_id, location_id);`,
		`CREATE INDEX IF NOT EXISTS idx_guesses_leaderboard ON guesses(location_id, error_distance, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_guesses_history ON guesses(owner_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS action_logs (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            action TEXT NOT NULL,
            component_type TEXT,
            new_value TEXT,
            location TEXT NOT NULL,
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_action_logs_created ON action_logs(created_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
