package factory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Jetrca92/geotagger-backend/internal/config"
	storepkg "github.com/Jetrca92/geotagger-backend/internal/store"
	storepg "github.com/Jetrca92/geotagger-backend/internal/store/postgres"
	storesqlite "github.com/Jetrca92/geotagger-backend/internal/store/sqlite"
)

// NewStore opens the store selected by cfg.DBDriver and ensures its schema.
// The returned *sql.DB must be closed by the caller.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, *sql.DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("GEOTAGGER_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := storepg.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info().Str("driver", cfg.DBDriver).Msg("store ready")
		return storepg.NewWithDB(db), db, nil

	case config.DriverSQLite:
		db, err := storesqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := storesqlite.EnsureSchema(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info().Str("driver", cfg.DBDriver).Str("path", cfg.SQLitePath).Msg("store ready")
		return storesqlite.NewWithDB(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
