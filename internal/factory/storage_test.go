package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jetrca92/geotagger-backend/internal/config"
	"github.com/Jetrca92/geotagger-backend/internal/store/storetest"
)

func TestNewStore_SQLite(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "geotagger.db")

	st, db, err := NewStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	u := storetest.NewUser(t, st, 10)
	got, err := st.Users().Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Points)
}

func TestNewStore_Errors(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.DBDriver = config.DriverPostgres
	_, _, err := NewStore(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "POSTGRES_DSN")

	cfg.DBDriver = "mysql"
	_, _, err = NewStore(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
