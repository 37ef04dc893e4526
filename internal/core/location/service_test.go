package location

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jetrca92/geotagger-backend/internal/core/errs"
	"github.com/Jetrca92/geotagger-backend/internal/model"
	"github.com/Jetrca92/geotagger-backend/internal/store"
	"github.com/Jetrca92/geotagger-backend/internal/store/sqlite"
	"github.com/Jetrca92/geotagger-backend/internal/store/storetest"
)

func setup(t *testing.T) (*Service, store.Store) {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "geotagger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(db))
	s := sqlite.NewWithDB(db)
	return NewService(s.Locations(), zerolog.Nop()), s
}

func ptr[T any](v T) *T { return &v }

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	svc, s := setup(t)
	owner := storetest.NewUser(t, s, 10)

	l, err := svc.Create(ctx, owner.ID, CreateInput{Latitude: 46.378, Longitude: 13.837, Address: " Bled "})
	require.NoError(t, err)
	assert.Equal(t, "Bled", l.Address)
	assert.Equal(t, owner.ID, l.OwnerID)

	got, err := svc.Find(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, got.ID)

	_, err = svc.Find(ctx, uuid.NewString())
	assert.True(t, errs.IsNotFoundError(err))
	_, err = svc.Find(ctx, "nope")
	assert.True(t, errs.IsValidationError(err))
}

func TestCreate_Validation(t *testing.T) {
	svc, s := setup(t)
	owner := storetest.NewUser(t, s, 10)
	tests := map[string]CreateInput{
		"lat high":   {Latitude: 91, Longitude: 0, Address: "x"},
		"lng low":    {Latitude: 0, Longitude: -181, Address: "x"},
		"no address": {Latitude: 0, Longitude: 0, Address: "  "},
	}
	for name, in := range tests {
		_, err := svc.Create(context.Background(), owner.ID, in)
		assert.True(t, errs.IsValidationError(err), name)
	}
	_, err := svc.Create(context.Background(), "", CreateInput{Address: "x"})
	assert.True(t, errs.IsUnauthenticatedError(err))
}

func TestUpdate_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc, s := setup(t)
	owner := storetest.NewUser(t, s, 10)
	other := storetest.NewUser(t, s, 10)
	l := storetest.NewLocation(t, s, owner.ID, 46.378, 13.837)

	_, err := svc.Update(ctx, owner.ID, l.ID, model.LocationPatch{})
	assert.True(t, errs.IsValidationError(err))

	_, err = svc.Update(ctx, other.ID, l.ID, model.LocationPatch{Address: ptr("Lake Bled")})
	assert.True(t, errs.IsForbiddenError(err))

	_, err = svc.Update(ctx, owner.ID, uuid.NewString(), model.LocationPatch{Address: ptr("x")})
	assert.True(t, errs.IsNotFoundError(err))

	_, err = svc.Update(ctx, owner.ID, l.ID, model.LocationPatch{Latitude: ptr(100.0)})
	assert.True(t, errs.IsValidationError(err))

	updated, err := svc.Update(ctx, owner.ID, l.ID, model.LocationPatch{Address: ptr("Lake Bled")})
	require.NoError(t, err)
	assert.Equal(t, "Lake Bled", updated.Address)
	assert.InDelta(t, 46.378, updated.Latitude, 1e-9)
}

func TestDelete_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc, s := setup(t)
	owner := storetest.NewUser(t, s, 10)
	other := storetest.NewUser(t, s, 10)
	l := storetest.NewLocation(t, s, owner.ID, 46.378, 13.837)

	assert.True(t, errs.IsForbiddenError(svc.Delete(ctx, other.ID, l.ID)))
	require.NoError(t, svc.Delete(ctx, owner.ID, l.ID))
	assert.True(t, errs.IsNotFoundError(svc.Delete(ctx, owner.ID, l.ID)))
}

func TestRandomAndList(t *testing.T) {
	ctx := context.Background()
	svc, s := setup(t)

	_, err := svc.Random(ctx)
	assert.True(t, errs.IsNotFoundError(err))

	owner := storetest.NewUser(t, s, 10)
	a := storetest.NewLocation(t, s, owner.ID, 1, 1)
	b := storetest.NewLocation(t, s, owner.ID, 2, 2)

	svc.intn = func(int) int { return 1 }
	r, err := svc.Random(ctx)
	require.NoError(t, err)
	assert.Contains(t, []string{a.ID, b.ID}, r.ID)

	all, err := svc.List(ctx, 0, -5)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := svc.ListByOwner(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
