package storetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jetrca92/geotagger-backend/internal/model"
	"github.com/Jetrca92/geotagger-backend/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// makeStore must return a store with the schema in place; tests only rely on
// rows they create themselves, so the database may be shared.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("Users", func(t *testing.T) { testUsers(t, makeStore(t)) })
	t.Run("Locations", func(t *testing.T) { testLocations(t, makeStore(t)) })
	t.Run("Guesses", func(t *testing.T) { testGuesses(t, makeStore(t)) })
	t.Run("TxRollback", func(t *testing.T) { testTxRollback(t, makeStore(t)) })
	t.Run("BalanceLockSerializes", func(t *testing.T) { testBalanceLockSerializes(t, makeStore(t)) })
	t.Run("Actions", func(t *testing.T) { testActions(t, makeStore(t)) })
}

// NewUser creates a user with a unique email and the given balance.
func NewUser(t *testing.T, s store.Store, points int) *model.User {
	t.Helper()
	id := uuid.New().String()
	u, err := s.Users().Create(context.Background(), &model.User{
		Email:     "player-" + id + "@example.test",
		FirstName: "Ana",
		LastName:  "Novak",
		Points:    points,
	}, "hash")
	require.NoError(t, err)
	return u
}

// NewLocation creates a location owned by ownerID.
func NewLocation(t *testing.T, s store.Store, ownerID string, lat, lng float64) *model.Location {
	t.Helper()
	l, err := s.Locations().Create(context.Background(), &model.Location{
		Latitude:  lat,
		Longitude: lng,
		Address:   "Bled, Slovenia",
		OwnerID:   ownerID,
	})
	require.NoError(t, err)
	return l
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	avatar := "https://cdn.example.test/a.png"
	email := "user-" + uuid.New().String() + "@example.test"

	u, err := s.Users().Create(ctx, &model.User{Email: email, FirstName: "Jan", LastName: "Kos", Points: 10, AvatarURL: &avatar}, "secret-hash")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := s.Users().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, email, got.Email)
	assert.Equal(t, 10, got.Points)
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, avatar, *got.AvatarURL)

	byEmail, hash, err := s.Users().GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "secret-hash", hash)

	_, err = s.Users().Create(ctx, &model.User{Email: email}, "other")
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = s.Users().Get(ctx, uuid.New().String())
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, _, err = s.Users().GetByEmail(ctx, "missing-"+uuid.New().String()+"@example.test")
	assert.ErrorIs(t, err, model.ErrNotFound)

	testUserUpdates(t, s, u)
}

func testUserUpdates(t *testing.T, s store.Store, u *model.User) {
	ctx := context.Background()
	first := "Janez"
	newEmail := "renamed-" + uuid.New().String() + "@example.test"

	updated, err := s.Users().Update(ctx, u.ID, model.UserPatch{FirstName: &first, Email: &newEmail})
	require.NoError(t, err)
	assert.Equal(t, "Janez", updated.FirstName)
	assert.Equal(t, "Kos", updated.LastName, "untouched fields keep their value")
	assert.Equal(t, newEmail, updated.Email)
	assert.Equal(t, 10, updated.Points)

	other := NewUser(t, s, 3)
	_, err = s.Users().Update(ctx, other.ID, model.UserPatch{Email: &newEmail})
	assert.ErrorIs(t, err, model.ErrConflict)
	_, err = s.Users().Update(ctx, uuid.New().String(), model.UserPatch{FirstName: &first})
	assert.ErrorIs(t, err, model.ErrNotFound)

	hash, err := s.Users().PasswordHash(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret-hash", hash)
	require.NoError(t, s.Users().SetPasswordHash(ctx, u.ID, "rotated-hash"))
	hash, err = s.Users().PasswordHash(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "rotated-hash", hash)

	assert.ErrorIs(t, s.Users().SetPasswordHash(ctx, uuid.New().String(), "x"), model.ErrNotFound)
	_, err = s.Users().PasswordHash(ctx, uuid.New().String())
	assert.ErrorIs(t, err, model.ErrNotFound)

	got, err := s.Users().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Points, "profile and password updates leave points alone")
}

func testLocations(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := NewUser(t, s, 10)

	l1 := NewLocation(t, s, owner.ID, 46.378, 13.837)
	l2 := NewLocation(t, s, owner.ID, 44.258, 14.121)

	got, err := s.Locations().Get(ctx, l1.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.InDelta(t, 46.378, got.Latitude, 1e-9)
	assert.Nil(t, got.ImageURL)

	mine, err := s.Locations().ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	n, err := s.Locations().Count(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 2)

	page, err := s.Locations().List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	addr := "Lake Bled"
	img := "https://cdn.example.test/bled.jpg"
	updated, err := s.Locations().Update(ctx, l1.ID, model.LocationPatch{Address: &addr, ImageURL: &img})
	require.NoError(t, err)
	assert.Equal(t, addr, updated.Address)
	require.NotNil(t, updated.ImageURL)
	assert.Equal(t, img, *updated.ImageURL)
	assert.InDelta(t, 46.378, updated.Latitude, 1e-9, "untouched fields keep their value")

	_, err = s.Locations().Update(ctx, uuid.New().String(), model.LocationPatch{Address: &addr})
	assert.ErrorIs(t, err, model.ErrNotFound)

	guesser := NewUser(t, s, 10)
	_, err = s.Guesses().Insert(ctx, &model.Guess{GuessedLatitude: 44, GuessedLongitude: 14, Address: "x", ErrorDistance: 10, OwnerID: guesser.ID, LocationID: l2.ID})
	require.NoError(t, err)

	require.NoError(t, s.Locations().Delete(ctx, l2.ID))
	_, err = s.Locations().Get(ctx, l2.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	history, err := s.Guesses().ListByOwner(ctx, guesser.ID)
	require.NoError(t, err)
	assert.Empty(t, history, "guesses are removed with their location")

	assert.ErrorIs(t, s.Locations().Delete(ctx, l2.ID), model.ErrNotFound)
}

func testGuesses(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := NewUser(t, s, 10)
	alice := NewUser(t, s, 10)
	bob := NewUser(t, s, 10)
	loc := NewLocation(t, s, owner.ID, 46.378, 13.837)
	other := NewLocation(t, s, owner.ID, 0, 0)

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	insert := func(u *model.User, locID string, dist float64, at time.Duration) *model.Guess {
		g, err := s.Guesses().Insert(ctx, &model.Guess{
			GuessedLatitude:  45,
			GuessedLongitude: 14,
			Address:          "somewhere",
			ErrorDistance:    dist,
			OwnerID:          u.ID,
			LocationID:       locID,
			CreatedAt:        base.Add(at),
		})
		require.NoError(t, err)
		return g
	}

	g1 := insert(alice, loc.ID, 500, 0)
	g2 := insert(bob, loc.ID, 100, time.Second)
	g3 := insert(alice, loc.ID, 100, 2*time.Second)
	g4 := insert(bob, loc.ID, 900, 3*time.Second)
	insert(alice, other.ID, 1, 4*time.Second)

	assert.NotEmpty(t, g1.ID)
	assert.Equal(t, alice.ID, g1.Owner.ID)
	assert.Equal(t, "Ana", g1.Owner.FirstName)
	assert.Equal(t, "Novak", g1.Owner.LastName)

	n, err := s.Guesses().CountByOwnerAndLocation(ctx, alice.ID, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = s.Guesses().CountByOwnerAndLocation(ctx, owner.ID, loc.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	top, err := s.Guesses().ListByLocation(ctx, loc.ID, 13)
	require.NoError(t, err)
	require.Len(t, top, 4)
	assert.Equal(t, []string{g2.ID, g3.ID, g1.ID, g4.ID}, guessIDs(top), "distance asc, earliest first on ties")
	assert.Equal(t, bob.ID, top[0].Owner.ID)

	top2, err := s.Guesses().ListByLocation(ctx, loc.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{g2.ID, g3.ID}, guessIDs(top2))

	none, err := s.Guesses().ListByLocation(ctx, uuid.New().String(), 13)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	history, err := s.Guesses().ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].CreatedAt.After(history[i-1].CreatedAt), "history is newest first")
	}
	assert.Equal(t, g1.ID, history[2].ID)

	// Equal timestamps fall back to id order so pages are stable.
	t1 := insert(bob, other.ID, 5, 5*time.Second)
	t2 := insert(bob, other.ID, 6, 5*time.Second)
	want := []string{t1.ID, t2.ID}
	sort.Sort(sort.Reverse(sort.StringSlice(want)))
	for i := 0; i < 3; i++ {
		bobs, err := s.Guesses().ListByOwner(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, bobs, 4)
		assert.Equal(t, want, guessIDs(bobs[:2]))
	}
}

func testTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := NewUser(t, s, 0)
	player := NewUser(t, s, 10)
	loc := NewLocation(t, s, owner.ID, 10, 10)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		bal, err := tx.Balances().Lock(ctx, player.ID)
		require.NoError(t, err)
		require.NoError(t, tx.Balances().Set(ctx, player.ID, bal-5))
		_, err = tx.Guesses().Insert(ctx, &model.Guess{Address: "a", ErrorDistance: 1, OwnerID: player.ID, LocationID: loc.ID})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Users().Get(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Points, "debit rolled back")
	n, err := s.Guesses().CountByOwnerAndLocation(ctx, player.ID, loc.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "guess rolled back")

	err = s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Balances().Set(ctx, player.ID, 7); err != nil {
			return err
		}
		_, err := tx.Guesses().Insert(ctx, &model.Guess{Address: "a", ErrorDistance: 1, OwnerID: player.ID, LocationID: loc.ID})
		return err
	})
	require.NoError(t, err)
	got, err = s.Users().Get(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Points)

	err = s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.Balances().Lock(ctx, uuid.New().String())
		return err
	})
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.Balances().Set(ctx, player.ID, -1)
	})
	assert.Error(t, err, "points cannot go negative")
}

func testBalanceLockSerializes(t *testing.T, s store.Store) {
	ctx := context.Background()
	const workers = 8
	u := NewUser(t, s, 100)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
				bal, err := tx.Balances().Lock(ctx, u.ID)
				if err != nil {
					return err
				}
				time.Sleep(2 * time.Millisecond)
				return tx.Balances().Set(ctx, u.ID, bal-1)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.Users().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 100-workers, got.Points, "no lost updates")
}

func testActions(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := NewUser(t, s, 0)
	btn := model.ComponentButton
	val := "Bled"

	first, err := s.Actions().Create(ctx, &model.ActionLog{UserID: u.ID, Action: model.ActionClick, ComponentType: &btn, Location: "location/edit", CreatedAt: time.Now().UTC().Add(time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, u.ID, first.User.ID)
	assert.Equal(t, "Ana", first.User.FirstName)

	second, err := s.Actions().Create(ctx, &model.ActionLog{UserID: u.ID, Action: model.ActionChangedValue, NewValue: &val, Location: "location/edit", CreatedAt: time.Now().UTC().Add(2 * time.Minute)})
	require.NoError(t, err)

	recent, err := s.Actions().ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.ID, recent[0].ID)
	assert.Equal(t, first.ID, recent[1].ID)
	require.NotNil(t, recent[1].ComponentType)
	assert.Equal(t, model.ComponentButton, *recent[1].ComponentType)
	require.NotNil(t, recent[0].NewValue)
	assert.Equal(t, "Bled", *recent[0].NewValue)
}

func guessIDs(gs []*model.Guess) []string {
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.ID
	}
	return out
}
