package account

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jetrca92/geotagger-backend/internal/auth"
	"github.com/Jetrca92/geotagger-backend/internal/core/errs"
	"github.com/Jetrca92/geotagger-backend/internal/store/sqlite"
)

func newTestService(t *testing.T) (*Service, *auth.JWTProvider) {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "geotagger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(db))

	jwtp, err := auth.NewJWTProvider("test-secret", time.Hour)
	require.NoError(t, err)
	return NewService(sqlite.NewWithDB(db).Users(), jwtp, 10, zerolog.Nop()), jwtp
}

func validInput() RegisterInput {
	return RegisterInput{Email: "Ana@Example.com ", Password: "secret1", FirstName: "Ana", LastName: "Novak"}
}

func TestRegisterLoginMe(t *testing.T) {
	ctx := context.Background()
	svc, jwtp := newTestService(t)

	u, err := svc.Register(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, 10, u.Points)

	tok, err := svc.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	id, err := jwtp.ResolveCaller(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	me, err := svc.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
	assert.Equal(t, 10, me.Points)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	tests := map[string]func(*RegisterInput){
		"bad email":      func(in *RegisterInput) { in.Email = "nope" },
		"short password": func(in *RegisterInput) { in.Password = "12345" },
		"missing name":   func(in *RegisterInput) { in.FirstName = " " },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Register(context.Background(), in)
			assert.True(t, errs.IsValidationError(err), "got %v", err)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Register(ctx, validInput())
	assert.True(t, errs.IsConflictError(err), "got %v", err)
}

func TestLogin_Failures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.True(t, errs.IsNotFoundError(err))

	_, err = svc.Login(ctx, "ana@example.com", "wrong-password")
	assert.True(t, errs.IsValidationError(err))

	_, err = svc.Login(ctx, "", "")
	assert.True(t, errs.IsValidationError(err))
}

func TestMe_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Me(context.Background(), "")
	assert.True(t, errs.IsUnauthenticatedError(err))

	_, err = svc.Me(context.Background(), "6f1c3c1e-0000-4000-8000-000000000000")
	assert.True(t, errs.IsNotFoundError(err))
}

func TestEnsureUser_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.EnsureUser(ctx, validInput())
	require.NoError(t, err)
	b, err := svc.EnsureUser(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
}

func strp(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	u, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	got, err := svc.UpdateProfile(ctx, u.ID, ProfilePatch{FirstName: strp(" Maja "), Email: strp("MAJA@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Maja", got.FirstName)
	assert.Equal(t, "Novak", got.LastName)
	assert.Equal(t, "maja@example.com", got.Email)
	assert.Equal(t, 10, got.Points)

	_, err = svc.Login(ctx, "maja@example.com", "secret1")
	require.NoError(t, err)

	other := validInput()
	other.Email = "bob@example.com"
	_, err = svc.Register(ctx, other)
	require.NoError(t, err)
	_, err = svc.UpdateProfile(ctx, u.ID, ProfilePatch{Email: strp("bob@example.com")})
	assert.True(t, errs.IsConflictError(err), "got %v", err)
}

func TestUpdateProfile_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	u, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	tests := map[string]struct {
		userID string
		patch  ProfilePatch
		check  func(error) bool
	}{
		"anonymous":   {"", ProfilePatch{FirstName: strp("X")}, errs.IsUnauthenticatedError},
		"empty patch": {u.ID, ProfilePatch{}, errs.IsValidationError},
		"bad email":   {u.ID, ProfilePatch{Email: strp("nope")}, errs.IsValidationError},
		"blank name":  {u.ID, ProfilePatch{LastName: strp("  ")}, errs.IsValidationError},
		"unknown":     {"6f1c3c1e-0000-4000-8000-000000000000", ProfilePatch{FirstName: strp("X")}, errs.IsNotFoundError},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.UpdateProfile(ctx, tt.userID, tt.patch)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	u, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, u.ID, "wrong-one", "secret2")
	assert.True(t, errs.IsValidationError(err), "got %v", err)
	err = svc.UpdatePassword(ctx, u.ID, "secret1", "secret1")
	assert.True(t, errs.IsValidationError(err), "got %v", err)
	err = svc.UpdatePassword(ctx, u.ID, "secret1", "123")
	assert.True(t, errs.IsValidationError(err), "got %v", err)
	err = svc.UpdatePassword(ctx, "", "secret1", "secret2")
	assert.True(t, errs.IsUnauthenticatedError(err), "got %v", err)
	err = svc.UpdatePassword(ctx, "6f1c3c1e-0000-4000-8000-000000000000", "secret1", "secret2")
	assert.True(t, errs.IsNotFoundError(err), "got %v", err)

	require.NoError(t, svc.UpdatePassword(ctx, u.ID, "secret1", "secret2"))
	_, err = svc.Login(ctx, "ana@example.com", "secret1")
	assert.True(t, errs.IsValidationError(err))
	_, err = svc.Login(ctx, "ana@example.com", "secret2")
	require.NoError(t, err)

	me, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, me.Points)
}
