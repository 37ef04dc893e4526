package store

import (
	"context"

	"github.com/Jetrca92/geotagger-backend/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Transactor
	Users() Users
	Locations() Locations
	Guesses() Guesses
	Actions() Actions
}

// Transactor runs fn inside a single database transaction. The transaction commits
// when fn returns nil and rolls back otherwise. Implementations serialize transactions
// that lock the same user balance.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of repositories bound to an open transaction.
type Tx interface {
	Balances() Balances
	Guesses() Guesses
}

// Balances is the transactional primitive the points ledger is built on.
type Balances interface {
	// Lock reads the user's balance and holds a write lock on it until the
	// transaction ends. Returns model.ErrNotFound for unknown users.
	Lock(ctx context.Context, userID string) (int, error)
	Set(ctx context.Context, userID string, points int) error
}

type Users interface {
	Create(ctx context.Context, u *model.User, passwordHash string) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	// GetByEmail returns the user and its password hash.
	GetByEmail(ctx context.Context, email string) (*model.User, string, error)
	// Update applies the non-nil patch fields. A taken email yields model.ErrConflict.
	Update(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error)
	PasswordHash(ctx context.Context, userID string) (string, error)
	SetPasswordHash(ctx context.Context, userID, passwordHash string) error
}

type Locations interface {
	Create(ctx context.Context, l *model.Location) (*model.Location, error)
	Get(ctx context.Context, locationID string) (*model.Location, error)
	List(ctx context.Context, limit, offset int) ([]*model.Location, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Location, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, locationID string, patch model.LocationPatch) (*model.Location, error)
	Delete(ctx context.Context, locationID string) error
}

type Guesses interface {
	Insert(ctx context.Context, g *model.Guess) (*model.Guess, error)
	CountByOwnerAndLocation(ctx context.Context, ownerID, locationID string) (int, error)
	// ListByLocation orders by error distance ascending, then creation time ascending.
	ListByLocation(ctx context.Context, locationID string, limit int) ([]*model.Guess, error)
	// ListByOwner orders by creation time descending.
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Guess, error)
}

type Actions interface {
	Create(ctx context.Context, a *model.ActionLog) (*model.ActionLog, error)
	ListRecent(ctx context.Context, limit int) ([]*model.ActionLog, error)
}
