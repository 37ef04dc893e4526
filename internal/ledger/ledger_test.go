package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jetrca92/geotagger-backend/internal/model"
)

type fakeBalances struct {
	points  map[string]int
	locks   int
	setErr  error
	lockErr error
}

func (f *fakeBalances) Lock(_ context.Context, userID string) (int, error) {
	f.locks++
	if f.lockErr != nil {
		return 0, f.lockErr
	}
	p, ok := f.points[userID]
	if !ok {
		return 0, model.ErrNotFound
	}
	return p, nil
}

func (f *fakeBalances) Set(_ context.Context, userID string, points int) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.points[userID] = points
	return nil
}

func TestTryDebit_Sequence(t *testing.T) {
	ctx := context.Background()
	b := &fakeBalances{points: map[string]int{"u1": 10}}
	l := New()

	next, err := l.TryDebit(ctx, b, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, 7, next)

	next, err = l.TryDebit(ctx, b, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	bal, err := l.TryDebit(ctx, b, "u1", 8)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 2, bal)
	assert.Equal(t, 2, b.points["u1"], "rejected debit leaves balance untouched")

	var ife InsufficientFundsError
	require.True(t, errors.As(err, &ife))
	assert.Equal(t, 2, ife.Balance)
	assert.Equal(t, 8, ife.Amount)
}

func TestTryDebit_ExactBalance(t *testing.T) {
	b := &fakeBalances{points: map[string]int{"u1": 5}}
	next, err := New().TryDebit(context.Background(), b, "u1", 5)
	require.NoError(t, err)
	assert.Zero(t, next)
}

func TestTryDebit_ZeroAmount(t *testing.T) {
	b := &fakeBalances{points: map[string]int{"u1": 0}}
	next, err := New().TryDebit(context.Background(), b, "u1", 0)
	require.NoError(t, err)
	assert.Zero(t, next)
}

func TestTryDebit_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")

	tests := []struct {
		name   string
		b      *fakeBalances
		user   string
		amount int
		want   error
	}{
		{"negative amount", &fakeBalances{points: map[string]int{"u1": 10}}, "u1", -1, ErrInvalidAmount},
		{"unknown user", &fakeBalances{points: map[string]int{}}, "ghost", 1, model.ErrNotFound},
		{"lock failure", &fakeBalances{points: map[string]int{"u1": 10}, lockErr: boom}, "u1", 1, boom},
		{"write failure", &fakeBalances{points: map[string]int{"u1": 10}, setErr: boom}, "u1", 1, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().TryDebit(ctx, tt.b, tt.user, tt.amount)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBalance_Locks(t *testing.T) {
	b := &fakeBalances{points: map[string]int{"u1": 4}}
	got, err := New().Balance(context.Background(), b, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, got)
	assert.Equal(t, 1, b.locks)
}
