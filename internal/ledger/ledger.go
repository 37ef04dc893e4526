// Package ledger owns the non-negative points balance of a user.
//
// Every operation takes a store.Balances bound to an open transaction, so a debit
// commits or rolls back together with whatever else the caller writes in that
// transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jetrca92/geotagger-backend/internal/store"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid debit amount")
)

// InsufficientFundsError reports the balance a debit was rejected against.
type InsufficientFundsError struct {
	Balance int
	Amount  int
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %d, amount %d", e.Balance, e.Amount)
}

// Is makes errors.Is(err, ErrInsufficientFunds) match.
func (e InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// Ledger performs conditional debits.
type Ledger struct{}

func New() *Ledger { return &Ledger{} }

// Balance returns the current balance and takes the per-user write lock for the
// rest of the transaction.
func (l *Ledger) Balance(ctx context.Context, balances store.Balances, userID string) (int, error) {
	return balances.Lock(ctx, userID)
}

// TryDebit subtracts amount from the user's balance and returns the new balance.
// It fails with InsufficientFundsError when the balance is below amount and leaves
// the balance untouched.
func (l *Ledger) TryDebit(ctx context.Context, balances store.Balances, userID string, amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	balance, err := balances.Lock(ctx, userID)
	if err != nil {
		return 0, err
	}
	if balance < amount {
		return balance, InsufficientFundsError{Balance: balance, Amount: amount}
	}
	next := balance - amount
	if err := balances.Set(ctx, userID, next); err != nil {
		return balance, fmt.Errorf("write balance: %w", err)
	}
	return next, nil
}
