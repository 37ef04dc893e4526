// Package scoring prices guesses by how often a player already tried a location.
package scoring

import "fmt"

// Default point costs per attempt on the same location.
const (
	DefaultFirstAttemptCost   = 1
	DefaultSecondAttemptCost  = 2
	DefaultCeilingAttemptCost = 3
)

// Schedule maps a zero-based attempt number to a point cost.
// Attempts from the third onward pay Ceiling.
type Schedule struct {
	First   int
	Second  int
	Ceiling int
}

// DefaultSchedule returns the built-in cost schedule.
func DefaultSchedule() Schedule {
	return Schedule{
		First:   DefaultFirstAttemptCost,
		Second:  DefaultSecondAttemptCost,
		Ceiling: DefaultCeilingAttemptCost,
	}
}

// Cost returns the price of the attempt with the given number of prior guesses.
func (s Schedule) Cost(attempt int) int {
	switch {
	case attempt <= 0:
		return s.First
	case attempt == 1:
		return s.Second
	default:
		return s.Ceiling
	}
}

// Validate checks First < Second <= Ceiling with non-negative costs.
func (s Schedule) Validate() error {
	if s.First < 0 {
		return fmt.Errorf("first attempt cost must be non-negative, got %d", s.First)
	}
	if s.First >= s.Second {
		return fmt.Errorf("second attempt cost (%d) must exceed first attempt cost (%d)", s.Second, s.First)
	}
	if s.Second > s.Ceiling {
		return fmt.Errorf("ceiling cost (%d) must not be below second attempt cost (%d)", s.Ceiling, s.Second)
	}
	return nil
}
