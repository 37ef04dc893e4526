// Package guess implements guess submission against the points economy and
// the per-location leaderboard.
package guess

import (
	"context"
	"errors"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog"

	"github.com/Jetrca92/geotagger-backend/internal/events"
	"github.com/Jetrca92/geotagger-backend/internal/geo"
	"github.com/Jetrca92/geotagger-backend/internal/ledger"
	"github.com/Jetrca92/geotagger-backend/internal/metrics"
	"github.com/Jetrca92/geotagger-backend/internal/model"
	"github.com/Jetrca92/geotagger-backend/internal/scoring"
	"github.com/Jetrca92/geotagger-backend/internal/store"
)

// DefaultLeaderboardLimit applies when Config.LeaderboardLimit is unset.
const DefaultLeaderboardLimit = 13

// LocationStore is the lookup the orchestrator needs from the location collaborator.
type LocationStore interface {
	Get(ctx context.Context, locationID string) (*model.Location, error)
}

// Submission carries pre-validated guess input.
type Submission struct {
	Latitude  float64
	Longitude float64
	Address   string
}

type Config struct {
	Schedule         scoring.Schedule
	LeaderboardLimit int
}

// Service submits guesses and answers leaderboard queries.
type Service struct {
	locations LocationStore
	tx        store.Transactor
	guesses   store.Guesses
	ledger    *ledger.Ledger
	cfg       Config
	bus       *events.Bus
	log       zerolog.Logger
	now       func() time.Time
}

// NewService wires the orchestrator. bus may be nil.
func NewService(locations LocationStore, tx store.Transactor, guesses store.Guesses, l *ledger.Ledger, cfg Config, bus *events.Bus, log zerolog.Logger) *Service {
	if cfg.LeaderboardLimit <= 0 {
		cfg.LeaderboardLimit = DefaultLeaderboardLimit
	}
	if l == nil {
		l = ledger.New()
	}
	return &Service{
		locations: locations,
		tx:        tx,
		guesses:   guesses,
		ledger:    l,
		cfg:       cfg,
		bus:       bus,
		log:       log.With().Str("component", "guess").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SubmitGuess prices, debits and persists one guess as a single transaction.
func (s *Service) SubmitGuess(ctx context.Context, callerID, locationID string, in Submission) (*model.Guess, error) {
	g, cost, balance, err := s.submit(ctx, callerID, locationID, in)
	if err != nil {
		kind := KindOf(err)
		metrics.GuessRejected(kind.Code())
		ev := s.log.Warn()
		if kind == PersistenceFailure {
			ev = s.log.Error().Stack()
		}
		ev.Err(err).Str("userID", callerID).Str("locationID", locationID).Str("kind", kind.String()).Msg("Guess rejected")
		return nil, err
	}

	metrics.GuessAccepted(cost, g.ErrorDistance)
	s.log.Info().
		Str("userID", callerID).
		Str("locationID", locationID).
		Str("guessID", g.ID).
		Int("cost", cost).
		Int("balance", balance).
		Float64("errorDistance", g.ErrorDistance).
		Msg("Guess accepted")

	if s.bus != nil {
		s.bus.Publish(events.Event{
			Kind:          events.EventGuessSubmitted,
			UserID:        callerID,
			LocationID:    locationID,
			GuessID:       g.ID,
			Cost:          cost,
			Balance:       balance,
			ErrorDistance: g.ErrorDistance,
			At:            g.CreatedAt,
		})
	}
	return g, nil
}

func (s *Service) submit(ctx context.Context, callerID, locationID string, in Submission) (*model.Guess, int, int, error) {
	if callerID == "" {
		return nil, 0, 0, newError(Unauthenticated, "caller identity required", nil)
	}
	if err := validateLocationID(locationID); err != nil {
		return nil, 0, 0, err
	}

	loc, err := s.locations.Get(ctx, locationID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, 0, 0, newError(LocationNotFound, "location "+locationID+" not found", err)
		}
		return nil, 0, 0, newError(PersistenceFailure, "load location", err)
	}
	if loc.OwnerID == callerID {
		return nil, 0, 0, newError(Forbidden, "cannot guess own location", nil)
	}

	var (
		saved   *model.Guess
		cost    int
		balance int
	)
	err = s.tx.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		// Locking the balance first serializes every submission by this caller,
		// so the attempt count below cannot be stale.
		if _, err := s.ledger.Balance(ctx, tx.Balances(), callerID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return newError(Unauthenticated, "caller account not found", err)
			}
			return newError(PersistenceFailure, "lock balance", err)
		}

		attempts, err := tx.Guesses().CountByOwnerAndLocation(ctx, callerID, locationID)
		if err != nil {
			return newError(PersistenceFailure, "count attempts", err)
		}
		cost = s.cfg.Schedule.Cost(attempts)

		balance, err = s.ledger.TryDebit(ctx, tx.Balances(), callerID, cost)
		if err != nil {
			if errors.Is(err, ledger.ErrInsufficientFunds) {
				return newError(InsufficientPoints, "not enough points for this guess", err)
			}
			return newError(PersistenceFailure, "debit points", err)
		}

		dist := geo.Distance(
			geo.Coordinate{Lat: loc.Latitude, Lng: loc.Longitude},
			geo.Coordinate{Lat: in.Latitude, Lng: in.Longitude},
		)
		saved, err = tx.Guesses().Insert(ctx, &model.Guess{
			GuessedLatitude:  in.Latitude,
			GuessedLongitude: in.Longitude,
			Address:          in.Address,
			ErrorDistance:    dist,
			OwnerID:          callerID,
			LocationID:       locationID,
			CreatedAt:        s.now(),
		})
		if err != nil {
			return newError(PersistenceFailure, "insert guess", err)
		}
		return nil
	})
	if err != nil {
		var ge *Error
		if errors.As(err, &ge) {
			return nil, 0, 0, err
		}
		// Begin or commit failed.
		return nil, 0, 0, newError(PersistenceFailure, "guess transaction", err)
	}
	return saved, cost, balance, nil
}

// TopGuesses returns the closest guesses for a location. limit <= 0 selects the
// configured default.
func (s *Service) TopGuesses(ctx context.Context, locationID string, limit int) ([]*model.Guess, error) {
	if err := validateLocationID(locationID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.LeaderboardLimit
	}
	out, err := s.guesses.ListByLocation(ctx, locationID, limit)
	if err != nil {
		return nil, newError(PersistenceFailure, "list guesses", err)
	}
	if out == nil {
		out = []*model.Guess{}
	}
	return out, nil
}

// HistoryFor returns the user's guesses, newest first.
func (s *Service) HistoryFor(ctx context.Context, userID string) ([]*model.Guess, error) {
	if userID == "" {
		return nil, newError(Unauthenticated, "caller identity required", nil)
	}
	out, err := s.guesses.ListByOwner(ctx, userID)
	if err != nil {
		return nil, newError(PersistenceFailure, "list guess history", err)
	}
	if out == nil {
		out = []*model.Guess{}
	}
	return out, nil
}

func validateLocationID(id string) error {
	if id == "" {
		return newError(InvalidRequest, "locationId is required", nil)
	}
	if !strfmt.IsUUID(id) {
		return newError(InvalidRequest, "locationId must be a UUID", nil)
	}
	return nil
}
