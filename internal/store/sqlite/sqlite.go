package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/Jetrca92/geotagger-backend/internal/model"
	"github.com/Jetrca92/geotagger-backend/internal/store"
)

// NewWithDB constructs a SQLite-backed store. The schema must already exist (see EnsureSchema).
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Users() store.Users         { return &users{q: s.db} }
func (s *sqliteStore) Locations() store.Locations { return &locations{q: s.db} }
func (s *sqliteStore) Guesses() store.Guesses     { return &guesses{q: s.db} }
func (s *sqliteStore) Actions() store.Actions     { return &actions{q: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InTx runs fn in a BEGIN IMMEDIATE transaction.
func (s *sqliteStore) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(ctx, &txRepos{q: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txRepos struct{ q querier }

func (t *txRepos) Balances() store.Balances { return &balances{q: t.q} }
func (t *txRepos) Guesses() store.Guesses   { return &guesses{q: t.q} }

// --- Balances ---
type balances struct{ q querier }

// Lock is a plain read: the immediate transaction already holds the write lock.
func (b *balances) Lock(ctx context.Context, userID string) (int, error) {
	var points int
	err := b.q.QueryRowContext(ctx, `SELECT points FROM users WHERE id = ?`, userID).Scan(&points)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("user %s: %w", userID, model.ErrNotFound)
	}
	return points, err
}

func (b *balances) Set(ctx context.Context, userID string, points int) error {
	res, err := b.q.ExecContext(ctx, `UPDATE users SET points = ? WHERE id = ?`, points, userID)
	if err != nil {
		return err
	}
	return requireRow(res, "user", userID)
}

// --- Users ---
type users struct{ q querier }

const userColumns = `id, email, first_name, last_name, points, avatar_url, is_admin, created_at`

func (u *users) Create(ctx context.Context, m *model.User, passwordHash string) (*model.User, error) {
	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	_, err := u.q.ExecContext(ctx, `
        INSERT INTO users (id, email, password_hash, first_name, last_name, points, avatar_url, is_admin, created_at)
        VALUES (?,?,?,?,?,?,?,?,?)
    `, out.ID, out.Email, passwordHash, out.FirstName, out.LastName, out.Points, out.AvatarURL, out.IsAdmin, out.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email %s: %w", out.Email, model.ErrConflict)
		}
		return nil, err
	}
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	row := u.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
	out, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, model.ErrNotFound)
	}
	return out, err
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, string, error) {
	row := u.q.QueryRowContext(ctx, `SELECT `+userColumns+`, password_hash FROM users WHERE email = ?`, email)
	var out model.User
	var avatar sql.NullString
	var hash string
	err := row.Scan(&out.ID, &out.Email, &out.FirstName, &out.LastName, &out.Points, &avatar, &out.IsAdmin, &out.CreatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("user %s: %w", email, model.ErrNotFound)
	}
	if err != nil {
		return nil, "", err
	}
	out.AvatarURL = nullable(avatar)
	return &out, hash, nil
}

func (u *users) Update(ctx context.Context, userID string, p model.UserPatch) (*model.User, error) {
	res, err := u.q.ExecContext(ctx, `
        UPDATE users SET
            email = COALESCE(?, email),
            first_name = COALESCE(?, first_name),
            last_name = COALESCE(?, last_name),
            avatar_url = COALESCE(?, avatar_url)
        WHERE id = ?
    `, p.Email, p.FirstName, p.LastName, p.AvatarURL, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s email: %w", userID, model.ErrConflict)
		}
		return nil, err
	}
	if err := requireRow(res, "user", userID); err != nil {
		return nil, err
	}
	return u.Get(ctx, userID)
}

func (u *users) PasswordHash(ctx context.Context, userID string) (string, error) {
	var hash string
	err := u.q.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = ?`, userID).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("user %s: %w", userID, model.ErrNotFound)
	}
	return hash, err
}

func (u *users) SetPasswordHash(ctx context.Context, userID, passwordHash string) error {
	res, err := u.q.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
	if err != nil {
		return err
	}
	return requireRow(res, "user", userID)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var out model.User
	var avatar sql.NullString
	if err := row.Scan(&out.ID, &out.Email, &out.FirstName, &out.LastName, &out.Points, &avatar, &out.IsAdmin, &out.CreatedAt); err != nil {
		return nil, err
	}
	out.AvatarURL = nullable(avatar)
	return &out, nil
}

// --- Locations ---
type locations struct{ q querier }

const locationColumns = `id, latitude, longitude, address, image_url, owner_id, created_at`

func (l *locations) Create(ctx context.Context, m *model.Location) (*model.Location, error) {
	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	_, err := l.q.ExecContext(ctx, `
        INSERT INTO locations (id, latitude, longitude, address, image_url, owner_id, created_at)
        VALUES (?,?,?,?,?,?,?)
    `, out.ID, out.Latitude, out.Longitude, out.Address, out.ImageURL, out.OwnerID, out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *locations) Get(ctx context.Context, locationID string) (*model.Location, error) {
	rows, err := l.q.QueryContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = ?`, locationID)
	if err != nil {
		return nil, err
	}
	res, err := scanLocations(rows)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("location %s: %w", locationID, model.ErrNotFound)
	}
	return res[0], nil
}

func (l *locations) List(ctx context.Context, limit, offset int) ([]*model.Location, error) {
	rows, err := l.q.QueryContext(ctx, `
        SELECT `+locationColumns+` FROM locations
        ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?
    `, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanLocations(rows)
}

func (l *locations) ListByOwner(ctx context.Context, ownerID string) ([]*model.Location, error) {
	rows, err := l.q.QueryContext(ctx, `
        SELECT `+locationColumns+` FROM locations WHERE owner_id = ? ORDER BY created_at DESC, id ASC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	return scanLocations(rows)
}

func (l *locations) Count(ctx context.Context) (int, error) {
	var n int
	err := l.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&n)
	return n, err
}

func (l *locations) Update(ctx context.Context, locationID string, p model.LocationPatch) (*model.Location, error) {
	res, err := l.q.ExecContext(ctx, `
        UPDATE locations SET
            latitude = COALESCE(?, latitude),
            longitude = COALESCE(?, longitude),
            address = COALESCE(?, address),
            image_url = COALESCE(?, image_url)
        WHERE id = ?
    `, p.Latitude, p.Longitude, p.Address, p.ImageURL, locationID)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res, "location", locationID); err != nil {
		return nil, err
	}
	return l.Get(ctx, locationID)
}

func (l *locations) Delete(ctx context.Context, locationID string) error {
	res, err := l.q.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, locationID)
	if err != nil {
		return err
	}
	return requireRow(res, "location", locationID)
}

func scanLocations(rows *sql.Rows) ([]*model.Location, error) {
	defer func() { _ = rows.Close() }()
	res := []*model.Location{}
	for rows.Next() {
		var m model.Location
		var img sql.NullString
		if err := rows.Scan(&m.ID, &m.Latitude, &m.Longitude, &m.Address, &img, &m.OwnerID, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.ImageURL = nullable(img)
		res = append(res, &m)
	}
	return res, rows.Err()
}

// --- Guesses ---
type guesses struct{ q querier }

const guessSelect = `
    SELECT g.id, g.guessed_latitude, g.guessed_longitude, g.address, g.error_distance,
           g.owner_id, g.location_id, g.created_at,
           u.first_name, u.last_name, u.avatar_url
    FROM guesses g JOIN users u ON u.id = g.owner_id`

func (g *guesses) Insert(ctx context.Context, m *model.Guess) (*model.Guess, error) {
	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	_, err := g.q.ExecContext(ctx, `
        INSERT INTO guesses (id, guessed_latitude, guessed_longitude, address, error_distance, owner_id, location_id, created_at)
        VALUES (?,?,?,?,?,?,?,?)
    `, out.ID, out.GuessedLatitude, out.GuessedLongitude, out.Address, out.ErrorDistance, out.OwnerID, out.LocationID, out.CreatedAt)
	if err != nil {
		return nil, err
	}

	var avatar sql.NullString
	out.Owner.ID = out.OwnerID
	err = g.q.QueryRowContext(ctx, `SELECT first_name, last_name, avatar_url FROM users WHERE id = ?`, out.OwnerID).
		Scan(&out.Owner.FirstName, &out.Owner.LastName, &avatar)
	if err != nil {
		return nil, fmt.Errorf("load guess owner: %w", err)
	}
	out.Owner.AvatarURL = nullable(avatar)
	return &out, nil
}

func (g *guesses) CountByOwnerAndLocation(ctx context.Context, ownerID, locationID string) (int, error) {
	var n int
	err := g.q.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM guesses WHERE owner_id = ? AND location_id = ?
    `, ownerID, locationID).Scan(&n)
	return n, err
}

func (g *guesses) ListByLocation(ctx context.Context, locationID string, limit int) ([]*model.Guess, error) {
	rows, err := g.q.QueryContext(ctx, guessSelect+`
        WHERE g.location_id = ?
        ORDER BY g.error_distance ASC, g.created_at ASC, g.id ASC
        LIMIT ?
    `, locationID, limit)
	if err != nil {
		return nil, err
	}
	return scanGuesses(rows)
}

func (g *guesses) ListByOwner(ctx context.Context, ownerID string) ([]*model.Guess, error) {
	rows, err := g.q.QueryContext(ctx, guessSelect+`
        WHERE g.owner_id = ?
        ORDER BY g.created_at DESC, g.id DESC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	return scanGuesses(rows)
}

func scanGuesses(rows *sql.Rows) ([]*model.Guess, error) {
	defer func() { _ = rows.Close() }()
	res := []*model.Guess{}
	for rows.Next() {
		var m model.Guess
		var avatar sql.NullString
		if err := rows.Scan(&m.ID, &m.GuessedLatitude, &m.GuessedLongitude, &m.Address, &m.ErrorDistance,
			&m.OwnerID, &m.LocationID, &m.CreatedAt,
			&m.Owner.FirstName, &m.Owner.LastName, &avatar); err != nil {
			return nil, err
		}
		m.Owner.ID = m.OwnerID
		m.Owner.AvatarURL = nullable(avatar)
		res = append(res, &m)
	}
	return res, rows.Err()
}

// --- Action logs ---
type actions struct{ q querier }

func (a *actions) Create(ctx context.Context, m *model.ActionLog) (*model.ActionLog, error) {
	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	_, err := a.q.ExecContext(ctx, `
        INSERT INTO action_logs (id, user_id, action, component_type, new_value, location, created_at)
        VALUES (?,?,?,?,?,?,?)
    `, out.ID, out.UserID, string(out.Action), out.ComponentType, out.NewValue, out.Location, out.CreatedAt)
	if err != nil {
		return nil, err
	}

	var avatar sql.NullString
	out.User.ID = out.UserID
	err = a.q.QueryRowContext(ctx, `SELECT first_name, last_name, avatar_url FROM users WHERE id = ?`, out.UserID).
		Scan(&out.User.FirstName, &out.User.LastName, &avatar)
	if err != nil {
		return nil, fmt.Errorf("load log user: %w", err)
	}
	out.User.AvatarURL = nullable(avatar)
	return &out, nil
}

func (a *actions) ListRecent(ctx context.Context, limit int) ([]*model.ActionLog, error) {
	rows, err := a.q.QueryContext(ctx, `
        SELECT l.id, l.user_id, l.action, l.component_type, l.new_value, l.location, l.created_at,
               u.first_name, u.last_name, u.avatar_url
        FROM action_logs l JOIN users u ON u.id = l.user_id
        ORDER BY l.created_at DESC, l.id DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	res := []*model.ActionLog{}
	for rows.Next() {
		var m model.ActionLog
		var action string
		var component, newValue, avatar sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &action, &component, &newValue, &m.Location, &m.CreatedAt,
			&m.User.FirstName, &m.User.LastName, &avatar); err != nil {
			return nil, err
		}
		m.Action = model.ActionType(action)
		if component.Valid {
			ct := model.ComponentType(component.String)
			m.ComponentType = &ct
		}
		m.NewValue = nullable(newValue)
		m.User.ID = m.UserID
		m.User.AvatarURL = nullable(avatar)
		res = append(res, &m)
	}
	return res, rows.Err()
}

// --- helpers ---

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, model.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
