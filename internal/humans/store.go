package humans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// querier abstracts *sql.DB and *sql.Tx for shared query logic.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store provides access to stored humans.
type Store struct {
	db *sql.DB
}

// NewStore creates a new human store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// mapSQLiteError converts SQLite errors to package errors.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	// modernc.org/sqlite wraps errors; check error message for constraint violations
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "PRIMARY KEY constraint failed") {
		return ErrDuplicate
	}
	if strings.Contains(errStr, "FOREIGN KEY constraint failed") ||
		strings.Contains(errStr, "CHECK constraint failed") {
		return ErrConstraint
	}
	return err
}

func existsByNameAndCoordinates(ctx context.Context, q querier, name string, x int64, y float64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM humans h
		JOIN coordinates c ON c.id = h.coordinates_id
		WHERE h.name = ? AND c.x = ? AND c.y = ?`,
		name, x, y,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check name and coordinates: %w", err)
	}
	return n > 0, nil
}

// ExistsByNameAndCoordinates reports whether a human with this name already
// stands at (x, y).
func (s *Store) ExistsByNameAndCoordinates(ctx context.Context, name string, x int64, y float64) (bool, error) {
	return existsByNameAndCoordinates(ctx, s.db, name, x, y)
}

func heroExists(ctx context.Context, q querier, impactSpeed, minutesOfWaiting float64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM humans
		WHERE real_hero = 1 AND impact_speed = ? AND minutes_of_waiting = ?`,
		impactSpeed, minutesOfWaiting,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check hero: %w", err)
	}
	return n > 0, nil
}

// HeroExists reports whether a real hero with the same impact speed and
// minutes of waiting is already stored.
func (s *Store) HeroExists(ctx context.Context, impactSpeed, minutesOfWaiting float64) (bool, error) {
	return heroExists(ctx, s.db, impactSpeed, minutesOfWaiting)
}

// CarExists reports whether a car with the given ID is stored.
func (s *Store) CarExists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cars WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check car %d: %w", id, err)
	}
	return n > 0, nil
}

// Create inserts h with its coordinates and, when h.Car.ID is zero, a new car.
// Both uniqueness rules are re-checked inside the transaction and reported as
// ErrDuplicate. Sets IDs and CreatedAt on h.
func (s *Store) Create(ctx context.Context, h *Human) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := create(ctx, tx, h); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func create(ctx context.Context, q querier, h *Human) error {
	dup, err := existsByNameAndCoordinates(ctx, q, h.Name, h.Coordinates.X, h.Coordinates.Y)
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("human %q at (%d, %g): %w", h.Name, h.Coordinates.X, h.Coordinates.Y, ErrDuplicate)
	}
	if h.RealHero {
		dup, err := heroExists(ctx, q, h.ImpactSpeed, h.MinutesOfWaiting)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("hero with impact speed %g and waiting %g: %w", h.ImpactSpeed, h.MinutesOfWaiting, ErrDuplicate)
		}
	}

	result, err := q.ExecContext(ctx, `INSERT INTO coordinates (x, y) VALUES (?, ?)`, h.Coordinates.X, h.Coordinates.Y)
	if err != nil {
		return fmt.Errorf("insert coordinates: %w", mapSQLiteError(err))
	}
	if h.Coordinates.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	if h.Car.ID == 0 {
		result, err := q.ExecContext(ctx, `INSERT INTO cars (name) VALUES (?)`, h.Car.Name)
		if err != nil {
			return fmt.Errorf("insert car: %w", mapSQLiteError(err))
		}
		if h.Car.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("get last insert id: %w", err)
		}
	} else {
		err := q.QueryRowContext(ctx, `SELECT name FROM cars WHERE id = ?`, h.Car.ID).Scan(&h.Car.Name)
		if err != nil {
			return fmt.Errorf("get car %d: %w", h.Car.ID, mapSQLiteError(err))
		}
	}

	now := time.Now().UTC()
	result, err = q.ExecContext(ctx, `
		INSERT INTO humans (name, coordinates_id, car_id, real_hero, has_toothpick, mood,
			impact_speed, minutes_of_waiting, weapon_type, owner, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.Name, h.Coordinates.ID, h.Car.ID, h.RealHero, h.HasToothpick, h.Mood,
		h.ImpactSpeed, h.MinutesOfWaiting, h.WeaponType, h.Owner, now,
	)
	if err != nil {
		return fmt.Errorf("insert human: %w", mapSQLiteError(err))
	}
	if h.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	h.CreatedAt = now
	return nil
}

const selectHuman = `
	SELECT h.id, h.name, c.id, c.x, c.y, car.id, car.name, h.real_hero, h.has_toothpick, h.mood,
		h.impact_speed, h.minutes_of_waiting, h.weapon_type, h.owner, h.created_at
	FROM humans h
	JOIN coordinates c ON c.id = h.coordinates_id
	JOIN cars car ON car.id = h.car_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanHuman(row scanner) (*Human, error) {
	h := &Human{}
	err := row.Scan(&h.ID, &h.Name, &h.Coordinates.ID, &h.Coordinates.X, &h.Coordinates.Y,
		&h.Car.ID, &h.Car.Name, &h.RealHero, &h.HasToothpick, &h.Mood,
		&h.ImpactSpeed, &h.MinutesOfWaiting, &h.WeaponType, &h.Owner, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Get retrieves a human by ID.
// Returns ErrNotFound if the human does not exist.
func (s *Store) Get(ctx context.Context, id int64) (*Human, error) {
	h, err := scanHuman(s.db.QueryRowContext(ctx, selectHuman+` WHERE h.id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get human %d: %w", id, mapSQLiteError(err))
	}
	return h, nil
}

// List returns humans matching the filter, newest first, and the total
// count ignoring pagination.
func (s *Store) List(ctx context.Context, f Filter) ([]*Human, int, error) {
	var conditions []string
	var args []any

	if f.Owner != nil {
		conditions = append(conditions, "h.owner = ?")
		args = append(args, *f.Owner)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM humans h`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count humans: %w", err)
	}

	query := selectHuman + whereClause + ` ORDER BY h.id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list humans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Human
	for rows.Next() {
		h, err := scanHuman(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan human: %w", err)
		}
		results = append(results, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate humans: %w", err)
	}
	return results, total, nil
}
