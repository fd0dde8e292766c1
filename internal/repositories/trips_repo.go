package repositories

import (
	"context"
	"fmt"

	intconfig "familytrip/internal/config"
	intdb "familytrip/internal/db"
	"familytrip/internal/domain/models"

	"github.com/jmoiron/sqlx"
)

// lateTripColumns were added after the first schema; older tables get them on startup.
var lateTripColumns = []intdb.Column{
	{Name: "total_budget", MySQLType: "DECIMAL(12,2) NULL", SQLiteType: "REAL NULL"},
	{Name: "is_public", MySQLType: "BOOLEAN NOT NULL DEFAULT FALSE", SQLiteType: "BOOLEAN NOT NULL DEFAULT 0"},
}

const tripColumns = `id, user_id, title, destination, start_date, end_date,
	family_composition, preferences, status, total_budget, is_public, created_at, updated_at`

// TripsRepository stores trips. Every read and write is scoped by user_id.
type TripsRepository struct {
	DB *sqlx.DB
}

func (r TripsRepository) db() (*sqlx.DB, error) {
	if r.DB != nil {
		return r.DB, nil
	}
	if intconfig.DB != nil {
		return intconfig.DB, nil
	}
	return nil, fmt.Errorf("database not connected")
}

// EnsureSchema creates the trips table when missing.
func (r TripsRepository) EnsureSchema(ctx context.Context) error {
	db, err := r.db()
	if err != nil {
		return err
	}

	stmts := []string{`
		CREATE TABLE IF NOT EXISTS trips (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			title VARCHAR(255) NOT NULL,
			destination VARCHAR(255) NOT NULL,
			start_date VARCHAR(10) NULL,
			end_date VARCHAR(10) NULL,
			family_composition TEXT NOT NULL,
			preferences TEXT NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'planning',
			total_budget DECIMAL(12,2) NULL,
			is_public BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			INDEX idx_trips_user_created (user_id, created_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`}

	if db.DriverName() == intconfig.DriverSQLite {
		stmts = []string{`
		CREATE TABLE IF NOT EXISTS trips (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			destination TEXT NOT NULL,
			start_date TEXT NULL,
			end_date TEXT NULL,
			family_composition TEXT NOT NULL,
			preferences TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'planning',
			total_budget REAL NULL,
			is_public BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
			`CREATE INDEX IF NOT EXISTS idx_trips_user_created ON trips (user_id, created_at)`,
		}
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure trips table: %w", err)
		}
	}
	return intdb.AddMissingColumns(ctx, db, "trips", lateTripColumns)
}

func (r TripsRepository) Insert(ctx context.Context, t models.Trip) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, `
		INSERT INTO trips (`+tripColumns+`)
		VALUES (:id, :user_id, :title, :destination, :start_date, :end_date,
			:family_composition, :preferences, :status, :total_budget, :is_public, :created_at, :updated_at)
	`, t)
	return err
}

// ListByUser returns the user's trips, newest first.
func (r TripsRepository) ListByUser(ctx context.Context, userID string) ([]models.Trip, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	out := []models.Trip{}
	err = db.SelectContext(ctx, &out, `
		SELECT `+tripColumns+`
		FROM trips
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns sql.ErrNoRows when the trip is missing or owned by someone else.
func (r TripsRepository) GetByID(ctx context.Context, userID, id string) (models.Trip, error) {
	db, err := r.db()
	if err != nil {
		return models.Trip{}, err
	}
	var t models.Trip
	err = db.GetContext(ctx, &t, `
		SELECT `+tripColumns+`
		FROM trips
		WHERE id = ? AND user_id = ?
		LIMIT 1
	`, id, userID)
	return t, err
}

// Update overwrites the mutable fields; id, user_id and created_at stay as stored.
func (r TripsRepository) Update(ctx context.Context, t models.Trip) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, `
		UPDATE trips SET
			title = :title,
			destination = :destination,
			start_date = :start_date,
			end_date = :end_date,
			family_composition = :family_composition,
			preferences = :preferences,
			status = :status,
			total_budget = :total_budget,
			is_public = :is_public,
			updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id
	`, t)
	return err
}

// Delete reports how many rows were removed (0 or 1).
func (r TripsRepository) Delete(ctx context.Context, userID, id string) (int64, error) {
	db, err := r.db()
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM trips WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
