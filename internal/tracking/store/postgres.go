package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stayledger/internal/tracking/models"
	id "stayledger/pkg/domain"
)

// PostgresStore persists tracked countries in PostgreSQL. Mutations run in
// a transaction with the country row locked, which gives the same
// snapshot-isolation contract the in-memory store provides with
// copy-on-write. This store is pure I/O; counting rules live in the engine.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables when they do not exist yet. Production
// deployments run versioned migrations instead; this keeps development and
// tests self-contained.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS tracked_countries (
			id UUID PRIMARY KEY,
			country_code TEXT NOT NULL,
			country_name TEXT NOT NULL,
			day_limit INTEGER NOT NULL,
			counting_mode TEXT NOT NULL,
			partial_day_rule TEXT NOT NULL,
			count_arrival_day BOOLEAN,
			count_departure_day BOOLEAN,
			window_type TEXT NOT NULL,
			window_size_days INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL,
			reset_anchor DATE,
			version BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS stays (
			id UUID PRIMARY KEY,
			country_id UUID NOT NULL REFERENCES tracked_countries(id) ON DELETE CASCADE,
			entry_date DATE NOT NULL,
			exit_date DATE
		);
		CREATE INDEX IF NOT EXISTS idx_stays_country_entry ON stays (country_id, entry_date);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, country *models.TrackedCountry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	if err := insertCountry(ctx, tx, country); err != nil {
		return err
	}
	if err := insertStays(ctx, tx, country.ID, country.Stays); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, countryID id.CountryID) (*models.TrackedCountry, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin get: %w", err)
	}
	defer tx.Rollback()

	country, err := loadCountry(ctx, tx, countryID, false)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit get: %w", err)
	}
	return country, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.TrackedCountry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM tracked_countries ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	var ids []id.CountryID
	for rows.Next() {
		var u uuid.UUID
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan country id: %w", err)
		}
		ids = append(ids, id.CountryID(u))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}

	out := make([]*models.TrackedCountry, 0, len(ids))
	for _, countryID := range ids {
		country, err := s.Get(ctx, countryID)
		if err != nil {
			if err == ErrNotFound {
				continue // deleted between queries
			}
			return nil, err
		}
		out = append(out, country)
	}
	return out, nil
}

func (s *PostgresStore) Mutate(ctx context.Context, countryID id.CountryID, fn func(*models.TrackedCountry) error) (*models.TrackedCountry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin mutate: %w", err)
	}
	defer tx.Rollback()

	country, err := loadCountry(ctx, tx, countryID, true)
	if err != nil {
		return nil, err
	}

	if err := fn(country); err != nil {
		// Rollback leaves stored state untouched.
		return nil, err
	}
	country.Version++

	if err := writeCountry(ctx, tx, country); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stays WHERE country_id = $1`, uuid.UUID(countryID)); err != nil {
		return nil, fmt.Errorf("clear stays: %w", err)
	}
	if err := insertStays(ctx, tx, countryID, country.Stays); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mutate: %w", err)
	}
	return country, nil
}

func (s *PostgresStore) Delete(ctx context.Context, countryID id.CountryID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tracked_countries WHERE id = $1`, uuid.UUID(countryID))
	if err != nil {
		return fmt.Errorf("delete country: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete country: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func insertCountry(ctx context.Context, tx *sql.Tx, c *models.TrackedCountry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tracked_countries (
			id, country_code, country_name, day_limit,
			counting_mode, partial_day_rule, count_arrival_day, count_departure_day,
			window_type, window_size_days, active, reset_anchor,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		uuid.UUID(c.ID), c.CountryCode, c.CountryName, c.DayLimit,
		string(c.Settings.CountingMode), string(c.Settings.PartialDayRule),
		nullBool(c.Settings.CountArrivalDay), nullBool(c.Settings.CountDepartureDay),
		string(c.WindowType), c.WindowSizeDays, c.Active, nullTime(c.ResetAnchor),
		c.Version, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert country: %w", err)
	}
	return nil
}

func writeCountry(ctx context.Context, tx *sql.Tx, c *models.TrackedCountry) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE tracked_countries SET
			country_code = $2, country_name = $3, day_limit = $4,
			counting_mode = $5, partial_day_rule = $6,
			count_arrival_day = $7, count_departure_day = $8,
			window_type = $9, window_size_days = $10, active = $11,
			reset_anchor = $12, version = $13, updated_at = $14
		WHERE id = $1
	`,
		uuid.UUID(c.ID), c.CountryCode, c.CountryName, c.DayLimit,
		string(c.Settings.CountingMode), string(c.Settings.PartialDayRule),
		nullBool(c.Settings.CountArrivalDay), nullBool(c.Settings.CountDepartureDay),
		string(c.WindowType), c.WindowSizeDays, c.Active,
		nullTime(c.ResetAnchor), c.Version, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update country: %w", err)
	}
	return nil
}

func insertStays(ctx context.Context, tx *sql.Tx, countryID id.CountryID, stays []models.StayInterval) error {
	for _, stay := range stays {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stays (id, country_id, entry_date, exit_date)
			VALUES ($1, $2, $3, $4)
		`, uuid.UUID(stay.ID), uuid.UUID(countryID), stay.EntryDate, nullTime(stay.ExitDate))
		if err != nil {
			return fmt.Errorf("insert stay: %w", err)
		}
	}
	return nil
}

func loadCountry(ctx context.Context, tx *sql.Tx, countryID id.CountryID, forUpdate bool) (*models.TrackedCountry, error) {
	query := `
		SELECT id, country_code, country_name, day_limit,
			counting_mode, partial_day_rule, count_arrival_day, count_departure_day,
			window_type, window_size_days, active, reset_anchor,
			version, created_at, updated_at
		FROM tracked_countries
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		c                  models.TrackedCountry
		rowID              uuid.UUID
		mode, rule, window string
		arrival, departure sql.NullBool
		anchor             sql.NullTime
	)
	err := tx.QueryRowContext(ctx, query, uuid.UUID(countryID)).Scan(
		&rowID, &c.CountryCode, &c.CountryName, &c.DayLimit,
		&mode, &rule, &arrival, &departure,
		&window, &c.WindowSizeDays, &c.Active, &anchor,
		&c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get country: %w", err)
	}

	c.ID = id.CountryID(rowID)
	c.Settings = models.Settings{
		CountingMode:      models.CountingMode(mode),
		PartialDayRule:    models.PartialDayRule(rule),
		CountArrivalDay:   boolPtr(arrival),
		CountDepartureDay: boolPtr(departure),
	}
	c.WindowType = models.WindowType(window)
	if anchor.Valid {
		t := models.NormalizeDate(anchor.Time)
		c.ResetAnchor = &t
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, entry_date, exit_date
		FROM stays
		WHERE country_id = $1
		ORDER BY entry_date, id
	`, uuid.UUID(countryID))
	if err != nil {
		return nil, fmt.Errorf("get stays: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			stayID uuid.UUID
			entry  time.Time
			exit   sql.NullTime
		)
		if err := rows.Scan(&stayID, &entry, &exit); err != nil {
			return nil, fmt.Errorf("scan stay: %w", err)
		}
		stay := models.StayInterval{
			ID:        id.StayID(stayID),
			EntryDate: models.NormalizeDate(entry),
		}
		if exit.Valid {
			t := models.NormalizeDate(exit.Time)
			stay.ExitDate = &t
		}
		c.Stays = append(c.Stays, stay)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get stays: %w", err)
	}

	return &c, nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func boolPtr(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	v := b.Bool
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
