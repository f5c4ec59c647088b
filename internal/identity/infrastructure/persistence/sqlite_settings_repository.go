package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/svenhofer/timegrid/internal/identity/domain"
	sharedPersistence "github.com/svenhofer/timegrid/internal/shared/infrastructure/persistence"
)

const sqliteUpsertSettingsSQL = `
	INSERT INTO user_settings (user_id, work_hours_start, work_hours_end, week_start_day, timezone, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id) DO UPDATE SET
		work_hours_start = excluded.work_hours_start,
		work_hours_end = excluded.work_hours_end,
		week_start_day = excluded.week_start_day,
		timezone = excluded.timezone,
		updated_at = excluded.updated_at
`

const sqliteSelectSettingsSQL = `
	SELECT user_id, work_hours_start, work_hours_end, week_start_day, timezone, created_at, updated_at
	FROM user_settings
	WHERE user_id = ?
`

// SQLiteSettingsRepository implements domain.SettingsRepository using
// SQLite.
type SQLiteSettingsRepository struct {
	dbConn *sql.DB
}

// NewSQLiteSettingsRepository creates a new SQLite settings repository.
func NewSQLiteSettingsRepository(dbConn *sql.DB) *SQLiteSettingsRepository {
	return &SQLiteSettingsRepository{dbConn: dbConn}
}

func (r *SQLiteSettingsRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.dbConn)
}

// Get returns the user's settings, or defaults when none are stored.
func (r *SQLiteSettingsRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error) {
	var (
		settings             domain.UserSettings
		userText             string
		weekStartDay         string
		createdText, updText string
	)
	err := r.querier(ctx).QueryRowContext(ctx, sqliteSelectSettingsSQL, userID.String()).Scan(
		&userText,
		&settings.WorkHours.StartHour,
		&settings.WorkHours.EndHour,
		&weekStartDay,
		&settings.Timezone,
		&createdText,
		&updText,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultSettings(userID), nil
		}
		return nil, err
	}

	if settings.UserID, err = uuid.Parse(userText); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	if settings.WeekStartDay, err = domain.ParseWeekday(weekStartDay); err != nil {
		return nil, err
	}
	if settings.CreatedAt, err = time.Parse(time.RFC3339Nano, createdText); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if settings.UpdatedAt, err = time.Parse(time.RFC3339Nano, updText); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &settings, nil
}

// Save upserts the user's settings.
func (r *SQLiteSettingsRepository) Save(ctx context.Context, settings *domain.UserSettings) error {
	_, err := r.querier(ctx).ExecContext(ctx, sqliteUpsertSettingsSQL,
		settings.UserID.String(),
		settings.WorkHours.StartHour,
		settings.WorkHours.EndHour,
		strings.ToLower(settings.WeekStartDay.String()),
		settings.Timezone,
		settings.CreatedAt.UTC().Format(time.RFC3339Nano),
		settings.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// ListUserIDs returns the IDs of all users with stored settings.
func (r *SQLiteSettingsRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, `SELECT user_id FROM user_settings ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var idText string
		if err := rows.Scan(&idText); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idText)
		if err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
