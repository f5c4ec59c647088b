package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/svenhofer/timegrid/internal/identity/domain"
	sharedPersistence "github.com/svenhofer/timegrid/internal/shared/infrastructure/persistence"
)

const upsertSettingsSQL = `
	INSERT INTO user_settings (user_id, work_hours_start, work_hours_end, week_start_day, timezone, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (user_id) DO UPDATE SET
		work_hours_start = EXCLUDED.work_hours_start,
		work_hours_end = EXCLUDED.work_hours_end,
		week_start_day = EXCLUDED.week_start_day,
		timezone = EXCLUDED.timezone,
		updated_at = EXCLUDED.updated_at
`

const selectSettingsSQL = `
	SELECT user_id, work_hours_start, work_hours_end, week_start_day, timezone, created_at, updated_at
	FROM user_settings
	WHERE user_id = $1
`

// PostgresSettingsRepository implements domain.SettingsRepository using
// PostgreSQL.
type PostgresSettingsRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSettingsRepository creates a new PostgreSQL settings repository.
func NewPostgresSettingsRepository(pool *pgxpool.Pool) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{pool: pool}
}

// Get returns the user's settings, or defaults when none are stored.
func (r *PostgresSettingsRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)

	var (
		settings     domain.UserSettings
		weekStartDay string
	)
	err := execer.QueryRow(ctx, selectSettingsSQL, userID).Scan(
		&settings.UserID,
		&settings.WorkHours.StartHour,
		&settings.WorkHours.EndHour,
		&weekStartDay,
		&settings.Timezone,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DefaultSettings(userID), nil
		}
		return nil, err
	}

	if settings.WeekStartDay, err = domain.ParseWeekday(weekStartDay); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save upserts the user's settings.
func (r *PostgresSettingsRepository) Save(ctx context.Context, settings *domain.UserSettings) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, upsertSettingsSQL,
		settings.UserID,
		settings.WorkHours.StartHour,
		settings.WorkHours.EndHour,
		strings.ToLower(settings.WeekStartDay.String()),
		settings.Timezone,
		settings.CreatedAt,
		settings.UpdatedAt,
	)
	return err
}

// ListUserIDs returns the IDs of all users with stored settings.
func (r *PostgresSettingsRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, `SELECT user_id FROM user_settings ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
