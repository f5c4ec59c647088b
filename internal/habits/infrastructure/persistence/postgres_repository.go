package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/svenhofer/timegrid/internal/habits/domain"
	sharedPersistence "github.com/svenhofer/timegrid/internal/shared/infrastructure/persistence"
)

const upsertHabitSQL = `
	INSERT INTO habits (id, user_id, name, duration_minutes, default_start_minute, frequency, archived, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		duration_minutes = EXCLUDED.duration_minutes,
		default_start_minute = EXCLUDED.default_start_minute,
		frequency = EXCLUDED.frequency,
		archived = EXCLUDED.archived,
		updated_at = EXCLUDED.updated_at
`

const selectHabitColumns = `
	SELECT id, user_id, name, duration_minutes, default_start_minute, frequency, archived, created_at, updated_at
	FROM habits
`

// PostgresRepository implements domain.Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL habit repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save persists a habit and replaces its per-weekday start times.
func (r *PostgresRepository) Save(ctx context.Context, habit *domain.Habit) error {
	execer := sharedPersistence.Executor(ctx, r.pool)

	_, err := execer.Exec(ctx, upsertHabitSQL,
		habit.ID(),
		habit.UserID(),
		habit.Name(),
		habit.DurationMinutes(),
		habit.DefaultStartMinute(),
		string(habit.Frequency()),
		habit.IsArchived(),
		habit.CreatedAt(),
		habit.UpdatedAt(),
	)
	if err != nil {
		return err
	}

	if _, err := execer.Exec(ctx, `DELETE FROM habit_weekday_times WHERE habit_id = $1`, habit.ID()); err != nil {
		return err
	}
	for weekday, minute := range habit.WeekdayStartMinutes() {
		_, err := execer.Exec(ctx,
			`INSERT INTO habit_weekday_times (habit_id, weekday, start_minute) VALUES ($1, $2, $3)`,
			habit.ID(), int(weekday), minute,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a habit by its ID.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Habit, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)

	row := execer.QueryRow(ctx, selectHabitColumns+` WHERE id = $1`, id)
	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, err
	}

	times, err := r.weekdayTimes(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return rehydrateWithTimes(habit, times[id]), nil
}

// FindByUserID finds all habits for a user.
func (r *PostgresRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Habit, error) {
	return r.findByUser(ctx, selectHabitColumns+` WHERE user_id = $1 ORDER BY created_at`, userID)
}

// FindActiveByUserID finds all non-archived habits for a user.
func (r *PostgresRepository) FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Habit, error) {
	return r.findByUser(ctx, selectHabitColumns+` WHERE user_id = $1 AND archived = FALSE ORDER BY created_at`, userID)
}

func (r *PostgresRepository) findByUser(ctx context.Context, query string, userID uuid.UUID) ([]*domain.Habit, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)

	rows, err := execer.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []*habitRow
	var ids []uuid.UUID
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
		ids = append(ids, habit.id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(habits) == 0 {
		return nil, nil
	}

	times, err := r.weekdayTimes(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Habit, 0, len(habits))
	for _, habit := range habits {
		out = append(out, rehydrateWithTimes(habit, times[habit.id]))
	}
	return out, nil
}

func (r *PostgresRepository) weekdayTimes(ctx context.Context, habitIDs []uuid.UUID) (map[uuid.UUID]map[time.Weekday]int, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)

	rows, err := execer.Query(ctx,
		`SELECT habit_id, weekday, start_minute FROM habit_weekday_times WHERE habit_id = ANY($1)`,
		habitIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]map[time.Weekday]int)
	for rows.Next() {
		var habitID uuid.UUID
		var weekday, minute int
		if err := rows.Scan(&habitID, &weekday, &minute); err != nil {
			return nil, err
		}
		if out[habitID] == nil {
			out[habitID] = make(map[time.Weekday]int)
		}
		out[habitID][time.Weekday(weekday)] = minute
	}
	return out, rows.Err()
}

// SaveOverride upserts a per-date override.
func (r *PostgresRepository) SaveOverride(ctx context.Context, override *domain.Override) error {
	query := `
		INSERT INTO habit_overrides (habit_id, day, start_minute, skipped, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (habit_id, day) DO UPDATE SET
			start_minute = EXCLUDED.start_minute,
			skipped = EXCLUDED.skipped,
			updated_at = NOW()
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		override.HabitID,
		override.Day,
		override.StartMinute,
		override.Skipped,
	)
	return err
}

// FindOverridesForDay returns overrides for all of a user's habits on a
// date, keyed by habit ID.
func (r *PostgresRepository) FindOverridesForDay(ctx context.Context, userID uuid.UUID, day time.Time) (map[uuid.UUID]*domain.Override, error) {
	query := `
		SELECT o.habit_id, o.day, o.start_minute, o.skipped
		FROM habit_overrides o
		JOIN habits h ON h.id = o.habit_id
		WHERE h.user_id = $1 AND o.day = $2
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, userID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*domain.Override)
	for rows.Next() {
		var override domain.Override
		if err := rows.Scan(&override.HabitID, &override.Day, &override.StartMinute, &override.Skipped); err != nil {
			return nil, err
		}
		out[override.HabitID] = &override
	}
	return out, rows.Err()
}

// Delete removes a habit; overrides and weekday times cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	tag, err := execer.Exec(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

// habitRow carries scanned columns until weekday times are loaded.
type habitRow struct {
	id                 uuid.UUID
	userID             uuid.UUID
	name               string
	durationMinutes    int
	defaultStartMinute *int
	frequency          string
	archived           bool
	createdAt          time.Time
	updatedAt          time.Time
}

func scanHabit(row pgx.Row) (*habitRow, error) {
	var h habitRow
	err := row.Scan(
		&h.id,
		&h.userID,
		&h.name,
		&h.durationMinutes,
		&h.defaultStartMinute,
		&h.frequency,
		&h.archived,
		&h.createdAt,
		&h.updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func rehydrateWithTimes(h *habitRow, times map[time.Weekday]int) *domain.Habit {
	return domain.RehydrateHabit(
		h.id, h.userID,
		h.name,
		h.durationMinutes,
		h.defaultStartMinute,
		times,
		domain.Frequency(h.frequency),
		h.archived,
		h.createdAt, h.updatedAt,
	)
}
