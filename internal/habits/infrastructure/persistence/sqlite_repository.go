package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/svenhofer/timegrid/internal/habits/domain"
	sharedPersistence "github.com/svenhofer/timegrid/internal/shared/infrastructure/persistence"
)

const dayFormat = "2006-01-02"

const sqliteUpsertHabitSQL = `
	INSERT INTO habits (id, user_id, name, duration_minutes, default_start_minute, frequency, archived, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		duration_minutes = excluded.duration_minutes,
		default_start_minute = excluded.default_start_minute,
		frequency = excluded.frequency,
		archived = excluded.archived,
		updated_at = excluded.updated_at
`

const sqliteSelectHabitColumns = `
	SELECT id, user_id, name, duration_minutes, default_start_minute, frequency, archived, created_at, updated_at
	FROM habits
`

// SQLiteRepository implements domain.Repository using SQLite.
type SQLiteRepository struct {
	dbConn *sql.DB
}

// NewSQLiteRepository creates a new SQLite habit repository.
func NewSQLiteRepository(dbConn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{dbConn: dbConn}
}

func (r *SQLiteRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.dbConn)
}

// Save persists a habit and replaces its per-weekday start times.
func (r *SQLiteRepository) Save(ctx context.Context, habit *domain.Habit) error {
	q := r.querier(ctx)

	_, err := q.ExecContext(ctx, sqliteUpsertHabitSQL,
		habit.ID().String(),
		habit.UserID().String(),
		habit.Name(),
		habit.DurationMinutes(),
		nullableInt(habit.DefaultStartMinute()),
		string(habit.Frequency()),
		boolToInt(habit.IsArchived()),
		habit.CreatedAt().UTC().Format(time.RFC3339Nano),
		habit.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM habit_weekday_times WHERE habit_id = ?`, habit.ID().String()); err != nil {
		return err
	}
	for weekday, minute := range habit.WeekdayStartMinutes() {
		_, err := q.ExecContext(ctx,
			`INSERT INTO habit_weekday_times (habit_id, weekday, start_minute) VALUES (?, ?, ?)`,
			habit.ID().String(), int(weekday), minute,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a habit by its ID.
func (r *SQLiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Habit, error) {
	row := r.querier(ctx).QueryRowContext(ctx, sqliteSelectHabitColumns+` WHERE id = ?`, id.String())
	habit, err := scanSQLiteHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, err
	}

	times, err := r.weekdayTimesFor(ctx, id)
	if err != nil {
		return nil, err
	}
	return rehydrateWithTimes(habit, times), nil
}

// FindByUserID finds all habits for a user.
func (r *SQLiteRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Habit, error) {
	return r.findByUser(ctx, sqliteSelectHabitColumns+` WHERE user_id = ? ORDER BY created_at`, userID)
}

// FindActiveByUserID finds all non-archived habits for a user.
func (r *SQLiteRepository) FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Habit, error) {
	return r.findByUser(ctx, sqliteSelectHabitColumns+` WHERE user_id = ? AND archived = 0 ORDER BY created_at`, userID)
}

func (r *SQLiteRepository) findByUser(ctx context.Context, query string, userID uuid.UUID) ([]*domain.Habit, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []*habitRow
	for rows.Next() {
		habit, err := scanSQLiteHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.Habit, 0, len(habits))
	for _, habit := range habits {
		times, err := r.weekdayTimesFor(ctx, habit.id)
		if err != nil {
			return nil, err
		}
		out = append(out, rehydrateWithTimes(habit, times))
	}
	return out, nil
}

func (r *SQLiteRepository) weekdayTimesFor(ctx context.Context, habitID uuid.UUID) (map[time.Weekday]int, error) {
	rows, err := r.querier(ctx).QueryContext(ctx,
		`SELECT weekday, start_minute FROM habit_weekday_times WHERE habit_id = ?`,
		habitID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[time.Weekday]int)
	for rows.Next() {
		var weekday, minute int
		if err := rows.Scan(&weekday, &minute); err != nil {
			return nil, err
		}
		out[time.Weekday(weekday)] = minute
	}
	return out, rows.Err()
}

// SaveOverride upserts a per-date override.
func (r *SQLiteRepository) SaveOverride(ctx context.Context, override *domain.Override) error {
	query := `
		INSERT INTO habit_overrides (habit_id, day, start_minute, skipped, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (habit_id, day) DO UPDATE SET
			start_minute = excluded.start_minute,
			skipped = excluded.skipped,
			updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := r.querier(ctx).ExecContext(ctx, query,
		override.HabitID.String(),
		override.Day.Format(dayFormat),
		nullableInt(override.StartMinute),
		boolToInt(override.Skipped),
		now,
		now,
	)
	return err
}

// FindOverridesForDay returns overrides for all of a user's habits on a
// date, keyed by habit ID.
func (r *SQLiteRepository) FindOverridesForDay(ctx context.Context, userID uuid.UUID, day time.Time) (map[uuid.UUID]*domain.Override, error) {
	query := `
		SELECT o.habit_id, o.day, o.start_minute, o.skipped
		FROM habit_overrides o
		JOIN habits h ON h.id = o.habit_id
		WHERE h.user_id = ? AND o.day = ?
	`
	rows, err := r.querier(ctx).QueryContext(ctx, query, userID.String(), day.Format(dayFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*domain.Override)
	for rows.Next() {
		var (
			override    domain.Override
			habitID     string
			dayText     string
			startMinute sql.NullInt64
			skipped     int
		)
		if err := rows.Scan(&habitID, &dayText, &startMinute, &skipped); err != nil {
			return nil, err
		}
		if override.HabitID, err = uuid.Parse(habitID); err != nil {
			return nil, fmt.Errorf("parse habit id: %w", err)
		}
		if override.Day, err = time.Parse(dayFormat, dayText); err != nil {
			return nil, fmt.Errorf("parse override day: %w", err)
		}
		if startMinute.Valid {
			minute := int(startMinute.Int64)
			override.StartMinute = &minute
		}
		override.Skipped = skipped != 0
		out[override.HabitID] = &override
	}
	return out, rows.Err()
}

// Delete removes a habit and its overrides.
func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := r.querier(ctx)

	// SQLite foreign keys may be off; remove child rows explicitly.
	if _, err := q.ExecContext(ctx, `DELETE FROM habit_overrides WHERE habit_id = ?`, id.String()); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM habit_weekday_times WHERE habit_id = ?`, id.String()); err != nil {
		return err
	}
	result, err := q.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

func scanSQLiteHabit(row interface{ Scan(dest ...any) error }) (*habitRow, error) {
	var (
		h                  habitRow
		id, userID         string
		defaultStartMinute sql.NullInt64
		archived           int
		createdAt          string
		updatedAt          string
	)
	err := row.Scan(
		&id,
		&userID,
		&h.name,
		&h.durationMinutes,
		&defaultStartMinute,
		&h.frequency,
		&archived,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if h.id, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse habit id: %w", err)
	}
	if h.userID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	if defaultStartMinute.Valid {
		minute := int(defaultStartMinute.Int64)
		h.defaultStartMinute = &minute
	}
	h.archived = archived != 0
	if h.createdAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if h.updatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &h, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
