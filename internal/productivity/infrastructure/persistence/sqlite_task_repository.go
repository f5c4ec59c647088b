package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/svenhofer/timegrid/internal/productivity/domain/task"
	sharedPersistence "github.com/svenhofer/timegrid/internal/shared/infrastructure/persistence"
)

const dayFormat = "2006-01-02"

const sqliteUpsertTaskSQL = `
	INSERT INTO tasks (id, user_id, parent_task_id, title, duration_hours, start_hour, scheduled_on, status, position, completed_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		parent_task_id = excluded.parent_task_id,
		title = excluded.title,
		duration_hours = excluded.duration_hours,
		start_hour = excluded.start_hour,
		scheduled_on = excluded.scheduled_on,
		status = excluded.status,
		position = excluded.position,
		completed_at = excluded.completed_at,
		updated_at = excluded.updated_at
`

const sqliteSelectTaskColumns = `
	SELECT id, user_id, parent_task_id, title, duration_hours, start_hour, scheduled_on, status, position, completed_at, created_at, updated_at
	FROM tasks
`

// SQLiteTaskRepository implements task.Repository using SQLite.
type SQLiteTaskRepository struct {
	dbConn *sql.DB
}

// NewSQLiteTaskRepository creates a new SQLite task repository.
func NewSQLiteTaskRepository(dbConn *sql.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{dbConn: dbConn}
}

func (r *SQLiteTaskRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.dbConn)
}

// Save persists a task (create or update).
func (r *SQLiteTaskRepository) Save(ctx context.Context, t *task.Task) error {
	var scheduledOn sql.NullString
	if day := t.ScheduledOn(); day != nil {
		scheduledOn = sql.NullString{String: day.Format(dayFormat), Valid: true}
	}

	_, err := r.querier(ctx).ExecContext(ctx, sqliteUpsertTaskSQL,
		t.ID().String(),
		t.UserID().String(),
		nullableUUID(t.ParentTaskID()),
		t.Title(),
		nullableFloat(t.DurationHours()),
		nullableFloat(t.StartHour()),
		scheduledOn,
		string(t.Status()),
		t.Position(),
		nullableTime(t.CompletedAt()),
		t.CreatedAt().UTC().Format(time.RFC3339Nano),
		t.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// FindByID finds a task by its ID.
func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	row := r.querier(ctx).QueryRowContext(ctx, sqliteSelectTaskColumns+` WHERE id = ?`, id.String())
	t, err := scanSQLiteTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

// FindPendingByUserID finds pending unplaced tasks for a user ordered by
// position. This is the scheduler's input order.
func (r *SQLiteTaskRepository) FindPendingByUserID(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := sqliteSelectTaskColumns + `
		WHERE user_id = ? AND status = ? AND start_hour IS NULL
		ORDER BY position, created_at
	`
	return r.query(ctx, query, userID.String(), string(task.StatusPending))
}

// FindScheduledOn finds tasks with an assigned start hour for a day.
func (r *SQLiteTaskRepository) FindScheduledOn(ctx context.Context, userID uuid.UUID, day time.Time) ([]*task.Task, error) {
	query := sqliteSelectTaskColumns + `
		WHERE user_id = ? AND scheduled_on = ? AND start_hour IS NOT NULL
		ORDER BY start_hour
	`
	return r.query(ctx, query, userID.String(), day.Format(dayFormat))
}

// FindSubtasks finds the direct children of a task.
func (r *SQLiteTaskRepository) FindSubtasks(ctx context.Context, parentTaskID uuid.UUID) ([]*task.Task, error) {
	query := sqliteSelectTaskColumns + `
		WHERE parent_task_id = ?
		ORDER BY position, created_at
	`
	return r.query(ctx, query, parentTaskID.String())
}

// Delete removes a task and its subtasks.
func (r *SQLiteTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := r.querier(ctx)

	if _, err := q.ExecContext(ctx, `DELETE FROM tasks WHERE parent_task_id = ?`, id.String()); err != nil {
		return err
	}
	result, err := q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

func (r *SQLiteTaskRepository) query(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanSQLiteTask(row interface{ Scan(dest ...any) error }) (*task.Task, error) {
	var (
		idText, userText     string
		parentText           sql.NullString
		title                string
		durationHours        sql.NullFloat64
		startHour            sql.NullFloat64
		scheduledText        sql.NullString
		status               string
		position             int
		completedText        sql.NullString
		createdText, updText string
	)
	err := row.Scan(&idText, &userText, &parentText, &title, &durationHours, &startHour, &scheduledText, &status, &position, &completedText, &createdText, &updText)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idText)
	if err != nil {
		return nil, fmt.Errorf("parse task id: %w", err)
	}
	userID, err := uuid.Parse(userText)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	var parentTaskID *uuid.UUID
	if parentText.Valid {
		parsed, err := uuid.Parse(parentText.String)
		if err != nil {
			return nil, fmt.Errorf("parse parent task id: %w", err)
		}
		parentTaskID = &parsed
	}
	var scheduledOn *time.Time
	if scheduledText.Valid {
		day, err := time.Parse(dayFormat, scheduledText.String)
		if err != nil {
			return nil, fmt.Errorf("parse scheduled_on: %w", err)
		}
		scheduledOn = &day
	}
	var completedAt *time.Time
	if completedText.Valid {
		at, err := time.Parse(time.RFC3339Nano, completedText.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		completedAt = &at
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdText)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, updText)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return task.RehydrateTask(
		id, userID,
		parentTaskID,
		title,
		nullableFloatPtr(durationHours),
		nullableFloatPtr(startHour),
		scheduledOn,
		task.Status(status),
		position,
		completedAt,
		createdAt, updatedAt,
	), nil
}

func nullableUUID(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullableFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}
