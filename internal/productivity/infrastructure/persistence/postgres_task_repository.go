package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/svenhofer/timegrid/internal/productivity/domain/task"
	sharedPersistence "github.com/svenhofer/timegrid/internal/shared/infrastructure/persistence"
)

const upsertTaskSQL = `
	INSERT INTO tasks (id, user_id, parent_task_id, title, duration_hours, start_hour, scheduled_on, status, position, completed_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (id) DO UPDATE SET
		parent_task_id = EXCLUDED.parent_task_id,
		title = EXCLUDED.title,
		duration_hours = EXCLUDED.duration_hours,
		start_hour = EXCLUDED.start_hour,
		scheduled_on = EXCLUDED.scheduled_on,
		status = EXCLUDED.status,
		position = EXCLUDED.position,
		completed_at = EXCLUDED.completed_at,
		updated_at = EXCLUDED.updated_at
`

const selectTaskColumns = `
	SELECT id, user_id, parent_task_id, title, duration_hours, start_hour, scheduled_on, status, position, completed_at, created_at, updated_at
	FROM tasks
`

// PostgresTaskRepository implements task.Repository using PostgreSQL.
type PostgresTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTaskRepository creates a new PostgreSQL task repository.
func NewPostgresTaskRepository(pool *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{pool: pool}
}

// Save persists a task (create or update).
func (r *PostgresTaskRepository) Save(ctx context.Context, t *task.Task) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, upsertTaskSQL,
		t.ID(),
		t.UserID(),
		t.ParentTaskID(),
		t.Title(),
		t.DurationHours(),
		t.StartHour(),
		t.ScheduledOn(),
		string(t.Status()),
		t.Position(),
		t.CompletedAt(),
		t.CreatedAt(),
		t.UpdatedAt(),
	)
	return err
}

// FindByID finds a task by its ID.
func (r *PostgresTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	t, err := scanTask(execer.QueryRow(ctx, selectTaskColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

// FindPendingByUserID finds pending unplaced tasks for a user ordered by
// position. This is the scheduler's input order.
func (r *PostgresTaskRepository) FindPendingByUserID(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := selectTaskColumns + `
		WHERE user_id = $1 AND status = $2 AND start_hour IS NULL
		ORDER BY position, created_at
	`
	return r.query(ctx, query, userID, string(task.StatusPending))
}

// FindScheduledOn finds tasks with an assigned start hour for a day.
func (r *PostgresTaskRepository) FindScheduledOn(ctx context.Context, userID uuid.UUID, day time.Time) ([]*task.Task, error) {
	query := selectTaskColumns + `
		WHERE user_id = $1 AND scheduled_on = $2 AND start_hour IS NOT NULL
		ORDER BY start_hour
	`
	return r.query(ctx, query, userID, day)
}

// FindSubtasks finds the direct children of a task.
func (r *PostgresTaskRepository) FindSubtasks(ctx context.Context, parentTaskID uuid.UUID) ([]*task.Task, error) {
	query := selectTaskColumns + `
		WHERE parent_task_id = $1
		ORDER BY position, created_at
	`
	return r.query(ctx, query, parentTaskID)
}

// Delete removes a task; subtasks cascade.
func (r *PostgresTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	tag, err := execer.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

func (r *PostgresTaskRepository) query(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		id, userID           uuid.UUID
		parentTaskID         *uuid.UUID
		title                string
		durationHours        *float64
		startHour            *float64
		scheduledOn          *time.Time
		status               string
		position             int
		completedAt          *time.Time
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&id, &userID, &parentTaskID, &title, &durationHours, &startHour, &scheduledOn, &status, &position, &completedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	return task.RehydrateTask(id, userID, parentTaskID, title, durationHours, startHour, scheduledOn, task.Status(status), position, completedAt, createdAt, updatedAt), nil
}
