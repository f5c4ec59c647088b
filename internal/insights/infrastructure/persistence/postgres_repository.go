package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/svenhofer/timegrid/internal/insights/domain"
	sharedPersistence "github.com/svenhofer/timegrid/internal/shared/infrastructure/persistence"
)

// PostgresCategoryRepository implements domain.CategoryRepository using
// PostgreSQL.
type PostgresCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCategoryRepository creates a new PostgreSQL category repository.
func NewPostgresCategoryRepository(pool *pgxpool.Pool) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{pool: pool}
}

// SaveCategory persists a category (create or update).
func (r *PostgresCategoryRepository) SaveCategory(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		category.ID(),
		category.UserID(),
		category.Name(),
		category.CreatedAt(),
		category.UpdatedAt(),
	)
	return err
}

// FindCategoriesByUserID returns all categories for a user.
func (r *PostgresCategoryRepository) FindCategoriesByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM categories
		WHERE user_id = $1
		ORDER BY name
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var (
			id, owner            uuid.UUID
			name                 string
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &owner, &name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, domain.RehydrateCategory(id, owner, name, createdAt, updatedAt))
	}
	return categories, rows.Err()
}

// SaveBuffer upserts a weekly buffer for a category.
func (r *PostgresCategoryRepository) SaveBuffer(ctx context.Context, buffer domain.CategoryBuffer) error {
	query := `
		INSERT INTO category_buffers (user_id, category_id, weekly_hours, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id, category_id) DO UPDATE SET
			weekly_hours = EXCLUDED.weekly_hours,
			updated_at = NOW()
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query, buffer.UserID, buffer.CategoryID, buffer.WeeklyHours)
	return err
}

// FindBuffersByUserID returns all buffers for a user.
func (r *PostgresCategoryRepository) FindBuffersByUserID(ctx context.Context, userID uuid.UUID) ([]domain.CategoryBuffer, error) {
	query := `
		SELECT user_id, category_id, weekly_hours
		FROM category_buffers
		WHERE user_id = $1
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buffers []domain.CategoryBuffer
	for rows.Next() {
		var buffer domain.CategoryBuffer
		if err := rows.Scan(&buffer.UserID, &buffer.CategoryID, &buffer.WeeklyHours); err != nil {
			return nil, err
		}
		buffers = append(buffers, buffer)
	}
	return buffers, rows.Err()
}

// DeleteBuffer removes a category's buffer.
func (r *PostgresCategoryRepository) DeleteBuffer(ctx context.Context, userID, categoryID uuid.UUID) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, `DELETE FROM category_buffers WHERE user_id = $1 AND category_id = $2`, userID, categoryID)
	return err
}

const selectSessionColumns = `
	SELECT id, user_id, category_id, started_at, ended_at, created_at
	FROM time_sessions
`

// PostgresSessionRepository implements domain.SessionRepository using
// PostgreSQL.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new PostgreSQL session repository.
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Save persists a session (create or update).
func (r *PostgresSessionRepository) Save(ctx context.Context, session *domain.TimeSession) error {
	query := `
		INSERT INTO time_sessions (id, user_id, category_id, started_at, ended_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			category_id = EXCLUDED.category_id,
			started_at = EXCLUDED.started_at,
			ended_at = EXCLUDED.ended_at
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		session.ID(),
		session.UserID(),
		session.CategoryID(),
		session.StartedAt(),
		session.EndedAt(),
		session.CreatedAt(),
	)
	return err
}

// FindByID finds a session by its ID.
func (r *PostgresSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TimeSession, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	session, err := scanSession(execer.QueryRow(ctx, selectSessionColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// FindByUserInRange returns sessions whose start falls in [from, to],
// ordered by start time. Attribution is by start date, so the week and
// day aggregations count each session exactly once.
func (r *PostgresSessionRepository) FindByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.TimeSession, error) {
	query := selectSessionColumns + `
		WHERE user_id = $1 AND started_at >= $2 AND started_at <= $3
		ORDER BY started_at
	`
	return r.query(ctx, query, userID, from, to)
}

// FindRunning returns the user's in-progress sessions.
func (r *PostgresSessionRepository) FindRunning(ctx context.Context, userID uuid.UUID) ([]*domain.TimeSession, error) {
	query := selectSessionColumns + `
		WHERE user_id = $1 AND ended_at IS NULL
		ORDER BY started_at
	`
	return r.query(ctx, query, userID)
}

func (r *PostgresSessionRepository) query(ctx context.Context, query string, args ...any) ([]*domain.TimeSession, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.TimeSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*domain.TimeSession, error) {
	var (
		id, userID uuid.UUID
		categoryID *uuid.UUID
		startedAt  time.Time
		endedAt    *time.Time
		createdAt  time.Time
	)
	err := row.Scan(&id, &userID, &categoryID, &startedAt, &endedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateTimeSession(id, userID, categoryID, startedAt, endedAt, createdAt), nil
}

const selectSnapshotColumns = `
	SELECT id, user_id, category_id, week_start, hours_spent, weekly_hours, utilization_percent, computed_at
	FROM utilization_snapshots
`

// PostgresSnapshotRepository implements domain.SnapshotRepository using
// PostgreSQL.
type PostgresSnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSnapshotRepository creates a new PostgreSQL snapshot repository.
func NewPostgresSnapshotRepository(pool *pgxpool.Pool) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{pool: pool}
}

// Save upserts a snapshot for (user, category, week).
func (r *PostgresSnapshotRepository) Save(ctx context.Context, snapshot *domain.UtilizationSnapshot) error {
	query := `
		INSERT INTO utilization_snapshots (user_id, category_id, week_start, hours_spent, weekly_hours, utilization_percent, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, category_id, week_start) DO UPDATE SET
			hours_spent = EXCLUDED.hours_spent,
			weekly_hours = EXCLUDED.weekly_hours,
			utilization_percent = EXCLUDED.utilization_percent,
			computed_at = EXCLUDED.computed_at
		RETURNING id
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	return execer.QueryRow(ctx, query,
		snapshot.UserID,
		snapshot.CategoryID,
		snapshot.WeekStart,
		snapshot.HoursSpent,
		snapshot.WeeklyHours,
		snapshot.UtilizationPercent,
		snapshot.ComputedAt,
	).Scan(&snapshot.ID)
}

// FindByUserWeek returns all snapshots for a user's week.
func (r *PostgresSnapshotRepository) FindByUserWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) ([]*domain.UtilizationSnapshot, error) {
	query := selectSnapshotColumns + `
		WHERE user_id = $1 AND week_start = $2
		ORDER BY utilization_percent DESC
	`
	return r.query(ctx, query, userID, weekStart)
}

// FindTrend returns snapshots for one category over the most recent
// weeks, newest first.
func (r *PostgresSnapshotRepository) FindTrend(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, weeks int) ([]*domain.UtilizationSnapshot, error) {
	query := selectSnapshotColumns + `
		WHERE user_id = $1 AND category_id IS NOT DISTINCT FROM $2
		ORDER BY week_start DESC
		LIMIT $3
	`
	return r.query(ctx, query, userID, categoryID, weeks)
}

func (r *PostgresSnapshotRepository) query(ctx context.Context, query string, args ...any) ([]*domain.UtilizationSnapshot, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*domain.UtilizationSnapshot
	for rows.Next() {
		var snapshot domain.UtilizationSnapshot
		err := rows.Scan(
			&snapshot.ID,
			&snapshot.UserID,
			&snapshot.CategoryID,
			&snapshot.WeekStart,
			&snapshot.HoursSpent,
			&snapshot.WeeklyHours,
			&snapshot.UtilizationPercent,
			&snapshot.ComputedAt,
		)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, &snapshot)
	}
	return snapshots, rows.Err()
}
