package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/svenhofer/timegrid/internal/insights/domain"
	sharedPersistence "github.com/svenhofer/timegrid/internal/shared/infrastructure/persistence"
)

const dayFormat = "2006-01-02"

// SQLiteCategoryRepository implements domain.CategoryRepository using
// SQLite.
type SQLiteCategoryRepository struct {
	dbConn *sql.DB
}

// NewSQLiteCategoryRepository creates a new SQLite category repository.
func NewSQLiteCategoryRepository(dbConn *sql.DB) *SQLiteCategoryRepository {
	return &SQLiteCategoryRepository{dbConn: dbConn}
}

func (r *SQLiteCategoryRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.dbConn)
}

// SaveCategory persists a category (create or update).
func (r *SQLiteCategoryRepository) SaveCategory(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at
	`
	_, err := r.querier(ctx).ExecContext(ctx, query,
		category.ID().String(),
		category.UserID().String(),
		category.Name(),
		category.CreatedAt().UTC().Format(time.RFC3339Nano),
		category.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// FindCategoriesByUserID returns all categories for a user.
func (r *SQLiteCategoryRepository) FindCategoriesByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM categories
		WHERE user_id = ?
		ORDER BY name
	`
	rows, err := r.querier(ctx).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var idText, ownerText, name, createdText, updText string
		if err := rows.Scan(&idText, &ownerText, &name, &createdText, &updText); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idText)
		if err != nil {
			return nil, fmt.Errorf("parse category id: %w", err)
		}
		owner, err := uuid.Parse(ownerText)
		if err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, createdText)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		updatedAt, err := time.Parse(time.RFC3339Nano, updText)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		categories = append(categories, domain.RehydrateCategory(id, owner, name, createdAt, updatedAt))
	}
	return categories, rows.Err()
}

// SaveBuffer upserts a weekly buffer for a category.
func (r *SQLiteCategoryRepository) SaveBuffer(ctx context.Context, buffer domain.CategoryBuffer) error {
	query := `
		INSERT INTO category_buffers (user_id, category_id, weekly_hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category_id) DO UPDATE SET
			weekly_hours = excluded.weekly_hours,
			updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := r.querier(ctx).ExecContext(ctx, query,
		buffer.UserID.String(),
		buffer.CategoryID.String(),
		buffer.WeeklyHours,
		now,
		now,
	)
	return err
}

// FindBuffersByUserID returns all buffers for a user.
func (r *SQLiteCategoryRepository) FindBuffersByUserID(ctx context.Context, userID uuid.UUID) ([]domain.CategoryBuffer, error) {
	query := `
		SELECT user_id, category_id, weekly_hours
		FROM category_buffers
		WHERE user_id = ?
	`
	rows, err := r.querier(ctx).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buffers []domain.CategoryBuffer
	for rows.Next() {
		var (
			buffer            domain.CategoryBuffer
			userText, catText string
		)
		if err := rows.Scan(&userText, &catText, &buffer.WeeklyHours); err != nil {
			return nil, err
		}
		if buffer.UserID, err = uuid.Parse(userText); err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		if buffer.CategoryID, err = uuid.Parse(catText); err != nil {
			return nil, fmt.Errorf("parse category id: %w", err)
		}
		buffers = append(buffers, buffer)
	}
	return buffers, rows.Err()
}

// DeleteBuffer removes a category's buffer.
func (r *SQLiteCategoryRepository) DeleteBuffer(ctx context.Context, userID, categoryID uuid.UUID) error {
	_, err := r.querier(ctx).ExecContext(ctx,
		`DELETE FROM category_buffers WHERE user_id = ? AND category_id = ?`,
		userID.String(), categoryID.String(),
	)
	return err
}

const sqliteSelectSessionColumns = `
	SELECT id, user_id, category_id, started_at, ended_at, created_at
	FROM time_sessions
`

// SQLiteSessionRepository implements domain.SessionRepository using
// SQLite.
type SQLiteSessionRepository struct {
	dbConn *sql.DB
}

// NewSQLiteSessionRepository creates a new SQLite session repository.
func NewSQLiteSessionRepository(dbConn *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{dbConn: dbConn}
}

func (r *SQLiteSessionRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.dbConn)
}

// Save persists a session (create or update).
func (r *SQLiteSessionRepository) Save(ctx context.Context, session *domain.TimeSession) error {
	query := `
		INSERT INTO time_sessions (id, user_id, category_id, started_at, ended_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			category_id = excluded.category_id,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at
	`
	var categoryID sql.NullString
	if id := session.CategoryID(); id != nil {
		categoryID = sql.NullString{String: id.String(), Valid: true}
	}
	var endedAt sql.NullString
	if at := session.EndedAt(); at != nil {
		endedAt = sql.NullString{String: at.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	_, err := r.querier(ctx).ExecContext(ctx, query,
		session.ID().String(),
		session.UserID().String(),
		categoryID,
		session.StartedAt().UTC().Format(time.RFC3339Nano),
		endedAt,
		session.CreatedAt().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// FindByID finds a session by its ID.
func (r *SQLiteSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TimeSession, error) {
	row := r.querier(ctx).QueryRowContext(ctx, sqliteSelectSessionColumns+` WHERE id = ?`, id.String())
	session, err := scanSQLiteSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// FindByUserInRange returns sessions whose start falls in [from, to],
// ordered by start time. Attribution is by start date, so the week and
// day aggregations count each session exactly once.
func (r *SQLiteSessionRepository) FindByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.TimeSession, error) {
	query := sqliteSelectSessionColumns + `
		WHERE user_id = ? AND started_at >= ? AND started_at <= ?
		ORDER BY started_at
	`
	return r.query(ctx, query,
		userID.String(),
		from.UTC().Format(time.RFC3339Nano),
		to.UTC().Format(time.RFC3339Nano),
	)
}

// FindRunning returns the user's in-progress sessions.
func (r *SQLiteSessionRepository) FindRunning(ctx context.Context, userID uuid.UUID) ([]*domain.TimeSession, error) {
	query := sqliteSelectSessionColumns + `
		WHERE user_id = ? AND ended_at IS NULL
		ORDER BY started_at
	`
	return r.query(ctx, query, userID.String())
}

func (r *SQLiteSessionRepository) query(ctx context.Context, query string, args ...any) ([]*domain.TimeSession, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.TimeSession
	for rows.Next() {
		session, err := scanSQLiteSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanSQLiteSession(row interface{ Scan(dest ...any) error }) (*domain.TimeSession, error) {
	var (
		idText, userText string
		categoryText     sql.NullString
		startedText      string
		endedText        sql.NullString
		createdText      string
	)
	err := row.Scan(&idText, &userText, &categoryText, &startedText, &endedText, &createdText)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idText)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	userID, err := uuid.Parse(userText)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	var categoryID *uuid.UUID
	if categoryText.Valid {
		parsed, err := uuid.Parse(categoryText.String)
		if err != nil {
			return nil, fmt.Errorf("parse category id: %w", err)
		}
		categoryID = &parsed
	}
	startedAt, err := time.Parse(time.RFC3339Nano, startedText)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	var endedAt *time.Time
	if endedText.Valid {
		at, err := time.Parse(time.RFC3339Nano, endedText.String)
		if err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		endedAt = &at
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdText)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return domain.RehydrateTimeSession(id, userID, categoryID, startedAt, endedAt, createdAt), nil
}

const sqliteSelectSnapshotColumns = `
	SELECT id, user_id, category_id, week_start, hours_spent, weekly_hours, utilization_percent, computed_at
	FROM utilization_snapshots
`

// SQLiteSnapshotRepository implements domain.SnapshotRepository using
// SQLite.
type SQLiteSnapshotRepository struct {
	dbConn *sql.DB
}

// NewSQLiteSnapshotRepository creates a new SQLite snapshot repository.
func NewSQLiteSnapshotRepository(dbConn *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{dbConn: dbConn}
}

func (r *SQLiteSnapshotRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.dbConn)
}

// Save upserts a snapshot for (user, category, week).
func (r *SQLiteSnapshotRepository) Save(ctx context.Context, snapshot *domain.UtilizationSnapshot) error {
	query := `
		INSERT INTO utilization_snapshots (user_id, category_id, week_start, hours_spent, weekly_hours, utilization_percent, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category_id, week_start) DO UPDATE SET
			hours_spent = excluded.hours_spent,
			weekly_hours = excluded.weekly_hours,
			utilization_percent = excluded.utilization_percent,
			computed_at = excluded.computed_at
	`
	var categoryID sql.NullString
	if snapshot.CategoryID != nil {
		categoryID = sql.NullString{String: snapshot.CategoryID.String(), Valid: true}
	}

	result, err := r.querier(ctx).ExecContext(ctx, query,
		snapshot.UserID.String(),
		categoryID,
		snapshot.WeekStart.Format(dayFormat),
		snapshot.HoursSpent,
		snapshot.WeeklyHours,
		snapshot.UtilizationPercent,
		snapshot.ComputedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	if id, err := result.LastInsertId(); err == nil && id != 0 {
		snapshot.ID = id
	}
	return nil
}

// FindByUserWeek returns all snapshots for a user's week.
func (r *SQLiteSnapshotRepository) FindByUserWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) ([]*domain.UtilizationSnapshot, error) {
	query := sqliteSelectSnapshotColumns + `
		WHERE user_id = ? AND week_start = ?
		ORDER BY utilization_percent DESC
	`
	return r.query(ctx, query, userID.String(), weekStart.Format(dayFormat))
}

// FindTrend returns snapshots for one category over the most recent
// weeks, newest first.
func (r *SQLiteSnapshotRepository) FindTrend(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, weeks int) ([]*domain.UtilizationSnapshot, error) {
	if categoryID == nil {
		query := sqliteSelectSnapshotColumns + `
			WHERE user_id = ? AND category_id IS NULL
			ORDER BY week_start DESC
			LIMIT ?
		`
		return r.query(ctx, query, userID.String(), weeks)
	}
	query := sqliteSelectSnapshotColumns + `
		WHERE user_id = ? AND category_id = ?
		ORDER BY week_start DESC
		LIMIT ?
	`
	return r.query(ctx, query, userID.String(), categoryID.String(), weeks)
}

func (r *SQLiteSnapshotRepository) query(ctx context.Context, query string, args ...any) ([]*domain.UtilizationSnapshot, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*domain.UtilizationSnapshot
	for rows.Next() {
		var (
			snapshot     domain.UtilizationSnapshot
			userText     string
			categoryText sql.NullString
			weekText     string
			computedText string
		)
		err := rows.Scan(
			&snapshot.ID,
			&userText,
			&categoryText,
			&weekText,
			&snapshot.HoursSpent,
			&snapshot.WeeklyHours,
			&snapshot.UtilizationPercent,
			&computedText,
		)
		if err != nil {
			return nil, err
		}
		if snapshot.UserID, err = uuid.Parse(userText); err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		if categoryText.Valid {
			parsed, err := uuid.Parse(categoryText.String)
			if err != nil {
				return nil, fmt.Errorf("parse category id: %w", err)
			}
			snapshot.CategoryID = &parsed
		}
		if snapshot.WeekStart, err = time.Parse(dayFormat, weekText); err != nil {
			return nil, fmt.Errorf("parse week_start: %w", err)
		}
		if snapshot.ComputedAt, err = time.Parse(time.RFC3339Nano, computedText); err != nil {
			return nil, fmt.Errorf("parse computed_at: %w", err)
		}
		snapshots = append(snapshots, &snapshot)
	}
	return snapshots, rows.Err()
}
