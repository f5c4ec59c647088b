package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/svenhofer/timegrid/internal/meetings/domain"
	sharedPersistence "github.com/svenhofer/timegrid/internal/shared/infrastructure/persistence"
)

const upsertMeetingSQL = `
	INSERT INTO meetings (id, user_id, title, category_id, start_at, end_at, held, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		category_id = EXCLUDED.category_id,
		start_at = EXCLUDED.start_at,
		end_at = EXCLUDED.end_at,
		held = EXCLUDED.held,
		updated_at = EXCLUDED.updated_at
`

const selectMeetingColumns = `
	SELECT id, user_id, title, category_id, start_at, end_at, held, created_at, updated_at
	FROM meetings
`

// PostgresRepository implements domain.Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL meeting repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save persists a meeting (create or update).
func (r *PostgresRepository) Save(ctx context.Context, meeting *domain.Meeting) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, upsertMeetingSQL,
		meeting.ID(),
		meeting.UserID(),
		meeting.Title(),
		meeting.CategoryID(),
		meeting.StartAt(),
		meeting.EndAt(),
		meeting.WasHeld(),
		meeting.CreatedAt(),
		meeting.UpdatedAt(),
	)
	return err
}

// FindByID finds a meeting by its ID.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	meeting, err := scanMeeting(execer.QueryRow(ctx, selectMeetingColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, err
	}
	return meeting, nil
}

// FindByUserInRange finds meetings overlapping [from, to], ordered by
// start time. A meeting ending exactly at from occupies nothing in the
// range and is excluded.
func (r *PostgresRepository) FindByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Meeting, error) {
	query := selectMeetingColumns + `
		WHERE user_id = $1 AND end_at > $2 AND start_at <= $3
		ORDER BY start_at
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []*domain.Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	return meetings, rows.Err()
}

// Delete removes a meeting.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	tag, err := execer.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}

func scanMeeting(row pgx.Row) (*domain.Meeting, error) {
	var (
		id, userID           uuid.UUID
		title                string
		categoryID           *uuid.UUID
		startAt, endAt       time.Time
		held                 bool
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&id, &userID, &title, &categoryID, &startAt, &endAt, &held, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateMeeting(id, userID, title, categoryID, startAt, endAt, held, createdAt, updatedAt), nil
}
