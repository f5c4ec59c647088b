package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/svenhofer/timegrid/internal/meetings/domain"
	sharedPersistence "github.com/svenhofer/timegrid/internal/shared/infrastructure/persistence"
)

const sqliteUpsertMeetingSQL = `
	INSERT INTO meetings (id, user_id, title, category_id, start_at, end_at, held, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		title = excluded.title,
		category_id = excluded.category_id,
		start_at = excluded.start_at,
		end_at = excluded.end_at,
		held = excluded.held,
		updated_at = excluded.updated_at
`

const sqliteSelectMeetingColumns = `
	SELECT id, user_id, title, category_id, start_at, end_at, held, created_at, updated_at
	FROM meetings
`

// SQLiteRepository implements domain.Repository using SQLite.
type SQLiteRepository struct {
	dbConn *sql.DB
}

// NewSQLiteRepository creates a new SQLite meeting repository.
func NewSQLiteRepository(dbConn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{dbConn: dbConn}
}

func (r *SQLiteRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.dbConn)
}

// Save persists a meeting (create or update).
func (r *SQLiteRepository) Save(ctx context.Context, meeting *domain.Meeting) error {
	_, err := r.querier(ctx).ExecContext(ctx, sqliteUpsertMeetingSQL,
		meeting.ID().String(),
		meeting.UserID().String(),
		meeting.Title(),
		nullableUUID(meeting.CategoryID()),
		meeting.StartAt().UTC().Format(time.RFC3339Nano),
		meeting.EndAt().UTC().Format(time.RFC3339Nano),
		boolToInt(meeting.WasHeld()),
		meeting.CreatedAt().UTC().Format(time.RFC3339Nano),
		meeting.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// FindByID finds a meeting by its ID.
func (r *SQLiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	row := r.querier(ctx).QueryRowContext(ctx, sqliteSelectMeetingColumns+` WHERE id = ?`, id.String())
	meeting, err := scanSQLiteMeeting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, err
	}
	return meeting, nil
}

// FindByUserInRange finds meetings overlapping [from, to], ordered by
// start time. A meeting ending exactly at from occupies nothing in the
// range and is excluded.
func (r *SQLiteRepository) FindByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Meeting, error) {
	query := sqliteSelectMeetingColumns + `
		WHERE user_id = ? AND end_at > ? AND start_at <= ?
		ORDER BY start_at
	`
	rows, err := r.querier(ctx).QueryContext(ctx, query,
		userID.String(),
		from.UTC().Format(time.RFC3339Nano),
		to.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []*domain.Meeting
	for rows.Next() {
		meeting, err := scanSQLiteMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	return meetings, rows.Err()
}

// Delete removes a meeting.
func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.querier(ctx).ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}

func scanSQLiteMeeting(row interface{ Scan(dest ...any) error }) (*domain.Meeting, error) {
	var (
		idText, userText     string
		title                string
		categoryText         sql.NullString
		startText, endText   string
		held                 int
		createdText, updText string
	)
	err := row.Scan(&idText, &userText, &title, &categoryText, &startText, &endText, &held, &createdText, &updText)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idText)
	if err != nil {
		return nil, fmt.Errorf("parse meeting id: %w", err)
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
	startAt, err := time.Parse(time.RFC3339Nano, startText)
	if err != nil {
		return nil, fmt.Errorf("parse start_at: %w", err)
	}
	endAt, err := time.Parse(time.RFC3339Nano, endText)
	if err != nil {
		return nil, fmt.Errorf("parse end_at: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdText)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, updText)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return domain.RehydrateMeeting(id, userID, title, categoryID, startAt, endAt, held != 0, createdAt, updatedAt), nil
}

func nullableUUID(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
