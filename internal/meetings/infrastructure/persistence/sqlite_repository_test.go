package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhofer/timegrid/internal/meetings/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/database/sqlite"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/migrations"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()

	ctx := context.Background()
	dbConn, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "meetings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbConn.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(ctx, dbConn))

	return NewSQLiteRepository(dbConn)
}

func TestSQLiteRepository_FindByUserInRange(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	userID := uuid.New()

	dayStart := time.Date(2025, 7, 28, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	save := func(t *testing.T, title string, start, end time.Time) *domain.Meeting {
		t.Helper()
		meeting, err := domain.NewMeeting(userID, title, nil, start, end)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, meeting))
		return meeting
	}

	inside := save(t, "Standup",
		dayStart.Add(9*time.Hour), dayStart.Add(10*time.Hour))
	// Starts the previous evening and runs into the queried day.
	overnight := save(t, "Incident bridge",
		dayStart.Add(-30*time.Minute), dayStart.Add(30*time.Minute))
	// Ends exactly at the day boundary, so it occupies nothing on the day.
	endsAtBoundary := save(t, "Late review",
		dayStart.Add(-time.Hour), dayStart)
	nextDay := save(t, "Planning",
		dayStart.Add(25*time.Hour), dayStart.Add(26*time.Hour))

	meetings, err := repo.FindByUserInRange(ctx, userID, dayStart, dayEnd)

	require.NoError(t, err)
	require.Len(t, meetings, 2)
	// Ordered by start time.
	assert.Equal(t, overnight.ID(), meetings[0].ID())
	assert.Equal(t, inside.ID(), meetings[1].ID())

	for _, m := range meetings {
		assert.NotEqual(t, endsAtBoundary.ID(), m.ID())
		assert.NotEqual(t, nextDay.ID(), m.ID())
	}
}
