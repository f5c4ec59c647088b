package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhofer/timegrid/internal/insights/domain"
)

func TestSessionLifecycle(t *testing.T) {
	userID := uuid.New()
	start := time.Date(2025, 7, 23, 14, 0, 0, 0, time.UTC)

	session := domain.StartSession(userID, nil, start)
	assert.True(t, session.InProgress())
	assert.Nil(t, session.EndedAt())
	assert.Equal(t, 0, session.Minutes())

	require.NoError(t, session.Stop(start.Add(50*time.Minute)))
	assert.False(t, session.InProgress())
	assert.Equal(t, 50, session.Minutes())

	assert.ErrorIs(t, session.Stop(start.Add(time.Hour)), domain.ErrSessionAlreadyEnded)
}

func TestSessionStopBeforeStart(t *testing.T) {
	start := time.Date(2025, 7, 23, 14, 0, 0, 0, time.UTC)
	session := domain.StartSession(uuid.New(), nil, start)

	assert.ErrorIs(t, session.Stop(start.Add(-time.Minute)), domain.ErrSessionEndsBeforeStart)

	// Zero-length sessions are allowed and contribute nothing.
	require.NoError(t, session.Stop(start))
	assert.Equal(t, 0, session.Minutes())
}
