package habit

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svenhofer/timegrid/adapter/cli"
	internalApp "github.com/svenhofer/timegrid/internal/app"
	"github.com/svenhofer/timegrid/pkg/config"
)

// testUserID is a fixed user ID for tests
var testUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// setupLocalModeTestApp creates a test application with SQLite for integration tests.
func setupLocalModeTestApp(t *testing.T) (*cli.App, *internalApp.Container, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "habit-cli-test-*")
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:     "test",
		LocalMode:  true,
		SQLitePath: filepath.Join(tmpDir, "test.db"),
		UserID:     testUserID.String(),
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	ctx := context.Background()
	container, err := internalApp.NewLocalContainer(ctx, cfg, logger)
	require.NoError(t, err)

	cliApp := &cli.App{
		CreateHabitHandler: container.CreateHabitHandler,
		SetOverrideHandler: container.SetOverrideHandler,
		Invalidator:        container.Invalidator,
	}
	cliApp.SetCurrentUserID(testUserID)

	cleanup := func() {
		container.Close()
		os.RemoveAll(tmpDir)
	}

	return cliApp, container, cleanup
}

func TestCreateCmd_CreatesHabit(t *testing.T) {
	app, container, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	// Reset flags
	createFrequency = "weekdays"
	createDuration = 45
	createStart = "06:30"
	createWeekdays = nil

	createCmd.SetContext(ctx)

	err := createCmd.RunE(createCmd, []string{"Morning run"})
	require.NoError(t, err)

	habits, err := container.HabitRepo.FindByUserID(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, habits, 1)

	assert.Equal(t, "Morning run", habits[0].Name())
	assert.Equal(t, 45, habits[0].DurationMinutes())
	require.NotNil(t, habits[0].DefaultStartMinute())
	assert.Equal(t, 6*60+30, *habits[0].DefaultStartMinute())
}

func TestOverrideCmd_SkipsDay(t *testing.T) {
	app, container, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	createFrequency = "daily"
	createDuration = 15
	createStart = ""
	createWeekdays = nil
	createCmd.SetContext(ctx)
	require.NoError(t, createCmd.RunE(createCmd, []string{"Stretch"}))

	habits, err := container.HabitRepo.FindByUserID(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, habits, 1)

	overrideDate = "2026-09-15"
	overrideStart = ""
	overrideSkip = true
	overrideCmd.SetContext(ctx)
	require.NoError(t, overrideCmd.RunE(overrideCmd, []string{habits[0].ID().String()}))

	day, _ := time.Parse("2006-01-02", overrideDate)
	overrides, err := container.HabitRepo.FindOverridesForDay(ctx, testUserID, day)
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	require.Contains(t, overrides, habits[0].ID())
	assert.True(t, overrides[habits[0].ID()].Skipped)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"06:30", 390, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseClock(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestParseWeekdayTimes(t *testing.T) {
	times, err := parseWeekdayTimes([]string{"monday=07:00", "friday=18:30"})
	require.NoError(t, err)
	assert.Equal(t, map[time.Weekday]int{
		time.Monday: 7 * 60,
		time.Friday: 18*60 + 30,
	}, times)

	_, err = parseWeekdayTimes([]string{"someday=07:00"})
	assert.Error(t, err)

	_, err = parseWeekdayTimes([]string{"monday"})
	assert.Error(t, err)
}
