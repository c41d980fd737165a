package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kakpu/IT-onboarding/internal/models"
	"github.com/kakpu/IT-onboarding/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBHandler_StoresErrorRecords(t *testing.T) {
	db := testutil.NewTestDB(t)
	h := NewDBHandler(db)
	logger := slog.New(h).With("request_id", "req-1")

	logger.Info("ignored")
	logger.Error("failed to write activity logs",
		"error", "disk full",
		"action", "activity_flush",
		"user_id", "u-1",
		"count", 3,
	)
	h.Stop()

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "ERROR", row.Level)
	assert.Equal(t, "failed to write activity logs", row.Message)
	assert.Equal(t, "req-1", row.RequestID)
	assert.Equal(t, "activity_flush", row.Action)
	assert.Equal(t, "disk full", row.Error)
	require.NotNil(t, row.UserID)
	assert.Equal(t, "u-1", *row.UserID)

	var extra map[string]any
	require.NoError(t, json.Unmarshal([]byte(row.Extra), &extra))
	assert.Equal(t, float64(3), extra["count"])
}

func TestDBHandler_StopIsIdempotent(t *testing.T) {
	h := NewDBHandler(testutil.NewTestDB(t))
	h.Stop()
	h.Stop()
}

func TestPurgeSystemLogs(t *testing.T) {
	db := testutil.NewTestDB(t)
	now := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)

	old := models.SystemLog{Timestamp: now.AddDate(0, 0, -31), Level: "ERROR", Message: "old"}
	recent := models.SystemLog{Timestamp: now.AddDate(0, 0, -29), Level: "ERROR", Message: "recent"}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	user := testutil.CreateUser(t, db)
	entry := models.ActivityLog{UserID: user.ID, Action: models.ActionView, CreatedAt: now.AddDate(-1, 0, 0)}
	require.NoError(t, db.Create(&entry).Error)

	assert.Equal(t, int64(1), PurgeSystemLogs(db, now))

	var remaining []models.SystemLog
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "recent", remaining[0].Message)

	var activity int64
	db.Model(&models.ActivityLog{}).Count(&activity)
	assert.Equal(t, int64(1), activity, "activity logs are never purged")
}

func TestStartCleanup_Schedules(t *testing.T) {
	c, err := StartCleanup(testutil.NewTestDB(t))
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)
}

type failingSink struct{ slog.Handler }

func (failingSink) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestFanout_FailingSinkDoesNotStarveOthers(t *testing.T) {
	var out bytes.Buffer
	f := NewFanout(
		failingSink{slog.NewJSONHandler(io.Discard, nil)},
		nil,
		slog.NewJSONHandler(&out, nil),
	)

	err := f.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "boom", 0))
	assert.EqualError(t, err, "sink down")
	assert.Contains(t, out.String(), "boom")
}

func TestFanout_ByLevel(t *testing.T) {
	var info, errs bytes.Buffer
	m := NewFanout(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(m).With("component", "test")

	assert.True(t, m.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, m.Enabled(context.Background(), slog.LevelDebug))

	logger.Info("hello")
	logger.Error("boom")

	assert.Contains(t, info.String(), "hello")
	assert.Contains(t, info.String(), "boom")
	assert.NotContains(t, errs.String(), "hello")
	assert.Contains(t, errs.String(), `"component":"test"`)
}
