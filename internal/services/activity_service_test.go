package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/models"
	"github.com/kakpu/IT-onboarding/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_StoresEvent(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewActivityService(db, ActivityOptions{})
	defer svc.Stop()
	user := testutil.CreateUser(t, db)
	itemID := uuid.NewString()

	entry, err := svc.Record(context.Background(), user.ID, &dto.CreateLogRequest{
		ChecklistItemID: &itemID,
		Action:          models.ActionView,
		Metadata:        map[string]any{"source": "day-page"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	var stored models.ActivityLog
	require.NoError(t, db.First(&stored, "id = ?", entry.ID).Error)
	assert.Equal(t, models.ActionView, stored.Action)
	require.NotNil(t, stored.ChecklistItemID)
	assert.Equal(t, itemID, *stored.ChecklistItemID)
	assert.Equal(t, "day-page", stored.MetadataMap()["source"])
}

func TestRecord_Validation(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewActivityService(db, ActivityOptions{})
	defer svc.Stop()
	user := testutil.CreateUser(t, db)

	_, err := svc.Record(context.Background(), user.ID, &dto.CreateLogRequest{Action: "delete"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "action", verr.Fields[0].Field)

	_, err = svc.Record(context.Background(), user.ID, &dto.CreateLogRequest{
		Action: models.ActionView, ChecklistItemID: ptr("not-a-uuid"),
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "checklistItemId", verr.Fields[0].Field)

	var n int64
	db.Model(&models.ActivityLog{}).Count(&n)
	assert.Zero(t, n)
}

func TestDispatch_FlushedOnStop(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewActivityService(db, ActivityOptions{BatchSize: 100, FlushInterval: time.Hour})
	user := testutil.CreateUser(t, db)

	for i := 0; i < 7; i++ {
		svc.Dispatch(user.ID, models.ActionContactClick, nil, nil)
	}
	svc.Stop()
	svc.Stop()

	var n int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&n).Error)
	assert.Equal(t, int64(7), n)
}

func TestDispatch_FlushesOnBatchSize(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewActivityService(db, ActivityOptions{BatchSize: 2, FlushInterval: time.Hour})
	defer svc.Stop()
	user := testutil.CreateUser(t, db)

	svc.Dispatch(user.ID, models.ActionShareLink, nil, map[string]any{"channel": "teams"})
	svc.Dispatch(user.ID, models.ActionShareLink, nil, nil)

	assert.Eventually(t, func() bool {
		var n int64
		db.Model(&models.ActivityLog{}).Count(&n)
		return n == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDispatch_DropsWithoutBlocking(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewActivityService(db, ActivityOptions{})
	user := testutil.CreateUser(t, db)

	svc.Dispatch(user.ID, "bogus", nil, nil)
	svc.Stop()

	done := make(chan struct{})
	go func() {
		svc.Dispatch(user.ID, models.ActionView, nil, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked after Stop")
	}

	var n int64
	db.Model(&models.ActivityLog{}).Count(&n)
	assert.Zero(t, n)
}

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

// errors returns the ERROR records logged with msg.
func (h *recordingHandler) errors(msg string) []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []slog.Record
	for _, r := range h.records {
		if r.Level == slog.LevelError && r.Message == msg {
			out = append(out, r)
		}
	}
	return out
}

func captureLogs(t *testing.T) *recordingHandler {
	t.Helper()
	h := &recordingHandler{}
	prev := slog.Default()
	slog.SetDefault(slog.New(h))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return h
}

func attr(r slog.Record, key string) string {
	var v string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			v = a.Value.String()
			return false
		}
		return true
	})
	return v
}

func TestDispatch_BadEventDoesNotSinkBatch(t *testing.T) {
	logs := captureLogs(t)
	db := testutil.NewTestDB(t)
	svc := NewActivityService(db, ActivityOptions{BatchSize: 100, FlushInterval: time.Hour})
	user := testutil.CreateUser(t, db)
	ghost := uuid.NewString()

	for i := 0; i < 5; i++ {
		svc.Dispatch(user.ID, models.ActionView, nil, nil)
		if i == 2 {
			svc.Dispatch(ghost, models.ActionView, nil, nil)
		}
	}
	svc.Stop()

	var n int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("user_id = ?", user.ID).Count(&n).Error)
	assert.Equal(t, int64(5), n)

	failed := logs.errors("failed to write activity log")
	require.Len(t, failed, 1)
	assert.Equal(t, ghost, attr(failed[0], "user_id"))
}

func TestDispatch_WriteFailureIsLoggedNotReturned(t *testing.T) {
	logs := captureLogs(t)
	db := testutil.NewTestDB(t)
	svc := NewActivityService(db, ActivityOptions{BatchSize: 100, FlushInterval: time.Hour})
	user := testutil.CreateUser(t, db)
	require.NoError(t, db.Migrator().DropTable(&models.ActivityLog{}))

	done := make(chan struct{})
	go func() {
		svc.Dispatch(user.ID, models.ActionView, nil, nil)
		svc.Dispatch(user.ID, models.ActionContactClick, nil, map[string]any{"target": "teams"})
		svc.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Dispatch or Stop blocked on a failing write")
	}

	assert.Len(t, logs.errors("failed to write activity log"), 2)
}

func TestDispatch_AbsentMetadataIsNull(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewActivityService(db, ActivityOptions{BatchSize: 100, FlushInterval: time.Hour})
	user := testutil.CreateUser(t, db)

	svc.Dispatch(user.ID, models.ActionView, nil, nil)
	svc.Dispatch(user.ID, models.ActionShareLink, nil, map[string]any{"channel": "teams"})
	svc.Stop()

	var nulls, objects int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("metadata IS NULL").Count(&nulls).Error)
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("metadata IS NOT NULL").Count(&objects).Error)
	assert.Equal(t, int64(1), nulls)
	assert.Equal(t, int64(1), objects)

	var stored models.ActivityLog
	require.NoError(t, db.First(&stored, "action = ?", models.ActionShareLink).Error)
	assert.Equal(t, "teams", stored.MetadataMap()["channel"])
}
