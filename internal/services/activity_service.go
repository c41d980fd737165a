package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActivityOptions struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
}

func DefaultActivityOptions() ActivityOptions {
	return ActivityOptions{
		QueueSize:     1024,
		BatchSize:     50,
		FlushInterval: 2 * time.Second,
	}
}

// ActivityService writes usage events. Record is synchronous and validated;
// Dispatch is best-effort: events go onto a bounded queue drained by a single
// worker, and failures only reach the operational log.
type ActivityService struct {
	db    *gorm.DB
	opts  ActivityOptions
	queue chan models.ActivityLog
	done  chan struct{}
	wg    sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

func NewActivityService(db *gorm.DB, opts ActivityOptions) *ActivityService {
	def := DefaultActivityOptions()
	if opts.QueueSize <= 0 {
		opts.QueueSize = def.QueueSize
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = def.FlushInterval
	}

	s := &ActivityService{
		db:    db,
		opts:  opts,
		queue: make(chan models.ActivityLog, opts.QueueSize),
		done:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Record validates and stores one event, returning the stored row.
func (s *ActivityService) Record(ctx context.Context, userID string, req *dto.CreateLogRequest) (*models.ActivityLog, error) {
	var errs fieldErrors
	if !models.IsValidAction(req.Action) {
		errs.add("action", "must be one of view, resolve, unresolve, contact_click, share_link")
	}
	if req.ChecklistItemID != nil {
		if _, err := uuid.Parse(*req.ChecklistItemID); err != nil {
			errs.add("checklistItemId", "must be a valid UUID")
		}
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	entry, err := newActivityLog(userID, req.Action, req.ChecklistItemID, req.Metadata)
	if err != nil {
		return nil, &ValidationError{Fields: []dto.FieldError{{Field: "metadata", Message: "must be a JSON object"}}}
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("record activity: %w", err)
	}
	return &entry, nil
}

// Dispatch enqueues an event without waiting for it to be written. A full
// queue or a stopped service drops the event.
func (s *ActivityService) Dispatch(userID, action string, itemID *string, metadata map[string]any) {
	if !models.IsValidAction(action) {
		slog.Warn("activity event dropped", "reason", "invalid action", "action", action, "user_id", userID)
		return
	}

	entry, err := newActivityLog(userID, action, itemID, metadata)
	if err != nil {
		slog.Warn("activity event dropped", "reason", "unencodable metadata", "action", action, "user_id", userID, "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		slog.Warn("activity event dropped", "reason", "stopped", "action", action, "user_id", userID)
		return
	}

	select {
	case s.queue <- entry:
	default:
		slog.Warn("activity event dropped", "reason", "queue full", "action", action, "user_id", userID)
	}
}

// Stop flushes queued events and waits for the worker to exit. Safe to call
// more than once.
func (s *ActivityService) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.done)
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *ActivityService) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.FlushInterval)
	defer ticker.Stop()

	batch := make([]models.ActivityLog, 0, s.opts.BatchSize)
	for {
		select {
		case entry := <-s.queue:
			batch = append(batch, entry)
			if len(batch) >= s.opts.BatchSize {
				batch = s.flush(batch)
			}
		case <-ticker.C:
			batch = s.flush(batch)
		case <-s.done:
			for {
				select {
				case entry := <-s.queue:
					batch = append(batch, entry)
				default:
					s.flush(batch)
					return
				}
			}
		}
	}
}

func (s *ActivityService) flush(batch []models.ActivityLog) []models.ActivityLog {
	if len(batch) == 0 {
		return batch
	}
	if err := s.db.CreateInBatches(batch, s.opts.BatchSize).Error; err != nil {
		// One bad row fails the whole insert; retry individually so only it is lost.
		slog.Warn("activity batch insert failed, retrying per event", "error", err, "count", len(batch))
		for i := range batch {
			entry := &batch[i]
			if err := s.db.Create(entry).Error; err != nil {
				slog.Error("failed to write activity log",
					"error", err,
					"user_id", entry.UserID,
					"event", entry.Action,
					"action", "activity_flush",
				)
			}
		}
	}
	return make([]models.ActivityLog, 0, s.opts.BatchSize)
}

func newActivityLog(userID, action string, itemID *string, metadata map[string]any) (models.ActivityLog, error) {
	entry := models.ActivityLog{
		UserID:          userID,
		ChecklistItemID: itemID,
		Action:          action,
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return entry, fmt.Errorf("encode metadata: %w", err)
		}
		entry.Metadata = datatypes.JSON(raw)
	}
	return entry, nil
}
