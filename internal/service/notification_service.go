package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler-api/internal/models"
	"github.com/noah-isme/course-scheduler-api/pkg/jobs"
)

// NotificationService fans out conflict events to observers. Delivery runs
// on a background queue so detection never blocks on notification
// transport; the transport itself is owned by collaborators, this service
// only hands the event payload to it.
type NotificationService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// ConflictNotification is the payload delivered for each new conflict.
type ConflictNotification struct {
	ConflictID  string                  `json:"conflict_id"`
	Type        models.ConflictType     `json:"conflict_type"`
	Severity    models.ConflictSeverity `json:"severity"`
	Description string                  `json:"description"`
	DetectedAt  string                  `json:"detected_at"`
}

// NewNotificationService builds the service and its worker queue.
func NewNotificationService(logger *zap.Logger, cfg jobs.QueueConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &NotificationService{logger: logger}
	cfg.Logger = logger
	svc.queue = jobs.NewQueue("conflict-notifications", svc.deliver, cfg)
	return svc
}

// Start begins queue consumption.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// NotifyDetected enqueues a conflict event. Failures are logged, never
// propagated to the detecting caller.
func (s *NotificationService) NotifyDetected(conflict models.ScheduleConflict) {
	payload := ConflictNotification{
		ConflictID:  conflict.ID,
		Type:        conflict.Type,
		Severity:    conflict.Severity,
		Description: conflict.Description,
		DetectedAt:  conflict.DetectedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if err := s.queue.Enqueue(jobs.Job{ID: conflict.ID, Type: "conflict.detected", Payload: payload}); err != nil {
		s.logger.Warn("failed to enqueue conflict notification", zap.String("conflict_id", conflict.ID), zap.Error(err))
	}
}

// deliver emits the event. Observers subscribe to the structured log stream
// today; swapping in a push transport only changes this method.
func (s *NotificationService) deliver(_ context.Context, job jobs.Job) error {
	raw, err := json.Marshal(job.Payload)
	if err != nil {
		return err
	}
	s.logger.Info("conflict notification", zap.String("job_id", job.ID), zap.ByteString("payload", raw))
	return nil
}
