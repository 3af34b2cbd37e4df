package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/college-timetable-api/internal/models"
	"github.com/noah-isme/college-timetable-api/pkg/jobs"
	"github.com/noah-isme/college-timetable-api/pkg/mail"
)

type mailSender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// NotificationService delivers operator-facing emails through a background
// queue so request handlers never wait on the mail relay. Delivery is best
// effort, failures are logged and retried by the queue, never surfaced.
type NotificationService struct {
	sender    mailSender
	queue     *jobs.Queue
	portalURL string
	logger    *zap.Logger
}

// NotificationServiceConfig sizes the mail queue and points recipients at
// the staff portal.
type NotificationServiceConfig struct {
	PortalURL  string
	Workers    int
	BufferSize int
}

// NewNotificationService builds the service and its queue. A nil sender
// disables delivery, notifications become no-ops. Call Start before use.
func NewNotificationService(sender mailSender, logger *zap.Logger, cfg NotificationServiceConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{sender: sender, portalURL: cfg.PortalURL, logger: logger}
	s.queue = jobs.NewQueue("mail", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers. No-op when delivery is disabled.
func (s *NotificationService) Start(ctx context.Context) {
	if s.sender == nil {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	if s.sender == nil {
		return
	}
	s.queue.Stop()
}

// SendStaffWelcome queues the onboarding email for a newly registered
// faculty member.
func (s *NotificationService) SendStaffWelcome(staff *models.Staff) {
	if s.sender == nil || staff == nil || staff.Email == "" {
		return
	}

	msg := mail.Message{
		To:      staff.Email,
		Subject: "Welcome - Faculty Account Created",
		Body: fmt.Sprintf(
			"Dear %s,\n\n"+
				"Your faculty profile for the %s department has been registered in the timetable system.\n"+
				"An administrator will share your login credentials separately.\n\n"+
				"Portal: %s\n\n"+
				"Best regards,\nAdministration Team\n",
			staff.Name, staff.Department, s.portalURL),
	}

	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "staff_welcome", Payload: msg}); err != nil {
		s.logger.Warn("failed to enqueue welcome email", zap.String("email", staff.Email), zap.Error(err))
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(mail.Message)
	if !ok {
		s.logger.Warn("unexpected mail payload type", zap.String("job_id", job.ID))
		return nil
	}
	return s.sender.Send(ctx, msg)
}
