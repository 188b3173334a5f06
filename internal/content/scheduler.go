package content

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Mailer sends an HTML email rendered from a named template.
type Mailer interface {
	SendHTML(ctx context.Context, to []string, subject, templateName string, data any) error
}

type digestData struct {
	Date    string
	Content *DailyContent
}

// Scheduler makes sure each day's content exists without waiting for the
// first request, and mails it to the digest list once per date.
type Scheduler struct {
	service    *Service
	mailer     Mailer
	recipients []string
	interval   time.Duration
	logger     *zap.Logger
}

func NewScheduler(service *Service, mailer Mailer, recipients []string, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		service:    service,
		mailer:     mailer,
		recipients: recipients,
		interval:   interval,
		logger:     logger,
	}
}

// Start runs the daily job immediately and then on every tick until ctx is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("daily content scheduler started", zap.Duration("interval", s.interval))
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("daily content scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce ensures today's content and sends the digest if it has not gone
// out yet.
func (s *Scheduler) RunOnce(ctx context.Context) {
	c, err := s.service.EnsureTodaysContent(ctx)
	if err != nil {
		s.logger.Error("failed to ensure daily content", zap.Error(err))
		return
	}

	if s.mailer == nil || len(s.recipients) == 0 {
		return
	}

	sent, err := s.service.repo.DigestSent(ctx, c.Date)
	if err != nil {
		s.logger.Error("failed to check digest delivery", zap.String("date", c.Date), zap.Error(err))
		return
	}
	if sent {
		return
	}

	subject := "Today's confession: " + c.Reference
	if err := s.mailer.SendHTML(ctx, s.recipients, subject, "daily.html", digestData{Date: c.Date, Content: c}); err != nil {
		s.logger.Error("failed to send daily digest", zap.String("date", c.Date), zap.Error(err))
		return
	}
	if err := s.service.repo.RecordDigest(ctx, c.Date, len(s.recipients)); err != nil {
		s.logger.Error("failed to record digest delivery", zap.String("date", c.Date), zap.Error(err))
		return
	}
	s.logger.Info("daily digest sent", zap.String("date", c.Date), zap.Int("recipients", len(s.recipients)))
}
