package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/taiwoajasa245/confession-api/internal/content"
	"github.com/taiwoajasa245/confession-api/internal/database"
	"github.com/taiwoajasa245/confession-api/internal/mail"
	"github.com/taiwoajasa245/confession-api/pkg/config"
)

var ErrDatabaseDown = errors.New("database connection failed")

type Server struct {
	port      string
	db        database.Service
	handler   http.Handler
	cfg       *config.Config
	mail      *mail.Mailer
	content   *content.Service
	scheduler *content.Scheduler
	logger    *zap.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewServer constructs the app server with all dependencies injected.
func NewServer(db database.Service, svc *content.Service, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	stats := db.Health()
	if stats["status"] != "up" {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseDown, stats["error"])
	}
	logger.Info("database connection successful", zap.String("driver", stats["driver"]))

	mailer := mail.NewMail(
		cfg.SmtpFrom,
		"Daily Confession",
		cfg.SmtpPassword,
		cfg.SmtpHost,
		cfg.SmtpPort,
	)

	// A nil *mail.Mailer inside the interface would still look non-nil.
	var digest content.Mailer
	if mailer.Configured() {
		digest = mailer
	}

	s := &Server{
		port:      cfg.Port,
		db:        db,
		cfg:       cfg,
		mail:      mailer,
		content:   svc,
		scheduler: content.NewScheduler(svc, digest, cfg.DigestRecipients, cfg.SchedulerInterval, logger.Named("scheduler")),
		logger:    logger,
	}

	s.handler = s.RegisterRoutes()
	return s, nil
}

// HTTPServer returns the actual *http.Server instance
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%s", s.port),
		Handler: s.handler,
		// Generation can take a few backend round trips.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}

// StartBackgroundJobs runs scheduled jobs
func (s *Server) StartBackgroundJobs() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.scheduler.Start(ctx)
	}()
}

// StopBackgroundJobs cancels the scheduler and waits for the current run to
// return.
func (s *Server) StopBackgroundJobs() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Info("background jobs stopped gracefully")
}
