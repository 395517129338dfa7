package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/config"
	"github.com/alumnilink/backend/internal/service/newsletter"
	"github.com/alumnilink/backend/internal/service/reporting"
)

// Scheduler manages the periodic newsletter digest and the monthly report
// export.
type Scheduler struct {
	cron          *cron.Cron
	newsletterSvc *newsletter.Service
	reportingSvc  *reporting.Service
	cfg           *config.Config
	logger        *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg *config.Config, newsletterSvc *newsletter.Service, reportingSvc *reporting.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:          cron.New(),
		newsletterSvc: newsletterSvc,
		reportingSvc:  reportingSvc,
		cfg:           cfg,
		logger:        logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.Newsletter.CronSchedule, s.sendNewsletterDigest); err != nil {
		s.logger.Error("failed to schedule newsletter digest", zap.Error(err))
	}

	if _, err := s.cron.AddFunc(s.cfg.Reporting.ExportCronSchedule, s.exportMonthlyReport); err != nil {
		s.logger.Error("failed to schedule monthly report export", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sendNewsletterDigest() {
	s.logger.Info("generating newsletter digest")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.newsletterSvc.SendDigest(ctx, time.Now()); err != nil {
		s.logger.Error("failed to send newsletter digest", zap.Error(err))
	}
}

func (s *Scheduler) exportMonthlyReport() {
	s.logger.Info("exporting monthly donation summary")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.reportingSvc.ExportMonthlySummary(ctx, time.Now()); err != nil {
		s.logger.Error("failed to export monthly summary", zap.Error(err))
	}
}
