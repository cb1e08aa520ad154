package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/config"
	"github.com/lagranja/livestock/internal/service/audit"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	auditSvc *audit.Service
	cfg      config.Config
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured
// timezone.
func NewScheduler(cfg config.Config, auditSvc *audit.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Audit.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to local", zap.String("timezone", cfg.Audit.Timezone), zap.Error(err))
		location = time.Local
	}
	c := cron.New(cron.WithLocation(location))

	return &Scheduler{
		cron:     c,
		auditSvc: auditSvc,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the nightly ledger audit and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("audit_schedule", s.cfg.Audit.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.Audit.CronSchedule, s.runAudit)
	if err != nil {
		s.logger.Error("failed to schedule ledger audit", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runAudit() {
	s.logger.Info("running scheduled ledger audit")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	findings, err := s.auditSvc.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled ledger audit failed", zap.Error(err))
		return
	}

	var drifted int
	for _, f := range findings {
		if f.Drift != 0 {
			drifted++
		}
	}
	s.logger.Info("scheduled ledger audit completed",
		zap.Int("feed_types", len(findings)),
		zap.Int("drifted", drifted))
}
