package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"paycallback/internal/models"
)

// LogPruner deletes callback log rows older than a cutoff.
type LogPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// OrderCounter reports order counts by status.
type OrderCounter interface {
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
}

// StatusReporter posts the daily status summary.
type StatusReporter interface {
	ReportText(ctx context.Context, text string) error
}

// Scheduler manages all cron jobs.
type Scheduler struct {
	cron      *cron.Cron
	logger    *zap.Logger
	logs      LogPruner
	retention time.Duration
	pruneSpec string
	orders    OrderCounter
	reporter  StatusReporter
}

// New creates a new cron scheduler. orders and reporter may be nil, which
// disables the daily status report.
func New(logs LogPruner, retention time.Duration, pruneSpec string, orders OrderCounter, reporter StatusReporter, logger *zap.Logger) *Scheduler {
	if pruneSpec == "" {
		pruneSpec = "@daily"
	}
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger,
		logs:      logs,
		retention: retention,
		pruneSpec: pruneSpec,
		orders:    orders,
		reporter:  reporter,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() error {
	s.logger.Info("Starting cron scheduler...")

	if s.retention > 0 {
		if _, err := s.cron.AddFunc(s.pruneSpec, func() {
			s.logger.Debug("Running: prune callback logs")
			s.pruneCallbackLogs()
		}); err != nil {
			return fmt.Errorf("schedule callback log pruning %q: %w", s.pruneSpec, err)
		}
	}

	// Daily status report - at 23:45
	if s.orders != nil && s.reporter != nil {
		if _, err := s.cron.AddFunc("0 45 23 * * *", func() {
			s.logger.Debug("Running: daily status report")
			s.dailyStatusReport()
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("Cron scheduler started")
	return nil
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) pruneCallbackLogs() {
	defer s.recoverFromPanic("pruneCallbackLogs")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.retention)
	n, err := s.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to prune callback logs", zap.Error(err))
		return
	}
	s.logger.Info("Callback logs pruned", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
}

func (s *Scheduler) dailyStatusReport() {
	defer s.recoverFromPanic("dailyStatusReport")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count orders", zap.Error(err))
		return
	}
	text := fmt.Sprintf("📊 <b>Order status</b>\n\nPending: %d\nPaid: %d\nCancelled: %d",
		counts[models.OrderPending], counts[models.OrderPaid], counts[models.OrderCancelled])
	if err := s.reporter.ReportText(ctx, text); err != nil {
		s.logger.Warn("Failed to send daily status report", zap.Error(err))
	}
}

func (s *Scheduler) recoverFromPanic(jobName string) {
	if r := recover(); r != nil {
		s.logger.Error("Cron job panicked", zap.String("job", jobName), zap.Any("error", r))
	}
}
