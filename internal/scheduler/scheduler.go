package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/service/inventory"
)

const jobTimeout = 2 * time.Minute

// Reloader refetches the ledger.
type Reloader interface {
	Reload(ctx context.Context) (*inventory.Snapshot, error)
}

// Reporter produces the snapshot and digest payloads.
type Reporter interface {
	BuildSnapshot() models.InventorySnapshot
	AnomalyDigest() (string, bool)
}

// SnapshotStore persists daily snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot models.InventorySnapshot) error
}

// ManagerNotifier delivers the digest.
type ManagerNotifier interface {
	NotifyManager(ctx context.Context, message string) error
}

// Scheduler manages scheduled tasks. The snapshot and digest jobs are only
// registered when their store or notifier is provided.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ScheduleConfig
	reloader Reloader
	reporter Reporter
	store    SnapshotStore
	notifier ManagerNotifier
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.ScheduleConfig, reloader Reloader, reporter Reporter, store SnapshotStore, notifier ManagerNotifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		reloader: reloader,
		reporter: reporter,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("timezone", s.cfg.Timezone))

	if _, err := s.cron.AddFunc(s.cfg.RefreshCron, s.refreshLedger); err != nil {
		return fmt.Errorf("schedule ledger refresh: %w", err)
	}

	if s.store != nil && s.cfg.SnapshotCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.SnapshotCron, s.saveSnapshot); err != nil {
			return fmt.Errorf("schedule inventory snapshot: %w", err)
		}
	}

	if s.notifier != nil && s.cfg.DigestCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.DigestCron, s.sendDigest); err != nil {
			return fmt.Errorf("schedule anomaly digest: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refreshLedger() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.reloader.Reload(ctx); err != nil {
		s.logger.Error("scheduled ledger refresh failed", zap.Error(err))
	}
}

func (s *Scheduler) saveSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.reloader.Reload(ctx); err != nil {
		s.logger.Warn("snapshot taken from cached ledger, reload failed", zap.Error(err))
	}

	snapshot := s.reporter.BuildSnapshot()
	if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.Error("failed to save inventory snapshot", zap.Error(err))
		return
	}
	s.logger.Info("inventory snapshot saved", zap.Int("items", len(snapshot.Items)), zap.Int("negative", len(snapshot.Negative)))
}

func (s *Scheduler) sendDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	digest, ok := s.reporter.AnomalyDigest()
	if !ok {
		s.logger.Debug("no stock anomalies to report")
		return
	}

	if err := s.notifier.NotifyManager(ctx, digest); err != nil {
		s.logger.Error("failed to send anomaly digest", zap.Error(err))
	} else {
		s.logger.Info("anomaly digest sent successfully")
	}
}
