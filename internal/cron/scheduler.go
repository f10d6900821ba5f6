package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"givepoint/internal/callback"
	"givepoint/internal/models"
	"givepoint/internal/repository"
)

// abandonAfter bounds how long the reconciler keeps retrying an unrecorded
// payment before handing it to manual review.
const abandonAfter = 7 * 24 * time.Hour

// Scheduler runs the payment-event reconciliation jobs.
type Scheduler struct {
	cron     *cron.Cron
	events   *repository.PaymentEventRepository
	recorder callback.Recorder
	logger   *zap.Logger
}

// New creates a new cron scheduler.
func New(events *repository.PaymentEventRepository, recorder callback.Recorder, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		events:   events,
		recorder: recorder,
		logger:   logger,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting cron scheduler...")

	// Reconcile verified-but-unrecorded payments - every 5 minutes
	s.cron.AddFunc("0 */5 * * * *", func() {
		s.logger.Debug("Running: payment reconciliation")
		s.reconcileUnrecorded()
	})

	// Abandon stale unrecorded payments - daily at 3 AM
	s.cron.AddFunc("0 0 3 * * *", func() {
		s.logger.Debug("Running: abandon stale payments")
		s.abandonStale()
	})

	s.cron.Start()
}

// Stop stops the scheduler and returns a context that completes when the
// running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// reconcileUnrecorded retries donation creation for payments that verified
// but whose donation row never landed. The recorder's duplicate tolerance
// makes the retry safe against races with a donor reloading the callback
// page.
func (s *Scheduler) reconcileUnrecorded() {
	events, err := s.events.FindUnrecorded(100)
	if err != nil {
		s.logger.Error("reconciler: list unrecorded failed", zap.Error(err))
		return
	}

	ctx := context.Background()
	for _, ev := range events {
		req := &callback.RecordRequest{
			CampaignID:     ev.CampaignID,
			UserID:         ev.UserID,
			Amount:         ev.Amount,
			PaymentMethod:  ev.Gateway,
			TransactionRef: ev.TransactionRef,
			GatewayOrderID: ev.GatewayOrderID,
			IsAnonymous:    ev.UserID == "",
		}

		outcome, err := s.recorder.Record(ctx, req)
		if err != nil {
			s.logger.Warn("reconciler: record retry failed",
				zap.String("transaction_ref", ev.TransactionRef),
				zap.Int("attempts", ev.Attempts+1),
				zap.Error(err))
			_ = s.events.SetStatus(ev.TransactionRef, models.PaymentEventUnrecorded, err.Error())
			continue
		}

		s.logger.Info("reconciler: donation recorded",
			zap.String("transaction_ref", ev.TransactionRef),
			zap.String("donation_id", outcome.DonationID),
			zap.Bool("duplicate", outcome.Duplicate))
		_ = s.events.SetStatus(ev.TransactionRef, models.PaymentEventRecorded, "")
	}
}

func (s *Scheduler) abandonStale() {
	n, err := s.events.AbandonOlderThan(time.Now().Add(-abandonAfter))
	if err != nil {
		s.logger.Error("reconciler: abandon stale failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Warn("reconciler: abandoned stale unrecorded payments", zap.Int64("count", n))
	}
}
