package scheduler

import (
	"context"
	"time"

	"parish_lms/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DeliveryScheduler runs the recurring delivery processing and stale-job
// reclaim sweeps.
type DeliveryScheduler struct {
	cronEngine       *cron.Cron
	deliveryService  *app.DeliveryService
	logger           *logrus.Logger
	cronSpecDelivery string
	cronSpecReclaim  string
	batchLimit       int
	staleAfter       time.Duration
}

func NewDeliveryScheduler(
	deliveryService *app.DeliveryService,
	logger *logrus.Logger,
	cronSpecDelivery string, // e.g. "* * * * *" (every minute)
	cronSpecReclaim string, // e.g. "*/10 * * * *" (every 10 minutes)
	batchLimit int,
	staleAfter time.Duration,
) *DeliveryScheduler {
	return &DeliveryScheduler{
		cronEngine:       cron.New(cron.WithLocation(time.Local)),
		deliveryService:  deliveryService,
		logger:           logger,
		cronSpecDelivery: cronSpecDelivery,
		cronSpecReclaim:  cronSpecReclaim,
		batchLimit:       batchLimit,
		staleAfter:       staleAfter,
	}
}

func (s *DeliveryScheduler) Start() {
	s.logger.Info("Starting delivery scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecDelivery, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		result, err := s.deliveryService.ProcessPending(ctx, s.batchLimit)
		if err != nil {
			s.logger.WithError(err).Error("Error during scheduled delivery run")
			return
		}
		if result.Processed > 0 {
			s.logger.WithFields(logrus.Fields{
				"processed": result.Processed,
				"sent":      result.Sent,
				"failed":    result.Failed,
			}).Info("Scheduled delivery run completed")
		}
	})
	if err != nil {
		s.logger.Fatalf("Could not add delivery processing cron job: %v", err)
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecReclaim, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if _, err := s.deliveryService.ReclaimStale(ctx, s.staleAfter); err != nil {
			s.logger.WithError(err).Error("Error during stale job reclaim")
		}
	})
	if err != nil {
		s.logger.Fatalf("Could not add stale reclaim cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Info("Delivery scheduler started with jobs.")
}

func (s *DeliveryScheduler) Stop() {
	s.logger.Info("Stopping delivery scheduler...")
	ctx := s.cronEngine.Stop() // Stops new runs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Delivery scheduler gracefully stopped.")
}
