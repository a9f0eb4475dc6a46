package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type Deliverer interface {
	DeliverPending(ctx context.Context) (DeliveryReport, error)
}

// Scheduler drives periodic delivery passes. Passes never overlap.
type Scheduler struct {
	deliverer Deliverer
	interval  time.Duration
}

func NewScheduler(deliverer Deliverer, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Scheduler{deliverer: deliverer, interval: interval}
}

// Run makes a pass immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

func (s *Scheduler) Tick(ctx context.Context) DeliveryReport {
	report, err := s.deliverer.DeliverPending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("delivery pass failed")
		return report
	}
	if report.Sent+report.Failed+report.Skipped > 0 {
		log.Info().
			Int("sent", report.Sent).
			Int("failed", report.Failed).
			Int("skipped", report.Skipped).
			Msg("delivery pass finished")
	}
	return report
}
