package workers

import (
	"context"
	"time"

	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/repositories"
)

// SubscriptionWorker sweeps lapsed subscriptions. The webhook handles
// clean cancellations; the sweep catches subscriptions whose renewal
// event never arrived.
type SubscriptionWorker struct {
	subRepo  repositories.SubscriptionRepository
	userRepo repositories.UserRepository
	interval time.Duration
}

func NewSubscriptionWorker(subRepo repositories.SubscriptionRepository, userRepo repositories.UserRepository) *SubscriptionWorker {
	return &SubscriptionWorker{
		subRepo:  subRepo,
		userRepo: userRepo,
		interval: 6 * time.Hour,
	}
}

func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *SubscriptionWorker) run(ctx context.Context) {
	// one pass on startup, then every interval
	w.sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.WorkerLog("subscription", "stopped", nil)
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SubscriptionWorker) sweep() {
	expired, err := w.subRepo.FindExpired(time.Now())
	if err != nil {
		logger.WithError(err).Error("subscription sweep query failed")
		return
	}

	for _, sub := range expired {
		if err := w.subRepo.Expire(sub.ID); err != nil {
			logger.WithError(err).With("subscription_id", sub.ID).Error("failed to expire subscription")
			continue
		}
		logger.With("subscription_id", sub.ID, "user_id", sub.UserID).Info("expired lapsed subscription")
	}

	if err := w.userRepo.CleanExpiredRefreshTokens(); err != nil {
		logger.WithError(err).Warn("failed to clean expired refresh tokens")
	}
}
