package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"devhub.backend/pkg/logger"
)

type verificationExpirer interface {
	ExpireStaleVerifications(ctx context.Context) (int, error)
}

// VerificationExpiryJob periodically reverts applications whose uplift
// verification window has elapsed.
type VerificationExpiryJob struct {
	usecase  verificationExpirer
	interval time.Duration
	stop     chan struct{}
}

func NewVerificationExpiryJob(usecase verificationExpirer, interval time.Duration) *VerificationExpiryJob {
	return &VerificationExpiryJob{
		usecase:  usecase,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *VerificationExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting verification expiry job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Verification expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Verification expiry job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *VerificationExpiryJob) Stop() {
	close(j.stop)
}

func (j *VerificationExpiryJob) sweep(ctx context.Context) {
	expired, err := j.usecase.ExpireStaleVerifications(ctx)
	if err != nil {
		logger.Error(ctx, "Verification expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		logger.Info(ctx, "Expired stale uplift verifications", zap.Int("count", expired))
	}
}
