package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"devhub.backend/pkg/logger"
)

type gatewayReconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// GatewayReconcileJob periodically re-asserts every application's usage
// plan at the gateway so drift from missed pushes heals on its own.
type GatewayReconcileJob struct {
	usecase  gatewayReconciler
	interval time.Duration
	stop     chan struct{}
}

func NewGatewayReconcileJob(usecase gatewayReconciler, interval time.Duration) *GatewayReconcileJob {
	return &GatewayReconcileJob{
		usecase:  usecase,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *GatewayReconcileJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting gateway reconcile job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Gateway reconcile job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Gateway reconcile job stopped")
			return
		case <-ticker.C:
			j.reconcile(ctx)
		}
	}
}

func (j *GatewayReconcileJob) Stop() {
	close(j.stop)
}

func (j *GatewayReconcileJob) reconcile(ctx context.Context) {
	failed, err := j.usecase.Reconcile(ctx)
	if err != nil {
		logger.Error(ctx, "Gateway reconciliation failed", zap.Error(err))
		return
	}
	if failed > 0 {
		logger.Warn(ctx, "Gateway reconciliation left unhealed assignments", zap.Int("failed", failed))
	}
}
