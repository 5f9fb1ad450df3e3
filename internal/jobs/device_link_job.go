package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/edupulse/presence-api/pkg/jobs"
)

type deviceLinkResolver interface {
	ResolvePending(ctx context.Context) error
}

// NewDeviceLinkJob builds the periodic sweep that resolves pending device
// link requests. Individual request failures are handled inside the resolver;
// the job only fails when the pending list itself cannot be loaded.
func NewDeviceLinkJob(resolver deviceLinkResolver, interval time.Duration, logger *zap.Logger) *jobs.Scheduler {
	return jobs.NewScheduler("device-link-approval", interval, resolver.ResolvePending, logger)
}
