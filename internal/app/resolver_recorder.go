package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quartzmkt/resolver-core/internal/audit"
	"github.com/quartzmkt/resolver-core/internal/observability"
	"github.com/quartzmkt/resolver-core/internal/seriesmodel"
	"github.com/quartzmkt/resolver-core/internal/switchctl"
	"github.com/quartzmkt/resolver-core/pkg/types"
)

// recordingResolver decorates a switchctl.ResolverClient so every resolution
// the switch controller performs is persisted to the audit trail, without
// the controller itself knowing about storage.
type recordingResolver struct {
	inner  switchctl.ResolverClient
	series string
	store  audit.Storage
	logger *zap.Logger
}

func newRecordingResolver(inner switchctl.ResolverClient, series string, store audit.Storage, logger *zap.Logger) *recordingResolver {
	return &recordingResolver{inner: inner, series: series, store: store, logger: logger}
}

func (r *recordingResolver) Resolve(ctx context.Context, series seriesmodel.Series, asof time.Time) types.ResolveResult {
	start := time.Now()
	result := r.inner.Resolve(ctx, series, asof)
	observability.RecordResolveDuration(time.Since(start))

	if err := r.store.RecordResolve(ctx, r.series, result); err != nil {
		r.logger.Warn("audit-record-resolve-failed", zap.Error(err))
	}

	return result
}
