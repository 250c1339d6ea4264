// Package app wires the resolver/switch-controller core, its supporting
// infrastructure (audit storage, observability, HTTP status server), and
// the freeze-gate hysteresis into a single runnable process.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/quartzmkt/resolver-core/internal/audit"
	"github.com/quartzmkt/resolver-core/internal/freezegate"
	"github.com/quartzmkt/resolver-core/internal/observability"
	"github.com/quartzmkt/resolver-core/internal/seriesmodel"
	"github.com/quartzmkt/resolver-core/internal/switchctl"
	"github.com/quartzmkt/resolver-core/pkg/cache"
	"github.com/quartzmkt/resolver-core/pkg/config"
	"github.com/quartzmkt/resolver-core/pkg/healthprobe"
	"github.com/quartzmkt/resolver-core/pkg/httpserver"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	series        seriesmodel.Series
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	controller    *switchctl.Controller
	gate          *freezegate.Gate
	storage       audit.Storage
	cachingStore  *audit.CachingStorage
	marketCache   cache.Cache
	recorder      *observability.Recorder

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}
