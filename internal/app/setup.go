package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quartzmkt/resolver-core/internal/audit"
	"github.com/quartzmkt/resolver-core/internal/clobprice"
	"github.com/quartzmkt/resolver-core/internal/freezegate"
	"github.com/quartzmkt/resolver-core/internal/gamma"
	"github.com/quartzmkt/resolver-core/internal/observability"
	"github.com/quartzmkt/resolver-core/internal/resolver"
	"github.com/quartzmkt/resolver-core/internal/seriesmodel"
	"github.com/quartzmkt/resolver-core/internal/switchctl"
	"github.com/quartzmkt/resolver-core/pkg/cache"
	"github.com/quartzmkt/resolver-core/pkg/config"
	"github.com/quartzmkt/resolver-core/pkg/healthprobe"
	"github.com/quartzmkt/resolver-core/pkg/httpserver"
	"github.com/quartzmkt/resolver-core/pkg/types"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	series, err := seriesmodel.ParseSeries(cfg.Series)
	if err != nil {
		return nil, fmt.Errorf("parse series: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	marketCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	storage, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}
	cachingStore := audit.NewCachingStorage(storage, marketCache, cfg.AuditCacheTTL, cfg.AuditCacheMaxHistory)

	gammaClient := gamma.NewClient(cfg.GammaBaseURL, logger)
	priceClient := clobprice.NewClient(cfg.ClobBaseURL, logger)

	res := resolver.New(gammaClient, priceClient, resolver.Config{
		BucketSizeSecs:      seriesmodel.BucketSizeSecs,
		ToleranceSecs:       cfg.ResolverToleranceSecs,
		CheckPreviousBucket: cfg.ResolverCheckPreviousBucket,
		ClobValidation:      cfg.ResolverClobValidation,
	}, logger)

	recordingRes := newRecordingResolver(res, cfg.Series, cachingStore, logger)

	controller := switchctl.New(recordingRes, priceClient, series, switchctl.Config{
		LeadTimeSecs:   cfg.SwitchLeadTimeSecs,
		MinConsecutive: cfg.SwitchMinConsecutive,
		OverlapSecs:    cfg.SwitchOverlapSecs,
		PollIntervalMs: cfg.SwitchPollInterval.Milliseconds(),
		BucketSizeSecs: seriesmodel.BucketSizeSecs,
	}, logger)

	recorder := observability.NewRecorder()

	gate := freezegate.New(controller, actionHandler(cfg, cachingStore, recorder, logger), freezegate.Config{
		PollInterval: cfg.FreezeGatePollInterval,
		RecoverAfter: cfg.FreezeGateRecoverAfter,
	}, logger)

	httpServer := setupHTTPServer(cfg, logger, healthChecker, controller, gate, cachingStore)

	return &App{
		cfg:           cfg,
		logger:        logger,
		series:        series,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		controller:    controller,
		gate:          gate,
		storage:       storage,
		cachingStore:  cachingStore,
		marketCache:   marketCache,
		recorder:      recorder,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (audit.Storage, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := audit.NewPostgresStorage(&audit.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return audit.NewConsoleStorage(logger), nil
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	controller *switchctl.Controller,
	gate *freezegate.Gate,
	history *audit.CachingStorage,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Status:        controller,
		Freeze:        gate,
		History:       history,
		Series:        cfg.Series,
	})
}

// actionHandler builds the freeze gate's ActionHandler: every committed
// SwitchAction is audited and reflected into metrics.
func actionHandler(cfg *config.Config, store audit.Storage, recorder *observability.Recorder, logger *zap.Logger) freezegate.ActionHandler {
	return func(action types.SwitchAction) {
		ctx := context.Background()
		if err := store.RecordAction(ctx, cfg.Series, action); err != nil {
			logger.Warn("audit-record-action-failed", zap.Error(err))
		}

		switch action.Action {
		case "subscribe_new":
			logger.Info("switch-subscribe-new", zap.String("slug", action.Slug), zap.Strings("tokens", action.Tokens[:]))
		case "unsubscribe_old":
			logger.Info("switch-unsubscribe-old", zap.String("slug", action.Slug), zap.Strings("tokens", action.Tokens[:]))
		case "freeze":
			logger.Warn("switch-freeze", zap.String("reason", action.Reason), zap.String("message", action.Message))
		}
	}
}
