package app

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/quartzmkt/resolver-core/internal/observability"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("series", a.cfg.Series),
		zap.String("storage-mode", a.cfg.StorageMode),
		zap.String("log-level", a.cfg.LogLevel))

	if err := a.startComponents(); err != nil {
		return err
	}

	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.String("gamma-url", a.cfg.GammaBaseURL),
		zap.String("clob-url", a.cfg.ClobBaseURL))

	return a.waitForShutdown()
}

func (a *App) startComponents() error {
	a.wg.Add(1)
	go a.runHTTPServer()

	time.Sleep(100 * time.Millisecond)

	a.gate.Init(a.ctx)
	a.gate.Start(a.ctx)

	a.wg.Add(1)
	go a.runMetricsSync()

	return nil
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

// runMetricsSync periodically samples the switch controller's counters and
// phase into the observability package's prometheus vars.
func (a *App) runMetricsSync() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.SwitchPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			stats := a.controller.Stats()
			a.recorder.Sync(observability.Stats{
				FreezeCount:          stats.FreezeCount,
				SwitchCount:          stats.SwitchCount,
				LastReadyLeadSeconds: stats.LastReadyLeadSeconds,
				LastSwitchLatencyMs:  stats.LastSwitchLatencyMs,
			})
			a.recorder.SyncPhase(string(a.controller.Phase()))
		}
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
