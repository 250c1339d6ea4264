// Package freezegate adapts the circuit-breaker hysteresis pattern to the
// Switch Controller's freeze stream: any Freeze action trips the gate
// immediately, and it only clears after a run of consecutive non-freeze
// actions, so a single transient flake cannot flap trading on and off.
package freezegate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quartzmkt/resolver-core/pkg/types"
	"go.uber.org/zap"
)

// Poller is the narrow interface the gate drives: the Switch Controller's
// Init/Poll entry points.
type Poller interface {
	Init(ctx context.Context) types.SwitchAction
	Poll(ctx context.Context) types.SwitchAction
}

// ActionHandler receives every action emitted by the underlying poller,
// for forwarding to the external I/O layer (websocket subscriber).
type ActionHandler func(action types.SwitchAction)

// Config tunes the gate's polling cadence and recovery hysteresis.
type Config struct {
	PollInterval time.Duration
	RecoverAfter int // consecutive non-freeze actions required to clear a trip
}

// DefaultConfig returns the gate's default tuning.
func DefaultConfig() Config {
	return Config{
		PollInterval: 2 * time.Second,
		RecoverAfter: 3,
	}
}

// Gate tracks whether trading should be halted, lock-free on the hot read
// path (IsFrozen), driven by a background poll loop.
type Gate struct {
	frozen atomic.Bool // atomic for lock-free reads

	poller  Poller
	handler ActionHandler
	cfg     Config
	logger  *zap.Logger

	mu            sync.RWMutex
	consecutiveOK int
	lastReason    string
	lastMessage   string
}

// New creates a Gate wrapping poller. handler may be nil if the caller
// only cares about the frozen/unfrozen signal.
func New(poller Poller, handler ActionHandler, cfg Config, logger *zap.Logger) *Gate {
	g := &Gate{
		poller:  poller,
		handler: handler,
		cfg:     cfg,
		logger:  logger,
	}
	g.frozen.Store(true) // frozen until the first successful Init
	return g
}

// IsFrozen returns true if trading should be halted. Safe to call from
// hot paths.
func (g *Gate) IsFrozen() (frozen bool) {
	return g.frozen.Load()
}

// LastFreeze returns the reason and message of the most recent trip.
func (g *Gate) LastFreeze() (reason, message string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastReason, g.lastMessage
}

// Init performs the controller's initial resolve. Unlike a recovery from
// a trip mid-session, a successful init unfreezes immediately: there is
// no prior trading state for hysteresis to protect.
func (g *Gate) Init(ctx context.Context) {
	action := g.poller.Init(ctx)

	if action.Action == "freeze" {
		g.trip(action)
	} else {
		g.frozen.Store(false)
		g.mu.Lock()
		g.consecutiveOK = 0
		g.mu.Unlock()
	}

	if g.handler != nil {
		g.handler(action)
	}
}

// Start launches the background monitoring loop. It runs until ctx is
// cancelled. Init must be called first.
func (g *Gate) Start(ctx context.Context) {
	g.logger.Info("freeze-gate-started",
		zap.Duration("poll_interval", g.cfg.PollInterval),
		zap.Int("recover_after", g.cfg.RecoverAfter))

	go g.monitorLoop(ctx)
}

// monitorLoop is the background goroutine that periodically polls the
// controller.
func (g *Gate) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.observe(g.poller.Poll(ctx))
		}
	}
}

// observe applies the hysteresis rule to a single Poll-sourced action and
// forwards it to the handler. A trip is immediate; clearing a trip
// requires RecoverAfter consecutive non-freeze actions.
func (g *Gate) observe(action types.SwitchAction) {
	if action.Action == "freeze" {
		g.trip(action)
	} else {
		g.mu.Lock()
		g.consecutiveOK++
		shouldRecover := g.frozen.Load() && g.consecutiveOK >= g.cfg.RecoverAfter
		g.mu.Unlock()

		if shouldRecover {
			g.frozen.Store(false)
			g.logger.Info("trading-unfrozen", zap.Int("consecutive_ok", g.cfg.RecoverAfter))
		}
	}

	if g.handler != nil {
		g.handler(action)
	}
}

// trip records a freeze action and sets the gate's frozen state.
func (g *Gate) trip(action types.SwitchAction) {
	g.frozen.Store(true)

	g.mu.Lock()
	g.consecutiveOK = 0
	g.lastReason = action.Reason
	g.lastMessage = action.Message
	g.mu.Unlock()

	g.logger.Warn("trading-frozen",
		zap.String("reason", action.Reason),
		zap.String("message", action.Message))
}
