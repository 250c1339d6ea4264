// Package wsrecorder captures the raw frames of the Polymarket CLOB market
// channel to a JSONL file for offline inspection. It is deliberately dumb:
// no parsing, no orderbook reconstruction, just the raw frames on disk, one
// per line, as received (no timestamp is added).
package wsrecorder

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config holds the recorder's connection and output settings.
type Config struct {
	URL                   string
	AssetIDs              []string
	OutputPath            string
	DialTimeout           time.Duration
	PingInterval          time.Duration
	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration
	ReconnectBackoffMult  float64
	MessageLimit          uint64 // 0 = unlimited
}

// DefaultConfig returns the settings used by the teacher's websocket manager,
// adapted for a record-only workload.
func DefaultConfig() Config {
	return Config{
		DialTimeout:           10 * time.Second,
		PingInterval:          10 * time.Second,
		ReconnectInitialDelay: time.Second,
		ReconnectMaxDelay:     30 * time.Second,
		ReconnectBackoffMult:  2.0,
	}
}

// Stats summarizes a recording run.
type Stats struct {
	TotalFrames  uint64
	BytesWritten uint64
	Reconnects   uint64
}

// Recorder connects to the market channel, subscribes to a fixed set of
// asset IDs, and appends every inbound text frame verbatim to a JSONL file.
type Recorder struct {
	cfg    Config
	logger *zap.Logger

	conn      *websocket.Conn
	connected atomic.Bool
	mu        sync.Mutex

	frames atomic.Uint64
	bytes  atomic.Uint64
	reconn atomic.Uint64
}

// New creates a Recorder for cfg.
func New(cfg Config, logger *zap.Logger) *Recorder {
	return &Recorder{cfg: cfg, logger: logger}
}

// Run connects, subscribes, and reads frames until ctx is cancelled or the
// configured message limit is reached, reconnecting with exponential
// backoff on transport failure. The output file is created (truncated) on
// entry and flushed after every frame.
func (r *Recorder) Run(ctx context.Context) (Stats, error) {
	f, err := os.Create(r.cfg.OutputPath)
	if err != nil {
		return Stats{}, fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	r.logger.Info("wsrecorder-starting",
		zap.String("url", r.cfg.URL),
		zap.Strings("asset_ids", r.cfg.AssetIDs),
		zap.String("output", r.cfg.OutputPath))

	backoff := r.cfg.ReconnectInitialDelay

	for {
		if ctx.Err() != nil {
			return r.stats(), ctx.Err()
		}

		if err := r.connectAndSubscribe(ctx); err != nil {
			r.logger.Warn("wsrecorder-connect-failed", zap.Error(err))
			if !sleepOrDone(ctx, backoff) {
				return r.stats(), ctx.Err()
			}
			backoff = nextBackoff(backoff, r.cfg.ReconnectBackoffMult, r.cfg.ReconnectMaxDelay)
			continue
		}

		backoff = r.cfg.ReconnectInitialDelay

		stop, err := r.readUntilDisconnect(ctx, f)
		if stop {
			return r.stats(), ctx.Err()
		}
		if err != nil {
			r.logger.Warn("wsrecorder-read-loop-ended", zap.Error(err))
		}

		r.reconn.Add(1)
		if !sleepOrDone(ctx, backoff) {
			return r.stats(), ctx.Err()
		}
		backoff = nextBackoff(backoff, r.cfg.ReconnectBackoffMult, r.cfg.ReconnectMaxDelay)
	}
}

func (r *Recorder) connectAndSubscribe(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: r.cfg.DialTimeout}

	conn, _, err := dialer.DialContext(ctx, r.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	sub := map[string]interface{}{
		"assets_ids": r.cfg.AssetIDs,
		"type":       "market",
	}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return fmt.Errorf("write subscribe: %w", err)
	}

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
	r.connected.Store(true)

	r.logger.Info("wsrecorder-connected")
	return nil
}

// readUntilDisconnect reads frames until the connection errors, ctx is
// cancelled, or the message limit is reached. The bool return reports
// whether the caller should stop entirely (ctx cancelled or limit hit).
func (r *Recorder) readUntilDisconnect(ctx context.Context, f *os.File) (stop bool, err error) {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()

	defer func() {
		r.connected.Store(false)
		conn.Close()
	}()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go r.pingLoop(conn, done)

	for {
		_, message, readErr := conn.ReadMessage()
		if readErr != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			return false, readErr
		}

		if _, writeErr := f.Write(message); writeErr != nil {
			return true, fmt.Errorf("write frame: %w", writeErr)
		}
		if _, writeErr := f.Write([]byte("\n")); writeErr != nil {
			return true, fmt.Errorf("write frame separator: %w", writeErr)
		}
		if err := f.Sync(); err != nil {
			r.logger.Warn("wsrecorder-flush-failed", zap.Error(err))
		}

		r.frames.Add(1)
		r.bytes.Add(uint64(len(message)) + 1)

		if r.frames.Load()%100 == 0 {
			r.logger.Debug("wsrecorder-progress", zap.Uint64("frames", r.frames.Load()))
		}

		if r.cfg.MessageLimit > 0 && r.frames.Load() >= r.cfg.MessageLimit {
			r.logger.Info("wsrecorder-limit-reached", zap.Uint64("limit", r.cfg.MessageLimit))
			return true, nil
		}
	}
}

func (r *Recorder) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(r.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				r.logger.Warn("wsrecorder-ping-error", zap.Error(err))
			}
		}
	}
}

func (r *Recorder) stats() Stats {
	return Stats{
		TotalFrames:  r.frames.Load(),
		BytesWritten: r.bytes.Load(),
		Reconnects:   r.reconn.Load(),
	}
}

// Connected reports whether the recorder currently holds a live connection.
func (r *Recorder) Connected() bool {
	return r.connected.Load()
}

func nextBackoff(current time.Duration, mult float64, max time.Duration) time.Duration {
	next := time.Duration(float64(current) * mult)
	if next > max {
		return max
	}
	if next <= 0 {
		return max
	}
	return next
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
