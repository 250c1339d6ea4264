package wsrecorder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func echoServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Drain the subscribe message.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}

		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}

		// Keep the connection open briefly so the recorder's read loop
		// observes all frames before the test tears the server down.
		time.Sleep(50 * time.Millisecond)
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestRecorderWritesFramesToFile(t *testing.T) {
	frames := []string{`{"event_type":"book"}`, `{"event_type":"price_change"}`}
	server := echoServer(t, frames)
	defer server.Close()

	dir := t.TempDir()
	outPath := dir + "/frames.jsonl"

	logger, _ := zap.NewDevelopment()
	cfg := DefaultConfig()
	cfg.URL = wsURL(server)
	cfg.AssetIDs = []string{"token-1"}
	cfg.OutputPath = outPath
	cfg.MessageLimit = uint64(len(frames))

	rec := New(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := rec.Run(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalFrames != uint64(len(frames)) {
		t.Errorf("expected %d frames, got %d", len(frames), stats.TotalFrames)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}

	for _, f := range frames {
		if !strings.Contains(string(data), f) {
			t.Errorf("expected output to contain frame %q, got: %s", f, data)
		}
	}
}

func TestRecorderStopsOnContextCancel(t *testing.T) {
	server := echoServer(t, nil)
	defer server.Close()

	dir := t.TempDir()
	logger, _ := zap.NewDevelopment()
	cfg := DefaultConfig()
	cfg.URL = wsURL(server)
	cfg.AssetIDs = []string{"token-1"}
	cfg.OutputPath = dir + "/frames.jsonl"
	cfg.ReconnectInitialDelay = 10 * time.Millisecond
	cfg.ReconnectMaxDelay = 20 * time.Millisecond

	rec := New(cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	if _, err := rec.Run(ctx); err == nil {
		t.Fatal("expected an error from context cancellation")
	}
}

func TestNextBackoffCapsAtMax(t *testing.T) {
	got := nextBackoff(20*time.Second, 2.0, 30*time.Second)
	if got != 30*time.Second {
		t.Errorf("expected backoff capped at 30s, got %v", got)
	}
}
