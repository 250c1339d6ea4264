package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/quartzmkt/resolver-core/pkg/config"
)

// fakeGammaServer answers every slug lookup with 404, so the resolver
// always freezes on "no_candidates" without needing a real market fixture.
func fakeGammaServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
}

func fakeClobServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
}

func testConfig(gammaURL, clobURL string) *config.Config {
	return &config.Config{
		LogLevel:                    "info",
		HTTPPort:                    "0",
		Series:                      "btc15m",
		GammaBaseURL:                gammaURL,
		ClobBaseURL:                 clobURL,
		ResolverToleranceSecs:       120,
		ResolverCheckPreviousBucket: true,
		ResolverClobValidation:      false,
		SwitchLeadTimeSecs:          90,
		SwitchMinConsecutive:        3,
		SwitchOverlapSecs:           15,
		SwitchPollInterval:          50 * time.Millisecond,
		FreezeGatePollInterval:      50 * time.Millisecond,
		FreezeGateRecoverAfter:      3,
		StorageMode:                 "console",
		AuditCacheTTL:               time.Minute,
		AuditCacheMaxHistory:        10,
	}
}

func TestNewWiresAllComponents(t *testing.T) {
	gamma := fakeGammaServer(t)
	defer gamma.Close()
	clob := fakeClobServer(t)
	defer clob.Close()

	logger := zap.NewNop()
	a, err := New(testConfig(gamma.URL, clob.URL), logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if a.controller == nil || a.gate == nil || a.httpServer == nil || a.storage == nil {
		t.Fatalf("expected all components wired, got %+v", a)
	}
	if a.healthChecker == nil {
		t.Fatal("expected health checker to be wired")
	}

	_ = a.Shutdown()
}

func TestRunStartsAndShutsDownCleanly(t *testing.T) {
	gamma := fakeGammaServer(t)
	defer gamma.Close()
	clob := fakeClobServer(t)
	defer clob.Close()

	logger := zap.NewNop()
	a, err := New(testConfig(gamma.URL, clob.URL), logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	runDone := make(chan error, 1)
	go func() {
		runDone <- a.Run()
	}()

	time.Sleep(200 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	a.healthChecker.Ready()(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("expected health checker to report ready after startup, got status %d", w.Result().StatusCode)
	}

	a.cancel()

	select {
	case err := <-runDone:
		if err != nil {
			t.Errorf("Run() returned error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}

func TestShutdownIsIdempotentSafe(t *testing.T) {
	gamma := fakeGammaServer(t)
	defer gamma.Close()
	clob := fakeClobServer(t)
	defer clob.Close()

	logger := zap.NewNop()
	a, err := New(testConfig(gamma.URL, clob.URL), logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := a.Shutdown(); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := a.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}
