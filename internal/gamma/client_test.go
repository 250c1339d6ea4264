package gamma

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestGetBySlugFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/slug/btc-updown-15m-1736073000" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `[{"id":"1","slug":"btc-updown-15m-1736073000","conditionId":"c1",
			"clobTokenIds":"[\"T-up\",\"T-dn\"]","outcomes":"[\"Up\",\"Down\"]",
			"active":true,"closed":false,"enableOrderBook":true}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))
	market, err := client.GetBySlug(context.Background(), "btc-updown-15m-1736073000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if market == nil {
		t.Fatal("expected a market, got nil")
	}
	if market.Slug != "btc-updown-15m-1736073000" {
		t.Errorf("unexpected slug: %s", market.Slug)
	}
	if len(market.ClobTokenIDs) != 2 || market.ClobTokenIDs[0] != "T-up" {
		t.Errorf("unexpected clob token ids: %v", market.ClobTokenIDs)
	}
}

func TestGetBySlugNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))
	market, err := client.GetBySlug(context.Background(), "no-such-market")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if market != nil {
		t.Errorf("expected nil market, got %+v", market)
	}
}

func TestGetBySlugServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom")
	}))
	defer server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))
	_, err := client.GetBySlug(context.Background(), "whatever")
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestGetBySlugEmptyArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))
	market, err := client.GetBySlug(context.Background(), "whatever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if market != nil {
		t.Errorf("expected nil market for empty array, got %+v", market)
	}
}

func TestNewClientStripsTrailingSlash(t *testing.T) {
	client := NewClient("https://gamma-api.polymarket.com/", zaptest.NewLogger(t))
	if client.baseURL != "https://gamma-api.polymarket.com" {
		t.Errorf("expected trailing slash stripped, got %q", client.baseURL)
	}
}
