package clobprice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestGetPriceSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("side") != "BUY" {
			t.Errorf("expected side=BUY, got %s", r.URL.Query().Get("side"))
		}
		fmt.Fprint(w, `{"price":"0.55"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))
	resp, err := client.GetPrice(context.Background(), "T-up", "BUY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.HasPrice {
		t.Error("expected HasPrice to be true")
	}
}

func TestGetPriceMissingPriceField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))
	resp, err := client.GetPrice(context.Background(), "T-up", "BUY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.HasPrice {
		t.Error("expected HasPrice to be false")
	}
}

func TestGetPriceBadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid side parameter"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))
	_, err := client.GetPrice(context.Background(), "T-up", "BUY")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsBadRequestError(err) {
		t.Errorf("expected IsBadRequestError to be true for: %v", err)
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if statusErr.StatusCode != http.StatusBadRequest {
		t.Errorf("unexpected status code: %d", statusErr.StatusCode)
	}
}

func TestGetPriceServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom")
	}))
	defer server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))
	_, err := client.GetPrice(context.Background(), "T-up", "BUY")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsBadRequestError(err) {
		t.Error("expected IsBadRequestError to be false for a 500")
	}
}
