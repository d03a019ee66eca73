package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestEbayClient(baseURL string) *EbayClient {
	c := NewEbayClient("test-key", baseURL, 3)
	c.retryBase = time.Millisecond
	return c
}

func listingJSON(title string, price float64) string {
	return fmt.Sprintf(`{"title":%q,"price":{"value":"%.2f","currency":"USD"},"condition":"Used","itemWebUrl":"https://example.com/item","image":{"imageUrl":"https://example.com/img.jpg"}}`, title, price)
}

func TestEbayFetchNormalizesListings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth header, got %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "iPhone 14 Pro" {
			t.Errorf("expected query %q, got %q", "iPhone 14 Pro", got)
		}
		fmt.Fprintf(w, `{"total":3,"itemSummaries":[%s,%s,%s]}`,
			listingJSON("a", 600), listingJSON("b", 650), listingJSON("c", 700))
	}))
	defer server.Close()

	client := newTestEbayClient(server.URL)
	quote, err := client.Fetch(context.Background(), "iPhone 14 Pro", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quote.AveragePrice != 650 {
		t.Errorf("expected average 650, got %f", quote.AveragePrice)
	}
	if quote.PriceRange.Min != 600 || quote.PriceRange.Max != 700 {
		t.Errorf("expected range 600-700, got %+v", quote.PriceRange)
	}
	if quote.ItemCount != 3 {
		t.Errorf("expected 3 items, got %d", quote.ItemCount)
	}
	if quote.Source != "remote" {
		t.Errorf("fresh quote should be remote-sourced, got %s", quote.Source)
	}
	if quote.PriceRange.Min > quote.AveragePrice || quote.AveragePrice > quote.PriceRange.Max {
		t.Error("average must sit within the price range")
	}
	if quote.Timestamp.IsZero() {
		t.Error("quote should carry a timestamp")
	}
}

func TestEbayFetchCapsSampleListings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		listings := ""
		for i := 0; i < 8; i++ {
			if i > 0 {
				listings += ","
			}
			listings += listingJSON(fmt.Sprintf("item %d", i), float64(100+i*10))
		}
		fmt.Fprintf(w, `{"total":8,"itemSummaries":[%s]}`, listings)
	}))
	defer server.Close()

	client := newTestEbayClient(server.URL)
	quote, err := client.Fetch(context.Background(), "widget", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(quote.SampleListings) != 5 {
		t.Errorf("samples should be capped at 5, got %d", len(quote.SampleListings))
	}
	if quote.ItemCount != 8 {
		t.Errorf("item count should reflect all qualifying listings, got %d", quote.ItemCount)
	}
}

func TestEbayFetchFiltersInvalidPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"total":4,"itemSummaries":[
			%s,
			{"title":"no price","itemWebUrl":"https://example.com/x"},
			{"title":"zero","price":{"value":"0","currency":"USD"}},
			{"title":"garbage","price":{"value":"n/a","currency":"USD"}}
		]}`, listingJSON("good", 42))
	}))
	defer server.Close()

	client := newTestEbayClient(server.URL)
	quote, err := client.Fetch(context.Background(), "widget", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quote.ItemCount != 1 {
		t.Errorf("expected only the valid listing to count, got %d", quote.ItemCount)
	}
	if quote.AveragePrice != 42 {
		t.Errorf("expected average 42, got %f", quote.AveragePrice)
	}
}

func TestEbayFetchNoResults(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty array", `{"total":0,"itemSummaries":[]}`},
		{"absent array", `{"total":0}`},
		{"all filtered", `{"total":1,"itemSummaries":[{"title":"zero","price":{"value":"0","currency":"USD"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := newTestEbayClient(server.URL)
			_, err := client.Fetch(context.Background(), "widget", "USD")
			if !errors.Is(err, ErrNoResults) {
				t.Fatalf("expected ErrNoResults, got %v", err)
			}
			if calls != 1 {
				t.Errorf("empty results are not a fault and must not be retried, got %d calls", calls)
			}
		})
	}
}

func TestEbayFetchAuthFailureNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestEbayClient(server.URL)
	_, err := client.Fetch(context.Background(), "widget", "USD")

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("auth failures must not be retried, got %d calls", calls)
	}
}

func TestEbayFetchThrottledThenSucceeds(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprintf(w, `{"total":1,"itemSummaries":[%s]}`, listingJSON("good", 10))
	}))
	defer server.Close()

	client := newTestEbayClient(server.URL)
	quote, err := client.Fetch(context.Background(), "widget", "USD")
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
	if quote.AveragePrice != 10 {
		t.Errorf("expected average 10, got %f", quote.AveragePrice)
	}
}

func TestEbayFetchServerFaultExhaustsRetries(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestEbayClient(server.URL)
	_, err := client.Fetch(context.Background(), "widget", "USD")

	var transient *TransientServerError
	if !errors.As(err, &transient) {
		t.Fatalf("expected TransientServerError, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestEbayFetchMalformedResponse(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"total": not json`)
	}))
	defer server.Close()

	client := newTestEbayClient(server.URL)
	_, err := client.Fetch(context.Background(), "widget", "USD")

	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("parse failures must not be retried, got %d calls", calls)
	}
}

func TestEbayFetchCancelledContextNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestEbayClient(server.URL)
	_, err := client.Fetch(ctx, "widget", "USD")

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var transient *TransientServerError
	if errors.As(err, &transient) {
		t.Error("cancellation must not be classified as a marketplace fault")
	}
	if calls != 0 {
		t.Errorf("cancelled fetch should not reach the marketplace, got %d calls", calls)
	}
}

func TestMarketplaceForCurrency(t *testing.T) {
	tests := []struct {
		currency string
		expected string
	}{
		{"USD", "EBAY_US"},
		{"EUR", "EBAY_DE"},
		{"GBP", "EBAY_GB"},
		{"CAD", "EBAY_CA"},
		{"AUD", "EBAY_AU"},
		{"JPY", "EBAY_US"}, // unmapped falls back to US
		{"", "EBAY_US"},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			if got := marketplaceForCurrency(tt.currency); got != tt.expected {
				t.Errorf("marketplaceForCurrency(%q) = %q, want %q", tt.currency, got, tt.expected)
			}
		})
	}
}
