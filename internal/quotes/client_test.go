package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(endpoint string, maxRetries int) *Client {
	return NewClient(endpoint, 2*time.Second, maxRetries, zerolog.Nop())
}

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quote":"stay hungry","author":"someone"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)

	quote, err := c.Fetch(context.Background(), "IDR")
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if quote.Symbol != "IDR" {
		t.Errorf("Symbol = %q, want IDR", quote.Symbol)
	}
	if quote.Quote != "stay hungry" {
		t.Errorf("Quote = %q, want 'stay hungry'", quote.Quote)
	}
	if quote.Author != "someone" {
		t.Errorf("Author = %q, want someone", quote.Author)
	}
}

func TestClient_Fetch_EmptySymbol(t *testing.T) {
	c := newTestClient("http://unused", 1)

	if _, err := c.Fetch(context.Background(), ""); err == nil {
		t.Error("Fetch() with empty symbol should fail")
	}
}

func TestClient_Fetch_MissingAuthorDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quote":"anonymous wisdom"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 1)

	quote, err := c.Fetch(context.Background(), "USD")
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if quote.Author != "Unknown" {
		t.Errorf("Author = %q, want Unknown", quote.Author)
	}
}

func TestClient_Fetch_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"quote":"third time lucky","author":"retry"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)

	quote, err := c.Fetch(context.Background(), "SGD")
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if quote.Quote != "third time lucky" {
		t.Errorf("Quote = %q, want 'third time lucky'", quote.Quote)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestClient_Fetch_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)

	if _, err := c.Fetch(context.Background(), "IDR"); err == nil {
		t.Fatal("Fetch() should fail once retries are exhausted")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestClient_FetchAll_DropsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quote":"q","author":"a"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 1)

	// The empty symbol fails fast; the other two succeed.
	quotes := c.FetchAll(context.Background(), []string{"IDR", "", "USD"})
	if len(quotes) != 2 {
		t.Errorf("FetchAll() returned %d quotes, want 2", len(quotes))
	}
}
