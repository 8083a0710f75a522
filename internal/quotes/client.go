// Package quotes fetches market quotes over HTTP with bounded retries.
// It lives next to the pipeline but is never called by it; retry and
// timeout concerns stay out of the record-processing core.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Defaults mirror the configuration package; NewClient takes explicit
// values so the client is testable without environment plumbing.
const (
	DefaultMaxRetries = 3
	DefaultTimeout    = 10 * time.Second

	retryWait = time.Second
)

// Quote is one fetched quote, tagged with the symbol it was requested
// for.
type Quote struct {
	Symbol string `json:"symbol"`
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// Client is a retrying HTTP client for the quote API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	maxRetries int
	log        zerolog.Logger
}

// NewClient creates a quote client. timeout bounds each attempt;
// maxRetries bounds the number of attempts.
func NewClient(endpoint string, timeout time.Duration, maxRetries int, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		maxRetries: maxRetries,
		log:        log,
	}
}

// Fetch requests one quote for symbol, retrying failed attempts with a
// short pause in between. The last error is returned once all attempts
// are exhausted.
func (c *Client) Fetch(ctx context.Context, symbol string) (*Quote, error) {
	if symbol == "" {
		return nil, fmt.Errorf("invalid symbol: %q", symbol)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		c.log.Debug().Str("symbol", symbol).Int("attempt", attempt).Msg("fetching quote")

		quote, err := c.fetchOnce(ctx, symbol)
		if err == nil {
			c.log.Info().Str("symbol", symbol).Int("attempt", attempt).Msg("quote fetched")
			return quote, nil
		}

		lastErr = err
		c.log.Warn().Err(err).Str("symbol", symbol).Int("attempt", attempt).Msg("quote fetch failed")

		if attempt < c.maxRetries {
			select {
			case <-time.After(retryWait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("fetch quote for %s failed after %d attempts: %w", symbol, c.maxRetries, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, symbol string) (*Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api returned status %d", resp.StatusCode)
	}

	var body struct {
		Quote  string `json:"quote"`
		Author string `json:"author"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	author := body.Author
	if author == "" {
		author = "Unknown"
	}

	return &Quote{Symbol: symbol, Quote: body.Quote, Author: author}, nil
}

// FetchAll fetches quotes for all symbols concurrently. Failed symbols
// are logged and dropped; the result keeps no particular order.
func (c *Client) FetchAll(ctx context.Context, symbols []string) []*Quote {
	c.log.Info().Int("symbols", len(symbols)).Msg("fetching quotes concurrently")

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		quotes []*Quote
	)

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			quote, err := c.Fetch(ctx, symbol)
			if err != nil {
				c.log.Warn().Err(err).Str("symbol", symbol).Msg("dropping failed quote")
				return
			}
			mu.Lock()
			quotes = append(quotes, quote)
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()
	c.log.Info().Int("fetched", len(quotes)).Msg("quote fan-out complete")
	return quotes
}
