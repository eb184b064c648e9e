package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clubratings/ingestion/internal/metrics"

	"github.com/rs/zerolog/log"
)

// ErrFetchExhausted is returned when a fetch fails terminally: either every
// retry attempt was used up, or a non-retryable failure (4xx, timeout)
// occurred. The underlying failure is wrapped.
var ErrFetchExhausted = errors.New("fetch attempts exhausted")

// StatusError reports a non-200 HTTP response from the ratings source.
// Retry classification reads the status code, never the message text.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("clubelo returned status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the response indicates a transient server-side
// failure. 4xx responses are terminal: the request itself is wrong and
// retries cannot fix it.
func (e *StatusError) Retryable() bool {
	return e.Code >= 500
}

// Expected header columns per endpoint. Column names are the contract with
// the remote source; a payload missing any of these is malformed.
var (
	ratingColumns  = []string{"Rank", "Club", "Country", "Level", "Elo", "From", "To"}
	fixtureColumns = []string{"Date", "Country", "Competition", "Home", "Away", "EloHome", "EloAway"}
)

// Client is the ClubElo CSV API client
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	retryDelay  time.Duration
	timeout     time.Duration
}

// NewClient creates a new ClubElo API client.
// timeout bounds each individual attempt; maxAttempts below 1 is treated as 1.
func NewClient(baseURL string, timeout time.Duration, maxAttempts int) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxAttempts: maxAttempts,
		retryDelay:  1 * time.Second,
		timeout:     timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchSnapshot fetches the full club rating table as of one calendar date
func (c *Client) FetchSnapshot(ctx context.Context, date time.Time) ([]RawRow, error) {
	body, err := c.fetch(ctx, "snapshot", date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return parseTable(body, ratingColumns)
}

// FetchHistory fetches the complete rating history for one club
func (c *Client) FetchHistory(ctx context.Context, clubName string) ([]RawRow, error) {
	path := url.PathEscape(strings.TrimSpace(clubName))
	body, err := c.fetch(ctx, "history", path)
	if err != nil {
		return nil, err
	}
	return parseTable(body, ratingColumns)
}

// FetchFixtures fetches upcoming fixture predictions, optionally for a
// single match date
func (c *Client) FetchFixtures(ctx context.Context, date *time.Time) ([]RawRow, error) {
	path := "Fixtures"
	if date != nil {
		path = fmt.Sprintf("Fixtures/%s", date.Format("2006-01-02"))
	}
	body, err := c.fetch(ctx, "fixtures", path)
	if err != nil {
		return nil, err
	}
	return parseTable(body, fixtureColumns)
}

// fetch performs a GET request against the ratings source with retry logic.
// Transient failures (5xx, transport errors) back off exponentially: 1s, 2s,
// 4s, capped by maxAttempts. 4xx responses and per-attempt timeouts surface
// immediately.
func (c *Client) fetch(ctx context.Context, endpoint, path string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", reqURL).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying ClubElo request after backoff")

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrFetchExhausted, ctx.Err())
			case <-time.After(backoff):
			}
		}

		body, err := c.doAttempt(ctx, endpoint, reqURL, attempt)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			// Terminal: a 4xx means the request is malformed or
			// unauthorized and will fail the same way every time.
			metrics.RecordError("client", "terminal_status")
			return nil, fmt.Errorf("%w: %w", ErrFetchExhausted, err)
		}
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			// Terminal: the remote is unresponsive at the configured
			// interval, or the caller gave up.
			metrics.RecordError("client", "timeout")
			return nil, fmt.Errorf("%w: %w", ErrFetchExhausted, err)
		}

		log.Warn().
			Err(err).
			Str("url", reqURL).
			Int("attempt", attempt).
			Int("max_attempts", c.maxAttempts).
			Msg("ClubElo request failed, will retry")
	}

	metrics.RecordError("client", "retries_exhausted")
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrFetchExhausted, c.maxAttempts, lastErr)
}

// doAttempt issues a single request bounded by the per-attempt timeout
func (c *Client) doAttempt(ctx context.Context, endpoint, reqURL string, attempt int) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/csv")
	req.Header.Set("User-Agent", "ClubRatings-Ingestion/1.0")

	log.Debug().
		Str("url", reqURL).
		Int("attempt", attempt).
		Msg("Making ClubElo request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordFetchAttempt(endpoint, "error", time.Since(start).Seconds())
		if attemptCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("request timed out after %s: %w", c.timeout, context.DeadlineExceeded)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordFetchAttempt(endpoint, "error", time.Since(start).Seconds())
		if attemptCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("response read timed out after %s: %w", c.timeout, context.DeadlineExceeded)
		}
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RecordFetchAttempt(endpoint, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())
		return nil, &StatusError{Code: resp.StatusCode, Body: truncateBody(body)}
	}

	metrics.RecordFetchAttempt(endpoint, "200", time.Since(start).Seconds())
	log.Debug().
		Str("url", reqURL).
		Int("size", len(body)).
		Msg("ClubElo request successful")
	return body, nil
}

// truncateBody keeps error messages readable when the source returns an
// HTML error page
func truncateBody(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
