package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ratingCSV = `Rank,Club,Country,Level,Elo,From,To
1,Man City,ENG,1,2043.5,2024-08-01,2024-08-02
2,Real Madrid,ESP,1,2008.1,2024-08-01,2024-08-02
`

// newTestClient shrinks the retry backoff so retry tests run fast
func newTestClient(baseURL string) *Client {
	c := NewClient(baseURL, 2*time.Second, 3)
	c.retryDelay = time.Millisecond
	return c
}

func TestFetchSnapshot_Success(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "/2024-08-01", r.URL.Path, "Snapshot path should be the formatted date")
		w.Write([]byte(ratingCSV))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	date := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	rows, err := c.FetchSnapshot(context.Background(), date)
	require.NoError(t, err, "Should fetch and parse a healthy response")
	require.Len(t, rows, 2)
	assert.Equal(t, "Man City", rows[0]["Club"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "A healthy response needs one attempt")
}

func TestFetch_RetriesTransientFailures(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&requests, 1)
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(ratingCSV))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	date := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	rows, err := c.FetchSnapshot(context.Background(), date)
	require.NoError(t, err, "Should succeed once the source recovers")
	assert.Len(t, rows, 2)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests), "Two 503s cost two retries")
}

func TestFetch_ExhaustsRetries(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	date := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := c.FetchSnapshot(context.Background(), date)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchExhausted, "Persistent 5xx should exhaust retries")
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests), "Should use every configured attempt")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr, "The last attempt's failure should be wrapped")
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
}

func TestFetch_ClientErrorIsTerminal(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.Error(w, "no such club", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.FetchHistory(context.Background(), "Nowhere FC")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchExhausted)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "A 4xx must not be retried")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.False(t, statusErr.Retryable(), "4xx responses are not retryable")
}

func TestFetch_TimeoutIsTerminal(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(ratingCSV))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 20*time.Millisecond, 3)
	c.retryDelay = time.Millisecond
	date := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := c.FetchSnapshot(context.Background(), date)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchExhausted)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "The timeout should be wrapped")
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "A timeout at the configured interval must not be retried")
}

func TestNewClient_ClampsAttempts(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, 0)
	c.retryDelay = time.Millisecond
	date := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := c.FetchSnapshot(context.Background(), date)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchExhausted)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "Zero attempts still means one real attempt")

	var statusErr *StatusError
	assert.ErrorAs(t, err, &statusErr, "The attempt's failure must be wrapped, never a nil error")
}

func TestFetchHistory_EscapesClubName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Man%20City", r.URL.EscapedPath(), "Club names should be path-escaped")
		w.Write([]byte(ratingCSV))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.FetchHistory(context.Background(), "  Man City  ")
	require.NoError(t, err, "Surrounding whitespace should be trimmed before escaping")
}

func TestFetchFixtures_Paths(t *testing.T) {
	fixtureCSV := "Date,Country,Competition,Home,Away,EloHome,EloAway\n" +
		"2024-08-03,ENG,Premier League,Arsenal,Chelsea,1950.0,1900.0\n"

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(fixtureCSV))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.FetchFixtures(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "/Fixtures", gotPath, "No date means the bare fixtures endpoint")

	date := time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC)
	rows, err := c.FetchFixtures(context.Background(), &date)
	require.NoError(t, err)
	assert.Equal(t, "/Fixtures/2024-08-03", gotPath, "A date scopes the fixtures endpoint")
	require.Len(t, rows, 1)
	assert.Equal(t, "Arsenal", rows[0]["Home"])
}

func TestFetch_MalformedBodyNotRetried(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte("<html>not csv at all"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	date := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := c.FetchSnapshot(context.Background(), date)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedInput, "A 200 with a broken body is a parse failure")
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "Parse failures happen after fetching, never retried")
}
