package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Price float64 `json:"price"`
}

// flaky answers with status for the first failures calls, then with body.
func flaky(calls *atomic.Int32, failures int32, status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= failures {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
			return
		}
		_, _ = w.Write([]byte(`{"price":0.0001}`))
	}
}

func TestGetJSON(t *testing.T) {
	long := strings.Repeat("x", maxErrorBody+100)
	tests := []struct {
		name       string
		retries    int
		failures   int32
		status     int
		body       string
		wantCalls  int32
		wantStatus int
		wantBody   string
	}{
		{name: "ok", wantCalls: 1},
		{name: "non-2xx fails on first attempt", failures: 1, status: http.StatusBadGateway, body: "upstream down",
			wantCalls: 1, wantStatus: http.StatusBadGateway, wantBody: "upstream down"},
		{name: "error body truncated", failures: 1, status: http.StatusInternalServerError, body: long,
			wantCalls: 1, wantStatus: http.StatusInternalServerError, wantBody: long[:maxErrorBody] + "..."},
		{name: "retries until success", retries: 2, failures: 2, status: http.StatusTooManyRequests,
			wantCalls: 3},
		{name: "retries exhausted", retries: 1, failures: 5, status: http.StatusServiceUnavailable, body: "busy",
			wantCalls: 2, wantStatus: http.StatusServiceUnavailable, wantBody: "busy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(flaky(&calls, tt.failures, tt.status, tt.body))
			defer srv.Close()

			c := New(srv.Client(), tt.retries)
			c.Backoff = time.Millisecond
			var out payload
			err := c.GetJSON(context.Background(), srv.URL, nil, &out)

			if got := calls.Load(); got != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, got)
			}
			if tt.wantStatus == 0 {
				require.NoError(t, err)
				assert.Equal(t, 0.0001, out.Price)
				return
			}
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.wantStatus, se.Code)
			assert.Equal(t, tt.wantBody, se.Body)
		})
	}
}

func TestNewClampsRetries(t *testing.T) {
	c := New(nil, -3)
	assert.Zero(t, c.MaxRetries)
	assert.Equal(t, DefaultHTTPTimeout, c.HTTP.Timeout)
}

func TestGetJSONDecodeErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"price":`))
	}))
	defer srv.Close()

	err := New(srv.Client(), 3).GetJSON(context.Background(), srv.URL, nil, &payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSONContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := New(srv.Client(), 2).GetJSON(ctx, srv.URL, nil, &payload{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestGetJSONCancelledDuringBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(flaky(&calls, 10, http.StatusBadGateway, "down"))
	defer srv.Close()

	c := New(srv.Client(), 5)
	c.Backoff = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := c.GetJSON(ctx, srv.URL, nil, &payload{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "getTokenSupply", in["method"])
		_, _ = w.Write([]byte(`{"price":2}`))
	}))
	defer srv.Close()

	var out payload
	header := http.Header{"X-Api-Key": []string{"secret"}}
	err := New(srv.Client(), 0).PostJSON(context.Background(), srv.URL, map[string]any{"method": "getTokenSupply"}, header, &out)
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.Price)
}
