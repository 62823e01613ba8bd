// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/newsdesk/pkg/types"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want types.ErrorKind
	}{
		{http.StatusTooManyRequests, types.KindRateLimit},
		{http.StatusUnauthorized, types.KindAuth},
		{http.StatusForbidden, types.KindAuth},
		{http.StatusGatewayTimeout, types.KindTimeout},
		{http.StatusRequestTimeout, types.KindTimeout},
		{http.StatusServiceUnavailable, types.KindUnavailable},
		{http.StatusInternalServerError, types.KindUnavailable},
		{http.StatusBadRequest, types.KindInvalidRequest},
		{http.StatusNotFound, types.KindInvalidRequest},
		{http.StatusOK, types.KindMalformed},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.code))
		})
	}
}

func TestCheckResponse_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.NoError(t, CheckResponse("test", "search", resp))
}

func TestCheckResponse_RateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = CheckResponse("test", "search", resp)
	var pe *types.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, types.KindRateLimit, pe.Kind)
	assert.Equal(t, http.StatusTooManyRequests, pe.StatusCode)
	assert.True(t, pe.Transient())
	assert.Contains(t, pe.Error(), "slow down")
}

func TestCheckResponse_AuthIsNotTransient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = CheckResponse("test", "complete", resp)
	var pe *types.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, types.KindAuth, pe.Kind)
	assert.False(t, pe.Transient())
}

func TestTransportError_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	client := NewClient(types.HTTPConfig{Timeout: 20 * time.Millisecond})
	_, err := client.Get(ts.URL)
	require.Error(t, err)

	pe := TransportError("test", "search", err)
	assert.Equal(t, types.KindTimeout, pe.Kind)
	assert.True(t, pe.Transient())
}

func TestTransportError_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	cancel()

	_, err = ts.Client().Do(req)
	require.Error(t, err)

	pe := TransportError("test", "search", err)
	assert.Equal(t, types.KindCancelled, pe.Kind)
	assert.False(t, pe.Transient())
}

func TestNewClient_SetsUserAgent(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	client := NewClient(types.HTTPConfig{UserAgent: "newsdesk/test"})
	resp, err := client.Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "newsdesk/test", got)
	assert.Equal(t, DefaultTimeout, client.Timeout)
}
