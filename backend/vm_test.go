package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karsidev/karsi/types"
)

func vmFeed(names ...string) []types.VMRecommendation {
	out := make([]types.VMRecommendation, 0, len(names))
	for _, n := range names {
		out = append(out, types.VMRecommendation{ApplicationName: n})
	}
	return out
}

func TestFetchVMRecommendations_MergesBothFeeds(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/optimization/recommendations/ec2/exclusive":
			_ = json.NewEncoder(w).Encode(vmFeed("excl-1", "excl-2"))
		case "/optimization/recommendations/ec2/load-balanced":
			_ = json.NewEncoder(w).Encode(vmFeed("lb-1"))
		default:
			http.NotFound(w, r)
		}
	}))

	recos, err := c.FetchVMRecommendations(context.Background(), Filters{})
	require.NoError(t, err)
	require.Len(t, recos, 3)
	// Exclusive results come first.
	assert.Equal(t, "excl-1", recos[0].ApplicationName)
	assert.Equal(t, "lb-1", recos[2].ApplicationName)
}

func TestFetchVMRecommendations_LoadBalancedFailureTolerated(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/optimization/recommendations/ec2/exclusive":
			_ = json.NewEncoder(w).Encode(vmFeed("excl-1"))
		default:
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}
	}))

	recos, err := c.FetchVMRecommendations(context.Background(), Filters{})
	require.NoError(t, err)
	require.Len(t, recos, 1)
	assert.Equal(t, "excl-1", recos[0].ApplicationName)
}

func TestFetchVMRecommendations_ExclusiveFailureFails(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/optimization/recommendations/ec2/load-balanced":
			_ = json.NewEncoder(w).Encode(vmFeed("lb-1"))
		default:
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}
	}))

	_, err := c.FetchVMRecommendations(context.Background(), Filters{})
	require.Error(t, err)
}

func TestFetchVMRecommendations_RequestsRunConcurrently(t *testing.T) {
	var inflight, maxInflight atomic.Int32
	block := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inflight.Add(1)
		if n > maxInflight.Load() {
			maxInflight.Store(n)
		}
		if n == 2 {
			close(block)
		}
		<-block
		inflight.Add(-1)
		_ = json.NewEncoder(w).Encode(vmFeed("x"))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = c.FetchVMRecommendations(context.Background(), Filters{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), maxInflight.Load())
}
