package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rentyard/equipsearch/cache"
	"github.com/rentyard/equipsearch/core"
	"github.com/rentyard/equipsearch/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// upstreamRecords is the canned upstream payload used across tests.
var upstreamRecords = []core.EquipmentRecord{
	{ID: "eq-1", Make: "CAT", Model: "320", PrimaryType: "Excavator",
		RateSchedules: []core.RateSchedule{{Daily: 350}}},
	{ID: "eq-2", Make: "Bobcat", Model: "S650", PrimaryType: "Skid Steer",
		RateSchedules: []core.RateSchedule{{Daily: 200}}},
}

func okHandler(calls *atomic.Int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"value":        upstreamRecords,
			"@odata.count": 2,
		})
	}
}

// newTestClient wires a client against the given upstream with a fake clock
// driving cache TTL and instant retry backoff.
func newTestClient(t *testing.T, upstream *httptest.Server, opts ...ConfigOption) (*Client, *fakeClock) {
	t.Helper()

	clock := newFakeClock()
	store, err := cache.NewMemoryStore(cache.WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	bucket, err := ratelimit.NewBucket(1000)
	require.NoError(t, err)

	cfgOpts := append([]ConfigOption{
		WithEndpoint(upstream.URL),
		WithAPIKey("test-key"),
		WithCache(true, time.Minute),
		WithRetry(3, time.Millisecond),
	}, opts...)

	c, err := New(NewConfig(cfgOpts...), store, bucket,
		WithBackoffSleep(func(context.Context, time.Duration) error { return nil }),
		WithJitter(func() time.Duration { return 0 }))
	require.NoError(t, err)
	return c, clock
}

func TestSearchSuccess(t *testing.T) {
	var calls atomic.Int64
	var gotBody map[string]any
	var gotAPIKey string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gotAPIKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{"value": upstreamRecords, "@odata.count": 2})
	}))
	defer upstream.Close()

	c, _ := newTestClient(t, upstream)
	criteria := core.SearchCriteria{
		EquipmentTypes: []string{"Excavator"},
		Keywords:       []string{"mini"},
		Top:            24,
	}

	result, err := c.Search(context.Background(), criteria)
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, int64(2), result.Total)

	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, true, gotBody["count"])
	assert.Contains(t, gotBody["filter"], "primaryType eq 'Excavator'")
	assert.Equal(t, "mini* OR mini~1", gotBody["search"])
	assert.Equal(t, "any", gotBody["searchMode"])
	assert.Equal(t, float64(24), gotBody["top"])
}

func TestSearchCaching(t *testing.T) {
	t.Run("identical criteria within TTL reuse the cached result", func(t *testing.T) {
		var calls atomic.Int64
		upstream := httptest.NewServer(okHandler(&calls))
		defer upstream.Close()

		c, _ := newTestClient(t, upstream)
		criteria := core.SearchCriteria{EquipmentTypes: []string{"Excavator"}, Top: 24}

		first, err := c.Search(context.Background(), criteria)
		require.NoError(t, err)
		second, err := c.Search(context.Background(), criteria)
		require.NoError(t, err)

		assert.Equal(t, int64(1), calls.Load(), "second call must not reach upstream")
		assert.Equal(t, first, second)
	})

	t.Run("expired TTL triggers a fresh upstream call", func(t *testing.T) {
		var calls atomic.Int64
		upstream := httptest.NewServer(okHandler(&calls))
		defer upstream.Close()

		c, clock := newTestClient(t, upstream)
		criteria := core.SearchCriteria{EquipmentTypes: []string{"Excavator"}, Top: 24}

		_, err := c.Search(context.Background(), criteria)
		require.NoError(t, err)

		clock.Advance(2 * time.Minute)
		_, err = c.Search(context.Background(), criteria)
		require.NoError(t, err)

		assert.Equal(t, int64(2), calls.Load())
	})

	t.Run("different criteria never share entries", func(t *testing.T) {
		var calls atomic.Int64
		upstream := httptest.NewServer(okHandler(&calls))
		defer upstream.Close()

		c, _ := newTestClient(t, upstream)
		_, err := c.Search(context.Background(), core.SearchCriteria{EquipmentTypes: []string{"Excavator"}})
		require.NoError(t, err)
		_, err = c.Search(context.Background(), core.SearchCriteria{EquipmentTypes: []string{"Dozer"}})
		require.NoError(t, err)

		assert.Equal(t, int64(2), calls.Load())
	})

	t.Run("caching disabled always calls upstream", func(t *testing.T) {
		var calls atomic.Int64
		upstream := httptest.NewServer(okHandler(&calls))
		defer upstream.Close()

		c, _ := newTestClient(t, upstream, WithCache(false, 0))
		criteria := core.SearchCriteria{EquipmentTypes: []string{"Excavator"}}

		for i := 0; i < 3; i++ {
			_, err := c.Search(context.Background(), criteria)
			require.NoError(t, err)
		}
		assert.Equal(t, int64(3), calls.Load())
	})
}

func TestSearchRetry(t *testing.T) {
	t.Run("always 503 exhausts retries then fails", func(t *testing.T) {
		var calls atomic.Int64
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "try later", http.StatusServiceUnavailable)
		}))
		defer upstream.Close()

		c, _ := newTestClient(t, upstream)
		result, err := c.Search(context.Background(), core.SearchCriteria{})

		require.Error(t, err)
		assert.Equal(t, int64(4), calls.Load(), "initial attempt plus maxRetries")
		assert.NotNil(t, result)
		assert.Empty(t, result.Records)
		assert.Zero(t, result.Total)
	})

	t.Run("429 then success recovers", func(t *testing.T) {
		var calls atomic.Int64
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				http.Error(w, "slow down", http.StatusTooManyRequests)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"value": upstreamRecords, "@odata.count": 2})
		}))
		defer upstream.Close()

		c, _ := newTestClient(t, upstream)
		result, err := c.Search(context.Background(), core.SearchCriteria{})

		require.NoError(t, err)
		assert.Equal(t, int64(2), calls.Load())
		assert.Len(t, result.Records, 2)
	})

	t.Run("terminal status is returned immediately", func(t *testing.T) {
		var calls atomic.Int64
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "bad filter", http.StatusBadRequest)
		}))
		defer upstream.Close()

		c, _ := newTestClient(t, upstream)
		result, err := c.Search(context.Background(), core.SearchCriteria{})

		require.Error(t, err)
		assert.Equal(t, int64(1), calls.Load())
		assert.Empty(t, result.Records)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
		assert.Contains(t, statusErr.Body, "bad filter")
	})
}

func TestSearchFailureModes(t *testing.T) {
	t.Run("missing api key never reaches the network", func(t *testing.T) {
		var calls atomic.Int64
		upstream := httptest.NewServer(okHandler(&calls))
		defer upstream.Close()

		c, _ := newTestClient(t, upstream, WithAPIKey(""))
		result, err := c.Search(context.Background(), core.SearchCriteria{})

		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.NotNil(t, result)
		assert.Empty(t, result.Records)
		assert.Equal(t, int64(0), calls.Load())
	})

	t.Run("malformed response body is an error, not a panic", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}))
		defer upstream.Close()

		c, _ := newTestClient(t, upstream)
		result, err := c.Search(context.Background(), core.SearchCriteria{})

		require.Error(t, err)
		assert.Empty(t, result.Records)
	})

	t.Run("unreachable upstream collapses to empty result with error", func(t *testing.T) {
		upstream := httptest.NewServer(okHandler(&atomic.Int64{}))
		upstream.Close() // closed before use

		c, _ := newTestClient(t, upstream)
		result, err := c.Search(context.Background(), core.SearchCriteria{})

		require.Error(t, err)
		assert.NotNil(t, result)
		assert.Empty(t, result.Records)
	})
}

func TestSearchNormalizesBeforeCaching(t *testing.T) {
	// Upstream returns an out-of-radius purchase-enabled record; both the
	// fresh and the cached result must carry the normalized form.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lat, lon := 39.7392, -104.9903 // Denver
		json.NewEncoder(w).Encode(map[string]any{
			"value": []core.EquipmentRecord{{
				ID:              "eq-far",
				BuyItNowEnabled: true,
				BuyItNowPrice:   50000,
				RateSchedules:   []core.RateSchedule{{Daily: 300}},
				Latitude:        &lat,
				Longitude:       &lon,
				City:            "Denver",
				State:           "CO",
			}},
			"@odata.count": 1,
		})
	}))
	defer upstream.Close()

	c, _ := newTestClient(t, upstream)
	criteria := core.SearchCriteria{EquipmentTypes: []string{"Excavator"}}

	fresh, err := c.Search(context.Background(), criteria)
	require.NoError(t, err)
	cached, err := c.Search(context.Background(), criteria)
	require.NoError(t, err)

	for _, result := range []*core.SearchResult{fresh, cached} {
		require.Len(t, result.Records, 1)
		assert.True(t, result.Records[0].BuyItNowOnly)
		assert.Equal(t, "Albuquerque", result.Records[0].City)
		assert.Equal(t, "NM", result.Records[0].State)
	}
}

func TestNewClientValidation(t *testing.T) {
	store, err := cache.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	bucket, err := ratelimit.NewBucket(10)
	require.NoError(t, err)

	t.Run("nil config", func(t *testing.T) {
		_, err := New(nil, store, bucket)
		assert.ErrorIs(t, err, ErrConfigRequired)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		_, err := New(NewConfig(), store, bucket)
		assert.ErrorIs(t, err, ErrMissingEndpoint)
	})

	t.Run("caching enabled without store", func(t *testing.T) {
		_, err := New(NewConfig(WithEndpoint("http://search.local")), nil, bucket)
		assert.ErrorIs(t, err, ErrCacheRequired)
	})

	t.Run("missing bucket", func(t *testing.T) {
		_, err := New(NewConfig(WithEndpoint("http://search.local")), store, nil)
		assert.ErrorIs(t, err, ErrBucketRequired)
	})

	t.Run("cache disabled allows nil store", func(t *testing.T) {
		cfg := NewConfig(WithEndpoint("http://search.local"), WithCache(false, 0))
		_, err := New(cfg, nil, bucket)
		assert.NoError(t, err)
	})
}
