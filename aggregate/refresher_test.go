package aggregate

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentyard/equipsearch/core"
)

func TestNewRefresherValidation(t *testing.T) {
	_, err := NewRefresher(nil, "@hourly", nil)
	assert.ErrorIs(t, err, ErrAggregatorRequired)
}

func TestRefresherWarmUp(t *testing.T) {
	var searches atomic.Int64
	searcher := &stubSearcher{fn: func(context.Context, core.SearchCriteria) (*core.SearchResult, error) {
		searches.Add(1)
		return resultOf(), nil
	}}
	catalog := &Catalog{Categories: []Category{{Name: "Aerial", Labels: []string{"Boom Lift"}}}}
	agg := newTestAggregator(t, searcher, catalog)

	refresher, err := NewRefresher(agg, "@hourly", nil)
	require.NoError(t, err)

	require.NoError(t, refresher.Start(context.Background()))
	defer refresher.Stop()

	// Start kicks off one warm-up pass without waiting for the schedule.
	require.Eventually(t, func() bool {
		return searches.Load() >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestRefresherLifecycle(t *testing.T) {
	searcher := &stubSearcher{fn: func(context.Context, core.SearchCriteria) (*core.SearchResult, error) {
		return resultOf(), nil
	}}
	agg := newTestAggregator(t, searcher, &Catalog{Categories: []Category{{Name: "Aerial", Labels: []string{"Boom Lift"}}}})

	t.Run("double start is rejected", func(t *testing.T) {
		refresher, err := NewRefresher(agg, "@hourly", nil)
		require.NoError(t, err)
		require.NoError(t, refresher.Start(context.Background()))
		defer refresher.Stop()

		assert.ErrorIs(t, refresher.Start(context.Background()), ErrRefresherRunning)
	})

	t.Run("stop allows a restart", func(t *testing.T) {
		refresher, err := NewRefresher(agg, "@hourly", nil)
		require.NoError(t, err)
		require.NoError(t, refresher.Start(context.Background()))
		refresher.Stop()

		require.NoError(t, refresher.Start(context.Background()))
		refresher.Stop()
	})

	t.Run("stop without start is a no-op", func(t *testing.T) {
		refresher, err := NewRefresher(agg, "@hourly", nil)
		require.NoError(t, err)
		refresher.Stop()
	})

	t.Run("invalid schedule is rejected", func(t *testing.T) {
		refresher, err := NewRefresher(agg, "not a schedule", nil)
		require.NoError(t, err)
		assert.Error(t, refresher.Start(context.Background()))
	})
}
