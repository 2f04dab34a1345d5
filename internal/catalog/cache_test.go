package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/lostfound-backend/pkg/metrics"
	redisclient "github.com/angelmondragon/lostfound-backend/pkg/redis"
)

type fakeKV struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", redisclient.ErrNil
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeKV) CatalogSummaryKey() string { return "lf:catalog:summary" }

func TestRedisSummaryCacheRoundTrip(t *testing.T) {
	kv := newFakeKV()
	reg := prometheus.NewRegistry()
	cache := NewRedisSummaryCache(kv, 30*time.Second, nil, metrics.NewCacheMetrics(reg))
	ctx := context.Background()

	_, ok := cache.Get(ctx)
	assert.False(t, ok)

	want := &Summary{
		Counts: Counts{Total: 3, Lost: 2, Found: 1},
		Facets: Facets{Categories: []string{"Bags"}, Locations: []string{"Gym"}},
	}
	cache.Set(ctx, want)
	assert.Equal(t, 30*time.Second, kv.ttls["lf:catalog:summary"])

	got, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)

	cache.Invalidate(ctx)
	_, ok = cache.Get(ctx)
	assert.False(t, ok)

	count, err := testutil.GatherAndCount(reg, "lostfound_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "hit and miss series")
}

func TestRedisSummaryCacheTreatsErrorsAsMiss(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("connection refused")
	cache := NewRedisSummaryCache(kv, time.Minute, nil, nil)

	_, ok := cache.Get(context.Background())
	assert.False(t, ok)

	kv.getErr = nil
	kv.data["lf:catalog:summary"] = "{not json"
	_, ok = cache.Get(context.Background())
	assert.False(t, ok)
}

func TestLocalSummaryCacheExpires(t *testing.T) {
	cache := NewLocalSummaryCache(20*time.Millisecond, nil)
	ctx := context.Background()
	cache.Set(ctx, &Summary{Counts: Counts{Total: 1}})

	got, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.EqualValues(t, 1, got.Counts.Total)

	assert.Eventually(t, func() bool {
		_, ok := cache.Get(ctx)
		return !ok
	}, time.Second, 10*time.Millisecond)
}
