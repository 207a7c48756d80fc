package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	data    map[string]string
	failGet bool
	failSet bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if f.failSet {
		return errors.New("redis down")
	}
	f.data[key] = string(value.([]byte))
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if f.failGet {
		return "", errors.New("redis down")
	}
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeStore) DelByPattern(_ context.Context, pattern string) (int64, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var removed int64
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			delete(f.data, k)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeStore) KeyCount(context.Context) (int64, error) {
	return int64(len(f.data)), nil
}

func (f *fakeStore) CacheKey(parts ...string) string {
	return "pfl:cache:" + strings.Join(parts, ":")
}

func (f *fakeStore) CachePattern(family string) string {
	return "pfl:cache:" + family + "*"
}

func newTestCache(st store) *Cache {
	return &Cache{store: st, ttl: 5 * time.Minute, enabled: true}
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(newFakeStore())

	type payload struct {
		Name string `json:"name"`
	}

	require.True(t, c.Set(ctx, FamilyProjects, "list:all", payload{Name: "alpha"}))

	var got payload
	require.True(t, c.Get(ctx, FamilyProjects, "list:all", &got))
	require.Equal(t, "alpha", got.Name)

	stats := c.Stats(ctx)
	require.True(t, stats.Enabled)
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(1), stats.Keys)
}

func TestCacheMissReturnsFalse(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(newFakeStore())

	var dest map[string]any
	require.False(t, c.Get(ctx, FamilySkills, "list", &dest))
	require.Equal(t, int64(1), c.Stats(ctx).Misses)
}

func TestCacheFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.failGet = true
	st.failSet = true
	c := newTestCache(st)

	require.False(t, c.Set(ctx, FamilyHero, "active", map[string]string{"h": "x"}))
	var dest map[string]string
	require.False(t, c.Get(ctx, FamilyHero, "active", &dest))
}

func TestCacheInvalidateDropsOnlyFamily(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	c := newTestCache(st)

	require.True(t, c.Set(ctx, FamilyProjects, "list", "a"))
	require.True(t, c.Set(ctx, FamilyProjects, "detail:1", "b"))
	require.True(t, c.Set(ctx, FamilySkills, "list", "c"))

	c.Invalidate(ctx, FamilyProjects)

	var dest string
	require.False(t, c.Get(ctx, FamilyProjects, "list", &dest))
	require.False(t, c.Get(ctx, FamilyProjects, "detail:1", &dest))
	require.True(t, c.Get(ctx, FamilySkills, "list", &dest))
}

func TestCacheFlushDropsEverything(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(newFakeStore())

	c.Set(ctx, FamilyProjects, "list", "a")
	c.Set(ctx, FamilySkills, "list", "b")

	require.Equal(t, int64(2), c.Flush(ctx))
	require.Equal(t, int64(0), c.Stats(ctx).Keys)
}

func TestDisabledCacheIsInert(t *testing.T) {
	ctx := context.Background()
	c := &Cache{enabled: false}

	require.False(t, c.Set(ctx, FamilyProjects, "list", "a"))
	var dest string
	require.False(t, c.Get(ctx, FamilyProjects, "list", &dest))
	c.Invalidate(ctx, FamilyProjects)
	require.Zero(t, c.Flush(ctx))
	require.False(t, c.Stats(ctx).Enabled)
}
