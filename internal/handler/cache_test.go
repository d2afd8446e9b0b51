package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"

	cachekeys "yidino-api/internal/cache"
	"yidino-api/internal/types"
	"yidino-api/pkg/market"
	"yidino-api/pkg/market/social"
	"yidino-api/pkg/poller"
)

var errCacheMiss = errors.New("cache miss")

type memCache struct {
	gocache.Cache

	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) SetWithExpireCtx(_ context.Context, key string, val any, expire time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	c.ttls[key] = expire
	return nil
}

func (c *memCache) GetCtx(_ context.Context, key string, val any) error {
	c.mu.Lock()
	b, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return errCacheMiss
	}
	return json.Unmarshal(b, val)
}

func (c *memCache) IsNotFound(err error) bool { return errors.Is(err, errCacheMiss) }

type countingSocial struct {
	twitterCalls  atomic.Int32
	telegramCalls atomic.Int32
	failTelegram  bool
}

func (s *countingSocial) FetchTwitter(context.Context) *social.TwitterMetrics {
	s.twitterCalls.Add(1)
	return &social.TwitterMetrics{Username: "YiDino", Followers: 125678}
}

func (s *countingSocial) FetchTelegram(context.Context) *social.TelegramMetrics {
	s.telegramCalls.Add(1)
	if s.failTelegram {
		return nil
	}
	return &social.TelegramMetrics{ChatID: "@yidino", MemberCount: 9001}
}

func TestSocialCachedForSocialTTL(t *testing.T) {
	svcCtx := newTestContext(t)
	c := newMemCache()
	src := &countingSocial{}
	svcCtx.Cache = c
	svcCtx.Social = social.NewCollector(src, src)

	for i := 0; i < 3; i++ {
		w := serve(getSocialHandler(svcCtx), http.MethodGet, "/api/social", nil)
		require.Equal(t, http.StatusOK, w.Code)
		stats := decode[social.Stats](t, w)
		require.NotNil(t, stats.Twitter)
		assert.Equal(t, int64(125678), stats.Twitter.Followers)
		require.NotNil(t, stats.Telegram)
		assert.Equal(t, int64(9001), stats.Telegram.MemberCount)
	}
	assert.Equal(t, int32(1), src.twitterCalls.Load(), "later requests served from cache")
	assert.Equal(t, cachekeys.SocialTTL(svcCtx.TTL), c.ttls[cachekeys.SocialStatsKey()])
}

func TestSocialPartialResultNotCached(t *testing.T) {
	svcCtx := newTestContext(t)
	c := newMemCache()
	src := &countingSocial{failTelegram: true}
	svcCtx.Cache = c
	svcCtx.Social = social.NewCollector(src, src)

	for i := 0; i < 2; i++ {
		w := serve(getSocialHandler(svcCtx), http.MethodGet, "/api/social", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, decode[social.Stats](t, w).Telegram)
	}
	assert.Equal(t, int32(2), src.telegramCalls.Load())
	assert.NotContains(t, c.data, cachekeys.SocialStatsKey())
}

type pricedFetcher struct {
	n atomic.Int32
}

func (f *pricedFetcher) Aggregate(context.Context) (*market.Bundle, error) {
	n := float64(f.n.Add(1))
	return &market.Bundle{DexScreener: &market.PairData{Price: n * 0.0001, Liquidity: n * 1000}}, nil
}

func TestSnapshotFrames(t *testing.T) {
	svcCtx := newTestContext(t)

	w := serve(snapshotFramesHandler(svcCtx), http.MethodGet, "/api/snapshot/frames", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "nothing fetched yet")

	svcCtx.MarketPoller = poller.New(&pricedFetcher{})
	t.Cleanup(svcCtx.MarketPoller.Stop)

	_, err := svcCtx.MarketPoller.Refetch(context.Background())
	require.NoError(t, err)
	w = serve(snapshotFramesHandler(svcCtx), http.MethodGet, "/api/snapshot/frames", nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[types.SnapshotFramesResponse](t, w)
	assert.Equal(t, "market", first.Poller)
	require.Len(t, first.Frames["liquidity"], first.Steps)
	assert.Zero(t, first.From["liquidity"], "first transition starts from zero")
	assert.Equal(t, 1000.0, first.Frames["liquidity"][first.Steps-1])
	assert.Equal(t, "1.0K", first.Display["liquidity"])

	_, err = svcCtx.MarketPoller.Refetch(context.Background())
	require.NoError(t, err)
	w = serve(snapshotFramesHandler(svcCtx), http.MethodGet, "/api/snapshot/frames", nil)
	second := decode[types.SnapshotFramesResponse](t, w)
	assert.Equal(t, 1000.0, second.From["liquidity"])
	frames := second.Frames["liquidity"]
	assert.Greater(t, frames[0], 1000.0)
	assert.Equal(t, 2000.0, frames[len(frames)-1])
	for i := 1; i < len(frames); i++ {
		assert.GreaterOrEqual(t, frames[i], frames[i-1])
	}

	w = serve(snapshotFramesHandler(svcCtx), http.MethodGet, "/api/snapshot/frames?poller=dex", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
