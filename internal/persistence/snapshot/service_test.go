package snapshotpersist

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"

	cachekeys "yidino-api/internal/cache"
	"yidino-api/internal/config"
	"yidino-api/internal/model"
	"yidino-api/pkg/market"
)

var errCacheMiss = errors.New("cache miss")

// memCache keeps JSON payloads in memory the way the redis-backed cache does.
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

type mockModel struct {
	mock.Mock
}

func (m *mockModel) Insert(ctx context.Context, data *model.MarketSnapshots) (int64, error) {
	args := m.Called(ctx, data)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockModel) Latest(ctx context.Context, poller string) (*model.MarketSnapshots, error) {
	args := m.Called(ctx, poller)
	row, _ := args.Get(0).(*model.MarketSnapshots)
	return row, args.Error(1)
}

func (m *mockModel) History(ctx context.Context, poller string, since time.Time, limit int) ([]model.MarketSnapshots, error) {
	args := m.Called(ctx, poller, since, limit)
	rows, _ := args.Get(0).([]model.MarketSnapshots)
	return rows, args.Error(1)
}

func (m *mockModel) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func sampleSnapshot() *market.Snapshot {
	return &market.Snapshot{
		Price:       0.0001,
		Liquidity:   50000,
		Txns24h:     120,
		HolderCount: 20,
		PairAddress: "pair",
		Sources:     []string{market.SourceDexScreener, market.SourceSolana},
		FetchedAt:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewServiceWithoutStores(t *testing.T) {
	assert.Nil(t, NewService(Config{}))
	var s *Service
	assert.NoError(t, s.RecordSnapshot(context.Background(), sampleSnapshot()))
}

func TestRecordSnapshotWritesBothStores(t *testing.T) {
	m := new(mockModel)
	m.On("Insert", mock.Anything, mock.MatchedBy(func(row *model.MarketSnapshots) bool {
		return row.Poller == "dex" && row.Price == 0.0001 && row.Txns24h == 120 &&
			len(row.Sources) == 2 && row.Raw.Valid
	})).Return(int64(1), nil).Once()

	c := newMemCache()
	ttl := cachekeys.NewTTLSet(config.CacheTTL{})
	s := NewService(Config{Poller: "market", Model: m, Cache: c, TTL: ttl}).ForPoller("dex")

	require.NoError(t, s.RecordSnapshot(context.Background(), sampleSnapshot()))
	m.AssertExpectations(t)

	assert.Contains(t, c.data, cachekeys.SnapshotLatestKey("dex"))
	assert.Equal(t, cachekeys.SnapshotTTL(ttl), c.ttls[cachekeys.SnapshotLatestKey("dex")])
	var price map[string]any
	require.NoError(t, json.Unmarshal(c.data[cachekeys.PriceLatestKey()], &price))
	assert.Equal(t, 0.0001, price["price"])

	got, err := s.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)
}

func TestRecordSnapshotDatabaseError(t *testing.T) {
	m := new(mockModel)
	m.On("Insert", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))
	c := newMemCache()
	s := NewService(Config{Model: m, Cache: c})

	assert.Error(t, s.RecordSnapshot(context.Background(), sampleSnapshot()))
	assert.Empty(t, c.data, "cache untouched when the insert fails")
}

func TestLatestFallsBackToDatabase(t *testing.T) {
	snap := sampleSnapshot()
	row := rowFromSnapshot("market", snap)

	m := new(mockModel)
	m.On("Latest", mock.Anything, "market").Return(row, nil).Once()
	c := newMemCache()
	s := NewService(Config{Model: m, Cache: c, TTL: cachekeys.NewTTLSet(config.CacheTTL{})})

	got, err := s.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap, got)
	assert.Contains(t, c.data, cachekeys.SnapshotLatestKey("market"), "database hit re-primes the cache")

	_, err = s.Latest(context.Background())
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestLatestNotFound(t *testing.T) {
	m := new(mockModel)
	m.On("Latest", mock.Anything, "market").Return(nil, model.ErrNotFound)
	s := NewService(Config{Model: m})

	_, err := s.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)

	cacheOnly := NewService(Config{Cache: newMemCache()})
	_, err = cacheOnly.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSnapshotFromRowWithoutRaw(t *testing.T) {
	row := rowFromSnapshot("market", sampleSnapshot())
	row.Raw.Valid = false
	got := snapshotFromRow(row)
	assert.Equal(t, 0.0001, got.Price)
	assert.Equal(t, 20, got.HolderCount)
	assert.Empty(t, got.PairAddress, "column fallback drops fields without a column")
}

func TestHistoryAndPrune(t *testing.T) {
	now := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	rows := []model.MarketSnapshots{*rowFromSnapshot("market", sampleSnapshot())}

	m := new(mockModel)
	m.On("History", mock.Anything, "market", now.Add(-24*time.Hour), 10).Return(rows, nil).Once()
	m.On("DeleteBefore", mock.Anything, now.Add(-30*24*time.Hour)).Return(int64(4), nil).Once()

	s := NewService(Config{Model: m})
	s.now = func() time.Time { return now }

	hist, err := s.History(context.Background(), 24*time.Hour, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, 0.0001, hist[0].Price)

	n, err := s.Prune(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	m.AssertExpectations(t)
}
