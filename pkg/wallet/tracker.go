package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"

	"yidino-api/pkg/market/solanarpc"
)

const (
	DefaultTransactionLimit = 100
	defaultCacheTTL         = 60 * time.Second
	defaultCacheMaxCost     = 1 << 10
)

var (
	// ErrNotConfigured is returned by a Source that lacks credentials.
	ErrNotConfigured = errors.New("wallet: source not configured")
	// ErrInvalidAddress wraps solanarpc.ErrInvalidAddress for wallet lookups.
	ErrInvalidAddress = fmt.Errorf("wallet: %w", solanarpc.ErrInvalidAddress)
	// ErrLookupFailed means the source answered without usable account data.
	ErrLookupFailed = errors.New("wallet: lookup failed")
)

// Source provides account data and parsed transactions for a wallet.
type Source interface {
	WalletInfo(ctx context.Context, address string) (*Info, error)
	WalletTransactions(ctx context.Context, address string, limit int) ([]TransactionRecord, error)
}

// Tracker looks up wallet reports, caches them per address and keeps the set
// of wallets a caller asked to follow.
type Tracker struct {
	source   Source
	fallback Source
	limit    int
	now      func() time.Time
	ttl      time.Duration
	cache    *ristretto.Cache

	mu      sync.RWMutex
	tracked []string
}

// TrackerOption customises a Tracker.
type TrackerOption func(*Tracker)

// WithFallback sets the source used while the primary is not configured.
func WithFallback(src Source) TrackerOption {
	return func(t *Tracker) {
		t.fallback = src
	}
}

// WithTransactionLimit caps how many transactions are requested per lookup.
func WithTransactionLimit(n int) TrackerOption {
	return func(t *Tracker) {
		if n > 0 {
			t.limit = n
		}
	}
}

// WithCacheTTL sets how long a report is served from cache. Zero disables caching.
func WithCacheTTL(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d >= 0 {
			t.ttl = d
		}
	}
}

// WithTrackerClock overrides the clock used for timeframe windows.
func WithTrackerClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker constructs a Tracker on top of source, which may be nil when
// only a fallback is available.
func NewTracker(source Source, opts ...TrackerOption) (*Tracker, error) {
	t := &Tracker{
		source: source,
		limit:  DefaultTransactionLimit,
		now:    time.Now,
		ttl:    defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.ttl > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 1e4,
			MaxCost:     defaultCacheMaxCost,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("wallet: init cache: %w", err)
		}
		t.cache = cache
	}
	return t, nil
}

func normaliseAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if err := solanarpc.ValidateAddress(address); err != nil {
		return "", ErrInvalidAddress
	}
	return address, nil
}

// Lookup returns the report for address, from cache when fresh.
func (t *Tracker) Lookup(ctx context.Context, address string) (*Report, error) {
	address, err := normaliseAddress(address)
	if err != nil {
		return nil, err
	}
	if t.cache != nil {
		if v, ok := t.cache.Get(address); ok {
			if report, ok := v.(*Report); ok {
				return report, nil
			}
		}
	}

	report, err := t.fetch(ctx, t.source, address)
	if errors.Is(err, ErrNotConfigured) && t.fallback != nil {
		report, err = t.fetch(ctx, t.fallback, address)
		if report != nil {
			report.Mock = true
		}
	}
	if err != nil {
		return nil, err
	}
	if t.cache != nil {
		t.cache.SetWithTTL(address, report, 1, t.ttl)
		t.cache.Wait()
	}
	return report, nil
}

func (t *Tracker) fetch(ctx context.Context, src Source, address string) (*Report, error) {
	if src == nil {
		return nil, ErrNotConfigured
	}
	var (
		info *Info
		txs  []TransactionRecord
	)
	err := mr.Finish(func() error {
		var err error
		info, err = src.WalletInfo(ctx, address)
		return err
	}, func() error {
		var err error
		txs, err = src.WalletTransactions(ctx, address, t.limit)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrNotConfigured) {
			logx.WithContext(ctx).Errorf("wallet: lookup address=%s err=%v", address, err)
		}
		return nil, err
	}
	if info == nil {
		return nil, ErrLookupFailed
	}
	if txs == nil {
		txs = []TransactionRecord{}
	}

	now := t.now()
	return &Report{
		Info:        *info,
		Trades:      txs,
		Metrics:     ComputeMetrics(txs),
		ByTimeframe: ByTimeframe(txs, now),
		FetchedAt:   now,
	}, nil
}

// Invalidate drops the cached report for address.
func (t *Tracker) Invalidate(address string) {
	if t.cache != nil {
		t.cache.Del(strings.TrimSpace(address))
	}
}

// Track adds address to the tracked set. It reports false when the address
// was already tracked.
func (t *Tracker) Track(address string) (bool, error) {
	address, err := normaliseAddress(address)
	if err != nil {
		return false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, a := range t.tracked {
		if a == address {
			return false, nil
		}
	}
	t.tracked = append(t.tracked, address)
	return true, nil
}

// Untrack removes address from the tracked set and its cached report.
func (t *Tracker) Untrack(address string) bool {
	address = strings.TrimSpace(address)
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, a := range t.tracked {
		if a == address {
			t.tracked = append(t.tracked[:i:i], t.tracked[i+1:]...)
			t.Invalidate(address)
			return true
		}
	}
	return false
}

// Tracked returns the tracked wallets in insertion order.
func (t *Tracker) Tracked() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.tracked))
	copy(out, t.tracked)
	return out
}

// Close releases the cache.
func (t *Tracker) Close() {
	if t.cache != nil {
		t.cache.Close()
	}
}
