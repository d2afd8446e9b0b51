package market

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CoinSource yields CoinGecko data, or nil when unavailable.
type CoinSource interface {
	FetchCoin(ctx context.Context) *CoinData
}

// PairSource yields DexScreener pair data, or nil when unavailable.
type PairSource interface {
	FetchPair(ctx context.Context) *PairData
}

// ChainSource yields on-chain mint data, or nil when unavailable.
type ChainSource interface {
	FetchChain(ctx context.Context) *ChainData
}

// Fetcher produces one bundle per call. The scheduler depends on this rather
// than on *Aggregator so alternative fan-outs can be plugged in.
type Fetcher interface {
	Aggregate(ctx context.Context) (*Bundle, error)
}

// Aggregator runs every configured source concurrently and joins the results.
type Aggregator struct {
	coin  CoinSource
	pair  PairSource
	chain ChainSource
	now   func() time.Time
}

// AggregatorOption customises an Aggregator.
type AggregatorOption func(*Aggregator)

// WithCoinSource sets the CoinGecko source.
func WithCoinSource(src CoinSource) AggregatorOption {
	return func(a *Aggregator) {
		a.coin = src
	}
}

// WithPairSource sets the DexScreener source.
func WithPairSource(src PairSource) AggregatorOption {
	return func(a *Aggregator) {
		a.pair = src
	}
}

// WithChainSource sets the Solana RPC source.
func WithChainSource(src ChainSource) AggregatorOption {
	return func(a *Aggregator) {
		a.chain = src
	}
}

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAggregator constructs an Aggregator. Sources left unset stay nil in the bundle.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate fans out to all sources and waits for every one of them. Source
// failures are already folded into nil results; the only error returned is a
// panic recovered from a source.
func (a *Aggregator) Aggregate(ctx context.Context) (*Bundle, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		bundle   Bundle
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	run := func(name string, fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("market: source %s panicked: %v", name, r)
					}
					mu.Unlock()
				}
			}()
			fn()
		}()
	}

	if a.coin != nil {
		run(SourceCoinGecko, func() { bundle.CoinGecko = a.coin.FetchCoin(ctx) })
	}
	if a.pair != nil {
		run(SourceDexScreener, func() { bundle.DexScreener = a.pair.FetchPair(ctx) })
	}
	if a.chain != nil {
		run(SourceSolana, func() { bundle.Solana = a.chain.FetchChain(ctx) })
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	bundle.FetchedAt = a.now()
	return &bundle, nil
}
