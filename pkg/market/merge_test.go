package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDexOnly(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	snap := Merge(&Bundle{
		DexScreener: &PairData{Price: 0.0001, Liquidity: 50000, Txns24h: 120},
		FetchedAt:   at,
	})
	assert.Equal(t, 0.0001, snap.Price)
	assert.Equal(t, 50000.0, snap.Liquidity)
	assert.Equal(t, int64(120), snap.Txns24h)
	assert.Zero(t, snap.MarketCap)
	assert.Zero(t, snap.CirculatingSupply)
	assert.Zero(t, snap.TotalSupply)
	assert.Equal(t, at, snap.FetchedAt)
	assert.Equal(t, []string{SourceDexScreener}, snap.Sources)
}

func TestMergePrecedence(t *testing.T) {
	b := &Bundle{
		CoinGecko: &CoinData{
			Price: 0.5, PriceChange24h: 1, MarketCap: 1e6, Volume24h: 100,
			TotalSupply: 2e9, CirculatingSupply: 1e9, TwitterFollowers: 7,
		},
		DexScreener: &PairData{Price: 0.6, Volume24h: 0, Liquidity: 10, Txns24h: 3, PriceChange1h: -2},
		Solana:      &ChainData{TotalSupply: 3e9, Decimals: 6, HolderCount: 20},
	}
	snap := Merge(b)
	assert.Equal(t, 0.6, snap.Price, "dexscreener price wins")
	assert.Equal(t, 1.0, snap.PriceChange24h, "coingecko fills a zero dex change")
	assert.Equal(t, 100.0, snap.Volume24h, "coingecko fills a zero dex volume")
	assert.Equal(t, 1e6, snap.MarketCap)
	assert.Equal(t, 2e9, snap.TotalSupply, "coingecko supply preferred over chain")
	assert.Equal(t, -2.0, snap.PriceChange1h)
	assert.Equal(t, 6, snap.Decimals)
	assert.Equal(t, 20, snap.HolderCount)
	assert.Equal(t, int64(7), snap.TwitterFollowers)
	assert.Equal(t, []string{SourceCoinGecko, SourceDexScreener, SourceSolana}, snap.Sources)
	assert.True(t, snap.HasSource(SourceSolana))
}

func TestMergeChainSupplyFallback(t *testing.T) {
	snap := Merge(&Bundle{CoinGecko: &CoinData{Price: 1}, Solana: &ChainData{TotalSupply: 42}})
	assert.Equal(t, 42.0, snap.TotalSupply)
	assert.Equal(t, 1.0, snap.Price)
}

func TestMergeEmpty(t *testing.T) {
	for _, b := range []*Bundle{nil, {}} {
		snap := Merge(b)
		require.NotNil(t, snap.Sources)
		assert.Empty(t, snap.Sources)
		assert.Zero(t, snap.Price)
		assert.False(t, snap.HasSource(SourceCoinGecko))
	}
	var nilSnap *Snapshot
	assert.False(t, nilSnap.HasSource(SourceCoinGecko))
}
