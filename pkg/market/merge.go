package market

// Merge folds a bundle into a Snapshot. DexScreener is the primary source for
// trading figures; CoinGecko fills whatever DexScreener left at zero and owns
// market cap, circulating supply and the community counters. Total supply
// prefers CoinGecko and falls back to the on-chain value.
func Merge(b *Bundle) Snapshot {
	if b == nil {
		return Snapshot{Sources: []string{}}
	}
	snap := Snapshot{
		FetchedAt: b.FetchedAt,
		Sources:   make([]string, 0, 3),
	}

	if cg := b.CoinGecko; cg != nil {
		snap.Price = cg.Price
		snap.PriceChange24h = cg.PriceChange24h
		snap.MarketCap = cg.MarketCap
		snap.Volume24h = cg.Volume24h
		snap.TotalSupply = cg.TotalSupply
		snap.CirculatingSupply = cg.CirculatingSupply
		snap.TwitterFollowers = cg.TwitterFollowers
		snap.TelegramUsers = cg.TelegramUsers
		snap.RedditSubscribers = cg.RedditSubscribers
		snap.Sources = append(snap.Sources, SourceCoinGecko)
	}

	if dex := b.DexScreener; dex != nil {
		snap.Price = firstNonZero(dex.Price, snap.Price)
		snap.PriceChange24h = firstNonZero(dex.PriceChange24h, snap.PriceChange24h)
		snap.Volume24h = firstNonZero(dex.Volume24h, snap.Volume24h)
		snap.PriceChange1h = dex.PriceChange1h
		snap.Liquidity = dex.Liquidity
		snap.Txns24h = dex.Txns24h
		snap.Buys24h = dex.Buys24h
		snap.Sells24h = dex.Sells24h
		snap.FDV = dex.FDV
		snap.PairAddress = dex.PairAddress
		snap.DexID = dex.DexID
		snap.Sources = append(snap.Sources, SourceDexScreener)
	}

	if chain := b.Solana; chain != nil {
		snap.TotalSupply = firstNonZero(snap.TotalSupply, chain.TotalSupply)
		snap.HolderCount = chain.HolderCount
		snap.Decimals = chain.Decimals
		snap.Sources = append(snap.Sources, SourceSolana)
	}

	return snap
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
