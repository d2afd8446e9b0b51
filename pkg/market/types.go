package market

import "time"

// CoinData is the CoinGecko coin-detail view of the token.
type CoinData struct {
	Price             float64 `json:"price"`
	PriceChange24h    float64 `json:"priceChange24h"` // percent
	MarketCap         float64 `json:"marketCap"`
	Volume24h         float64 `json:"volume24h"`
	TotalSupply       float64 `json:"totalSupply"`
	CirculatingSupply float64 `json:"circulatingSupply"`
	TwitterFollowers  int64   `json:"twitterFollowers"`
	TelegramUsers     int64   `json:"telegramUsers"`
	RedditSubscribers int64   `json:"redditSubscribers"`
}

// PairData is the first DexScreener pair listed for the token.
type PairData struct {
	Price          float64 `json:"price"`
	PriceChange24h float64 `json:"priceChange24h"`
	PriceChange1h  float64 `json:"priceChange1h"`
	Volume24h      float64 `json:"volume24h"`
	Liquidity      float64 `json:"liquidity"` // USD
	Txns24h        int64   `json:"txns24h"`   // Buys24h + Sells24h
	Buys24h        int64   `json:"buys24h"`
	Sells24h       int64   `json:"sells24h"`
	FDV            float64 `json:"fdv"`
	PairAddress    string  `json:"pairAddress"`
	DexID          string  `json:"dexId"`
}

// ChainData is the on-chain view of the token mint.
type ChainData struct {
	TotalSupply float64  `json:"totalSupply"`
	Decimals    int      `json:"decimals"`
	TopHolders  []Holder `json:"topHolders"`
	HolderCount int      `json:"holderCount"`
}

// Holder is one entry of getTokenLargestAccounts.
type Holder struct {
	Address  string  `json:"address"`
	Amount   string  `json:"amount"`
	Decimals int     `json:"decimals"`
	UIAmount float64 `json:"uiAmount"`
}

// Bundle is the joined result of one fan-out. A nil field means the source
// was not configured or failed.
type Bundle struct {
	CoinGecko   *CoinData  `json:"coinGecko"`
	DexScreener *PairData  `json:"dexScreener"`
	Solana      *ChainData `json:"solana"`
	FetchedAt   time.Time  `json:"fetchedAt"`
}

// Source names recorded in Snapshot.Sources.
const (
	SourceCoinGecko   = "coingecko"
	SourceDexScreener = "dexscreener"
	SourceSolana      = "solana"
)

// Snapshot is the merged market view of a single poll cycle. It is built once
// by Merge and never modified afterwards.
type Snapshot struct {
	Price             float64 `json:"price"`
	PriceChange24h    float64 `json:"priceChange24h"`
	PriceChange1h     float64 `json:"priceChange1h"`
	MarketCap         float64 `json:"marketCap"`
	Volume24h         float64 `json:"volume24h"`
	TotalSupply       float64 `json:"totalSupply"`
	CirculatingSupply float64 `json:"circulatingSupply"`
	Liquidity         float64 `json:"liquidity"`
	Txns24h           int64   `json:"txns24h"`
	Buys24h           int64   `json:"buys24h"`
	Sells24h          int64   `json:"sells24h"`
	FDV               float64 `json:"fdv"`

	HolderCount int    `json:"holderCount"`
	Decimals    int    `json:"decimals"`
	PairAddress string `json:"pairAddress,omitempty"`
	DexID       string `json:"dexId,omitempty"`

	TwitterFollowers  int64 `json:"twitterFollowers"`
	TelegramUsers     int64 `json:"telegramUsers"`
	RedditSubscribers int64 `json:"redditSubscribers"`

	Sources   []string  `json:"sources"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// HasSource reports whether the named source contributed to the snapshot.
func (s *Snapshot) HasSource(name string) bool {
	if s == nil {
		return false
	}
	for _, src := range s.Sources {
		if src == name {
			return true
		}
	}
	return false
}
