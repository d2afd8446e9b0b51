package synthetic

import (
	"context"
	"sort"

	"yidino-api/pkg/format"
	"yidino-api/pkg/wallet"
)

// Trend is the direction a ranking moved.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

type LeaderboardEntry struct {
	Rank        int              `json:"rank"`
	Wallet      string           `json:"wallet"`
	Address     string           `json:"fullAddress"`
	RealizedPnL float64          `json:"realizedPnl"`
	ROI         float64          `json:"roi"`
	Trades      int              `json:"trades"`
	WinRate     float64          `json:"winRate"`
	Timeframe   wallet.Timeframe `json:"timeframe"`
	Trend       Trend            `json:"trend"`
}

// LeaderboardProvider ranks top traders.
type LeaderboardProvider interface {
	Leaderboard(ctx context.Context, tf wallet.Timeframe) ([]LeaderboardEntry, error)
}

// StaticLeaderboard serves a fixed ranking.
type StaticLeaderboard struct {
	entries []LeaderboardEntry
}

var _ LeaderboardProvider = (*StaticLeaderboard)(nil)

// NewStaticLeaderboard serves entries, or the default fixture when entries is
// empty. Entries without a wallet label get one derived from the address.
func NewStaticLeaderboard(entries ...LeaderboardEntry) *StaticLeaderboard {
	if len(entries) == 0 {
		entries = defaultLeaderboard()
	}
	out := make([]LeaderboardEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].Wallet == "" {
			out[i].Wallet = shortLabel(out[i].Address)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return &StaticLeaderboard{entries: out}
}

// Leaderboard returns the entries for tf in rank order. An empty tf returns
// every entry.
func (s *StaticLeaderboard) Leaderboard(ctx context.Context, tf wallet.Timeframe) ([]LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if tf == "" || e.Timeframe == tf {
			out = append(out, e)
		}
	}
	return out, nil
}

// shortLabel keeps four characters each side, the leaderboard style.
func shortLabel(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}

func defaultLeaderboard() []LeaderboardEntry {
	return []LeaderboardEntry{
		{Rank: 1, Wallet: "J7wR...2xKp", Address: "J7wR8jK2xKp9mL3qR5sT7uV9wX1yZ3aB5cD7eF9gH2xKp", RealizedPnL: 1250000, ROI: 324, Trades: 487, WinRate: 68.5, Timeframe: wallet.Timeframe30d, Trend: TrendUp},
		{Rank: 2, Wallet: "K9mQ...5pLx", Address: "K9mQ3nR7sT1uV5wX9yZ2aB4cD6eF8gH0jK2lM4nO6pLx", RealizedPnL: 890000, ROI: 287, Trades: 234, WinRate: 65.2, Timeframe: wallet.Timeframe30d, Trend: TrendUp},
		{Rank: 3, Wallet: "L4nP...8rQy", Address: "L4nP2oQ6rS8tU0vW4xY6zAcD8eF0gH2jK4lM6nO8pQy", RealizedPnL: 654000, ROI: 245, Trades: 156, WinRate: 62.1, Timeframe: wallet.Timeframe30d, Trend: TrendDown},
	}
}

type TrendingToken struct {
	Address        string  `json:"address"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	Holders        int64   `json:"holders"`
	Volume24h      float64 `json:"volume24h"`
	Volume24hLabel string  `json:"volume24hLabel"`
	PriceChange24h float64 `json:"priceChange24h"`
	Trend          Trend   `json:"trend"`
}

// TrendingTokens returns the fixed trending list, highest volume first.
func TrendingTokens() []TrendingToken {
	tokens := []TrendingToken{
		{Address: "EPjFWaLb3odcccccccccccccccccccccccccccccccc", Name: "USDC", Symbol: "USDC", Holders: 125000, Volume24h: 45_000_000, PriceChange24h: 0.02, Trend: TrendUp},
		{Address: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BEnLc", Name: "Wrapped USDT", Symbol: "USDT", Holders: 98000, Volume24h: 38_000_000, PriceChange24h: 0.01, Trend: TrendUp},
		{Address: "MangoCzJ36AjZyKwVj3VnYU4GTonjfVEnJmvvWaxLac", Name: "Mango", Symbol: "MNGO", Holders: 45000, Volume24h: 12_000_000, PriceChange24h: 5.2, Trend: TrendUp},
	}
	for i := range tokens {
		tokens[i].Volume24hLabel = format.Compact(tokens[i].Volume24h, 2)
	}
	return tokens
}
