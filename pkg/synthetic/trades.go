package synthetic

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"yidino-api/pkg/wallet"
)

const maxMockTrades = 25

var mockTokens = []struct{ symbol, name string }{
	{"YI", "Yi Dinosaur"},
	{"BONK", "Bonk"},
	{"WIF", "dogwifhat"},
	{"JUP", "Jupiter"},
}

var mockPlatforms = []string{"Raydium", "Orca", "Jupiter"}

// MockTrades is a wallet.Source of random trades, used when no Solscan key is
// configured.
type MockTrades struct {
	rng *lockedRand
	now func() time.Time
}

var _ wallet.Source = (*MockTrades)(nil)

// NewMockTrades constructs the generator; r and now may be nil.
func NewMockTrades(r *rand.Rand, now func() time.Time) *MockTrades {
	if now == nil {
		now = time.Now
	}
	return &MockTrades{rng: newLockedRand(r), now: now}
}

func (m *MockTrades) WalletInfo(ctx context.Context, address string) (*wallet.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var lamports int64
	m.rng.with(func(r *rand.Rand) {
		lamports = r.Int63n(100 * 1_000_000_000)
	})
	return &wallet.Info{
		Address:  address,
		Lamports: lamports,
		Balance:  float64(lamports) / 1e9,
	}, nil
}

// WalletTransactions returns up to limit trades spread over the last 30 days,
// newest first. PnL is drawn from [-45, 55).
func (m *MockTrades) WalletTransactions(ctx context.Context, address string, limit int) ([]wallet.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxMockTrades {
		limit = maxMockTrades
	}
	now := m.now()
	out := make([]wallet.TransactionRecord, 0, limit)
	m.rng.with(func(r *rand.Rand) {
		for i := 0; i < limit; i++ {
			tok := mockTokens[r.Intn(len(mockTokens))]
			typ := wallet.TxBuy
			if r.Intn(2) == 1 {
				typ = wallet.TxSell
			}
			amount := float64(r.Intn(1_000_000) + 1)
			sol := r.Float64()*50 + 1
			ts := now.Add(-time.Duration(r.Float64() * float64(30*24*time.Hour)))
			out = append(out, wallet.TransactionRecord{
				ID:          fmt.Sprintf("mock-%d", i),
				Type:        typ,
				TokenSymbol: tok.symbol,
				TokenName:   tok.name,
				Amount:      amount,
				SolAmount:   sol,
				Price:       sol / amount,
				PnL:         (r.Float64() - 0.45) * 100,
				TimestampMs: ts.UnixMilli(),
				TxHash:      fmt.Sprintf("mock%016x", r.Uint64()),
				Platform:    mockPlatforms[r.Intn(len(mockPlatforms))],
				Status:      "Success",
			})
		}
	})
	wallet.SortNewestFirst(out)
	return out, nil
}
