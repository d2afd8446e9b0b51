package wallet

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeMetrics folds the buy and sell records of txs into performance
// metrics. Sums are exact, so any permutation of txs gives the same result.
// Non-finite pnl or solAmount values count as zero.
func ComputeMetrics(txs []TransactionRecord) PerformanceMetrics {
	var (
		m        PerformanceMetrics
		realized = decimal.Zero
		invested = decimal.Zero
	)
	for _, tx := range txs {
		if !tx.Type.IsTrade() {
			continue
		}
		m.TotalTrades++
		if tx.PnL > 0 {
			m.WinningTrades++
		} else {
			m.LosingTrades++
		}
		realized = realized.Add(finite(tx.PnL))
		invested = invested.Add(finite(tx.SolAmount))
	}

	m.RealizedPnL = realized.InexactFloat64()
	if !invested.IsZero() {
		m.ROI = realized.Div(invested).Mul(hundred).InexactFloat64()
	}
	if m.TotalTrades > 0 {
		m.WinRate = decimal.NewFromInt(int64(m.WinningTrades)).
			Div(decimal.NewFromInt(int64(m.TotalTrades))).
			Mul(hundred).
			InexactFloat64()
	}
	return m
}

func finite(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// Within returns the records whose timestamp is no older than d before now.
func Within(txs []TransactionRecord, now time.Time, d time.Duration) []TransactionRecord {
	cutoff := now.Add(-d).UnixMilli()
	out := make([]TransactionRecord, 0, len(txs))
	for _, tx := range txs {
		if tx.TimestampMs >= cutoff {
			out = append(out, tx)
		}
	}
	return out
}

// ByTimeframe computes metrics for each trailing window ending at now.
func ByTimeframe(txs []TransactionRecord, now time.Time) map[Timeframe]PerformanceMetrics {
	out := make(map[Timeframe]PerformanceMetrics, len(Timeframes))
	for _, tf := range Timeframes {
		out[tf] = ComputeMetrics(Within(txs, now, tf.Duration()))
	}
	return out
}

// SortKey orders a trade listing.
type SortKey string

const (
	SortByPnL  SortKey = "pnl"
	SortByROI  SortKey = "roi"
	SortByDate SortKey = "date"
)

// TradeFilter narrows a trade listing.
type TradeFilter struct {
	Type      TxType // empty means all types
	Timeframe Timeframe
	Sort      SortKey
}

// FilterTrades applies f to txs and returns a new slice, leaving txs intact.
// Sorting is descending for every key; unknown keys sort by date.
func FilterTrades(txs []TransactionRecord, now time.Time, f TradeFilter) []TransactionRecord {
	out := make([]TransactionRecord, 0, len(txs))
	window := f.Timeframe.Duration()
	cutoff := now.Add(-window).UnixMilli()
	for _, tx := range txs {
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if window > 0 && tx.TimestampMs < cutoff {
			continue
		}
		out = append(out, tx)
	}

	switch f.Sort {
	case SortByPnL:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PnL > out[j].PnL })
	case SortByROI:
		sort.SliceStable(out, func(i, j int) bool { return tradeROI(out[i]) > tradeROI(out[j]) })
	default:
		SortNewestFirst(out)
	}
	return out
}

func tradeROI(tx TransactionRecord) float64 {
	if tx.SolAmount == 0 {
		return 0
	}
	return tx.PnL / tx.SolAmount * 100
}

// SortNewestFirst orders txs by timestamp, most recent first, in place.
func SortNewestFirst(txs []TransactionRecord) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].TimestampMs > txs[j].TimestampMs })
}
