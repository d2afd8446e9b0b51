// Package indicators derives trend statistics from a recorded price series.
package indicators

import (
	"math"

	"yidino-api/pkg/market"
)

const (
	DefaultEMAPeriod = 20
	DefaultRSIPeriod = 14
)

// EMA returns the exponential moving average of prices, seeded with the simple
// average of the first full window. Entries before the seed are NaN, and a NaN
// price carries the previous average forward.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) == 0 {
		return []float64{}
	}
	out := nanSeries(len(prices))
	seedAt := firstFullWindow(prices, period)
	if seedAt < 0 {
		return out
	}

	sum := 0.0
	for _, p := range prices[seedAt-period+1 : seedAt+1] {
		sum += p
	}
	out[seedAt] = sum / float64(period)

	k := 2.0 / float64(period+1)
	for i := seedAt + 1; i < len(prices); i++ {
		if math.IsNaN(prices[i]) {
			out[i] = out[i-1]
			continue
		}
		out[i] = out[i-1] + k*(prices[i]-out[i-1])
	}
	return out
}

// firstFullWindow is the index closing the first window of period
// consecutive non-NaN prices, or -1.
func firstFullWindow(prices []float64, period int) int {
	run := 0
	for i, p := range prices {
		if math.IsNaN(p) {
			run = 0
			continue
		}
		run++
		if run >= period {
			return i
		}
	}
	return -1
}

// RSI returns Wilder's relative strength index. The first period entries are
// NaN.
func RSI(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) == 0 {
		return []float64{}
	}
	out := nanSeries(len(prices))
	if len(prices) <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i < len(prices); i++ {
		gain, loss := split(prices[i] - prices[i-1])
		switch {
		case i < period:
			avgGain += gain
			avgLoss += loss
			continue
		case i == period:
			avgGain = (avgGain + gain) / float64(period)
			avgLoss = (avgLoss + loss) / float64(period)
		default:
			avgGain = (avgGain*float64(period-1) + gain) / float64(period)
			avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		}
		out[i] = strength(avgGain, avgLoss)
	}
	return out
}

func split(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func strength(avgGain, avgLoss float64) float64 {
	switch {
	case avgGain == 0 && avgLoss == 0:
		return 50
	case avgLoss == 0:
		return 100
	case avgGain == 0:
		return 0
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Prices extracts the price series, oldest first, from snapshots ordered
// newest first. Snapshots without a price become NaN gaps.
func Prices(newestFirst []market.Snapshot) []float64 {
	out := make([]float64, len(newestFirst))
	for i, snap := range newestFirst {
		p := snap.Price
		if p <= 0 {
			p = math.NaN()
		}
		out[len(out)-1-i] = p
	}
	return out
}

// Summary is the latest value of each indicator. Fields are nil until the
// series is long enough.
type Summary struct {
	Samples   int      `json:"samples"`
	First     *float64 `json:"first,omitempty"`
	Last      *float64 `json:"last,omitempty"`
	ChangePct *float64 `json:"changePct,omitempty"`
	EMA       *float64 `json:"ema,omitempty"`
	RSI       *float64 `json:"rsi,omitempty"`
}

// Summarize computes a Summary over an oldest-first price series.
func Summarize(prices []float64, emaPeriod, rsiPeriod int) Summary {
	s := Summary{Samples: len(prices)}
	first, last := math.NaN(), math.NaN()
	for _, p := range prices {
		if math.IsNaN(p) {
			continue
		}
		if math.IsNaN(first) {
			first = p
		}
		last = p
	}
	s.First = finite(first)
	s.Last = finite(last)
	if s.First != nil && first != 0 {
		s.ChangePct = finite((last - first) / first * 100)
	}
	if ema := EMA(prices, emaPeriod); len(ema) > 0 {
		s.EMA = finite(ema[len(ema)-1])
	}
	if rsi := RSI(prices, rsiPeriod); len(rsi) > 0 {
		s.RSI = finite(rsi[len(rsi)-1])
	}
	return s
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
