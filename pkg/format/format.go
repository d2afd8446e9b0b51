// Package format renders market and wallet numbers for display.
package format

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const lamportsPerSOL = 1_000_000_000

func fixed(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return decimal.NewFromFloat(v).StringFixed(int32(decimals))
}

// Compact abbreviates num with a B, M or K suffix and the given number of
// decimals.
func Compact(num float64, decimals int) string {
	switch {
	case num >= 1e9:
		return fixed(num/1e9, decimals) + "B"
	case num >= 1e6:
		return fixed(num/1e6, decimals) + "M"
	case num >= 1e3:
		return fixed(num/1e3, decimals) + "K"
	}
	return fixed(num, decimals)
}

// StatCompact is the stats board variant: two decimals for millions, one for
// thousands, and the plain value below that.
func StatCompact(num float64) string {
	switch {
	case num >= 1e6:
		return fixed(num/1e6, 2) + "M"
	case num >= 1e3:
		return fixed(num/1e3, 1) + "K"
	}
	return decimal.NewFromFloat(num).String()
}

// Sol converts lamports to SOL.
func Sol(lamports int64, decimals int) string {
	return decimal.NewFromInt(lamports).Div(decimal.NewFromInt(lamportsPerSOL)).StringFixed(int32(decimals))
}

// TimeAgo describes how long before now t was.
func TimeAgo(t, now time.Time) string {
	seconds := int64(now.Sub(t) / time.Second)
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds ago", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dhr ago", seconds/3600)
	}
	return fmt.Sprintf("%dd ago", seconds/86400)
}

// ShortAddress keeps the first six and last four characters of addr.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
