package wallet

import "time"

// TxType classifies a parsed transaction.
type TxType string

const (
	TxBuy  TxType = "buy"
	TxSell TxType = "sell"
	TxSwap TxType = "swap"
)

// IsTrade reports whether the type counts towards performance metrics.
func (t TxType) IsTrade() bool {
	return t == TxBuy || t == TxSell
}

// TransactionRecord is one parsed wallet transaction. Records are read-only
// once built and are held newest first.
type TransactionRecord struct {
	ID          string  `json:"id"`
	Type        TxType  `json:"type"`
	TokenSymbol string  `json:"tokenSymbol"`
	TokenName   string  `json:"tokenName"`
	Amount      float64 `json:"amount"`
	SolAmount   float64 `json:"solAmount"`
	Price       float64 `json:"price"`
	PnL         float64 `json:"pnl"`
	TimestampMs int64   `json:"timestampMs"`
	TxHash      string  `json:"txHash"`
	Platform    string  `json:"platform"`
	Status      string  `json:"status"`
}

// Time returns the block time of the record.
func (r TransactionRecord) Time() time.Time {
	return time.UnixMilli(r.TimestampMs)
}

// PerformanceMetrics is derived from a set of records and never stored.
// UnrealizedPnL is always zero: open positions are not tracked.
type PerformanceMetrics struct {
	RealizedPnL   float64 `json:"realizedPnl"`
	UnrealizedPnL float64 `json:"unrealizedPnl"`
	ROI           float64 `json:"roi"`
	WinRate       float64 `json:"winRate"`
	TotalTrades   int     `json:"totalTrades"`
	WinningTrades int     `json:"winningTrades"`
	LosingTrades  int     `json:"losingTrades"`
}

// TokenHolding is an SPL balance reported by the account endpoint.
type TokenHolding struct {
	TokenAddress string  `json:"tokenAddress"`
	TokenSymbol  string  `json:"tokenSymbol"`
	TokenName    string  `json:"tokenName"`
	Amount       float64 `json:"amount"`
}

// Info is the account summary of a wallet.
type Info struct {
	Address  string         `json:"address"`
	Lamports int64          `json:"lamports"`
	Balance  float64        `json:"balance"` // SOL
	Tokens   []TokenHolding `json:"tokens"`
}

// Timeframe names a trailing window used for per-period metrics.
type Timeframe string

const (
	Timeframe1d  Timeframe = "1d"
	Timeframe7d  Timeframe = "7d"
	Timeframe30d Timeframe = "30d"
)

// Timeframes lists the supported windows in ascending order.
var Timeframes = []Timeframe{Timeframe1d, Timeframe7d, Timeframe30d}

// Duration returns the window length, or zero for an unknown timeframe.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case Timeframe1d:
		return 24 * time.Hour
	case Timeframe7d:
		return 7 * 24 * time.Hour
	case Timeframe30d:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// ParseTimeframe maps a user supplied string to a Timeframe.
func ParseTimeframe(s string) (Timeframe, bool) {
	tf := Timeframe(s)
	return tf, tf.Duration() > 0
}

// Report is everything the API returns for one wallet lookup.
type Report struct {
	Info        Info                             `json:"info"`
	Trades      []TransactionRecord              `json:"trades"`
	Metrics     PerformanceMetrics               `json:"metrics"`
	ByTimeframe map[Timeframe]PerformanceMetrics `json:"byTimeframe"`
	Mock        bool                             `json:"mock"`
	FetchedAt   time.Time                        `json:"fetchedAt"`
}
