package types

import (
	"time"

	"yidino-api/pkg/animator"
	"yidino-api/pkg/market"
	"yidino-api/pkg/market/indicators"
	"yidino-api/pkg/poller"
	"yidino-api/pkg/synthetic"
	"yidino-api/pkg/wallet"
)

type PollStateResponse struct {
	Poller   string `json:"poller"`
	Interval string `json:"interval"`
	poller.State
}

type HistoryRequest struct {
	Poller string `form:"poller,default=market,options=market|dex"`
	Window string `form:"window,default=24h"`
	Limit  int    `form:"limit,default=100,range=[1:500]"`
}

type HistoryResponse struct {
	Poller     string             `json:"poller"`
	Window     string             `json:"window"`
	Indicators indicators.Summary `json:"indicators"`
	Snapshots  []market.Snapshot  `json:"snapshots"`
}

type SnapshotFramesRequest struct {
	Poller string `form:"poller,default=market,options=market|dex"`
}

type SnapshotFramesResponse struct {
	Poller  string               `json:"poller"`
	Steps   int                  `json:"steps"`
	From    map[string]float64   `json:"from"`
	Frames  map[string][]float64 `json:"frames"`
	Display map[string]string    `json:"display"`
}

type WalletRequest struct {
	Address   string `path:"address"`
	Type      string `form:"type,optional"`
	Timeframe string `form:"timeframe,optional"`
	Sort      string `form:"sort,optional"`
}

type TradeView struct {
	wallet.TransactionRecord
	TimeAgo string `json:"timeAgo"`
}

type WalletResponse struct {
	Address      string                                         `json:"address"`
	ShortAddress string                                         `json:"shortAddress"`
	Balance      string                                         `json:"balance"`
	Info         wallet.Info                                    `json:"info"`
	Metrics      wallet.PerformanceMetrics                      `json:"metrics"`
	ByTimeframe  map[wallet.Timeframe]wallet.PerformanceMetrics `json:"byTimeframe"`
	Trades       []TradeView                                    `json:"trades"`
	Mock         bool                                           `json:"mock"`
	FetchedAt    time.Time                                      `json:"fetchedAt"`
}

type TrackedRequest struct {
	Address string `path:"address"`
}

type TrackedResponse struct {
	Wallets []string `json:"wallets"`
	Changed bool     `json:"changed"`
}

type LeaderboardRequest struct {
	Timeframe string `form:"timeframe,optional"`
}

type LeaderboardResponse struct {
	Timeframe string                       `json:"timeframe"`
	Entries   []synthetic.LeaderboardEntry `json:"entries"`
}

type TrendingResponse struct {
	Tokens []synthetic.TrendingToken `json:"tokens"`
}

type ScanRequest struct {
	Address string `path:"address"`
}

type FramesResponse struct {
	Counters []animator.Counter `json:"counters"`
	Frames   []animator.Frame   `json:"frames"`
	// Display holds the final frame formatted for the stats board.
	Display map[string]string `json:"display"`
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
