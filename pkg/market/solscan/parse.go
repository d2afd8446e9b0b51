package solscan

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"yidino-api/pkg/wallet"
)

// RawTransaction is the subset of a Solscan account transaction we read.
type RawTransaction struct {
	TxHash         string           `json:"txHash"`
	BlockTime      int64            `json:"blockTime"`
	Status         string           `json:"status"`
	ProgramID      string           `json:"programId"`
	TokenTransfers []TokenTransfer  `json:"tokenTransfers"`
	NativeTransfer []NativeTransfer `json:"nativeTransfers"`
}

// TokenTransfer is an SPL transfer inside a transaction.
type TokenTransfer struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Source      string  `json:"source"`
	Price       float64 `json:"price"`
	TokenAmount struct {
		UIAmount float64 `json:"uiAmount"`
	} `json:"tokenAmount"`
}

// NativeTransfer is a SOL transfer, in lamports.
type NativeTransfer struct {
	Amount int64 `json:"amount"`
}

// ParseTransactions turns raw Solscan rows into records sorted newest first.
//
// Solscan does not report realized profit, so PnL is an estimate drawn from
// rng in [-45, 55). Trades without a SOL leg get an estimated SolAmount in
// [1, 51). Both are synthetic and only meaningful for demos.
func ParseTransactions(raw []RawTransaction, rng *rand.Rand, now time.Time) []wallet.TransactionRecord {
	out := make([]wallet.TransactionRecord, 0, len(raw))
	for i, tx := range raw {
		rec := wallet.TransactionRecord{
			ID:          tx.TxHash,
			Type:        wallet.TxSwap,
			TokenSymbol: "SOL",
			TokenName:   "Solana",
			TxHash:      tx.TxHash,
			Platform:    "Orca",
			Status:      tx.Status,
		}
		if rec.ID == "" {
			rec.ID = strconv.Itoa(i)
		}
		if rec.TxHash == "" {
			rec.TxHash = "unknown"
		}
		if rec.Status == "" {
			rec.Status = "Success"
		}
		if strings.Contains(strings.ToLower(tx.ProgramID), "raydium") {
			rec.Platform = "Raydium"
		}

		switch {
		case len(tx.TokenTransfers) > 0:
			tt := tx.TokenTransfers[0]
			rec.Amount = math.Abs(tt.TokenAmount.UIAmount)
			rec.TokenSymbol = orDefault(tt.Symbol, "TOKEN")
			rec.TokenName = orDefault(tt.Name, "Unknown Token")
			rec.Price = tt.Price
			// Transfers routed from a Raydium pool are buys.
			if strings.Contains(strings.ToLower(tt.Source), "raydium") {
				rec.Type = wallet.TxBuy
			} else {
				rec.Type = wallet.TxSell
			}
		case len(tx.NativeTransfer) > 0:
			sol := float64(tx.NativeTransfer[0].Amount) / lamportsPerSOL
			rec.Amount = math.Abs(sol)
			rec.SolAmount = sol
		}

		if rec.SolAmount == 0 {
			rec.SolAmount = rng.Float64()*50 + 1
		}
		rec.PnL = (rng.Float64() - 0.45) * 100

		if tx.BlockTime > 0 {
			rec.TimestampMs = tx.BlockTime * 1000
		} else {
			rec.TimestampMs = now.UnixMilli()
		}
		out = append(out, rec)
	}
	wallet.SortNewestFirst(out)
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
