package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var ErrNotFound = sqlx.ErrNotFound

var _ MarketSnapshotsModel = (*defaultMarketSnapshotsModel)(nil)

const marketSnapshotsColumns = `id, poller, price, price_change_24h, price_change_1h, market_cap, volume_24h,
    total_supply, circulating_supply, liquidity, txns_24h, holder_count, sources, raw, fetched_at, created_at`

// MarketSnapshots is one row of public.market_snapshots.
type MarketSnapshots struct {
	Id                int64          `db:"id"`
	Poller            string         `db:"poller"`
	Price             float64        `db:"price"`
	PriceChange24h    float64        `db:"price_change_24h"`
	PriceChange1h     float64        `db:"price_change_1h"`
	MarketCap         float64        `db:"market_cap"`
	Volume24h         float64        `db:"volume_24h"`
	TotalSupply       float64        `db:"total_supply"`
	CirculatingSupply float64        `db:"circulating_supply"`
	Liquidity         float64        `db:"liquidity"`
	Txns24h           int64          `db:"txns_24h"`
	HolderCount       int64          `db:"holder_count"`
	Sources           pq.StringArray `db:"sources"`
	Raw               sql.NullString `db:"raw"`
	FetchedAt         time.Time      `db:"fetched_at"`
	CreatedAt         time.Time      `db:"created_at"`
}

type (
	// MarketSnapshotsModel stores the merged snapshot history.
	MarketSnapshotsModel interface {
		Insert(ctx context.Context, data *MarketSnapshots) (int64, error)
		Latest(ctx context.Context, poller string) (*MarketSnapshots, error)
		History(ctx context.Context, poller string, since time.Time, limit int) ([]MarketSnapshots, error)
		DeleteBefore(ctx context.Context, before time.Time) (int64, error)
	}

	defaultMarketSnapshotsModel struct {
		conn  sqlx.SqlConn
		table string
	}
)

// NewMarketSnapshotsModel returns a model for the database table.
func NewMarketSnapshotsModel(conn sqlx.SqlConn) MarketSnapshotsModel {
	return &defaultMarketSnapshotsModel{
		conn:  conn,
		table: "public.market_snapshots",
	}
}

// Insert writes a row and returns its id.
func (m *defaultMarketSnapshotsModel) Insert(ctx context.Context, data *MarketSnapshots) (int64, error) {
	query := fmt.Sprintf(`
INSERT INTO %s (
    poller, price, price_change_24h, price_change_1h, market_cap, volume_24h,
    total_supply, circulating_supply, liquidity, txns_24h, holder_count, sources, raw, fetched_at, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
RETURNING id`, m.table)

	var id int64
	err := m.conn.QueryRowCtx(ctx, &id, query,
		data.Poller,
		data.Price,
		data.PriceChange24h,
		data.PriceChange1h,
		data.MarketCap,
		data.Volume24h,
		data.TotalSupply,
		data.CirculatingSupply,
		data.Liquidity,
		data.Txns24h,
		data.HolderCount,
		pq.Array([]string(data.Sources)),
		data.Raw,
		data.FetchedAt,
	)
	if err != nil {
		return 0, err
	}
	data.Id = id
	return id, nil
}

// Latest returns the newest row for poller or ErrNotFound.
func (m *defaultMarketSnapshotsModel) Latest(ctx context.Context, poller string) (*MarketSnapshots, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE poller = $1 ORDER BY fetched_at DESC LIMIT 1`, marketSnapshotsColumns, m.table)
	var resp MarketSnapshots
	err := m.conn.QueryRowCtx(ctx, &resp, query, poller)
	switch {
	case err == nil:
		return &resp, nil
	case errors.Is(err, sqlx.ErrNotFound):
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

// History returns rows fetched at or after since, newest first. Limit
// defaults to 500 when non-positive.
func (m *defaultMarketSnapshotsModel) History(ctx context.Context, poller string, since time.Time, limit int) ([]MarketSnapshots, error) {
	if limit <= 0 {
		limit = 500
	}
	query := fmt.Sprintf(`
SELECT %s FROM %s
WHERE poller = $1 AND fetched_at >= $2
ORDER BY fetched_at DESC
LIMIT $3`, marketSnapshotsColumns, m.table)
	var rows []MarketSnapshots
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, poller, since, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteBefore prunes rows fetched before the cutoff.
func (m *defaultMarketSnapshotsModel) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE fetched_at < $1`, m.table)
	res, err := m.conn.ExecCtx(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
