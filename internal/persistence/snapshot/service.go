package snapshotpersist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"

	cachekeys "yidino-api/internal/cache"
	"yidino-api/internal/model"
	"yidino-api/pkg/market"
)

// ErrNoSnapshot is returned when neither Redis nor Postgres has a snapshot.
var ErrNoSnapshot = errors.New("snapshotpersist: no snapshot recorded")

var _ market.Persistence = (*Service)(nil)

// Service mirrors merged snapshots into Postgres (history) and Redis (latest
// value). Either store may be absent.
type Service struct {
	poller string
	model  model.MarketSnapshotsModel
	cache  gocache.Cache
	ttl    cachekeys.TTLSet
	now    func() time.Time
}

// Config enumerates the dependencies of the service.
type Config struct {
	Poller string
	Model  model.MarketSnapshotsModel
	Cache  gocache.Cache
	TTL    cachekeys.TTLSet
}

// NewService wires a snapshot persistence service. Returns nil when there is
// nothing to persist to.
func NewService(cfg Config) *Service {
	if cfg.Model == nil && cfg.Cache == nil {
		return nil
	}
	poller := cfg.Poller
	if poller == "" {
		poller = "market"
	}
	return &Service{
		poller: poller,
		model:  cfg.Model,
		cache:  cfg.Cache,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

// ForPoller returns a copy of the service that records under another poller
// name.
func (s *Service) ForPoller(name string) *Service {
	if s == nil {
		return nil
	}
	cp := *s
	cp.poller = name
	return &cp
}

// RecordSnapshot inserts a history row and refreshes the latest-value keys.
// Cache failures are logged; a database failure is returned.
func (s *Service) RecordSnapshot(ctx context.Context, snapshot *market.Snapshot) error {
	if s == nil || snapshot == nil {
		return nil
	}
	if s.model != nil {
		if _, err := s.model.Insert(ctx, rowFromSnapshot(s.poller, snapshot)); err != nil {
			return err
		}
	}
	s.cacheSnapshot(ctx, snapshot)
	return nil
}

func (s *Service) cacheSnapshot(ctx context.Context, snapshot *market.Snapshot) {
	if s.cache == nil {
		return
	}
	if ttl := cachekeys.SnapshotTTL(s.ttl); ttl > 0 {
		key := cachekeys.SnapshotLatestKey(s.poller)
		if err := s.cache.SetWithExpireCtx(ctx, key, snapshot, ttl); err != nil {
			logx.WithContext(ctx).Errorf("snapshotpersist: cache snapshot key=%s err=%v", key, err)
		}
	}
	if ttl := cachekeys.PriceTTL(s.ttl); ttl > 0 && snapshot.Price > 0 {
		key := cachekeys.PriceLatestKey()
		payload := map[string]any{
			"price":  snapshot.Price,
			"ts":     snapshot.FetchedAt.UnixMilli(),
			"poller": s.poller,
		}
		if err := s.cache.SetWithExpireCtx(ctx, key, payload, ttl); err != nil {
			logx.WithContext(ctx).Errorf("snapshotpersist: cache price key=%s err=%v", key, err)
		}
	}
}

// Latest returns the newest recorded snapshot, from Redis when present and
// otherwise from Postgres.
func (s *Service) Latest(ctx context.Context) (*market.Snapshot, error) {
	if s == nil {
		return nil, ErrNoSnapshot
	}
	if s.cache != nil {
		var snap market.Snapshot
		err := s.cache.GetCtx(ctx, cachekeys.SnapshotLatestKey(s.poller), &snap)
		switch {
		case err == nil:
			return &snap, nil
		case !s.cache.IsNotFound(err):
			logx.WithContext(ctx).Errorf("snapshotpersist: load cached snapshot poller=%s err=%v", s.poller, err)
		}
	}
	if s.model == nil {
		return nil, ErrNoSnapshot
	}
	row, err := s.model.Latest(ctx, s.poller)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	snap := snapshotFromRow(row)
	s.cacheSnapshot(ctx, snap)
	return snap, nil
}

// History returns snapshots fetched within the trailing window, newest
// first.
func (s *Service) History(ctx context.Context, window time.Duration, limit int) ([]market.Snapshot, error) {
	if s == nil || s.model == nil {
		return []market.Snapshot{}, nil
	}
	rows, err := s.model.History(ctx, s.poller, s.now().Add(-window), limit)
	if err != nil {
		return nil, err
	}
	out := make([]market.Snapshot, 0, len(rows))
	for i := range rows {
		out = append(out, *snapshotFromRow(&rows[i]))
	}
	return out, nil
}

// Prune drops history older than retention.
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if s == nil || s.model == nil || retention <= 0 {
		return 0, nil
	}
	return s.model.DeleteBefore(ctx, s.now().Add(-retention))
}

func rowFromSnapshot(poller string, snap *market.Snapshot) *model.MarketSnapshots {
	row := &model.MarketSnapshots{
		Poller:            poller,
		Price:             snap.Price,
		PriceChange24h:    snap.PriceChange24h,
		PriceChange1h:     snap.PriceChange1h,
		MarketCap:         snap.MarketCap,
		Volume24h:         snap.Volume24h,
		TotalSupply:       snap.TotalSupply,
		CirculatingSupply: snap.CirculatingSupply,
		Liquidity:         snap.Liquidity,
		Txns24h:           snap.Txns24h,
		HolderCount:       int64(snap.HolderCount),
		Sources:           append([]string{}, snap.Sources...),
		FetchedAt:         snap.FetchedAt.UTC(),
	}
	if raw, err := json.Marshal(snap); err == nil {
		row.Raw = sql.NullString{String: string(raw), Valid: true}
	}
	return row
}

// snapshotFromRow prefers the raw payload, which carries every field.
func snapshotFromRow(row *model.MarketSnapshots) *market.Snapshot {
	if row.Raw.Valid {
		var snap market.Snapshot
		if err := json.Unmarshal([]byte(row.Raw.String), &snap); err == nil {
			return &snap
		}
	}
	return &market.Snapshot{
		Price:             row.Price,
		PriceChange24h:    row.PriceChange24h,
		PriceChange1h:     row.PriceChange1h,
		MarketCap:         row.MarketCap,
		Volume24h:         row.Volume24h,
		TotalSupply:       row.TotalSupply,
		CirculatingSupply: row.CirculatingSupply,
		Liquidity:         row.Liquidity,
		Txns24h:           row.Txns24h,
		HolderCount:       int(row.HolderCount),
		Sources:           append([]string{}, row.Sources...),
		FetchedAt:         row.FetchedAt,
	}
}
