package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	snapshotpersist "yidino-api/internal/persistence/snapshot"
	"yidino-api/internal/svc"
	"yidino-api/internal/types"
	"yidino-api/pkg/format"
	"yidino-api/pkg/market"
)

type SnapshotFramesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSnapshotFramesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SnapshotFramesLogic {
	return &SnapshotFramesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// SnapshotFrames animates the headline numbers of the latest snapshot from
// the values of the snapshot it replaced, or from zero after the first cycle.
func (l *SnapshotFramesLogic) SnapshotFrames(req *types.SnapshotFramesRequest) (resp *types.SnapshotFramesResponse, err error) {
	s := l.svcCtx.MarketPoller
	if req.Poller == "dex" {
		if s = l.svcCtx.DexPoller; s == nil {
			return nil, ErrDexDisabled
		}
	}
	st := s.State()
	if st.Snapshot == nil {
		return nil, snapshotpersist.ErrNoSnapshot
	}

	board := l.svcCtx.Stats
	target := displayFields(st.Snapshot)
	display := make(map[string]string, len(target))
	for name, v := range target {
		display[name] = format.StatCompact(v)
	}
	return &types.SnapshotFramesResponse{
		Poller:  s.Name(),
		Steps:   board.Steps(),
		From:    displayFields(st.Previous),
		Frames:  board.Transition(displayFields(st.Previous), target),
		Display: display,
	}, nil
}

func displayFields(s *market.Snapshot) map[string]float64 {
	if s == nil {
		return map[string]float64{}
	}
	return map[string]float64{
		"price":       s.Price,
		"marketCap":   s.MarketCap,
		"volume24h":   s.Volume24h,
		"liquidity":   s.Liquidity,
		"holderCount": float64(s.HolderCount),
		"txns24h":     float64(s.Txns24h),
	}
}
