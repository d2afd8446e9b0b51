package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/internal/svc"
	"yidino-api/internal/types"
	"yidino-api/pkg/market"
	"yidino-api/pkg/market/indicators"
)

const maxHistoryWindow = 30 * 24 * time.Hour

type SnapshotHistoryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSnapshotHistoryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SnapshotHistoryLogic {
	return &SnapshotHistoryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *SnapshotHistoryLogic) SnapshotHistory(req *types.HistoryRequest) (resp *types.HistoryResponse, err error) {
	window, err := time.ParseDuration(req.Window)
	if err != nil || window <= 0 || window > maxHistoryWindow {
		return nil, fmt.Errorf("%w: window must be a duration up to %s", ErrBadRequest, maxHistoryWindow)
	}
	resp = &types.HistoryResponse{
		Poller:    req.Poller,
		Window:    window.String(),
		Snapshots: []market.Snapshot{},
	}
	if l.svcCtx.Snapshots == nil {
		return resp, nil
	}
	snaps, err := l.svcCtx.Snapshots.ForPoller(req.Poller).History(l.ctx, window, req.Limit)
	if err != nil {
		l.Errorf("snapshot history poller=%s: %v", req.Poller, err)
		return nil, err
	}
	resp.Snapshots = snaps
	resp.Indicators = indicators.Summarize(indicators.Prices(snaps), indicators.DefaultEMAPeriod, indicators.DefaultRSIPeriod)
	return resp, nil
}
