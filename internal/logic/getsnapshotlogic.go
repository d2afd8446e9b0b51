package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/internal/svc"
	"yidino-api/internal/types"
	"yidino-api/pkg/poller"
)

type GetSnapshotLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetSnapshotLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetSnapshotLogic {
	return &GetSnapshotLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// GetSnapshot returns the market poll state. Before the first cycle lands the
// last persisted snapshot is served instead.
func (l *GetSnapshotLogic) GetSnapshot() (resp *types.PollStateResponse, err error) {
	st := l.svcCtx.MarketPoller.State()
	if st.Snapshot == nil && l.svcCtx.Snapshots != nil {
		if latest, lerr := l.svcCtx.Snapshots.Latest(l.ctx); lerr == nil {
			st.Snapshot = latest
		} else {
			l.Debugf("no persisted snapshot: %v", lerr)
		}
	}
	return pollState(l.svcCtx.MarketPoller, st), nil
}

func pollState(s *poller.Scheduler, st poller.State) *types.PollStateResponse {
	return &types.PollStateResponse{
		Poller:   s.Name(),
		Interval: s.Interval().String(),
		State:    st,
	}
}
