package logic

import (
	"context"
	"errors"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/internal/svc"
	"yidino-api/internal/types"
	"yidino-api/pkg/poller"
)

type RefetchSnapshotLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRefetchSnapshotLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RefetchSnapshotLogic {
	return &RefetchSnapshotLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// RefetchSnapshot runs a market cycle now. A failed cycle is reported through
// the returned state, not as an HTTP error.
func (l *RefetchSnapshotLogic) RefetchSnapshot() (resp *types.PollStateResponse, err error) {
	s := l.svcCtx.MarketPoller
	st, err := s.Refetch(l.ctx)
	if errors.Is(err, poller.ErrStopped) {
		return nil, err
	}
	if err != nil {
		l.Infof("refetch cycle failed: %v", err)
	}
	return pollState(s, st), nil
}
