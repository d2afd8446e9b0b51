package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/internal/svc"
	"yidino-api/internal/types"
	"yidino-api/pkg/wallet"
)

type TrackedWalletsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewTrackedWalletsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *TrackedWalletsLogic {
	return &TrackedWalletsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *TrackedWalletsLogic) ListTracked() (resp *types.TrackedResponse, err error) {
	return &types.TrackedResponse{Wallets: l.svcCtx.Wallets.Tracked()}, nil
}

func (l *TrackedWalletsLogic) TrackWallet(req *types.TrackedRequest) (resp *types.TrackedResponse, err error) {
	added, err := l.svcCtx.Wallets.Track(req.Address)
	if errors.Is(err, wallet.ErrInvalidAddress) {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if err != nil {
		return nil, err
	}
	if added {
		l.Infof("tracking wallet %s", req.Address)
	}
	return &types.TrackedResponse{Wallets: l.svcCtx.Wallets.Tracked(), Changed: added}, nil
}

func (l *TrackedWalletsLogic) UntrackWallet(req *types.TrackedRequest) (resp *types.TrackedResponse, err error) {
	removed := l.svcCtx.Wallets.Untrack(req.Address)
	return &types.TrackedResponse{Wallets: l.svcCtx.Wallets.Tracked(), Changed: removed}, nil
}
