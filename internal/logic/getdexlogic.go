package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/internal/svc"
	"yidino-api/internal/types"
)

type GetDexLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetDexLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetDexLogic {
	return &GetDexLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetDexLogic) GetDex() (resp *types.PollStateResponse, err error) {
	s := l.svcCtx.DexPoller
	if s == nil {
		return nil, ErrDexDisabled
	}
	return pollState(s, s.State()), nil
}
