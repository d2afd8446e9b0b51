package logic

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/internal/svc"
	"yidino-api/internal/types"
	"yidino-api/pkg/synthetic"
	"yidino-api/pkg/wallet"
)

type LeaderboardLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewLeaderboardLogic(ctx context.Context, svcCtx *svc.ServiceContext) *LeaderboardLogic {
	return &LeaderboardLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *LeaderboardLogic) Leaderboard(req *types.LeaderboardRequest) (resp *types.LeaderboardResponse, err error) {
	var tf wallet.Timeframe
	if req.Timeframe != "" {
		parsed, ok := wallet.ParseTimeframe(req.Timeframe)
		if !ok {
			return nil, fmt.Errorf("%w: unknown timeframe %q", ErrBadRequest, req.Timeframe)
		}
		tf = parsed
	}
	entries, err := l.svcCtx.Leaderboard.Leaderboard(l.ctx, tf)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []synthetic.LeaderboardEntry{}
	}
	return &types.LeaderboardResponse{Timeframe: string(tf), Entries: entries}, nil
}

func (l *LeaderboardLogic) Trending() (resp *types.TrendingResponse, err error) {
	return &types.TrendingResponse{Tokens: synthetic.TrendingTokens()}, nil
}
