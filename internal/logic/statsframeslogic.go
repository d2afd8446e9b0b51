package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/internal/svc"
	"yidino-api/internal/types"
	"yidino-api/pkg/format"
)

type StatsFramesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewStatsFramesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *StatsFramesLogic {
	return &StatsFramesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// StatsFrames returns the whole intro sequence at once, for clients that
// animate locally.
func (l *StatsFramesLogic) StatsFrames() (resp *types.FramesResponse, err error) {
	board := l.svcCtx.Stats
	frames := board.IntroFrames()
	display := make(map[string]string)
	if len(frames) > 0 {
		for name, v := range frames[len(frames)-1].Values {
			display[name] = format.StatCompact(v)
		}
	}
	return &types.FramesResponse{
		Counters: board.Counters(),
		Frames:   frames,
		Display:  display,
	}, nil
}
