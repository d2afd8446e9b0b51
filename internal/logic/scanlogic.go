package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/internal/svc"
	"yidino-api/internal/types"
	"yidino-api/pkg/market/solanarpc"
	"yidino-api/pkg/synthetic"
)

type ScanLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewScanLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ScanLogic {
	return &ScanLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Scan returns a synthetic risk report for a token address.
func (l *ScanLogic) Scan(req *types.ScanRequest) (resp *synthetic.ScanResult, err error) {
	res, err := l.svcCtx.RugScanner.Scan(l.ctx, req.Address)
	if errors.Is(err, solanarpc.ErrInvalidAddress) {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return res, err
}
