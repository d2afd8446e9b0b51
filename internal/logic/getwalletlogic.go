package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/internal/svc"
	"yidino-api/internal/types"
	"yidino-api/pkg/format"
	"yidino-api/pkg/wallet"
)

const balanceDecimals = 4

type GetWalletLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
	now    func() time.Time
}

func NewGetWalletLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetWalletLogic {
	return &GetWalletLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
		now:    time.Now,
	}
}

func (l *GetWalletLogic) GetWallet(req *types.WalletRequest) (resp *types.WalletResponse, err error) {
	filter, err := parseTradeFilter(req)
	if err != nil {
		l.svcCtx.Metrics.RecordWalletLookup("invalid")
		return nil, err
	}

	report, err := l.svcCtx.Wallets.Lookup(l.ctx, req.Address)
	switch {
	case errors.Is(err, wallet.ErrInvalidAddress):
		l.svcCtx.Metrics.RecordWalletLookup("invalid")
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	case err != nil:
		l.svcCtx.Metrics.RecordWalletLookup("error")
		return nil, err
	case report.Mock:
		l.svcCtx.Metrics.RecordWalletLookup("mock")
	default:
		l.svcCtx.Metrics.RecordWalletLookup("ok")
	}

	now := l.now()
	trades := wallet.FilterTrades(report.Trades, now, filter)
	views := make([]types.TradeView, 0, len(trades))
	for _, tx := range trades {
		views = append(views, types.TradeView{TransactionRecord: tx, TimeAgo: format.TimeAgo(tx.Time(), now)})
	}

	address := strings.TrimSpace(req.Address)
	return &types.WalletResponse{
		Address:      address,
		ShortAddress: format.ShortAddress(address),
		Balance:      format.Sol(report.Info.Lamports, balanceDecimals),
		Info:         report.Info,
		Metrics:      report.Metrics,
		ByTimeframe:  report.ByTimeframe,
		Trades:       views,
		Mock:         report.Mock,
		FetchedAt:    report.FetchedAt,
	}, nil
}

func parseTradeFilter(req *types.WalletRequest) (wallet.TradeFilter, error) {
	var f wallet.TradeFilter
	switch t := wallet.TxType(strings.ToLower(req.Type)); t {
	case "", "all":
	case wallet.TxBuy, wallet.TxSell, wallet.TxSwap:
		f.Type = t
	default:
		return f, fmt.Errorf("%w: unknown trade type %q", ErrBadRequest, req.Type)
	}
	switch tf := strings.ToLower(req.Timeframe); tf {
	case "", "all":
	default:
		parsed, ok := wallet.ParseTimeframe(tf)
		if !ok {
			return f, fmt.Errorf("%w: unknown timeframe %q", ErrBadRequest, req.Timeframe)
		}
		f.Timeframe = parsed
	}
	switch s := wallet.SortKey(strings.ToLower(req.Sort)); s {
	case "", wallet.SortByDate, wallet.SortByPnL, wallet.SortByROI:
		f.Sort = s
	default:
		return f, fmt.Errorf("%w: unknown sort %q", ErrBadRequest, req.Sort)
	}
	return f, nil
}
