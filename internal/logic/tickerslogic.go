package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"swapstats-api/internal/svc"
	"swapstats-api/internal/types"
	"swapstats-api/pkg/ticker"
)

type TickersLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewTickersLogic(ctx context.Context, svcCtx *svc.ServiceContext) *TickersLogic {
	return &TickersLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Tickers serves the cached ticker set of a window, or an empty set while
// the entry is cold. Unknown windows are rejected.
func (l *TickersLogic) Tickers(req *types.TickersRequest) (*types.TickerSet, error) {
	w, err := l.svcCtx.Calc.Window(req.Window)
	if err != nil {
		return nil, err
	}
	set, ok := l.svcCtx.Calc.Tickers(l.ctx, w)
	if !ok {
		l.Infof("tickers: entry cold window=%s", w.Suffix())
		set = ticker.NewTickerSet(w, l.svcCtx.Calc.Now(), nil)
	}
	return &set, nil
}

// Summary serves the root-pair summary.
func (l *TickersLogic) Summary() (*types.TickerSet, error) {
	set, ok := l.svcCtx.Calc.Summary(l.ctx)
	if !ok {
		set = ticker.NewTickerSet(ticker.Day, l.svcCtx.Calc.Now(), nil)
	}
	return &set, nil
}
