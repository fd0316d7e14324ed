package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"swapstats-api/internal/svc"
	"swapstats-api/internal/types"
	"swapstats-api/pkg/coins"
)

type OrderbookLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewOrderbookLogic(ctx context.Context, svcCtx *svc.ServiceContext) *OrderbookLogic {
	return &OrderbookLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Orderbook returns the merged book of a pair in canonical orientation.
// Cold pairs get the empty template while a refresh runs in the background.
func (l *OrderbookLogic) Orderbook(req *types.OrderbookRequest) (*types.Orderbook, error) {
	pair, err := coins.ParsePair(req.Pair)
	if err != nil {
		return nil, err
	}
	depth := req.Depth
	if depth <= 0 {
		depth = l.svcCtx.Config.Cache.OrderbookDepth
	}
	book := l.svcCtx.Calc.Orderbook(l.ctx, pair, depth)
	return &book, nil
}
