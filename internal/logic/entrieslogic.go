package logic

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"

	"swapstats-api/internal/calc"
	"swapstats-api/internal/svc"
	"swapstats-api/internal/types"
	"swapstats-api/pkg/cachekit"
	"swapstats-api/pkg/ticker"
)

// EntriesLogic serves the cache entries that need no request parameters.
type EntriesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewEntriesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *EntriesLogic {
	return &EntriesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *EntriesLogic) PairVolumes() (*types.PairVolumes, error) {
	out, ok := cachekit.GetAs[types.PairVolumes](l.ctx, l.svcCtx.Calc.Manager(), calc.EntryPairVolumes24hr)
	if !ok {
		out = types.PairVolumes{Window: ticker.Day.Suffix(), Volumes: map[string]ticker.PairVolume{}}
	}
	return &out, nil
}

func (l *EntriesLogic) CoinVolumes() (*types.CoinVolumes, error) {
	out, ok := cachekit.GetAs[types.CoinVolumes](l.ctx, l.svcCtx.Calc.Manager(), calc.EntryCoinVolumes24hr)
	if !ok {
		out = types.CoinVolumes{Window: ticker.Day.Suffix(), Volumes: map[string]ticker.CoinVolume{}}
	}
	return &out, nil
}

func (l *EntriesLogic) LastTraded() (types.LastTraded, error) {
	out, ok := cachekit.GetAs[types.LastTraded](l.ctx, l.svcCtx.Calc.Manager(), calc.EntryPairLastTraded)
	if !ok || out == nil {
		out = types.LastTraded{}
	}
	return out, nil
}

func (l *EntriesLogic) FixerRates() (*types.FixerRates, error) {
	out, ok := cachekit.GetAs[types.FixerRates](l.ctx, l.svcCtx.Calc.Manager(), calc.EntryFixerRates)
	if !ok {
		out = types.FixerRates{Base: "USD"}
	}
	if out.Rates == nil {
		out.Rates = map[string]decimal.Decimal{}
	}
	return &out, nil
}

// Health reports every entry. The service is healthy when no entry is
// uninitialized; stale entries are still served.
func (l *EntriesLogic) Health() (*types.CacheHealthResponse, error) {
	entries := l.svcCtx.Calc.Manager().Health(l.ctx)
	resp := &types.CacheHealthResponse{Healthy: true, Entries: entries}
	for _, e := range entries {
		if e.State == cachekit.StateUninitialized {
			resp.Healthy = false
		}
	}
	return resp, nil
}
