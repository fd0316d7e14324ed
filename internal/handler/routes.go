// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"swapstats-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/tickers",
				Handler: TickersHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/tickers/summary",
				Handler: TickersSummaryHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/orderbook/:pair",
				Handler: OrderbookHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/volumes/pairs",
				Handler: PairVolumesHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/volumes/coins",
				Handler: CoinVolumesHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/last_traded",
				Handler: LastTradedHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/rates/fixer",
				Handler: FixerRatesHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/cache/health",
				Handler: CacheHealthHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api/v3"),
	)
}
