package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"swapstats-api/internal/logic"
	"swapstats-api/internal/svc"
)

func PairVolumesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return entryHandler(svcCtx, func(l *logic.EntriesLogic) (any, error) { return l.PairVolumes() })
}

func CoinVolumesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return entryHandler(svcCtx, func(l *logic.EntriesLogic) (any, error) { return l.CoinVolumes() })
}

func LastTradedHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return entryHandler(svcCtx, func(l *logic.EntriesLogic) (any, error) { return l.LastTraded() })
}

func FixerRatesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return entryHandler(svcCtx, func(l *logic.EntriesLogic) (any, error) { return l.FixerRates() })
}

func CacheHealthHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return entryHandler(svcCtx, func(l *logic.EntriesLogic) (any, error) { return l.Health() })
}

func entryHandler(svcCtx *svc.ServiceContext, fn func(*logic.EntriesLogic) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := fn(logic.NewEntriesLogic(r.Context(), svcCtx))
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
