package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"swapstats-api/internal/logic"
	"swapstats-api/internal/svc"
	"swapstats-api/internal/types"
)

func TickersHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TickersRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, badRequest(err))
			return
		}

		l := logic.NewTickersLogic(r.Context(), svcCtx)
		resp, err := l.Tickers(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

func TickersSummaryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewTickersLogic(r.Context(), svcCtx)
		resp, err := l.Summary()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
