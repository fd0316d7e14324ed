package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"swapstats-api/internal/logic"
	"swapstats-api/internal/svc"
	"swapstats-api/internal/types"
)

func OrderbookHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.OrderbookRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, badRequest(err))
			return
		}

		l := logic.NewOrderbookLogic(r.Context(), svcCtx)
		resp, err := l.Orderbook(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
