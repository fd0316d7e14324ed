package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"swapstats-api/internal/model"
	"swapstats-api/pkg/coins"
	"swapstats-api/pkg/retry"
	"swapstats-api/pkg/ticker"
)

// SwapsRepo reads swap history. Every query is retried with backoff and a
// final failure is reported as coins.ErrSourceUnavailable.
type SwapsRepo interface {
	// Between returns successful swaps finished in (since, until].
	Between(ctx context.Context, since, until time.Time) ([]ticker.Swap, error)
	// ForVariants returns successful swaps of any variant, in either
	// recorded direction.
	ForVariants(ctx context.Context, variants []coins.Pair, since, until time.Time) ([]ticker.Swap, error)
	// LastTraded returns the latest successful swap of every recorded pair.
	LastTraded(ctx context.Context) (ticker.LastTradedMap, error)
	// ActivePairs lists recorded pairs with successful swaps since.
	ActivePairs(ctx context.Context, since time.Time) ([]coins.Pair, error)
	// Count returns the number of successful swaps since.
	Count(ctx context.Context, since time.Time) (int64, error)
}

type swapsRepo struct {
	model model.StatsSwapsModel
	retry *retry.Handler
}

func newSwapsRepo(deps Dependencies) SwapsRepo {
	return &swapsRepo{model: deps.StatsSwapsModel, retry: deps.Retry}
}

func (r *swapsRepo) do(ctx context.Context, op string, fn func() error) error {
	if err := r.retry.Do(ctx, fn); err != nil {
		logx.WithContext(ctx).Errorf("repo: swaps %s failed attempts=%d err=%v", op, r.retry.Attempts(), err)
		return fmt.Errorf("repo: swaps %s: %w: %v", op, coins.ErrSourceUnavailable, err)
	}
	return nil
}

func (r *swapsRepo) Between(ctx context.Context, since, until time.Time) ([]ticker.Swap, error) {
	var rows []model.StatsSwaps
	err := r.do(ctx, "between", func() error {
		var err error
		rows, err = r.model.SuccessfulBetween(ctx, since.Unix(), until.Unix())
		return err
	})
	if err != nil {
		return nil, err
	}
	return toSwaps(rows), nil
}

func (r *swapsRepo) ForVariants(ctx context.Context, variants []coins.Pair, since, until time.Time) ([]ticker.Swap, error) {
	bases, quotes := variantSides(variants)
	var rows []model.StatsSwaps
	err := r.do(ctx, "for_variants", func() error {
		var err error
		rows, err = r.model.SuccessfulForCoins(ctx, since.Unix(), until.Unix(), bases, quotes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toSwaps(rows), nil
}

func (r *swapsRepo) LastTraded(ctx context.Context) (ticker.LastTradedMap, error) {
	var rows []model.StatsSwaps
	err := r.do(ctx, "last_traded", func() error {
		var err error
		rows, err = r.model.LastTraded(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make(ticker.LastTradedMap, len(rows))
	for _, row := range rows {
		pair := coins.NewPair(row.MakerCoin, row.TakerCoin)
		lt := ticker.LastTrade{
			Pair:      pair.String(),
			UUID:      row.Uuid,
			Timestamp: row.FinishedAt,
		}
		if !row.MakerAmount.IsZero() {
			lt.Price = row.TakerAmount.DivRound(row.MakerAmount, 18)
		}
		out[lt.Pair] = lt
	}
	return out, nil
}

func (r *swapsRepo) ActivePairs(ctx context.Context, since time.Time) ([]coins.Pair, error) {
	var rows []model.PairActivity
	err := r.do(ctx, "active_pairs", func() error {
		var err error
		rows, err = r.model.ActivePairs(ctx, since.Unix())
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]coins.Pair, 0, len(rows))
	for _, row := range rows {
		out = append(out, coins.NewPair(row.MakerCoin, row.TakerCoin))
	}
	return out, nil
}

func (r *swapsRepo) Count(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.do(ctx, "count", func() error {
		var err error
		n, err = r.model.CountSuccessful(ctx, since.Unix())
		return err
	})
	return n, err
}

func variantSides(variants []coins.Pair) (bases, quotes []string) {
	seenBase := make(map[string]struct{}, len(variants))
	seenQuote := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		if _, ok := seenBase[v.Base.Ticker()]; !ok {
			seenBase[v.Base.Ticker()] = struct{}{}
			bases = append(bases, v.Base.Ticker())
		}
		if _, ok := seenQuote[v.Quote.Ticker()]; !ok {
			seenQuote[v.Quote.Ticker()] = struct{}{}
			quotes = append(quotes, v.Quote.Ticker())
		}
	}
	return bases, quotes
}

func toSwaps(rows []model.StatsSwaps) []ticker.Swap {
	out := make([]ticker.Swap, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.Uuid)
		if err != nil {
			logx.Debugf("repo: swap uuid=%q not parseable: %v", row.Uuid, err)
		}
		out = append(out, ticker.Swap{
			UUID:        id,
			MakerCoin:   row.MakerCoin,
			TakerCoin:   row.TakerCoin,
			MakerAmount: row.MakerAmount,
			TakerAmount: row.TakerAmount,
			IsSuccess:   row.IsSuccess == 1,
			StartedAt:   time.Unix(row.StartedAt, 0),
			FinishedAt:  time.Unix(row.FinishedAt, 0),
		})
	}
	return out
}
