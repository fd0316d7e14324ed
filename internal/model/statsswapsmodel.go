package model

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ StatsSwapsModel = (*customStatsSwapsModel)(nil)

// PairActivity is one recorded maker/taker combination.
type PairActivity struct {
	MakerCoin string `db:"maker_coin"`
	TakerCoin string `db:"taker_coin"`
	Swaps     int64  `db:"swaps"`
}

type (
	// StatsSwapsModel is an interface to be customized, add more methods here,
	// and implement the added methods in customStatsSwapsModel.
	StatsSwapsModel interface {
		statsSwapsModel
		// SuccessfulBetween returns successful swaps finished in (start, end],
		// newest first.
		SuccessfulBetween(ctx context.Context, start, end int64) ([]StatsSwaps, error)
		// SuccessfulForCoins narrows SuccessfulBetween to swaps trading a coin
		// from bases against a coin from quotes, in either direction.
		SuccessfulForCoins(ctx context.Context, start, end int64, bases, quotes []string) ([]StatsSwaps, error)
		// LastTraded returns the latest successful swap per recorded pair.
		LastTraded(ctx context.Context) ([]StatsSwaps, error)
		// ActivePairs lists recorded pairs with successful swaps since start.
		ActivePairs(ctx context.Context, start int64) ([]PairActivity, error)
		// CountSuccessful counts successful swaps finished since start.
		CountSuccessful(ctx context.Context, start int64) (int64, error)
	}

	customStatsSwapsModel struct {
		*defaultStatsSwapsModel
	}
)

// NewStatsSwapsModel returns a model for the database table.
func NewStatsSwapsModel(conn sqlx.SqlConn) StatsSwapsModel {
	return &customStatsSwapsModel{
		defaultStatsSwapsModel: newStatsSwapsModel(conn),
	}
}

func (m *customStatsSwapsModel) SuccessfulBetween(ctx context.Context, start, end int64) ([]StatsSwaps, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE is_success = 1
  AND finished_at > $1
  AND finished_at <= $2
ORDER BY finished_at DESC`, statsSwapsRows, m.tableName())

	var rows []StatsSwaps
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, start, end); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *customStatsSwapsModel) SuccessfulForCoins(ctx context.Context, start, end int64, bases, quotes []string) ([]StatsSwaps, error) {
	if len(bases) == 0 || len(quotes) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE is_success = 1
  AND finished_at > $1
  AND finished_at <= $2
  AND (
        (maker_coin = ANY($3) AND taker_coin = ANY($4))
     OR (maker_coin = ANY($4) AND taker_coin = ANY($3))
  )
ORDER BY finished_at DESC`, statsSwapsRows, m.tableName())

	var rows []StatsSwaps
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, start, end, bases, quotes); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *customStatsSwapsModel) LastTraded(ctx context.Context) ([]StatsSwaps, error) {
	query := fmt.Sprintf(`
SELECT DISTINCT ON (maker_coin, taker_coin) %s
FROM %s
WHERE is_success = 1
ORDER BY maker_coin, taker_coin, finished_at DESC`, statsSwapsRows, m.tableName())

	var rows []StatsSwaps
	if err := m.conn.QueryRowsCtx(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *customStatsSwapsModel) ActivePairs(ctx context.Context, start int64) ([]PairActivity, error) {
	query := fmt.Sprintf(`
SELECT maker_coin, taker_coin, COUNT(*) AS swaps
FROM %s
WHERE is_success = 1
  AND finished_at > $1
GROUP BY maker_coin, taker_coin
ORDER BY maker_coin, taker_coin`, m.tableName())

	var rows []PairActivity
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, start); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *customStatsSwapsModel) CountSuccessful(ctx context.Context, start int64) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE is_success = 1 AND finished_at > $1`, m.tableName())
	var n int64
	if err := m.conn.QueryRowCtx(ctx, &n, query, start); err != nil {
		return 0, err
	}
	return n, nil
}
