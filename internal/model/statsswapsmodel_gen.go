package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/stores/builder"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var (
	statsSwapsFieldNames = builder.RawFieldNames(&StatsSwaps{}, true)
	statsSwapsRows       = strings.Join(statsSwapsFieldNames, ",")
)

type (
	statsSwapsModel interface {
		FindOneByUuid(ctx context.Context, uuid string) (*StatsSwaps, error)
	}

	defaultStatsSwapsModel struct {
		conn  sqlx.SqlConn
		table string
	}

	StatsSwaps struct {
		Id                int64               `db:"id"`
		MakerCoin         string              `db:"maker_coin"`
		TakerCoin         string              `db:"taker_coin"`
		Uuid              string              `db:"uuid"`
		StartedAt         int64               `db:"started_at"`
		FinishedAt        int64               `db:"finished_at"`
		MakerAmount       decimal.Decimal     `db:"maker_amount"`
		TakerAmount       decimal.Decimal     `db:"taker_amount"`
		IsSuccess         int64               `db:"is_success"`
		MakerCoinTicker   string              `db:"maker_coin_ticker"`
		MakerCoinPlatform string              `db:"maker_coin_platform"`
		TakerCoinTicker   string              `db:"taker_coin_ticker"`
		TakerCoinPlatform string              `db:"taker_coin_platform"`
		MakerCoinUsdPrice decimal.NullDecimal `db:"maker_coin_usd_price"`
		TakerCoinUsdPrice decimal.NullDecimal `db:"taker_coin_usd_price"`
	}
)

func newStatsSwapsModel(conn sqlx.SqlConn) *defaultStatsSwapsModel {
	return &defaultStatsSwapsModel{
		conn:  conn,
		table: `"public"."stats_swaps"`,
	}
}

func (m *defaultStatsSwapsModel) FindOneByUuid(ctx context.Context, uuid string) (*StatsSwaps, error) {
	var resp StatsSwaps
	query := fmt.Sprintf("select %s from %s where uuid = $1 limit 1", statsSwapsRows, m.table)
	err := m.conn.QueryRowCtx(ctx, &resp, query, uuid)
	switch {
	case err == nil:
		return &resp, nil
	case errors.Is(err, sqlx.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *defaultStatsSwapsModel) tableName() string {
	return m.table
}
