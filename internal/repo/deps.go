package repo

import (
	"errors"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"swapstats-api/internal/model"
	"swapstats-api/pkg/retry"
)

// Dependencies bundles the models and shared infrastructure required by
// repository implementations.
type Dependencies struct {
	DBConn sqlx.SqlConn
	Retry  *retry.Handler

	StatsSwapsModel model.StatsSwapsModel
}

// Set exposes strongly typed repositories to application logic.
type Set struct {
	Swaps SwapsRepo
}

// New constructs the repository set, validating required dependencies.
func New(deps Dependencies) (*Set, error) {
	if deps.StatsSwapsModel == nil {
		if deps.DBConn == nil {
			return nil, errors.New("repo: missing DBConn dependency")
		}
		deps.StatsSwapsModel = model.NewStatsSwapsModel(deps.DBConn)
	}
	if deps.Retry == nil {
		deps.Retry = retry.NewHandler(retry.Default())
	}
	return &Set{
		Swaps: newSwapsRepo(deps),
	}, nil
}
