package scenario

import (
	"context"
	"path/filepath"

	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
)

func (suite *ScenarioTestSuite) TestRunStats() {
	scenario, handler := suite.prepare(scenarioYAML)

	result, err := NewRunner(handler, scenario, nil).Run(context.Background(), scenario.InlineBars())
	suite.Require().NoError(err)

	stats := NewRunStats(&result, "USD", "scenario.yaml")
	suite.NotEmpty(stats.ID)
	suite.Equal(4, stats.Slices)
	suite.Equal(OrderCounts{Open: 0, Filled: 1, Partial: 0, Canceled: 1, Invalid: 1}, stats.Orders)

	path := filepath.Join(suite.T().TempDir(), StatsFileName)
	suite.Require().NoError(WriteRunStats(path, stats))

	read, err := ReadRunStats(path)
	suite.Require().NoError(err)
	suite.Equal(stats.ID, read.ID)
	suite.Equal(stats.Orders, read.Orders)
	suite.Equal("scenario.yaml", read.ScenarioPath)
	suite.True(read.Cash.Equal(decimal.NewFromInt(8990)), read.Cash.String())
	suite.True(read.TotalPortfolioValue.Equal(decimal.NewFromInt(10020)))
}

func (suite *ScenarioTestSuite) TestReadRunStatsMissingFile() {
	_, err := ReadRunStats(filepath.Join(suite.T().TempDir(), StatsFileName))

	suite.True(errors.HasCode(err, errors.ErrCodeEventLogFailed))
}
