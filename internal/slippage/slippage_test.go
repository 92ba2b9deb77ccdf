package slippage

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SlippageTestSuite struct {
	suite.Suite
	security *securities.Security
}

func TestSlippageSuite(t *testing.T) {
	suite.Run(t, new(SlippageTestSuite))
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func (suite *SlippageTestSuite) SetupTest() {
	suite.security = securities.NewSecurity(
		types.Symbol{Value: "SPY", SecurityType: types.SecurityTypeEquity},
		types.SymbolProperties{QuoteCurrency: "USD", MinimumPriceVariation: dec("0.01")},
		securities.NewAlwaysOpenHours(nil),
	)
	suite.security.SetMarketPrice(dec("100"))
}

func (suite *SlippageTestSuite) order(quantity string) *types.Order {
	return types.NewMarketOrder(1, "SPY", dec(quantity), time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC), "")
}

func (suite *SlippageTestSuite) TestModels() {
	tests := []struct {
		name     string
		model    securities.SlippageModel
		quantity string
		expected string
	}{
		{"null", NewNullSlippageModel(), "100", "0"},
		{"constant", NewConstantSlippageModel(dec("0.05")), "100", "0.05"},
		{"constant is unsigned", NewConstantSlippageModel(dec("-0.05")), "-100", "0.05"},
		{"percent", NewPercentSlippageModel(dec("0.001")), "100", "0.1"},
		{"percent rounds up to tick", NewPercentSlippageModel(dec("0.00001")), "100", "0.01"},
		{"log quantity", NewLogQuantitySlippageModel(), "50", "0.02"},
		{"log quantity of a sell", NewLogQuantitySlippageModel(), "-500", "0.03"},
		{"log quantity of a single share", NewLogQuantitySlippageModel(), "0.5", "0"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := tc.model.GetSlippageApproximation(suite.security, suite.order(tc.quantity))
			suite.True(dec(tc.expected).Equal(result.Round(8)), result.String())
		})
	}
}

func (suite *SlippageTestSuite) TestGetSlippageModel() {
	suite.IsType(&ConstantSlippageModel{}, GetSlippageModel(KindConstant, dec("1")))
	suite.IsType(&PercentSlippageModel{}, GetSlippageModel(KindPercent, dec("0.01")))
	suite.IsType(&LogQuantitySlippageModel{}, GetSlippageModel(KindLogQuantity, decimal.Zero))
	suite.IsType(&NullSlippageModel{}, GetSlippageModel(KindNull, decimal.Zero))
	suite.IsType(&NullSlippageModel{}, GetSlippageModel(Kind("unknown"), decimal.Zero))
	suite.Len(AllKinds, 4)
}
