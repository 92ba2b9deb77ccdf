package fees

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type FeeModelTestSuite struct {
	suite.Suite
	security *securities.Security
}

func TestFeeModelSuite(t *testing.T) {
	suite.Run(t, new(FeeModelTestSuite))
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func (suite *FeeModelTestSuite) SetupTest() {
	suite.security = securities.NewSecurity(
		types.Symbol{Value: "SPY", SecurityType: types.SecurityTypeEquity},
		types.SymbolProperties{QuoteCurrency: "USD"},
		securities.NewAlwaysOpenHours(nil),
	)
	suite.security.SetMarketPrice(dec("500"))
}

func (suite *FeeModelTestSuite) order(quantity string) *types.Order {
	return types.NewMarketOrder(1, "SPY", dec(quantity), time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC), "")
}

func (suite *FeeModelTestSuite) TestZeroFeeModel() {
	fee := NewZeroFeeModel()
	suite.NotNil(fee)

	for _, quantity := range []string{"0.5", "10", "10000", "-100"} {
		suite.True(fee.GetOrderFee(suite.security, suite.order(quantity)).IsZero())
	}
}

func (suite *FeeModelTestSuite) TestInteractiveBrokerFeeModel() {
	fee := NewInteractiveBrokerFeeModel()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		quantity string
		expected string
	}{
		{"small quantity - min fee", "10", "1"},
		{"quantity at threshold", "200", "1"},
		{"large quantity", "1000", "5"},
		{"very large quantity", "10000", "50"},
		{"sell uses absolute quantity", "-1000", "5"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := fee.GetOrderFee(suite.security, suite.order(tc.quantity))
			suite.True(dec(tc.expected).Equal(result), result.String())
		})
	}
}

func (suite *FeeModelTestSuite) TestPercentFeeModel() {
	fee := NewPercentFeeModel()

	tests := []struct {
		name     string
		quantity string
		expected string
	}{
		// 500 * 100 * 0.00001 = 0.5
		{"minimum applies", "100", "1"},
		// 500 * 1000 * 0.00001 = 5
		{"proportional", "1000", "5"},
		{"sell", "-1000", "5"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := fee.GetOrderFee(suite.security, suite.order(tc.quantity))
			suite.True(dec(tc.expected).Equal(result), result.String())
		})
	}
}

func (suite *FeeModelTestSuite) TestConstantFeeModel() {
	suite.True(dec("2.5").Equal(NewConstantFeeModel(dec("2.5")).GetOrderFee(suite.security, suite.order("1"))))
	suite.True(NewConstantFeeModel(dec("-1")).GetOrderFee(suite.security, suite.order("1")).IsZero())
}

func (suite *FeeModelTestSuite) TestGetFeeModel() {
	tests := []struct {
		name     string
		broker   Broker
		quantity string
		expected string
	}{
		{"interactive broker", BrokerInteractiveBroker, "1000", "5"},
		{"zero commission", BrokerZero, "1000", "0"},
		{"constant", BrokerConstant, "1000", "1"},
		{"percent", BrokerPercent, "1000", "5"},
		{"unknown broker defaults to zero", Broker("unknown"), "1000", "0"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			model := GetFeeModel(tc.broker)
			suite.NotNil(model)
			suite.True(dec(tc.expected).Equal(model.GetOrderFee(suite.security, suite.order(tc.quantity))))
		})
	}
}

func (suite *FeeModelTestSuite) TestAllBrokers() {
	suite.Len(AllBrokers, 4)
	suite.Contains(AllBrokers, BrokerInteractiveBroker)
	suite.Contains(AllBrokers, BrokerZero)
}

func (suite *FeeModelTestSuite) TestBrokerConstants() {
	suite.Equal(Broker("interactive_broker"), BrokerInteractiveBroker)
	suite.Equal(Broker("zero_commission"), BrokerZero)
}
