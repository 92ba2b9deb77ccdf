package securities

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SecurityTestSuite struct {
	suite.Suite
	hours *ExchangeHours
}

func TestSecuritySuite(t *testing.T) {
	suite.Run(t, new(SecurityTestSuite))
}

func (suite *SecurityTestSuite) SetupTest() {
	var err error

	suite.hours, err = NewUSEquityHours()
	suite.Require().NoError(err)
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func (suite *SecurityTestSuite) newEquity(symbol string) *Security {
	return NewSecurity(
		types.Symbol{Value: symbol, SecurityType: types.SecurityTypeEquity, Market: "usa"},
		types.SymbolProperties{QuoteCurrency: "USD", MinimumPriceVariation: dec("0.01")},
		suite.hours,
	)
}

func (suite *SecurityTestSuite) TestNewSecurityDefaults() {
	security := suite.newEquity("SPY")

	suite.NoError(security.Validate())
	suite.True(decimal.NewFromInt(1).Equal(security.Multiplier()))
	suite.True(decimal.NewFromInt(1).Equal(security.Leverage))
	suite.True(security.IsSubscribed(types.DataTypeTradeBar))
	suite.False(security.IsSubscribed(types.DataTypeTick))
	suite.False(security.HasData())
	suite.False(security.Holding.Invested())
}

func (suite *SecurityTestSuite) TestValidate() {
	tests := []struct {
		name   string
		mutate func(*Security)
	}{
		{"missing quote currency", func(s *Security) { s.Properties.QuoteCurrency = "" }},
		{"missing symbol", func(s *Security) { s.Symbol.Value = "" }},
		{"non positive leverage", func(s *Security) { s.Leverage = decimal.Zero }},
		{"option without terms", func(s *Security) { s.Symbol.SecurityType = types.SecurityTypeOption }},
		{"pair without base", func(s *Security) { s.Symbol.SecurityType = types.SecurityTypeForex }},
		{"no exchange", func(s *Security) { s.Exchange = nil }},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			security := suite.newEquity("SPY")
			tc.mutate(security)
			err := security.Validate()
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidSecurity))
		})
	}
}

func (suite *SecurityTestSuite) TestLocalTime() {
	security := suite.newEquity("SPY")
	security.SetTime(time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC))

	suite.Equal(10, security.LocalTime().Hour())
	suite.True(security.IsOpen(false))
}

func (suite *SecurityTestSuite) TestCacheTradeBar() {
	security := suite.newEquity("SPY")
	security.Update(types.TradeBar{
		Symbol: "SPY",
		Time:   time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC),
		Period: time.Minute,
		Open:   dec("100"),
		High:   dec("102"),
		Low:    dec("99"),
		Close:  dec("101"),
		Volume: dec("500"),
	})

	suite.True(security.HasData())
	suite.True(dec("101").Equal(security.Price()))
	suite.True(dec("102").Equal(security.Cache.High()))
	suite.True(dec("500").Equal(security.Cache.Volume()))
	suite.True(security.Cache.TradeBar().IsSome())
	suite.True(security.Cache.QuoteBar().IsNone())
}

func (suite *SecurityTestSuite) TestCacheQuoteBarAndTicks() {
	cache := NewCache()
	cache.AddData(types.QuoteBar{
		Symbol: "EURUSD",
		Bid:    optional.Some(types.Bar{Open: dec("1.1"), High: dec("1.2"), Low: dec("1.0"), Close: dec("1.1")}),
		Ask:    optional.Some(types.Bar{Open: dec("1.3"), High: dec("1.4"), Low: dec("1.2"), Close: dec("1.3")}),
	})
	suite.True(dec("1.2").Equal(cache.Price()))
	suite.True(dec("1.3").Equal(cache.High()))

	cache.Reset()
	cache.AddData(types.Tick{Symbol: "BTCUSD", TickType: types.TickTypeTrade, Value: dec("100"), Quantity: dec("1")})
	cache.AddData(types.Tick{Symbol: "BTCUSD", TickType: types.TickTypeTrade, Value: dec("105"), Quantity: dec("2")})
	cache.AddData(&types.Tick{Symbol: "BTCUSD", TickType: types.TickTypeTrade, Value: dec("95"), Quantity: dec("1")})

	suite.True(dec("100").Equal(cache.Open()))
	suite.True(dec("105").Equal(cache.High()))
	suite.True(dec("95").Equal(cache.Low()))
	suite.True(dec("95").Equal(cache.Close()))
	suite.True(dec("4").Equal(cache.Volume()))
	suite.Equal(types.DataTypeTick, cache.LastData().Unwrap().DataType())
}

func (suite *SecurityTestSuite) TestSetMarketPrice() {
	security := suite.newEquity("SPY")
	security.SetMarketPrice(dec("42"))

	suite.True(dec("42").Equal(security.Price()))
	suite.True(dec("42").Equal(security.Cache.Open()))
	suite.False(security.HasData())
}

func (suite *SecurityTestSuite) TestManager() {
	manager := NewManager()
	suite.Require().NoError(manager.Add(suite.newEquity("SPY")))
	suite.Require().NoError(manager.Add(suite.newEquity("AAPL")))

	err := manager.Add(suite.newEquity("SPY"))
	suite.True(errors.HasCode(err, errors.ErrCodeDuplicateSecurity))

	_, err = manager.Get("MSFT")
	suite.True(errors.HasCode(err, errors.ErrCodeSecurityNotFound))
	suite.True(manager.Lookup("MSFT").IsNone())

	all := manager.All()
	suite.Len(all, 2)
	suite.Equal("SPY", all[0].Ticker())
	suite.Equal("AAPL", all[1].Ticker())

	now := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	manager.SetTime(now)
	suite.True(now.Equal(all[1].UTCTime()))
}
