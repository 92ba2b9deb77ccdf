package portfolio

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/settlement"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PortfolioTestSuite struct {
	suite.Suite
	portfolio *Portfolio
	hours     *securities.ExchangeHours
	now       time.Time
	nextID    int64
}

func TestPortfolioSuite(t *testing.T) {
	suite.Run(t, new(PortfolioTestSuite))
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func (suite *PortfolioTestSuite) SetupTest() {
	var err error

	suite.hours, err = securities.NewUSEquityHours()
	suite.Require().NoError(err)

	suite.portfolio = NewPortfolio("USD", nil, nil)
	suite.portfolio.SetCash("USD", dec("100000"), decimal.Zero)
	// tuesday 10:00 New York
	suite.now = time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	suite.nextID = 0
}

func (suite *PortfolioTestSuite) addSecurity(symbol types.Symbol, properties types.SymbolProperties, price string) *securities.Security {
	security := securities.NewSecurity(symbol, properties, suite.hours)
	security.SetMarketPrice(dec(price))
	suite.Require().NoError(suite.portfolio.AddSecurity(security))

	return security
}

func (suite *PortfolioTestSuite) addEquity(symbol, price string) *securities.Security {
	return suite.addSecurity(
		types.Symbol{Value: symbol, SecurityType: types.SecurityTypeEquity},
		types.SymbolProperties{QuoteCurrency: "USD"},
		price,
	)
}

func (suite *PortfolioTestSuite) fill(symbol, quantity, price, fee string) types.OrderEvent {
	suite.nextID++

	return types.OrderEvent{
		ID:                "",
		OrderID:           suite.nextID,
		Symbol:            symbol,
		UTCTime:           suite.now,
		Status:            types.OrderStatusFilled,
		Direction:         types.DirectionOf(dec(quantity)),
		FillPrice:         dec(price),
		FillPriceCurrency: "USD",
		FillQuantity:      dec(quantity),
		OrderFee:          dec(fee),
		Message:           "",
		IsAssignment:      false,
	}
}

func (suite *PortfolioTestSuite) cash(currency string) decimal.Decimal {
	cash, err := suite.portfolio.CashBook().Get(currency)
	suite.Require().NoError(err)

	return cash.Amount
}

func (suite *PortfolioTestSuite) TestBuyEquity() {
	spy := suite.addEquity("SPY", "100")

	suite.Require().NoError(suite.portfolio.ProcessFill(suite.fill("SPY", "10", "100", "1")))

	suite.True(dec("98999").Equal(suite.cash("USD")))
	suite.True(dec("10").Equal(spy.Holding.Quantity))
	suite.True(dec("100").Equal(spy.Holding.AveragePrice))
	suite.True(dec("1").Equal(spy.Holding.TotalFees))
	suite.True(dec("99999").Equal(suite.portfolio.TotalPortfolioValue()))

	spy.SetMarketPrice(dec("110"))
	suite.True(dec("100099").Equal(suite.portfolio.TotalPortfolioValue()))
	suite.True(dec("100").Equal(suite.portfolio.TotalUnrealizedProfit()))
	suite.True(suite.portfolio.Invested())
}

func (suite *PortfolioTestSuite) TestIgnoresNonFills() {
	suite.addEquity("SPY", "100")
	event := suite.fill("SPY", "0", "100", "5")

	suite.NoError(suite.portfolio.ProcessFill(event))
	suite.True(dec("100000").Equal(suite.cash("USD")))
	suite.True(suite.portfolio.TotalFees().IsZero())
}

func (suite *PortfolioTestSuite) TestUnknownSecurity() {
	err := suite.portfolio.ProcessFill(suite.fill("MSFT", "1", "100", "0"))
	suite.True(errors.HasCode(err, errors.ErrCodeSecurityNotFound))
}

func (suite *PortfolioTestSuite) TestRoundTripReturnsToStartingValueMinusFees() {
	suite.addEquity("SPY", "100")
	suite.addEquity("AAPL", "50")
	start := suite.portfolio.TotalPortfolioValue()

	fills := []types.OrderEvent{
		suite.fill("SPY", "10", "100", "1"),
		suite.fill("AAPL", "-20", "50", "1.5"),
		suite.fill("SPY", "5", "100", "1"),
		suite.fill("SPY", "-15", "100", "2"),
		suite.fill("AAPL", "20", "50", "0.5"),
	}

	totalFees := decimal.Zero

	for _, event := range fills {
		suite.Require().NoError(suite.portfolio.ProcessFill(event))
		totalFees = totalFees.Add(event.OrderFee)
	}

	suite.False(suite.portfolio.Invested())
	suite.True(start.Sub(totalFees).Equal(suite.portfolio.TotalPortfolioValue()), suite.portfolio.TotalPortfolioValue().String())
	suite.True(totalFees.Equal(suite.portfolio.TotalFees()))
	suite.True(suite.portfolio.TotalNetProfit().IsZero())
}

func (suite *PortfolioTestSuite) TestDelayedSettlement() {
	spy := suite.addEquity("SPY", "100")
	spy.SettlementModel = settlement.NewDelayedSettlementModel(settlement.DefaultEquitySettlementDays, settlement.DefaultSettlementTime)

	// purchases settle immediately
	suite.Require().NoError(suite.portfolio.ProcessFill(suite.fill("SPY", "10", "100", "0")))
	suite.True(dec("99000").Equal(suite.cash("USD")))
	suite.True(suite.portfolio.UnsettledCash().IsZero())

	valueBeforeSale := suite.portfolio.TotalPortfolioValue()

	suite.Require().NoError(suite.portfolio.ProcessFill(suite.fill("SPY", "-10", "100", "0")))
	suite.True(dec("99000").Equal(suite.cash("USD")))
	suite.True(dec("1000").Equal(suite.portfolio.UnsettledCash()))
	suite.True(valueBeforeSale.Equal(suite.portfolio.TotalPortfolioValue()))

	// settles friday 08:00 New York
	settlesAt := time.Date(2024, 1, 5, 13, 0, 0, 0, time.UTC)

	suite.portfolio.ScanForCashSettlement(settlesAt.Add(-time.Minute))
	suite.True(dec("99000").Equal(suite.cash("USD")))
	suite.True(dec("1000").Equal(suite.portfolio.UnsettledCash()))

	suite.portfolio.ScanForCashSettlement(settlesAt)
	suite.True(dec("100000").Equal(suite.cash("USD")))
	suite.True(suite.portfolio.UnsettledCash().IsZero())
	suite.True(valueBeforeSale.Equal(suite.portfolio.TotalPortfolioValue()))
}

func (suite *PortfolioTestSuite) TestFutureShortAndCover() {
	future := suite.addSecurity(
		types.Symbol{Value: "ES", SecurityType: types.SecurityTypeFuture, Market: "cme"},
		types.SymbolProperties{QuoteCurrency: "USD", ContractMultiplier: dec("50")},
		"100",
	)

	suite.Require().NoError(suite.portfolio.ProcessFill(suite.fill("ES", "-100", "100", "0")))
	suite.True(dec("100000").Equal(suite.cash("USD")))
	suite.True(dec("-100").Equal(future.Holding.Quantity))

	// unrealized profit is the holding value
	future.SetMarketPrice(dec("99"))
	suite.True(dec("105000").Equal(suite.portfolio.TotalPortfolioValue()))

	suite.Require().NoError(suite.portfolio.ProcessFill(suite.fill("ES", "100", "99", "0")))
	suite.True(dec("100000").Add(dec("100").Sub(dec("99")).Mul(dec("100")).Mul(dec("50"))).Equal(suite.cash("USD")))
	suite.True(future.Holding.Quantity.IsZero())
	suite.True(dec("5000").Equal(suite.portfolio.TotalNetProfit()))
	suite.True(dec("105000").Equal(suite.portfolio.TotalPortfolioValue()))
}

func (suite *PortfolioTestSuite) TestForexSwapsCurrencies() {
	eurusd := suite.addSecurity(
		types.Symbol{Value: "EURUSD", SecurityType: types.SecurityTypeForex, BaseCurrency: "EUR"},
		types.SymbolProperties{QuoteCurrency: "USD"},
		"1.1",
	)
	suite.portfolio.UpdateConversionRates()

	suite.Require().NoError(suite.portfolio.ProcessFill(suite.fill("EURUSD", "1000", "1.1", "0")))

	suite.True(dec("98900").Equal(suite.cash("USD")))
	suite.True(dec("1000").Equal(suite.cash("EUR")))
	suite.True(dec("1000").Equal(eurusd.Holding.Quantity))
	// the pair contributes nothing beyond its cash legs
	suite.True(suite.portfolio.HoldingValue(eurusd).IsZero())
	suite.True(dec("100000").Equal(suite.portfolio.TotalPortfolioValue()))

	eurusd.SetMarketPrice(dec("1.2"))
	suite.portfolio.UpdateConversionRates()
	suite.True(dec("100100").Equal(suite.portfolio.TotalPortfolioValue()))
}

func (suite *PortfolioTestSuite) TestForeignQuoteCurrency() {
	usdjpy := suite.addSecurity(
		types.Symbol{Value: "USDJPY", SecurityType: types.SecurityTypeForex, BaseCurrency: "USD"},
		types.SymbolProperties{QuoteCurrency: "JPY"},
		"100",
	)
	suite.addSecurity(
		types.Symbol{Value: "7203", SecurityType: types.SecurityTypeEquity, Market: "jpx"},
		types.SymbolProperties{QuoteCurrency: "JPY"},
		"2000",
	)

	suite.NoError(suite.portfolio.Validate())

	suite.portfolio.UpdateConversionRates()
	suite.True(dec("100").Equal(usdjpy.Price()))

	rate, err := suite.portfolio.CashBook().ConversionRate("JPY")
	suite.Require().NoError(err)
	suite.True(dec("0.01").Equal(rate))

	suite.portfolio.SetCash("JPY", dec("100000"), rate)
	suite.Require().NoError(suite.portfolio.ProcessFill(suite.fill("7203", "50", "2000", "0")))

	suite.True(suite.cash("JPY").IsZero())
	suite.True(dec("101000").Equal(suite.portfolio.TotalPortfolioValue()))
}

func (suite *PortfolioTestSuite) TestValidateRejectsUnknownCurrency() {
	suite.addSecurity(
		types.Symbol{Value: "VOD", SecurityType: types.SecurityTypeEquity, Market: "lse"},
		types.SymbolProperties{QuoteCurrency: "GBP"},
		"70",
	)

	err := suite.portfolio.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedCurrency))

	suite.portfolio.SetCash("GBP", decimal.Zero, dec("1.25"))
	suite.NoError(suite.portfolio.Validate())
}

func (suite *PortfolioTestSuite) TestOptionContractMultiplier() {
	option := suite.addSecurity(
		types.Symbol{Value: "SPY 240119C00192000", SecurityType: types.SecurityTypeOption, Option: optionTerms()},
		types.SymbolProperties{QuoteCurrency: "USD", ContractMultiplier: dec("100")},
		"3",
	)

	suite.Require().NoError(suite.portfolio.ProcessFill(suite.fill(option.Ticker(), "2", "3", "0")))
	suite.True(dec("99400").Equal(suite.cash("USD")))
	suite.True(dec("100000").Equal(suite.portfolio.TotalPortfolioValue()))
}
