package securities

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
)

// Security is the tradable instrument together with its market state, holding and models.
type Security struct {
	Symbol     types.Symbol
	Properties types.SymbolProperties
	Exchange   *ExchangeHours
	Cache      *Cache
	Holding    *Holding
	// Subscriptions lists the data types delivered for the security
	Subscriptions       []types.DataType
	ExtendedMarketHours bool
	Leverage            decimal.Decimal

	FeeModel        FeeModel
	SlippageModel   SlippageModel
	FillModel       FillModel
	SettlementModel SettlementModel

	utcTime time.Time
}

// NewSecurity creates a security with an empty cache, a flat holding and leverage one.
// Models are assigned by the brokerage model.
func NewSecurity(symbol types.Symbol, properties types.SymbolProperties, exchange *ExchangeHours, subscriptions ...types.DataType) *Security {
	if len(subscriptions) == 0 {
		subscriptions = []types.DataType{types.DataTypeTradeBar}
	}

	return &Security{
		Symbol:              symbol,
		Properties:          properties.Normalized(),
		Exchange:            exchange,
		Cache:               NewCache(),
		Holding:             NewHolding(),
		Subscriptions:       subscriptions,
		ExtendedMarketHours: false,
		Leverage:            decimal.NewFromInt(1),
		FeeModel:            nil,
		SlippageModel:       nil,
		FillModel:           nil,
		SettlementModel:     nil,
		utcTime:             time.Time{},
	}
}

// Validate checks the symbol and properties.
func (s *Security) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s.Symbol); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSecurity, "invalid symbol", err)
	}

	if err := validate.Struct(s.Properties); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidSecurity, err, "invalid properties for %s", s.Symbol.Value)
	}

	if s.Exchange == nil {
		return errors.Newf(errors.ErrCodeInvalidSecurity, "security %s has no exchange hours", s.Symbol.Value)
	}

	if !s.Leverage.IsPositive() {
		return errors.Newf(errors.ErrCodeInvalidSecurity, "security %s must have a positive leverage", s.Symbol.Value)
	}

	if s.Symbol.SecurityType == types.SecurityTypeOption && s.Symbol.Option.IsNone() {
		return errors.Newf(errors.ErrCodeInvalidSecurity, "option %s has no contract terms", s.Symbol.Value)
	}

	if s.Symbol.SecurityType.IsCurrencyPair() && s.Symbol.BaseCurrency == "" {
		return errors.Newf(errors.ErrCodeInvalidSecurity, "currency pair %s has no base currency", s.Symbol.Value)
	}

	return nil
}

func (s *Security) Ticker() string                      { return s.Symbol.Value }
func (s *Security) Type() types.SecurityType            { return s.Symbol.SecurityType }
func (s *Security) QuoteCurrency() string               { return s.Properties.QuoteCurrency }
func (s *Security) Multiplier() decimal.Decimal         { return s.Properties.ContractMultiplier }
func (s *Security) Price() decimal.Decimal              { return s.Cache.Price() }
func (s *Security) UTCTime() time.Time                  { return s.utcTime }
func (s *Security) HasData() bool                       { return s.Cache.LastData().IsSome() }
func (s *Security) IsSubscribed(dt types.DataType) bool { return slices.Contains(s.Subscriptions, dt) }

// LocalTime returns the current time in the exchange time zone.
func (s *Security) LocalTime() time.Time {
	return s.Exchange.ToLocal(s.utcTime)
}

// SetTime moves the security clock.
func (s *Security) SetTime(utcTime time.Time) {
	s.utcTime = utcTime.UTC()
}

// Update stores new market data.
func (s *Security) Update(data types.MarketData) {
	s.Cache.AddData(data)
}

// SetMarketPrice overrides the last price, mostly useful for valuation outside a data feed.
func (s *Security) SetMarketPrice(price decimal.Decimal) {
	s.Cache.SetPrice(price)
}

// IsOpen reports whether the exchange trades at the current local time.
func (s *Security) IsOpen(extended bool) bool {
	return s.Exchange.IsOpen(s.LocalTime(), extended)
}

// OrderFee returns the fee of the order, zero without a fee model.
func (s *Security) OrderFee(order *types.Order) decimal.Decimal {
	if s.FeeModel == nil {
		return decimal.Zero
	}

	return decimal.Max(decimal.Zero, s.FeeModel.GetOrderFee(s, order))
}

// Slippage returns the unsigned slippage of the order, zero without a slippage model.
func (s *Security) Slippage(order *types.Order) decimal.Decimal {
	if s.SlippageModel == nil {
		return decimal.Zero
	}

	return s.SlippageModel.GetSlippageApproximation(s, order).Abs()
}

func (s *Security) String() string {
	return fmt.Sprintf("%s %s (%s)", s.Symbol.SecurityType, s.Symbol.Value, s.Properties.QuoteCurrency)
}
