package portfolio

import (
	"time"

	"github.com/rxtech-lab/argo-fills/internal/cashbook"
	"github.com/rxtech-lab/argo-fills/internal/logger"
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Portfolio is the ledger of holdings and cash of one account.
type Portfolio struct {
	securities *securities.Manager
	cashBook   *cashbook.CashBook
	unsettled  *cashbook.UnsettledCashBook
	log        *logger.Logger

	totalFees      decimal.Decimal
	totalNetProfit decimal.Decimal
}

// NewPortfolio creates an empty portfolio reporting in the account currency.
func NewPortfolio(accountCurrency string, manager *securities.Manager, log *logger.Logger) *Portfolio {
	if manager == nil {
		manager = securities.NewManager()
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Portfolio{
		securities:     manager,
		cashBook:       cashbook.NewCashBook(accountCurrency),
		unsettled:      cashbook.NewUnsettledCashBook(),
		log:            log,
		totalFees:      decimal.Zero,
		totalNetProfit: decimal.Zero,
	}
}

func (p *Portfolio) Securities() *securities.Manager                { return p.securities }
func (p *Portfolio) CashBook() *cashbook.CashBook                   { return p.cashBook }
func (p *Portfolio) UnsettledCashBook() *cashbook.UnsettledCashBook { return p.unsettled }
func (p *Portfolio) AccountCurrency() string                        { return p.cashBook.AccountCurrency() }
func (p *Portfolio) TotalFees() decimal.Decimal                     { return p.totalFees }

// TotalNetProfit returns the realized profit in the account currency, fees excluded.
func (p *Portfolio) TotalNetProfit() decimal.Decimal { return p.totalNetProfit }

// SetCash sets the balance of a currency. The rate is ignored for the account currency.
func (p *Portfolio) SetCash(currency string, amount, conversionRate decimal.Decimal) {
	p.cashBook.Add(currency, amount, conversionRate)
}

// AddSecurity registers a security and the currencies it trades in.
func (p *Portfolio) AddSecurity(security *securities.Security) error {
	if err := p.securities.Add(security); err != nil {
		return err
	}

	p.cashBook.Ensure(security.QuoteCurrency())

	if security.Type().IsCurrencyPair() {
		p.cashBook.Ensure(security.Symbol.BaseCurrency)
	}

	return nil
}

// Validate checks that every currency of the cash book can be valued in the account currency,
// either through a known rate or through a currency pair security.
func (p *Portfolio) Validate() error {
	for _, cash := range p.cashBook.All() {
		if cash.ConversionRate.IsPositive() {
			continue
		}

		if _, ok := p.conversionSecurity(cash.Currency); ok {
			continue
		}

		return errors.Newf(errors.ErrCodeUnsupportedCurrency,
			"currency %s has no conversion rate and no %s pair to derive one", cash.Currency, p.AccountCurrency())
	}

	return nil
}

// ProcessFill applies a fill to the holding of the security and to the cash book.
// Events without fill quantity are ignored.
func (p *Portfolio) ProcessFill(event types.OrderEvent) error {
	if !event.IsFill() {
		return nil
	}

	security, err := p.securities.Get(event.Symbol)
	if err != nil {
		return err
	}

	quote, err := p.cashBook.Get(security.QuoteCurrency())
	if err != nil {
		return err
	}

	// every lookup that can fail runs before the ledger changes
	var base *cashbook.Cash
	if security.Type().IsCurrencyPair() {
		if base, err = p.cashBook.Get(security.Symbol.BaseCurrency); err != nil {
			return err
		}
	}

	account, err := p.cashBook.Get(p.AccountCurrency())
	if err != nil {
		return err
	}

	if event.OrderFee.IsPositive() {
		account.AddAmount(event.OrderFee.Neg())

		security.Holding.AddFee(event.OrderFee)
		p.totalFees = p.totalFees.Add(event.OrderFee)
	}

	multiplier := security.Multiplier()
	realized := security.Holding.ApplyFill(event.FillQuantity, event.FillPrice, multiplier)
	cashDelta := event.FillQuantity.Mul(event.FillPrice).Mul(multiplier).Neg()

	switch {
	case security.Type().IsMarginOnly():
		quote.AddAmount(realized)
	case security.Type().IsCurrencyPair():
		base.AddAmount(event.FillQuantity)
		quote.AddAmount(cashDelta)
	default:
		p.applyCash(security, event, quote, cashDelta)
	}

	p.totalNetProfit = p.totalNetProfit.Add(realized.Mul(quote.ConversionRate))

	p.log.Debug("Processed fill",
		zap.Int64("order_id", event.OrderID),
		zap.String("symbol", event.Symbol),
		zap.String("fill_quantity", event.FillQuantity.String()),
		zap.String("fill_price", event.FillPrice.String()),
		zap.String("fee", event.OrderFee.String()),
		zap.String("realized", realized.String()),
		zap.String("holding", security.Holding.Quantity.String()),
	)

	return nil
}

// applyCash books the cash leg of a fill, queueing sale proceeds when the security settles late.
func (p *Portfolio) applyCash(security *securities.Security, event types.OrderEvent, quote *cashbook.Cash, cashDelta decimal.Decimal) {
	if security.SettlementModel != nil {
		settlementTime := security.SettlementModel.SettlementTime(security, event.UTCTime, cashDelta)
		if settlementTime.IsSome() {
			p.unsettled.Add(cashbook.UnsettledFunds{
				Currency:       quote.Currency,
				Amount:         cashDelta,
				SettlementTime: settlementTime.Unwrap(),
			})

			return
		}
	}

	quote.AddAmount(cashDelta)
}

// ScanForCashSettlement moves every matured unsettled amount into the cash book.
func (p *Portfolio) ScanForCashSettlement(utcNow time.Time) {
	for _, funds := range p.unsettled.Scan(utcNow) {
		p.cashBook.Ensure(funds.Currency).AddAmount(funds.Amount)

		p.log.Debug("Settled funds",
			zap.String("currency", funds.Currency),
			zap.String("amount", funds.Amount.String()),
			zap.Time("settlement_time", funds.SettlementTime),
		)
	}
}

// Cash returns the settled cash of every currency in the account currency.
func (p *Portfolio) Cash() decimal.Decimal {
	return p.cashBook.TotalValueInAccountCurrency()
}

// UnsettledCash returns the pending funds in the account currency.
func (p *Portfolio) UnsettledCash() decimal.Decimal {
	return p.unsettled.TotalInAccountCurrency(p.cashBook)
}

// HoldingValue returns the contribution of the security to the portfolio value in the account currency.
// Currency pairs contribute nothing since their legs live in the cash book, futures and CFDs
// contribute their unrealized profit.
func (p *Portfolio) HoldingValue(security *securities.Security) decimal.Decimal {
	holding := security.Holding
	if !holding.Invested() || security.Type().IsCurrencyPair() {
		return decimal.Zero
	}

	rate, err := p.cashBook.ConversionRate(security.QuoteCurrency())
	if err != nil {
		return decimal.Zero
	}

	if security.Type().IsMarginOnly() {
		return holding.UnrealizedProfit(security.Price(), security.Multiplier()).Mul(rate)
	}

	return holding.HoldingsValue(security.Price(), security.Multiplier()).Mul(rate)
}

// TotalHoldingsValue sums the holding values of every security.
func (p *Portfolio) TotalHoldingsValue() decimal.Decimal {
	total := decimal.Zero
	for _, security := range p.securities.All() {
		total = total.Add(p.HoldingValue(security))
	}

	return total
}

// TotalUnrealizedProfit sums the unrealized profit of every holding in the account currency.
func (p *Portfolio) TotalUnrealizedProfit() decimal.Decimal {
	total := decimal.Zero

	for _, security := range p.securities.All() {
		if !security.Holding.Invested() {
			continue
		}

		rate, err := p.cashBook.ConversionRate(security.QuoteCurrency())
		if err != nil {
			continue
		}

		total = total.Add(security.Holding.UnrealizedProfit(security.Price(), security.Multiplier()).Mul(rate))
	}

	return total
}

// TotalPortfolioValue is settled cash plus unsettled cash plus holdings, in the account currency.
func (p *Portfolio) TotalPortfolioValue() decimal.Decimal {
	return p.Cash().Add(p.UnsettledCash()).Add(p.TotalHoldingsValue())
}

// Invested reports whether any security is held.
func (p *Portfolio) Invested() bool {
	for _, security := range p.securities.All() {
		if security.Holding.Invested() {
			return true
		}
	}

	return false
}

// UpdateConversionRates refreshes the rate of every currency from the last price of a
// currency pair quoted against the account currency, directly or inverted.
func (p *Portfolio) UpdateConversionRates() {
	for _, cash := range p.cashBook.All() {
		if cash.Currency == p.AccountCurrency() {
			continue
		}

		security, ok := p.conversionSecurity(cash.Currency)
		if !ok || !security.Price().IsPositive() {
			continue
		}

		if security.Symbol.BaseCurrency == cash.Currency {
			cash.ConversionRate = security.Price()
		} else {
			cash.ConversionRate = decimal.NewFromInt(1).Div(security.Price())
		}
	}
}

// conversionSecurity finds a pair between the currency and the account currency.
func (p *Portfolio) conversionSecurity(currency string) (*securities.Security, bool) {
	account := p.AccountCurrency()

	for _, security := range p.securities.All() {
		if !security.Type().IsCurrencyPair() {
			continue
		}

		base := security.Symbol.BaseCurrency
		quote := security.QuoteCurrency()

		if (base == currency && quote == account) || (base == account && quote == currency) {
			return security, true
		}
	}

	return nil, false
}
