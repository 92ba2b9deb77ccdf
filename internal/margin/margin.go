package margin

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-fills/internal/logger"
	"github.com/rxtech-lab/argo-fills/internal/portfolio"
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const MarginCallTag = "Margin Call"

var (
	// DefaultWarningFraction raises a margin warning once the remaining margin drops to 5% of the portfolio value
	DefaultWarningFraction = decimal.RequireFromString("0.05")
	// DefaultCallThreshold issues margin call orders as soon as the remaining margin is negative
	DefaultCallThreshold = decimal.Zero
)

// BuyingPowerResult is the outcome of a buying power check.
type BuyingPowerResult struct {
	IsSufficient bool
	Reason       string
	Required     decimal.Decimal
	Available    decimal.Decimal
}

func sufficient(reason string) BuyingPowerResult {
	return BuyingPowerResult{IsSufficient: true, Reason: reason, Required: decimal.Zero, Available: decimal.Zero}
}

// Model computes the margin of a portfolio where every security's margin
// requirement is one over its leverage.
type Model struct {
	portfolio       *portfolio.Portfolio
	warningFraction decimal.Decimal
	callThreshold   decimal.Decimal
	log             *logger.Logger
}

// NewModel creates a margin model. warningFraction and callThreshold are fractions of the portfolio value.
func NewModel(p *portfolio.Portfolio, warningFraction, callThreshold decimal.Decimal, log *logger.Logger) *Model {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Model{
		portfolio:       p,
		warningFraction: warningFraction,
		callThreshold:   callThreshold.Abs(),
		log:             log,
	}
}

// InitialMarginRequirement is the fraction of an order value that must be available to open it.
func InitialMarginRequirement(security *securities.Security) decimal.Decimal {
	return decimal.NewFromInt(1).Div(leverage(security))
}

// MaintenanceMarginRequirement is the fraction of a holding value that must stay covered.
func MaintenanceMarginRequirement(security *securities.Security) decimal.Decimal {
	return decimal.NewFromInt(1).Div(leverage(security))
}

func leverage(security *securities.Security) decimal.Decimal {
	if !security.Leverage.IsPositive() {
		return decimal.NewFromInt(1)
	}

	return security.Leverage
}

func (m *Model) conversionRate(security *securities.Security) decimal.Decimal {
	rate, err := m.portfolio.CashBook().ConversionRate(security.QuoteCurrency())
	if err != nil {
		return decimal.Zero
	}

	return rate
}

// MarginUsed returns the margin held by the security's position, valued at its cost, in the account currency.
func (m *Model) MarginUsed(security *securities.Security) decimal.Decimal {
	cost := security.Holding.HoldingsCost(security.Multiplier()).Mul(m.conversionRate(security))

	return cost.Mul(MaintenanceMarginRequirement(security))
}

// TotalMarginUsed sums the margin used by every position.
func (m *Model) TotalMarginUsed() decimal.Decimal {
	total := decimal.Zero
	for _, security := range m.portfolio.Securities().All() {
		total = total.Add(m.MarginUsed(security))
	}

	return total
}

// MarginRemaining is the portfolio value not locked by positions or unsettled funds.
func (m *Model) MarginRemaining() decimal.Decimal {
	return m.portfolio.TotalPortfolioValue().Sub(m.portfolio.UnsettledCash()).Sub(m.TotalMarginUsed())
}

// HasSufficientBuyingPowerForOrder checks whether the order can be opened. Reducing a
// position is always allowed; the part of an order that opens or extends a position
// needs its initial margin plus the fee, funded by the remaining margin and the margin
// released by the part that closes.
func (m *Model) HasSufficientBuyingPowerForOrder(security *securities.Security, order *types.Order) BuyingPowerResult {
	if order.Quantity.IsZero() {
		return sufficient("order has no quantity")
	}

	holding := security.Holding
	closing := holding.ClosingQuantity(order.Quantity).Abs()
	opening := order.AbsoluteQuantity().Sub(closing)

	if !opening.IsPositive() {
		return sufficient("order reduces the position")
	}

	price := security.Price()
	rate := m.conversionRate(security)

	if !price.IsPositive() || !rate.IsPositive() {
		return BuyingPowerResult{
			IsSufficient: false,
			Reason:       fmt.Sprintf("no price or conversion rate for %s", security.Ticker()),
			Required:     decimal.Zero,
			Available:    decimal.Zero,
		}
	}

	unitValue := price.Mul(security.Multiplier()).Mul(rate)
	required := opening.Mul(unitValue).Mul(InitialMarginRequirement(security)).Add(security.OrderFee(order))
	released := closing.Mul(holding.AveragePrice).Mul(security.Multiplier()).Mul(rate).Mul(MaintenanceMarginRequirement(security))
	available := m.MarginRemaining().Add(released)

	if required.GreaterThan(available) {
		return BuyingPowerResult{
			IsSufficient: false,
			Reason: fmt.Sprintf("insufficient buying power to complete order %d: required %s, available %s",
				order.ID, required.StringFixed(2), available.StringFixed(2)),
			Required:  required,
			Available: available,
		}
	}

	return BuyingPowerResult{IsSufficient: true, Reason: "", Required: required, Available: available}
}

// InMarginCall reports whether the remaining margin is below the call threshold.
func (m *Model) InMarginCall() bool {
	if m.TotalMarginUsed().IsZero() {
		return false
	}

	return m.MarginRemaining().LessThan(m.portfolio.TotalPortfolioValue().Mul(m.callThreshold).Neg())
}

// GetMarginCallOrders returns the orders that reduce positions until the margin is covered again,
// and whether the remaining margin is low enough for a warning. pending holds the signed quantity
// of margin call orders still open per symbol; only the part they do not cover is ordered again.
func (m *Model) GetMarginCallOrders(utcTime time.Time, nextOrderID func() int64, pending map[string]decimal.Decimal) ([]*types.Order, bool) {
	totalPortfolioValue := m.portfolio.TotalPortfolioValue()
	totalMarginUsed := m.TotalMarginUsed()
	remaining := m.MarginRemaining()

	if totalMarginUsed.IsZero() {
		return nil, false
	}

	issueWarning := remaining.LessThanOrEqual(totalPortfolioValue.Mul(m.warningFraction))

	if !m.InMarginCall() {
		return nil, issueWarning
	}

	var orders []*types.Order

	for _, security := range m.portfolio.Securities().All() {
		order := m.marginCallOrder(security, totalPortfolioValue, totalMarginUsed, pending[security.Ticker()], utcTime, nextOrderID)
		if order != nil {
			orders = append(orders, order)
		}
	}

	m.log.Warn("Margin call",
		zap.String("portfolio_value", totalPortfolioValue.String()),
		zap.String("margin_used", totalMarginUsed.String()),
		zap.String("margin_remaining", remaining.String()),
		zap.Int("orders", len(orders)),
	)

	return orders, true
}

func (m *Model) marginCallOrder(security *securities.Security, totalPortfolioValue, totalMarginUsed, pending decimal.Decimal, utcTime time.Time, nextOrderID func() int64) *types.Order {
	holding := security.Holding
	rate := m.conversionRate(security)

	if !holding.Invested() || security.Price().IsZero() || rate.IsZero() {
		return nil
	}

	if totalMarginUsed.LessThanOrEqual(totalPortfolioValue) {
		return nil
	}

	// open margin call orders only count while they reduce the holding
	covered := decimal.Zero
	if pending.Sign() == -holding.Quantity.Sign() {
		covered = decimal.Min(pending.Abs(), holding.AbsoluteQuantity())
	}

	deltaAccountCurrency := totalMarginUsed.Sub(totalPortfolioValue)
	unitValue := security.Price().Mul(security.Multiplier())

	quantity := deltaAccountCurrency.Div(rate).Div(unitValue).Round(0).Div(MaintenanceMarginRequirement(security))
	quantity = decimal.Max(decimal.NewFromInt(1), decimal.Min(quantity.Abs(), holding.AbsoluteQuantity()))
	quantity = security.Properties.RoundQuantity(quantity.Sub(covered))

	if !quantity.IsPositive() {
		return nil
	}

	if holding.IsLong() {
		quantity = quantity.Neg()
	}

	return types.NewMarketOrder(nextOrderID(), security.Ticker(), quantity, utcTime, MarginCallTag)
}
