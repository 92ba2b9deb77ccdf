package margin

import (
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
)

const maxQuantityIterations = 20

// GetMaximumOrderQuantity returns the largest signed quantity in the direction that passes the
// buying power check, fee included, rounded down to the lot size. Zero means no order fits.
func (m *Model) GetMaximumOrderQuantity(security *securities.Security, direction types.OrderDirection) decimal.Decimal {
	price := security.Price()
	rate := m.conversionRate(security)

	if direction == types.OrderDirectionHold || !price.IsPositive() || !rate.IsPositive() {
		return decimal.Zero
	}

	sign := decimal.NewFromInt(1)
	if direction == types.OrderDirectionSell {
		sign = sign.Neg()
	}

	holding := security.Holding
	closable := decimal.Zero

	if holding.Quantity.Sign() == -sign.Sign() {
		closable = holding.AbsoluteQuantity()
	}

	released := closable.Mul(holding.AveragePrice).Mul(security.Multiplier()).Mul(rate).Mul(MaintenanceMarginRequirement(security))
	available := decimal.Max(decimal.Zero, m.MarginRemaining().Add(released))
	unitMargin := price.Mul(security.Multiplier()).Mul(rate).Mul(InitialMarginRequirement(security))

	quantity := security.Properties.RoundQuantity(closable.Add(available.Div(unitMargin)))
	order := types.NewMarketOrder(0, security.Ticker(), decimal.Zero, security.UTCTime(), "")

	// the fee lowers what fits, refine until the check passes
	for range maxQuantityIterations {
		if !quantity.IsPositive() {
			return decimal.Zero
		}

		order.Quantity = quantity.Mul(sign)

		result := m.HasSufficientBuyingPowerForOrder(security, order)
		if result.IsSufficient {
			return order.Quantity
		}

		next := security.Properties.RoundQuantity(quantity.Mul(result.Available).Div(result.Required))
		if next.GreaterThanOrEqual(quantity) {
			next = quantity.Sub(lotSize(security))
		}

		quantity = next
	}

	return decimal.Zero
}

// CalculateOrderQuantity returns the signed quantity that moves the holding towards target,
// a fraction of the portfolio value (negative for short), limited by the buying power.
func (m *Model) CalculateOrderQuantity(security *securities.Security, target decimal.Decimal) decimal.Decimal {
	price := security.Price()
	rate := m.conversionRate(security)

	if !price.IsPositive() || !rate.IsPositive() {
		return decimal.Zero
	}

	unitValue := price.Mul(security.Multiplier()).Mul(rate)
	targetQuantity := m.portfolio.TotalPortfolioValue().Mul(target).Div(unitValue)

	delta := targetQuantity.Sub(security.Holding.Quantity)
	rounded := security.Properties.RoundQuantity(delta.Abs())

	if rounded.IsZero() {
		return decimal.Zero
	}

	direction := types.DirectionOf(delta)
	maximum := m.GetMaximumOrderQuantity(security, direction).Abs()

	quantity := decimal.Min(rounded, maximum)
	if direction == types.OrderDirectionSell {
		quantity = quantity.Neg()
	}

	return quantity
}

func lotSize(security *securities.Security) decimal.Decimal {
	if !security.Properties.LotSize.IsPositive() {
		return decimal.NewFromInt(1)
	}

	return security.Properties.LotSize
}
