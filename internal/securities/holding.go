package securities

import (
	"github.com/shopspring/decimal"
)

// Holding is the position of the portfolio in one security.
type Holding struct {
	Quantity     decimal.Decimal
	AveragePrice decimal.Decimal
	// TotalFees accumulates fees paid on this security in the account currency
	TotalFees decimal.Decimal
	// NetProfit accumulates realized profit in the quote currency, before fees
	NetProfit       decimal.Decimal
	TotalSaleVolume decimal.Decimal
}

// NewHolding creates a flat holding.
func NewHolding() *Holding {
	return &Holding{
		Quantity:        decimal.Zero,
		AveragePrice:    decimal.Zero,
		TotalFees:       decimal.Zero,
		NetProfit:       decimal.Zero,
		TotalSaleVolume: decimal.Zero,
	}
}

func (h *Holding) Invested() bool { return !h.Quantity.IsZero() }
func (h *Holding) IsLong() bool   { return h.Quantity.IsPositive() }
func (h *Holding) IsShort() bool  { return h.Quantity.IsNegative() }

// AbsoluteQuantity returns the unsigned position size.
func (h *Holding) AbsoluteQuantity() decimal.Decimal {
	return h.Quantity.Abs()
}

// HoldingsCost returns the unsigned cost basis in the quote currency.
func (h *Holding) HoldingsCost(multiplier decimal.Decimal) decimal.Decimal {
	return h.Quantity.Abs().Mul(h.AveragePrice).Mul(multiplier)
}

// HoldingsValue returns the signed market value in the quote currency.
func (h *Holding) HoldingsValue(price, multiplier decimal.Decimal) decimal.Decimal {
	return h.Quantity.Mul(price).Mul(multiplier)
}

// UnrealizedProfit returns the profit of closing the position at the given price, in the quote currency.
func (h *Holding) UnrealizedProfit(price, multiplier decimal.Decimal) decimal.Decimal {
	return price.Sub(h.AveragePrice).Mul(h.Quantity).Mul(multiplier)
}

// ClosingQuantity returns the signed part of a fill that reduces the position.
func (h *Holding) ClosingQuantity(fillQuantity decimal.Decimal) decimal.Decimal {
	if h.Quantity.IsZero() || fillQuantity.IsZero() || h.Quantity.Sign() == fillQuantity.Sign() {
		return decimal.Zero
	}

	if fillQuantity.Abs().GreaterThan(h.Quantity.Abs()) {
		return h.Quantity.Neg()
	}

	return fillQuantity
}

// ApplyFill updates the position with a signed fill and returns the realized profit in the quote currency.
// Adding to a position averages the price, reducing realizes profit, flipping restarts at the fill price.
func (h *Holding) ApplyFill(fillQuantity, fillPrice, multiplier decimal.Decimal) decimal.Decimal {
	if fillQuantity.IsZero() {
		return decimal.Zero
	}

	if fillQuantity.IsNegative() {
		h.TotalSaleVolume = h.TotalSaleVolume.Add(fillPrice.Mul(fillQuantity.Abs()).Mul(multiplier))
	}

	if h.Quantity.IsZero() || h.Quantity.Sign() == fillQuantity.Sign() {
		newQuantity := h.Quantity.Add(fillQuantity)
		h.AveragePrice = h.AveragePrice.Mul(h.Quantity).Add(fillPrice.Mul(fillQuantity)).Div(newQuantity)
		h.Quantity = newQuantity

		return decimal.Zero
	}

	closing := h.ClosingQuantity(fillQuantity)
	// closing has the opposite sign of the position, so the position side is -closing
	realized := fillPrice.Sub(h.AveragePrice).Mul(closing.Neg()).Mul(multiplier)
	h.NetProfit = h.NetProfit.Add(realized)

	newQuantity := h.Quantity.Add(fillQuantity)

	switch {
	case newQuantity.IsZero():
		h.AveragePrice = decimal.Zero
	case newQuantity.Sign() != h.Quantity.Sign():
		h.AveragePrice = fillPrice
	}

	h.Quantity = newQuantity

	return realized
}

// AddFee records a fee paid in the account currency.
func (h *Holding) AddFee(fee decimal.Decimal) {
	h.TotalFees = h.TotalFees.Add(fee)
}
