package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prices is the price window a fill decision is made against.
type Prices struct {
	Current decimal.Decimal
	Open    decimal.Decimal
	High    decimal.Decimal
	Low     decimal.Decimal
	Close   decimal.Decimal
	EndTime time.Time
}

// NewPrices creates a price window. Zero open/high/low/close default to current.
func NewPrices(endTime time.Time, current, open, high, low, closePrice decimal.Decimal) Prices {
	orCurrent := func(value decimal.Decimal) decimal.Decimal {
		if value.IsZero() {
			return current
		}

		return value
	}

	return Prices{
		Current: current,
		Open:    orCurrent(open),
		High:    orCurrent(high),
		Low:     orCurrent(low),
		Close:   orCurrent(closePrice),
		EndTime: endTime,
	}
}

// NewPricesFromBar creates a price window whose current price is the bar close.
func NewPricesFromBar(endTime time.Time, bar Bar) Prices {
	return NewPrices(endTime, bar.Close, bar.Open, bar.High, bar.Low, bar.Close)
}

// IsMissing reports whether the window holds no usable price.
func (p Prices) IsMissing() bool {
	return !p.Current.IsPositive()
}
