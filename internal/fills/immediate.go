package fills

import (
	"time"

	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
)

// ImmediateFillModel fills the whole order quantity as soon as the price window allows it.
// Prices are judged conservatively: a bar only proves a level was crossed when its
// high or low went strictly through it.
type ImmediateFillModel struct{}

// NewImmediateFillModel creates the default fill model.
func NewImmediateFillModel() *ImmediateFillModel {
	return &ImmediateFillModel{}
}

// MarketFill fills at the current price moved against the trader by the slippage.
func (m *ImmediateFillModel) MarketFill(security *securities.Security, order *types.Order) types.OrderEvent {
	fill := types.NewOrderEvent(order, security.UTCTime())
	if order.Status().IsClosed() {
		return fill
	}

	if !IsExchangeOpen(security, false) {
		return fill
	}

	prices := GetPrices(security, order.Direction())
	if prices.IsMissing() {
		return fill
	}

	slip := security.Slippage(order)

	switch order.Direction() {
	case types.OrderDirectionBuy:
		filled(security, order, &fill, prices.Current.Add(slip))
	case types.OrderDirectionSell:
		filled(security, order, &fill, prices.Current.Sub(slip))
	case types.OrderDirectionHold:
	}

	return fill
}

// StopMarketFill fills once the bar trades through the stop, never better than the stop.
func (m *ImmediateFillModel) StopMarketFill(security *securities.Security, order *types.Order) types.OrderEvent {
	fill := types.NewOrderEvent(order, security.UTCTime())
	if order.Status().IsClosed() {
		return fill
	}

	if !IsExchangeOpen(security, false) {
		return fill
	}

	prices := GetPrices(security, order.Direction())
	if prices.IsMissing() {
		return fill
	}

	slip := security.Slippage(order)

	switch order.Direction() {
	case types.OrderDirectionSell:
		if prices.Low.LessThan(order.StopPrice) {
			filled(security, order, &fill, decimal.Min(order.StopPrice, prices.Current.Sub(slip)))
		}
	case types.OrderDirectionBuy:
		if prices.High.GreaterThan(order.StopPrice) {
			filled(security, order, &fill, decimal.Max(order.StopPrice, prices.Current.Add(slip)))
		}
	case types.OrderDirectionHold:
	}

	return fill
}

// StopLimitFill arms the order when the bar trades through the stop and then behaves as a limit order.
// The trigger is sticky, so an armed order keeps waiting for its limit on later bars.
func (m *ImmediateFillModel) StopLimitFill(security *securities.Security, order *types.Order) types.OrderEvent {
	fill := types.NewOrderEvent(order, security.UTCTime())
	if order.Status().IsClosed() {
		return fill
	}

	if !IsExchangeOpen(security, security.ExtendedMarketHours) {
		return fill
	}

	prices := GetPrices(security, order.Direction())
	if prices.IsMissing() {
		return fill
	}

	switch order.Direction() {
	case types.OrderDirectionBuy:
		if prices.High.GreaterThan(order.StopPrice) {
			order.State.TriggerStop()
		}

		if order.StopTriggered() && prices.Current.LessThan(order.LimitPrice) {
			filled(security, order, &fill, order.LimitPrice)
		}
	case types.OrderDirectionSell:
		if prices.Low.LessThan(order.StopPrice) {
			order.State.TriggerStop()
		}

		if order.StopTriggered() && prices.Current.GreaterThan(order.LimitPrice) {
			filled(security, order, &fill, order.LimitPrice)
		}
	case types.OrderDirectionHold:
	}

	return fill
}

// LimitFill fills when the bar trades through the limit, at the limit or the better bar extreme.
func (m *ImmediateFillModel) LimitFill(security *securities.Security, order *types.Order) types.OrderEvent {
	fill := types.NewOrderEvent(order, security.UTCTime())
	if order.Status().IsClosed() {
		return fill
	}

	if !IsExchangeOpen(security, security.ExtendedMarketHours) {
		return fill
	}

	prices := GetPrices(security, order.Direction())
	if prices.IsMissing() {
		return fill
	}

	switch order.Direction() {
	case types.OrderDirectionBuy:
		if prices.Low.LessThan(order.LimitPrice) {
			filled(security, order, &fill, decimal.Min(prices.High, order.LimitPrice))
		}
	case types.OrderDirectionSell:
		if prices.High.GreaterThan(order.LimitPrice) {
			filled(security, order, &fill, decimal.Max(prices.Low, order.LimitPrice))
		}
	case types.OrderDirectionHold:
	}

	return fill
}

// MarketOnOpenFill fills at the open of the first regular session that starts after the order was placed.
func (m *ImmediateFillModel) MarketOnOpenFill(security *securities.Security, order *types.Order) types.OrderEvent {
	fill := types.NewOrderEvent(order, security.UTCTime())
	if order.Status().IsClosed() {
		return fill
	}

	lastData := security.Cache.LastData()
	if lastData.IsNone() {
		return fill
	}

	localOrderTime := security.Exchange.ToLocal(order.Time)
	// data that ended before the order was placed cannot contain the open
	if !localOrderTime.Before(security.Exchange.ToLocal(lastData.Unwrap().GetEndTime())) {
		return fill
	}

	// an order placed during today's session waits for tomorrow's open
	if security.Exchange.IsOpen(localOrderTime, false) && sameDate(localOrderTime, security.LocalTime()) {
		return fill
	}

	if !IsExchangeOpen(security, false) {
		return fill
	}

	prices := GetPrices(security, order.Direction())
	if prices.IsMissing() {
		return fill
	}

	slip := security.Slippage(order)

	switch order.Direction() {
	case types.OrderDirectionBuy:
		filled(security, order, &fill, prices.Open.Add(slip))
	case types.OrderDirectionSell:
		filled(security, order, &fill, prices.Open.Sub(slip))
	case types.OrderDirectionHold:
	}

	return fill
}

// MarketOnCloseFill fills at the close of the first regular session that ends after the order was placed.
func (m *ImmediateFillModel) MarketOnCloseFill(security *securities.Security, order *types.Order) types.OrderEvent {
	fill := types.NewOrderEvent(order, security.UTCTime())
	if order.Status().IsClosed() {
		return fill
	}

	nextMarketClose, err := security.Exchange.GetNextMarketClose(order.Time, false)
	if err != nil {
		return fill
	}

	if security.LocalTime().Before(nextMarketClose) {
		return fill
	}

	prices := GetPrices(security, order.Direction())
	if prices.IsMissing() {
		return fill
	}

	slip := security.Slippage(order)

	switch order.Direction() {
	case types.OrderDirectionBuy:
		filled(security, order, &fill, prices.Close.Add(slip))
	case types.OrderDirectionSell:
		filled(security, order, &fill, prices.Close.Sub(slip))
	case types.OrderDirectionHold:
	}

	return fill
}

// IsExchangeOpen reports whether the security can trade now. Outside the session it still
// trades when the last data is from today and covers an open period, as with daily bars.
func IsExchangeOpen(security *securities.Security, extended bool) bool {
	localTime := security.LocalTime()
	if security.Exchange.IsOpen(localTime, extended) {
		return true
	}

	lastData := security.Cache.LastData()
	if lastData.IsNone() {
		return false
	}

	data := lastData.Unwrap()
	barStart := security.Exchange.ToLocal(data.GetTime())
	barEnd := security.Exchange.ToLocal(data.GetEndTime())

	if !sameDate(localTime, barEnd) {
		return false
	}

	return security.Exchange.IsOpenDuringBar(barStart, barEnd, extended)
}

func filled(security *securities.Security, order *types.Order, fill *types.OrderEvent, price decimal.Decimal) {
	fill.Status = types.OrderStatusFilled
	fill.FillPrice = price
	fill.FillPriceCurrency = security.QuoteCurrency()
	fill.FillQuantity = order.Quantity
	fill.OrderFee = security.OrderFee(order)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
