package fills

import (
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
)

// GetPrices returns the price window an order of the given direction is evaluated against.
// The most specific subscribed data wins: ticks, then quote bars, then trade bars,
// falling back to the last known price.
func GetPrices(security *securities.Security, direction types.OrderDirection) types.Prices {
	cache := security.Cache

	if direction == types.OrderDirectionHold {
		return types.NewPrices(security.UTCTime(), cache.Price(), cache.Open(), cache.High(), cache.Low(), cache.Close())
	}

	if security.IsSubscribed(types.DataTypeTick) && cache.Tick().IsSome() {
		tick := cache.Tick().Unwrap()

		price := tick.AskPrice
		if direction == types.OrderDirectionSell {
			price = tick.BidPrice
		}

		if price.IsZero() {
			price = tick.GetValue()
		}

		return types.NewPrices(tick.GetEndTime(), price, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero)
	}

	if security.IsSubscribed(types.DataTypeQuoteBar) && cache.QuoteBar().IsSome() {
		quote := cache.QuoteBar().Unwrap()

		side := quote.Ask
		if direction == types.OrderDirectionSell {
			side = quote.Bid
		}

		if side.IsSome() {
			return types.NewPricesFromBar(quote.GetEndTime(), side.Unwrap())
		}
	}

	if security.IsSubscribed(types.DataTypeTradeBar) && cache.TradeBar().IsSome() {
		bar := cache.TradeBar().Unwrap()

		return types.NewPricesFromBar(bar.GetEndTime(), bar.Bar())
	}

	return types.NewPrices(security.UTCTime(), cache.Price(), decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero)
}
