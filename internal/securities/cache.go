package securities

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
)

// Cache keeps the latest market data of a security.
type Cache struct {
	tradeBar optional.Option[types.TradeBar]
	quoteBar optional.Option[types.QuoteBar]
	tick     optional.Option[types.Tick]
	lastData optional.Option[types.MarketData]

	price  decimal.Decimal
	open   decimal.Decimal
	high   decimal.Decimal
	low    decimal.Decimal
	close  decimal.Decimal
	volume decimal.Decimal
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		tradeBar: optional.None[types.TradeBar](),
		quoteBar: optional.None[types.QuoteBar](),
		tick:     optional.None[types.Tick](),
		lastData: optional.None[types.MarketData](),
		price:    decimal.Zero,
		open:     decimal.Zero,
		high:     decimal.Zero,
		low:      decimal.Zero,
		close:    decimal.Zero,
		volume:   decimal.Zero,
	}
}

// AddData stores the update and refreshes the price and OHLC.
func (c *Cache) AddData(data types.MarketData) {
	switch d := data.(type) {
	case types.TradeBar:
		c.tradeBar = optional.Some(d)
		c.setBar(d.Bar())
		c.volume = d.Volume
	case *types.TradeBar:
		c.AddData(*d)

		return
	case types.QuoteBar:
		c.quoteBar = optional.Some(d)
		if d.Bid.IsSome() || d.Ask.IsSome() {
			c.setBar(d.MidBar())
		}
	case *types.QuoteBar:
		c.AddData(*d)

		return
	case types.Tick:
		c.tick = optional.Some(d)
		c.addTick(d.GetValue())

		if d.TickType == types.TickTypeTrade {
			c.volume = c.volume.Add(d.Quantity)
		}
	case *types.Tick:
		c.AddData(*d)

		return
	}

	c.lastData = optional.Some(data)
}

func (c *Cache) setBar(bar types.Bar) {
	c.open = bar.Open
	c.high = bar.High
	c.low = bar.Low
	c.close = bar.Close
	c.price = bar.Close
}

func (c *Cache) addTick(value decimal.Decimal) {
	if !value.IsPositive() {
		return
	}

	if c.open.IsZero() {
		c.open = value
	}

	if c.high.IsZero() || value.GreaterThan(c.high) {
		c.high = value
	}

	if c.low.IsZero() || value.LessThan(c.low) {
		c.low = value
	}

	c.close = value
	c.price = value
}

// SetPrice overrides the last known price and collapses the OHLC onto it.
func (c *Cache) SetPrice(price decimal.Decimal) {
	c.setBar(types.Bar{Open: price, High: price, Low: price, Close: price})
}

// Reset drops all cached data.
func (c *Cache) Reset() {
	*c = *NewCache()
}

func (c *Cache) TradeBar() optional.Option[types.TradeBar] { return c.tradeBar }
func (c *Cache) QuoteBar() optional.Option[types.QuoteBar] { return c.quoteBar }
func (c *Cache) Tick() optional.Option[types.Tick]         { return c.tick }

// LastData returns the most recent update of any type.
func (c *Cache) LastData() optional.Option[types.MarketData] { return c.lastData }

func (c *Cache) Price() decimal.Decimal  { return c.price }
func (c *Cache) Open() decimal.Decimal   { return c.open }
func (c *Cache) High() decimal.Decimal   { return c.high }
func (c *Cache) Low() decimal.Decimal    { return c.low }
func (c *Cache) Close() decimal.Decimal  { return c.close }
func (c *Cache) Volume() decimal.Decimal { return c.volume }
