package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

type DataType string

type TickType string

const (
	DataTypeTradeBar DataType = "TRADE_BAR"
	DataTypeQuoteBar DataType = "QUOTE_BAR"
	DataTypeTick     DataType = "TICK"
)

const (
	TickTypeTrade TickType = "TRADE"
	TickTypeQuote TickType = "QUOTE"
)

// MarketData is a single market update for one symbol.
type MarketData interface {
	GetSymbol() string
	// GetTime returns the start of the period covered by the data
	GetTime() time.Time
	// GetEndTime returns the instant at which the data became known
	GetEndTime() time.Time
	// GetValue returns the representative price of the data
	GetValue() decimal.Decimal
	DataType() DataType
}

// Bar is an open/high/low/close quadruple.
type Bar struct {
	Open  decimal.Decimal `yaml:"open" json:"open" csv:"open"`
	High  decimal.Decimal `yaml:"high" json:"high" csv:"high"`
	Low   decimal.Decimal `yaml:"low" json:"low" csv:"low"`
	Close decimal.Decimal `yaml:"close" json:"close" csv:"close"`
}

// TradeBar aggregates trades over a period.
type TradeBar struct {
	Symbol string          `yaml:"symbol" json:"symbol" csv:"symbol"`
	Time   time.Time       `yaml:"time" json:"time" csv:"time"`
	Period time.Duration   `yaml:"period" json:"period" csv:"period"`
	Open   decimal.Decimal `yaml:"open" json:"open" csv:"open"`
	High   decimal.Decimal `yaml:"high" json:"high" csv:"high"`
	Low    decimal.Decimal `yaml:"low" json:"low" csv:"low"`
	Close  decimal.Decimal `yaml:"close" json:"close" csv:"close"`
	Volume decimal.Decimal `yaml:"volume" json:"volume" csv:"volume"`
}

func (b TradeBar) GetSymbol() string         { return b.Symbol }
func (b TradeBar) GetTime() time.Time        { return b.Time }
func (b TradeBar) GetEndTime() time.Time     { return b.Time.Add(b.Period) }
func (b TradeBar) GetValue() decimal.Decimal { return b.Close }
func (b TradeBar) DataType() DataType        { return DataTypeTradeBar }

// Bar returns the OHLC of the trade bar.
func (b TradeBar) Bar() Bar {
	return Bar{Open: b.Open, High: b.High, Low: b.Low, Close: b.Close}
}

// QuoteBar aggregates the best bid and ask over a period. Either side may be missing.
type QuoteBar struct {
	Symbol      string               `yaml:"symbol" json:"symbol"`
	Time        time.Time            `yaml:"time" json:"time"`
	Period      time.Duration        `yaml:"period" json:"period"`
	Bid         optional.Option[Bar] `yaml:"-" json:"-"`
	Ask         optional.Option[Bar] `yaml:"-" json:"-"`
	LastBidSize decimal.Decimal      `yaml:"last_bid_size" json:"last_bid_size"`
	LastAskSize decimal.Decimal      `yaml:"last_ask_size" json:"last_ask_size"`
}

func (q QuoteBar) GetSymbol() string     { return q.Symbol }
func (q QuoteBar) GetTime() time.Time    { return q.Time }
func (q QuoteBar) GetEndTime() time.Time { return q.Time.Add(q.Period) }
func (q QuoteBar) DataType() DataType    { return DataTypeQuoteBar }

// GetValue returns the mid close when both sides are present, otherwise the close of the side present.
func (q QuoteBar) GetValue() decimal.Decimal {
	return q.mid(func(b Bar) decimal.Decimal { return b.Close })
}

// MidBar returns the bar made of the bid/ask midpoints.
func (q QuoteBar) MidBar() Bar {
	return Bar{
		Open:  q.mid(func(b Bar) decimal.Decimal { return b.Open }),
		High:  q.mid(func(b Bar) decimal.Decimal { return b.High }),
		Low:   q.mid(func(b Bar) decimal.Decimal { return b.Low }),
		Close: q.mid(func(b Bar) decimal.Decimal { return b.Close }),
	}
}

func (q QuoteBar) mid(field func(Bar) decimal.Decimal) decimal.Decimal {
	switch {
	case q.Bid.IsSome() && q.Ask.IsSome():
		return field(q.Bid.Unwrap()).Add(field(q.Ask.Unwrap())).Div(decimal.NewFromInt(2))
	case q.Bid.IsSome():
		return field(q.Bid.Unwrap())
	case q.Ask.IsSome():
		return field(q.Ask.Unwrap())
	default:
		return decimal.Zero
	}
}

// Tick is a single trade or quote print.
type Tick struct {
	Symbol   string          `yaml:"symbol" json:"symbol" csv:"symbol"`
	Time     time.Time       `yaml:"time" json:"time" csv:"time"`
	TickType TickType        `yaml:"tick_type" json:"tick_type" csv:"tick_type"`
	Value    decimal.Decimal `yaml:"value" json:"value" csv:"value"`
	BidPrice decimal.Decimal `yaml:"bid_price" json:"bid_price" csv:"bid_price"`
	AskPrice decimal.Decimal `yaml:"ask_price" json:"ask_price" csv:"ask_price"`
	Quantity decimal.Decimal `yaml:"quantity" json:"quantity" csv:"quantity"`
}

func (t Tick) GetSymbol() string     { return t.Symbol }
func (t Tick) GetTime() time.Time    { return t.Time }
func (t Tick) GetEndTime() time.Time { return t.Time }
func (t Tick) DataType() DataType    { return DataTypeTick }

// GetValue returns the trade price, or the quote midpoint for quote ticks without one.
func (t Tick) GetValue() decimal.Decimal {
	if !t.Value.IsZero() {
		return t.Value
	}

	if !t.BidPrice.IsZero() && !t.AskPrice.IsZero() {
		return t.BidPrice.Add(t.AskPrice).Div(decimal.NewFromInt(2))
	}

	if !t.BidPrice.IsZero() {
		return t.BidPrice
	}

	return t.AskPrice
}
