package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
)

type OrderType string

type OrderStatus string

type OrderDirection string

const (
	OrderTypeMarket         OrderType = "MARKET"
	OrderTypeLimit          OrderType = "LIMIT"
	OrderTypeStopMarket     OrderType = "STOP_MARKET"
	OrderTypeStopLimit      OrderType = "STOP_LIMIT"
	OrderTypeMarketOnOpen   OrderType = "MARKET_ON_OPEN"
	OrderTypeMarketOnClose  OrderType = "MARKET_ON_CLOSE"
	OrderTypeOptionExercise OrderType = "OPTION_EXERCISE"
)

const (
	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusSubmitted       OrderStatus = "SUBMITTED"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCanceled        OrderStatus = "CANCELED"
	OrderStatusInvalid         OrderStatus = "INVALID"
)

const (
	OrderDirectionBuy  OrderDirection = "BUY"
	OrderDirectionSell OrderDirection = "SELL"
	OrderDirectionHold OrderDirection = "HOLD"
)

// AllOrderTypes lists every supported order type.
var AllOrderTypes = []any{
	OrderTypeMarket,
	OrderTypeLimit,
	OrderTypeStopMarket,
	OrderTypeStopLimit,
	OrderTypeMarketOnOpen,
	OrderTypeMarketOnClose,
	OrderTypeOptionExercise,
}

// IsClosed reports whether the status is terminal.
func (s OrderStatus) IsClosed() bool {
	return s == OrderStatusFilled || s == OrderStatusCanceled || s == OrderStatusInvalid
}

// IsOpen reports whether an order in this status can still be filled.
func (s OrderStatus) IsOpen() bool {
	return s == OrderStatusNew || s == OrderStatusSubmitted || s == OrderStatusPartiallyFilled
}

// DirectionOf returns the direction implied by a signed quantity.
func DirectionOf(quantity decimal.Decimal) OrderDirection {
	switch quantity.Sign() {
	case 1:
		return OrderDirectionBuy
	case -1:
		return OrderDirectionSell
	default:
		return OrderDirectionHold
	}
}

// Order is a request to trade a signed quantity of a security.
// A positive quantity buys, a negative quantity sells.
type Order struct {
	ID     int64     `yaml:"id" json:"id" validate:"gt=0"`
	Symbol string    `yaml:"symbol" json:"symbol" validate:"required"`
	Type   OrderType `yaml:"type" json:"type" validate:"required,oneof=MARKET LIMIT STOP_MARKET STOP_LIMIT MARKET_ON_OPEN MARKET_ON_CLOSE OPTION_EXERCISE"`
	// Quantity is signed, negative quantities are sells
	Quantity decimal.Decimal `yaml:"quantity" json:"quantity"`
	// LimitPrice is only used by LIMIT and STOP_LIMIT orders
	LimitPrice decimal.Decimal `yaml:"limit_price" json:"limit_price"`
	// StopPrice is only used by STOP_MARKET and STOP_LIMIT orders
	StopPrice decimal.Decimal `yaml:"stop_price" json:"stop_price"`
	// Time is the UTC submission time
	Time  time.Time  `yaml:"time" json:"time" validate:"required"`
	Tag   string     `yaml:"tag" json:"tag"`
	State OrderState `yaml:"-" json:"-"`
}

func newOrder(id int64, orderType OrderType, symbol string, quantity decimal.Decimal, utcTime time.Time, tag string) *Order {
	return &Order{
		ID:         id,
		Symbol:     symbol,
		Type:       orderType,
		Quantity:   quantity,
		LimitPrice: decimal.Zero,
		StopPrice:  decimal.Zero,
		Time:       utcTime,
		Tag:        tag,
		State:      NewOrderState(),
	}
}

// NewMarketOrder creates a market order.
func NewMarketOrder(id int64, symbol string, quantity decimal.Decimal, utcTime time.Time, tag string) *Order {
	return newOrder(id, OrderTypeMarket, symbol, quantity, utcTime, tag)
}

// NewLimitOrder creates a limit order.
func NewLimitOrder(id int64, symbol string, quantity, limitPrice decimal.Decimal, utcTime time.Time, tag string) *Order {
	order := newOrder(id, OrderTypeLimit, symbol, quantity, utcTime, tag)
	order.LimitPrice = limitPrice

	return order
}

// NewStopMarketOrder creates a stop market order.
func NewStopMarketOrder(id int64, symbol string, quantity, stopPrice decimal.Decimal, utcTime time.Time, tag string) *Order {
	order := newOrder(id, OrderTypeStopMarket, symbol, quantity, utcTime, tag)
	order.StopPrice = stopPrice

	return order
}

// NewStopLimitOrder creates a stop limit order.
func NewStopLimitOrder(id int64, symbol string, quantity, stopPrice, limitPrice decimal.Decimal, utcTime time.Time, tag string) *Order {
	order := newOrder(id, OrderTypeStopLimit, symbol, quantity, utcTime, tag)
	order.StopPrice = stopPrice
	order.LimitPrice = limitPrice

	return order
}

// NewMarketOnOpenOrder creates an order filled at the next market open.
func NewMarketOnOpenOrder(id int64, symbol string, quantity decimal.Decimal, utcTime time.Time, tag string) *Order {
	return newOrder(id, OrderTypeMarketOnOpen, symbol, quantity, utcTime, tag)
}

// NewMarketOnCloseOrder creates an order filled at the next market close.
func NewMarketOnCloseOrder(id int64, symbol string, quantity decimal.Decimal, utcTime time.Time, tag string) *Order {
	return newOrder(id, OrderTypeMarketOnClose, symbol, quantity, utcTime, tag)
}

// NewOptionExerciseOrder creates an exercise (negative quantity, long holder) or
// assignment (positive quantity, short holder) of option contracts.
func NewOptionExerciseOrder(id int64, symbol string, quantity decimal.Decimal, utcTime time.Time, tag string) *Order {
	return newOrder(id, OrderTypeOptionExercise, symbol, quantity, utcTime, tag)
}

// Direction returns the direction implied by the signed quantity.
func (o *Order) Direction() OrderDirection {
	return DirectionOf(o.Quantity)
}

// AbsoluteQuantity returns the unsigned order size.
func (o *Order) AbsoluteQuantity() decimal.Decimal {
	return o.Quantity.Abs()
}

// Status returns the current status of the order.
func (o *Order) Status() OrderStatus {
	return o.State.Status()
}

// StopTriggered reports whether the stop of a stop limit order has been hit.
func (o *Order) StopTriggered() bool {
	return o.State.StopTriggered()
}

// Validate validates the Order struct.
func (o *Order) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	if o.Quantity.IsZero() {
		return errors.Newf(errors.ErrCodeInvalidOrder, "order %d has zero quantity", o.ID)
	}

	switch o.Type {
	case OrderTypeLimit:
		if !o.LimitPrice.IsPositive() {
			return errors.Newf(errors.ErrCodeInvalidOrder, "limit order %d requires a positive limit price", o.ID)
		}
	case OrderTypeStopMarket:
		if !o.StopPrice.IsPositive() {
			return errors.Newf(errors.ErrCodeInvalidOrder, "stop market order %d requires a positive stop price", o.ID)
		}
	case OrderTypeStopLimit:
		if !o.StopPrice.IsPositive() || !o.LimitPrice.IsPositive() {
			return errors.Newf(errors.ErrCodeInvalidOrder, "stop limit order %d requires positive stop and limit prices", o.ID)
		}
	case OrderTypeMarket, OrderTypeMarketOnOpen, OrderTypeMarketOnClose, OrderTypeOptionExercise:
	}

	return nil
}

// UpdateOrderFields lists the changes to an open order. Unset fields are left as they are.
type UpdateOrderFields struct {
	Quantity   optional.Option[decimal.Decimal]
	LimitPrice optional.Option[decimal.Decimal]
	StopPrice  optional.Option[decimal.Decimal]
	Tag        optional.Option[string]
}

// IsEmpty reports whether no field is set.
func (f UpdateOrderFields) IsEmpty() bool {
	return f.Quantity.IsNone() && f.LimitPrice.IsNone() && f.StopPrice.IsNone() && f.Tag.IsNone()
}

// Updated returns a validated copy of the order with the fields applied.
func (o *Order) Updated(fields UpdateOrderFields) (*Order, error) {
	if fields.LimitPrice.IsSome() && o.Type != OrderTypeLimit && o.Type != OrderTypeStopLimit {
		return nil, errors.Newf(errors.ErrCodeInvalidOrder, "%s order %d has no limit price", o.Type, o.ID)
	}

	if fields.StopPrice.IsSome() && o.Type != OrderTypeStopMarket && o.Type != OrderTypeStopLimit {
		return nil, errors.Newf(errors.ErrCodeInvalidOrder, "%s order %d has no stop price", o.Type, o.ID)
	}

	updated := *o
	updated.Quantity = fields.Quantity.TakeOr(o.Quantity)
	updated.LimitPrice = fields.LimitPrice.TakeOr(o.LimitPrice)
	updated.StopPrice = fields.StopPrice.TakeOr(o.StopPrice)
	updated.Tag = fields.Tag.TakeOr(o.Tag)

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	return &updated, nil
}

func (o *Order) String() string {
	return fmt.Sprintf("order %d %s %s %s (%s)", o.ID, o.Type, o.Quantity.String(), o.Symbol, o.Status())
}
