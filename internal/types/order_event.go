package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderEvent is the immutable result of a single fill decision.
// A zero FillQuantity means the order did not fill.
type OrderEvent struct {
	ID        string          `yaml:"id" json:"id" csv:"id"`
	OrderID   int64           `yaml:"order_id" json:"order_id" csv:"order_id"`
	Symbol    string          `yaml:"symbol" json:"symbol" csv:"symbol"`
	UTCTime   time.Time       `yaml:"utc_time" json:"utc_time" csv:"utc_time"`
	Status    OrderStatus     `yaml:"status" json:"status" csv:"status"`
	Direction OrderDirection  `yaml:"direction" json:"direction" csv:"direction"`
	FillPrice decimal.Decimal `yaml:"fill_price" json:"fill_price" csv:"fill_price"`
	// FillPriceCurrency is the quote currency of the security
	FillPriceCurrency string `yaml:"fill_price_currency" json:"fill_price_currency" csv:"fill_price_currency"`
	// FillQuantity is signed, negative for sells
	FillQuantity decimal.Decimal `yaml:"fill_quantity" json:"fill_quantity" csv:"fill_quantity"`
	// OrderFee is expressed in the account currency
	OrderFee     decimal.Decimal `yaml:"order_fee" json:"order_fee" csv:"order_fee"`
	Message      string          `yaml:"message" json:"message" csv:"message"`
	IsAssignment bool            `yaml:"is_assignment" json:"is_assignment" csv:"is_assignment"`
}

// NewOrderEvent creates a no-fill event for the order that echoes its current status.
func NewOrderEvent(order *Order, utcTime time.Time) OrderEvent {
	return OrderEvent{
		ID:                uuid.New().String(),
		OrderID:           order.ID,
		Symbol:            order.Symbol,
		UTCTime:           utcTime,
		Status:            order.Status(),
		Direction:         order.Direction(),
		FillPrice:         decimal.Zero,
		FillPriceCurrency: "",
		FillQuantity:      decimal.Zero,
		OrderFee:          decimal.Zero,
		Message:           "",
		IsAssignment:      false,
	}
}

// IsFill reports whether the event carries a non-zero fill.
func (e OrderEvent) IsFill() bool {
	return !e.FillQuantity.IsZero()
}

// AbsoluteFillQuantity returns the unsigned fill size.
func (e OrderEvent) AbsoluteFillQuantity() decimal.Decimal {
	return e.FillQuantity.Abs()
}

func (e OrderEvent) String() string {
	message := fmt.Sprintf("%s order %d %s status %s quantity %s price %s fee %s",
		e.UTCTime.Format(time.RFC3339), e.OrderID, e.Symbol, e.Status,
		e.FillQuantity.String(), e.FillPrice.String(), e.OrderFee.String())
	if e.Message != "" {
		message += " " + e.Message
	}

	return message
}
