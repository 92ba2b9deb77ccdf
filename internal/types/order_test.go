package types

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type OrderTestSuite struct {
	suite.Suite
	now time.Time
}

func TestOrderSuite(t *testing.T) {
	suite.Run(t, new(OrderTestSuite))
}

func (suite *OrderTestSuite) SetupTest() {
	suite.now = time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
}

func (suite *OrderTestSuite) TestValidate() {
	tests := []struct {
		name        string
		order       *Order
		shouldError bool
	}{
		{
			name:        "valid market order",
			order:       NewMarketOrder(1, "SPY", decimal.NewFromInt(10), suite.now, ""),
			shouldError: false,
		},
		{
			name:        "valid limit order",
			order:       NewLimitOrder(2, "SPY", decimal.NewFromInt(-10), decimal.NewFromInt(100), suite.now, ""),
			shouldError: false,
		},
		{
			name:        "limit order without limit price",
			order:       NewLimitOrder(3, "SPY", decimal.NewFromInt(10), decimal.Zero, suite.now, ""),
			shouldError: true,
		},
		{
			name:        "stop market order without stop price",
			order:       NewStopMarketOrder(4, "SPY", decimal.NewFromInt(10), decimal.Zero, suite.now, ""),
			shouldError: true,
		},
		{
			name:        "stop limit order without limit price",
			order:       NewStopLimitOrder(5, "SPY", decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.Zero, suite.now, ""),
			shouldError: true,
		},
		{
			name:        "zero quantity",
			order:       NewMarketOrder(6, "SPY", decimal.Zero, suite.now, ""),
			shouldError: true,
		},
		{
			name:        "missing symbol",
			order:       NewMarketOrder(7, "", decimal.NewFromInt(1), suite.now, ""),
			shouldError: true,
		},
		{
			name:        "missing id",
			order:       NewMarketOrder(0, "SPY", decimal.NewFromInt(1), suite.now, ""),
			shouldError: true,
		},
		{
			name:        "missing time",
			order:       NewMarketOrder(8, "SPY", decimal.NewFromInt(1), time.Time{}, ""),
			shouldError: true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			err := tc.order.Validate()
			if tc.shouldError {
				suite.Error(err)
				suite.True(errors.HasCode(err, errors.ErrCodeInvalidOrder))
			} else {
				suite.NoError(err)
			}
		})
	}
}

func (suite *OrderTestSuite) TestUpdated() {
	order := NewStopLimitOrder(1, "SPY", decimal.NewFromInt(10), decimal.NewFromInt(105), decimal.NewFromInt(106), suite.now, "breakout")
	order.State.TriggerStop()

	updated, err := order.Updated(UpdateOrderFields{
		Quantity:  optional.Some(decimal.NewFromInt(4)),
		StopPrice: optional.Some(decimal.NewFromInt(104)),
	})
	suite.Require().NoError(err)
	suite.True(updated.Quantity.Equal(decimal.NewFromInt(4)))
	suite.True(updated.StopPrice.Equal(decimal.NewFromInt(104)))
	suite.True(updated.LimitPrice.Equal(decimal.NewFromInt(106)))
	suite.Equal("breakout", updated.Tag)
	suite.True(updated.StopTriggered())

	suite.True(order.Quantity.Equal(decimal.NewFromInt(10)))
	suite.True(order.StopPrice.Equal(decimal.NewFromInt(105)))

	market := NewMarketOrder(2, "SPY", decimal.NewFromInt(10), suite.now, "")
	_, err = market.Updated(UpdateOrderFields{LimitPrice: optional.Some(decimal.NewFromInt(100))})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidOrder))

	_, err = market.Updated(UpdateOrderFields{StopPrice: optional.Some(decimal.NewFromInt(100))})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidOrder))

	suite.True(UpdateOrderFields{}.IsEmpty())
	suite.False(UpdateOrderFields{Tag: optional.Some("")}.IsEmpty())
}

func (suite *OrderTestSuite) TestDirection() {
	suite.Equal(OrderDirectionBuy, NewMarketOrder(1, "SPY", decimal.NewFromInt(5), suite.now, "").Direction())
	suite.Equal(OrderDirectionSell, NewMarketOrder(1, "SPY", decimal.NewFromInt(-5), suite.now, "").Direction())
	suite.Equal(OrderDirectionHold, NewMarketOrder(1, "SPY", decimal.Zero, suite.now, "").Direction())
}

func (suite *OrderTestSuite) TestAbsoluteQuantity() {
	order := NewMarketOrder(1, "SPY", decimal.NewFromInt(-25), suite.now, "")
	suite.True(decimal.NewFromInt(25).Equal(order.AbsoluteQuantity()))
}

func (suite *OrderTestSuite) TestNewOrderIsNew() {
	order := NewStopLimitOrder(1, "SPY", decimal.NewFromInt(1), decimal.NewFromInt(10), decimal.NewFromInt(11), suite.now, "tag")
	suite.Equal(OrderStatusNew, order.Status())
	suite.False(order.StopTriggered())
	suite.Equal("tag", order.Tag)
}

func (suite *OrderTestSuite) TestStatusPredicates() {
	suite.True(OrderStatusFilled.IsClosed())
	suite.True(OrderStatusCanceled.IsClosed())
	suite.True(OrderStatusInvalid.IsClosed())
	suite.False(OrderStatusPartiallyFilled.IsClosed())
	suite.True(OrderStatusSubmitted.IsOpen())
	suite.False(OrderStatusFilled.IsOpen())
}

func (suite *OrderTestSuite) TestOrderEventDefaultsToNoFill() {
	order := NewMarketOrder(9, "SPY", decimal.NewFromInt(3), suite.now, "")
	suite.Require().NoError(order.State.Transition(OrderStatusSubmitted))

	event := NewOrderEvent(order, suite.now)
	suite.NotEmpty(event.ID)
	suite.Equal(int64(9), event.OrderID)
	suite.Equal(OrderStatusSubmitted, event.Status)
	suite.Equal(OrderDirectionBuy, event.Direction)
	suite.False(event.IsFill())
	suite.True(event.FillPrice.IsZero())
	suite.Contains(event.String(), "order 9 SPY status SUBMITTED")
}
