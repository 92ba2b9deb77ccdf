package brokerage

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/mocks"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ExecutionHandlerTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	orders  *mocks.MockOrderProvider
	handler *ExecutionHandler
	events  []types.OrderEvent
	order   *types.Order
	now     time.Time
}

func TestExecutionHandlerSuite(t *testing.T) {
	suite.Run(t, new(ExecutionHandlerTestSuite))
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func (suite *ExecutionHandlerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.orders = mocks.NewMockOrderProvider(suite.ctrl)
	suite.events = nil
	suite.now = time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	suite.order = types.NewMarketOrder(1, "BTCUSDT", dec("10"), suite.now, "")

	suite.orders.EXPECT().GetOrderByID(int64(1)).Return(suite.order, nil).AnyTimes()

	suite.handler = NewExecutionHandler(suite.orders, func(event types.OrderEvent) error {
		suite.events = append(suite.events, event)

		return nil
	}, nil, nil)
}

func (suite *ExecutionHandlerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ExecutionHandlerTestSuite) execution(id, quantity string) Execution {
	return Execution{
		ExecID:   id,
		OrderID:  1,
		Symbol:   "BTCUSDT",
		Quantity: dec(quantity),
		Price:    dec("100"),
		Currency: "USDT",
		Time:     suite.now,
	}
}

func (suite *ExecutionHandlerTestSuite) TestExecutionWaitsForCommission() {
	suite.Require().NoError(suite.handler.OnExecution(suite.execution("e1", "4")))
	suite.Empty(suite.events)
	suite.Equal(1, suite.handler.Pending())

	suite.Require().NoError(suite.handler.OnCommissionReport(CommissionReport{ExecID: "e1", Commission: dec("0.5"), Currency: ""}))
	suite.Require().Len(suite.events, 1)
	suite.Equal(0, suite.handler.Pending())

	event := suite.events[0]
	suite.Equal(types.OrderStatusPartiallyFilled, event.Status)
	suite.True(event.FillQuantity.Equal(dec("4")))
	suite.True(event.FillPrice.Equal(dec("100")))
	suite.True(event.OrderFee.Equal(dec("0.5")))
	suite.Equal("USDT", event.FillPriceCurrency)
}

func (suite *ExecutionHandlerTestSuite) TestCommissionBeforeExecution() {
	suite.Require().NoError(suite.handler.OnCommissionReport(CommissionReport{ExecID: "e1", Commission: dec("1"), Currency: ""}))
	suite.Empty(suite.events)

	suite.Require().NoError(suite.handler.OnExecution(suite.execution("e1", "10")))
	suite.Require().Len(suite.events, 1)
	suite.Equal(types.OrderStatusFilled, suite.events[0].Status)
	suite.True(suite.events[0].OrderFee.Equal(dec("1")))
}

func (suite *ExecutionHandlerTestSuite) TestCumulativeFillDecidesStatus() {
	for i, id := range []string{"e1", "e2", "e3"} {
		quantity := "3"
		if i == 2 {
			quantity = "4"
		}

		suite.Require().NoError(suite.handler.OnExecution(suite.execution(id, quantity)))
		suite.Require().NoError(suite.handler.OnCommissionReport(CommissionReport{ExecID: id, Commission: decimal.Zero, Currency: ""}))
	}

	suite.Require().Len(suite.events, 3)
	suite.Equal(types.OrderStatusPartiallyFilled, suite.events[0].Status)
	suite.Equal(types.OrderStatusPartiallyFilled, suite.events[1].Status)
	suite.Equal(types.OrderStatusFilled, suite.events[2].Status)
	suite.True(suite.handler.Filled(1).Equal(dec("10")))
}

func (suite *ExecutionHandlerTestSuite) TestDuplicateExecutionsAreDiscarded() {
	suite.Require().NoError(suite.handler.OnExecution(suite.execution("e1", "5")))

	err := suite.handler.OnExecution(suite.execution("e1", "5"))
	suite.True(errors.HasCode(err, errors.ErrCodeDuplicateExecution))

	suite.Require().NoError(suite.handler.OnCommissionReport(CommissionReport{ExecID: "e1", Commission: decimal.Zero, Currency: ""}))

	err = suite.handler.OnExecution(suite.execution("e1", "5"))
	suite.True(errors.HasCode(err, errors.ErrCodeDuplicateExecution))

	suite.Len(suite.events, 1)
	suite.True(suite.handler.Filled(1).Equal(dec("5")))
}

func (suite *ExecutionHandlerTestSuite) TestLateCommissionIsDropped() {
	suite.Require().NoError(suite.handler.OnExecution(suite.execution("e1", "10")))
	suite.Require().NoError(suite.handler.ExpirePending(suite.now.Add(DefaultCommissionWait), DefaultCommissionWait))
	suite.Require().Len(suite.events, 1)
	suite.True(suite.events[0].OrderFee.IsZero())

	suite.Require().NoError(suite.handler.OnCommissionReport(CommissionReport{ExecID: "e1", Commission: dec("2"), Currency: ""}))
	suite.Len(suite.events, 1)
}

func (suite *ExecutionHandlerTestSuite) TestExpirePendingKeepsRecentExecutions() {
	old := suite.execution("e1", "2")
	recent := suite.execution("e2", "2")
	recent.Time = suite.now.Add(20 * time.Second)

	suite.Require().NoError(suite.handler.OnExecution(old))
	suite.Require().NoError(suite.handler.OnExecution(recent))
	suite.Require().NoError(suite.handler.ExpirePending(suite.now.Add(DefaultCommissionWait), DefaultCommissionWait))

	suite.Require().Len(suite.events, 1)
	suite.Contains(suite.events[0].Message, "e1")
	suite.Equal(1, suite.handler.Pending())
}

func (suite *ExecutionHandlerTestSuite) TestHeldCommissionDroppedWhenOrderFills() {
	orphan := CommissionReport{ExecID: "lost", OrderID: 1, Commission: dec("1"), Currency: ""}
	suite.Require().NoError(suite.handler.OnCommissionReport(orphan))
	suite.Equal(1, suite.handler.HeldCommissions())

	suite.Require().NoError(suite.handler.OnExecution(suite.execution("e1", "10")))
	suite.Require().NoError(suite.handler.OnCommissionReport(CommissionReport{ExecID: "e1", OrderID: 1, Commission: decimal.Zero, Currency: ""}))
	suite.Require().Len(suite.events, 1)
	suite.Equal(types.OrderStatusFilled, suite.events[0].Status)
	suite.Equal(0, suite.handler.HeldCommissions())
}

func (suite *ExecutionHandlerTestSuite) TestExpirePendingDropsHeldCommissions() {
	closed := types.NewMarketOrder(2, "BTCUSDT", dec("1"), suite.now, "")
	suite.Require().NoError(closed.State.Transition(types.OrderStatusSubmitted))
	suite.Require().NoError(closed.State.Transition(types.OrderStatusCanceled))
	suite.orders.EXPECT().GetOrderByID(int64(2)).Return(closed, nil).AnyTimes()

	reports := []CommissionReport{
		{ExecID: "closed", OrderID: 2, Commission: dec("1"), Currency: ""},
		{ExecID: "old", Commission: dec("1"), Currency: "", Time: suite.now},
		{ExecID: "open", OrderID: 1, Commission: dec("1"), Currency: ""},
		{ExecID: "recent", Commission: dec("1"), Currency: "", Time: suite.now.Add(20 * time.Second)},
	}
	for _, report := range reports {
		suite.Require().NoError(suite.handler.OnCommissionReport(report))
	}

	suite.Require().NoError(suite.handler.ExpirePending(suite.now.Add(DefaultCommissionWait), DefaultCommissionWait))
	suite.Equal(2, suite.handler.HeldCommissions())

	suite.Require().NoError(suite.handler.OnExecution(suite.execution("open", "2")))
	suite.Require().Len(suite.events, 1)
	suite.True(suite.events[0].OrderFee.Equal(dec("1")))
}

func (suite *ExecutionHandlerTestSuite) TestFailedSinkAllowsRedelivery() {
	failures := 1
	handler := NewExecutionHandler(suite.orders, func(event types.OrderEvent) error {
		if failures > 0 {
			failures--

			return errors.New(errors.ErrCodeEventLogFailed, "sink unavailable")
		}

		suite.events = append(suite.events, event)

		return nil
	}, nil, nil)

	suite.Require().NoError(handler.OnExecution(suite.execution("e1", "4")))

	err := handler.OnCommissionReport(CommissionReport{ExecID: "e1", OrderID: 1, Commission: dec("0.5"), Currency: ""})
	suite.True(errors.HasCode(err, errors.ErrCodeEventLogFailed), "got %v", err)
	suite.Empty(suite.events)
	suite.True(handler.Filled(1).IsZero())

	suite.Require().NoError(handler.OnExecution(suite.execution("e1", "4")))
	suite.Require().Len(suite.events, 1)
	suite.True(suite.events[0].OrderFee.Equal(dec("0.5")))
	suite.True(handler.Filled(1).Equal(dec("4")))
	suite.Equal(0, handler.HeldCommissions())

	err = handler.OnExecution(suite.execution("e1", "4"))
	suite.True(errors.HasCode(err, errors.ErrCodeDuplicateExecution))
}

func (suite *ExecutionHandlerTestSuite) TestCommissionIsConverted() {
	handler := NewExecutionHandler(suite.orders, func(event types.OrderEvent) error {
		suite.events = append(suite.events, event)

		return nil
	}, func(amount decimal.Decimal, currency string) (decimal.Decimal, error) {
		suite.Equal("BNB", currency)

		return amount.Mul(dec("300")), nil
	}, nil)

	suite.Require().NoError(handler.OnExecution(suite.execution("e1", "10")))
	suite.Require().NoError(handler.OnCommissionReport(CommissionReport{ExecID: "e1", Commission: dec("0.01"), Currency: "BNB"}))
	suite.Require().Len(suite.events, 1)
	suite.True(suite.events[0].OrderFee.Equal(dec("3")))
}

func (suite *ExecutionHandlerTestSuite) TestInvalidExecutions() {
	testCases := []struct {
		name      string
		execution Execution
		code      errors.ErrorCode
	}{
		{
			name:      "missing execution id",
			execution: suite.execution("", "1"),
			code:      errors.ErrCodeMissingParameter,
		},
		{
			name:      "zero quantity",
			execution: suite.execution("e9", "0"),
			code:      errors.ErrCodeInvalidParameter,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			err := suite.handler.OnExecution(tc.execution)
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (suite *ExecutionHandlerTestSuite) TestUnknownOrder() {
	suite.orders.EXPECT().GetOrderByID(int64(7)).Return(nil, errors.Newf(errors.ErrCodeOrderNotFound, "order %d not found", 7))

	execution := suite.execution("e1", "1")
	execution.OrderID = 7

	err := suite.handler.OnExecution(execution)
	suite.True(errors.HasCode(err, errors.ErrCodeOrderNotFound))
	suite.Equal(0, suite.handler.Pending())
}
