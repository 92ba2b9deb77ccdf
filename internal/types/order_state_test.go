package types

import (
	"testing"

	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type OrderStateTestSuite struct {
	suite.Suite
}

func TestOrderStateSuite(t *testing.T) {
	suite.Run(t, new(OrderStateTestSuite))
}

func (suite *OrderStateTestSuite) TestZeroValueIsNew() {
	var state OrderState
	suite.Equal(OrderStatusNew, state.Status())
	suite.False(state.StopTriggered())
}

func (suite *OrderStateTestSuite) TestTransitions() {
	tests := []struct {
		name        string
		path        []OrderStatus
		shouldError bool
	}{
		{"submit then fill", []OrderStatus{OrderStatusSubmitted, OrderStatusFilled}, false},
		{"partial fills then fill", []OrderStatus{OrderStatusSubmitted, OrderStatusPartiallyFilled, OrderStatusPartiallyFilled, OrderStatusFilled}, false},
		{"cancel after partial fill", []OrderStatus{OrderStatusSubmitted, OrderStatusPartiallyFilled, OrderStatusCanceled}, false},
		{"invalid from new", []OrderStatus{OrderStatusInvalid}, false},
		{"fill after cancel", []OrderStatus{OrderStatusSubmitted, OrderStatusCanceled, OrderStatusFilled}, true},
		{"refill after fill", []OrderStatus{OrderStatusSubmitted, OrderStatusFilled, OrderStatusFilled}, true},
		{"back to new", []OrderStatus{OrderStatusSubmitted, OrderStatusNew}, true},
		{"invalid after partial fill", []OrderStatus{OrderStatusSubmitted, OrderStatusPartiallyFilled, OrderStatusInvalid}, true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			state := NewOrderState()

			var err error
			for _, status := range tc.path {
				if err = state.Transition(status); err != nil {
					break
				}
			}

			if tc.shouldError {
				suite.Error(err)
				suite.True(errors.HasCode(err, errors.ErrCodeInvalidOrderTransition))
			} else {
				suite.NoError(err)
				suite.Equal(tc.path[len(tc.path)-1], state.Status())
			}
		})
	}
}

func (suite *OrderStateTestSuite) TestEchoOpenStatusIsNoop() {
	state := NewOrderState()
	suite.Require().NoError(state.Transition(OrderStatusSubmitted))
	suite.NoError(state.Transition(OrderStatusSubmitted))
	suite.Equal(OrderStatusSubmitted, state.Status())
}

func (suite *OrderStateTestSuite) TestCheckTransitionKeepsStatus() {
	state := NewOrderState()
	suite.Require().NoError(state.Transition(OrderStatusSubmitted))

	suite.NoError(state.CheckTransition(OrderStatusFilled))
	suite.Equal(OrderStatusSubmitted, state.Status())

	err := state.CheckTransition(OrderStatusNew)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidOrderTransition))
	suite.Equal(OrderStatusSubmitted, state.Status())
}

func (suite *OrderStateTestSuite) TestStopTriggerIsSticky() {
	state := NewOrderState()
	state.TriggerStop()
	suite.True(state.StopTriggered())

	state.TriggerStop()
	suite.Require().NoError(state.Transition(OrderStatusSubmitted))
	suite.True(state.StopTriggered())
}
