package types

import (
	"slices"

	"github.com/rxtech-lab/argo-fills/pkg/errors"
)

// orderTransitions lists the statuses reachable from each open status.
// Closed statuses have no outgoing transitions.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusNew: {
		OrderStatusSubmitted,
		OrderStatusPartiallyFilled,
		OrderStatusFilled,
		OrderStatusCanceled,
		OrderStatusInvalid,
	},
	OrderStatusSubmitted: {
		OrderStatusPartiallyFilled,
		OrderStatusFilled,
		OrderStatusCanceled,
		OrderStatusInvalid,
	},
	OrderStatusPartiallyFilled: {
		OrderStatusPartiallyFilled,
		OrderStatusFilled,
		OrderStatusCanceled,
	},
}

// OrderState is the mutable part of an order: its status and the sticky stop trigger.
// The zero value is a NEW order whose stop has not triggered.
type OrderState struct {
	status        OrderStatus
	stopTriggered bool
}

// NewOrderState returns the state of a freshly created order.
func NewOrderState() OrderState {
	return OrderState{
		status:        OrderStatusNew,
		stopTriggered: false,
	}
}

// Status returns the current status.
func (s *OrderState) Status() OrderStatus {
	if s.status == "" {
		return OrderStatusNew
	}

	return s.status
}

// CanTransition reports whether moving to the given status is allowed.
func (s *OrderState) CanTransition(to OrderStatus) bool {
	return slices.Contains(orderTransitions[s.Status()], to)
}

// Transition moves the order to a new status.
// Echoing the current status of an open order is a no-op.
func (s *OrderState) Transition(to OrderStatus) error {
	if err := s.CheckTransition(to); err != nil {
		return err
	}

	s.status = to

	return nil
}

// CheckTransition returns the error Transition would return without changing the status.
func (s *OrderState) CheckTransition(to OrderStatus) error {
	from := s.Status()
	if from == to && from.IsOpen() {
		return nil
	}

	if !s.CanTransition(to) {
		return errors.Newf(errors.ErrCodeInvalidOrderTransition, "cannot move order from %s to %s", from, to)
	}

	return nil
}

// StopTriggered reports whether the stop price has been reached.
func (s *OrderState) StopTriggered() bool {
	return s.stopTriggered
}

// TriggerStop marks the stop as reached. Once set it stays set.
func (s *OrderState) TriggerStop() {
	s.stopTriggered = true
}
