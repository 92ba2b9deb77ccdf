package exercise

import (
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultOptionExerciseModel closes the option position and, for physically settled
// contracts in the money, delivers the underlying at the strike.
//
// The order quantity is negative when a long holder exercises and positive when a
// short holder is assigned.
type DefaultOptionExerciseModel struct{}

func NewDefaultOptionExerciseModel() *DefaultOptionExerciseModel {
	return &DefaultOptionExerciseModel{}
}

// OptionExercise returns the option close event followed by the underlying delivery, if any.
func (m *DefaultOptionExerciseModel) OptionExercise(option *securities.Security, underlying *securities.Security, order *types.Order) ([]types.OrderEvent, error) {
	if option.Symbol.Option.IsNone() {
		return nil, errors.Newf(errors.ErrCodeInvalidExerciseTarget, "%s is not an option", option.Ticker())
	}

	if underlying == nil {
		return nil, errors.Newf(errors.ErrCodeInvalidExerciseTarget, "underlying of %s is not available", option.Ticker())
	}

	if order.Status().IsClosed() || order.Quantity.IsZero() {
		return []types.OrderEvent{types.NewOrderEvent(order, option.UTCTime())}, nil
	}

	contract := option.Symbol.Option.Unwrap()

	underlyingPrice := underlying.Cache.Close()
	if underlyingPrice.IsZero() {
		underlyingPrice = underlying.Price()
	}

	if !underlyingPrice.IsPositive() {
		return nil, errors.Newf(errors.ErrCodeMarketDataMissing, "no price for %s to exercise %s", underlying.Ticker(), option.Ticker())
	}

	intrinsic := contract.IntrinsicValue(underlyingPrice)
	inTheMoney := intrinsic.IsPositive()
	isAssignment := order.Quantity.IsPositive()

	optionEvent := types.NewOrderEvent(order, option.UTCTime())
	optionEvent.Status = types.OrderStatusFilled
	optionEvent.FillQuantity = order.Quantity
	optionEvent.FillPrice = decimal.Zero
	optionEvent.FillPriceCurrency = option.QuoteCurrency()
	optionEvent.OrderFee = decimal.Zero
	optionEvent.IsAssignment = isAssignment

	switch {
	case !inTheMoney:
		optionEvent.Message = "OTM"

		return []types.OrderEvent{optionEvent}, nil
	case contract.Settlement == types.SettlementTypeCash:
		optionEvent.FillPrice = intrinsic
		optionEvent.Message = exerciseMessage(isAssignment) + " cash settled"

		return []types.OrderEvent{optionEvent}, nil
	}

	optionEvent.Message = exerciseMessage(isAssignment)

	// a long call exercise buys the underlying, a long put exercise sells it
	delivered := order.Quantity.Neg().Mul(option.Multiplier())
	if contract.Right == types.OptionRightPut {
		delivered = delivered.Neg()
	}

	underlyingEvent := types.NewOrderEvent(order, option.UTCTime())
	underlyingEvent.Symbol = underlying.Ticker()
	underlyingEvent.Status = types.OrderStatusFilled
	underlyingEvent.Direction = types.DirectionOf(delivered)
	underlyingEvent.FillQuantity = delivered
	underlyingEvent.FillPrice = contract.Strike
	underlyingEvent.FillPriceCurrency = underlying.QuoteCurrency()
	underlyingEvent.OrderFee = decimal.Zero
	underlyingEvent.IsAssignment = isAssignment
	underlyingEvent.Message = optionEvent.Message + " delivery"

	return []types.OrderEvent{optionEvent, underlyingEvent}, nil
}

func exerciseMessage(isAssignment bool) string {
	if isAssignment {
		return "Assignment"
	}

	return "Exercise"
}
