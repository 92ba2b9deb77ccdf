package fills

import (
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
)

// Fill evaluates the order with the method of the model matching its type.
// Option exercise is not a fill decision and is rejected here.
func Fill(model securities.FillModel, security *securities.Security, order *types.Order) (types.OrderEvent, error) {
	if model == nil {
		model = NewImmediateFillModel()
	}

	switch order.Type {
	case types.OrderTypeMarket:
		return model.MarketFill(security, order), nil
	case types.OrderTypeLimit:
		return model.LimitFill(security, order), nil
	case types.OrderTypeStopMarket:
		return model.StopMarketFill(security, order), nil
	case types.OrderTypeStopLimit:
		return model.StopLimitFill(security, order), nil
	case types.OrderTypeMarketOnOpen:
		return model.MarketOnOpenFill(security, order), nil
	case types.OrderTypeMarketOnClose:
		return model.MarketOnCloseFill(security, order), nil
	case types.OrderTypeOptionExercise:
		return types.OrderEvent{}, errors.Newf(errors.ErrCodeUnsupportedOrderType, "order %d is an option exercise and has no fill model", order.ID)
	default:
		return types.OrderEvent{}, errors.Newf(errors.ErrCodeUnsupportedOrderType, "unsupported order type %s", order.Type)
	}
}
