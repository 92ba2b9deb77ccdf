package securities

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
)

// FeeModel computes the fee of an order in the account currency.
type FeeModel interface {
	GetOrderFee(security *Security, order *types.Order) decimal.Decimal
}

// SlippageModel estimates the unsigned price impact of an order in the quote currency.
type SlippageModel interface {
	GetSlippageApproximation(security *Security, order *types.Order) decimal.Decimal
}

// FillModel decides whether and at which price an order fills against the current security data.
// Every method returns an event, a zero fill quantity means the order did not fill.
type FillModel interface {
	MarketFill(security *Security, order *types.Order) types.OrderEvent
	LimitFill(security *Security, order *types.Order) types.OrderEvent
	StopMarketFill(security *Security, order *types.Order) types.OrderEvent
	StopLimitFill(security *Security, order *types.Order) types.OrderEvent
	MarketOnOpenFill(security *Security, order *types.Order) types.OrderEvent
	MarketOnCloseFill(security *Security, order *types.Order) types.OrderEvent
}

// SettlementModel decides when the cash of a trade becomes available.
type SettlementModel interface {
	// SettlementTime returns the UTC instant at which the amount settles, or None when it settles immediately.
	SettlementTime(security *Security, utcFillTime time.Time, amount decimal.Decimal) optional.Option[time.Time]
}

// ExerciseModel turns an option exercise order into fill events for the option and, for
// physical delivery, the underlying.
type ExerciseModel interface {
	OptionExercise(option *Security, underlying *Security, order *types.Order) ([]types.OrderEvent, error)
}
