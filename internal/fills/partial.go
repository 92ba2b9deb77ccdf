package fills

import (
	"math/rand"
	"sync"

	"github.com/rxtech-lab/argo-fills/internal/logger"
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PartialFillModel fills market orders in random slices of their remaining quantity.
// Every other order kind is filled by the embedded immediate model.
type PartialFillModel struct {
	*ImmediateFillModel

	mu                sync.Mutex
	rng               *rand.Rand
	absoluteRemaining map[int64]decimal.Decimal
	log               *logger.Logger
}

// NewPartialFillModel creates a partial fill model. The same seed always produces the same fills.
func NewPartialFillModel(seed int64, log *logger.Logger) *PartialFillModel {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &PartialFillModel{
		ImmediateFillModel: NewImmediateFillModel(),
		mu:                 sync.Mutex{},
		rng:                rand.New(rand.NewSource(seed)), //nolint:gosec // reproducible simulation, not security sensitive
		absoluteRemaining:  make(map[int64]decimal.Decimal),
		log:                log,
	}
}

// MarketFill fills a random share of the remaining quantity, up to all of it.
func (m *PartialFillModel) MarketFill(security *securities.Security, order *types.Order) types.OrderEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	remaining, ok := m.absoluteRemaining[order.ID]
	if !ok {
		remaining = order.AbsoluteQuantity()
	}

	fill := m.ImmediateFillModel.MarketFill(security, order)
	if !fill.IsFill() {
		return fill
	}

	// draw from [0, 2*|q|] so a full fill happens about half of the time
	upper := order.AbsoluteQuantity().Mul(decimal.NewFromInt(2)).IntPart()

	absoluteFill := remaining
	if upper > 0 {
		absoluteFill = decimal.Min(remaining, decimal.NewFromInt(m.rng.Int63n(upper+1)))
	}

	if !absoluteFill.Equal(remaining) {
		absoluteFill = security.Properties.RoundQuantity(absoluteFill)
	}

	if absoluteFill.IsZero() {
		m.absoluteRemaining[order.ID] = remaining

		return types.NewOrderEvent(order, fill.UTCTime)
	}

	fill.FillQuantity = absoluteFill
	if order.Quantity.IsNegative() {
		fill.FillQuantity = absoluteFill.Neg()
	}

	sliceOrder := *order
	sliceOrder.Quantity = fill.FillQuantity
	fill.OrderFee = security.OrderFee(&sliceOrder)

	if absoluteFill.Equal(remaining) {
		fill.Status = types.OrderStatusFilled
		delete(m.absoluteRemaining, order.ID)
	} else {
		fill.Status = types.OrderStatusPartiallyFilled
		m.absoluteRemaining[order.ID] = remaining.Sub(absoluteFill)
	}

	m.log.Debug("Partial fill",
		zap.Int64("order_id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("fill_quantity", fill.FillQuantity.String()),
		zap.String("remaining", m.remaining(order.ID).String()),
	)

	return fill
}

// Remaining returns the unfilled absolute quantity of an order the model has seen.
func (m *PartialFillModel) Remaining(orderID int64) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.remaining(orderID)
}

func (m *PartialFillModel) remaining(orderID int64) decimal.Decimal {
	if remaining, ok := m.absoluteRemaining[orderID]; ok {
		return remaining
	}

	return decimal.Zero
}
