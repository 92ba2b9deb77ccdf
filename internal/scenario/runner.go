package scenario

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/rxtech-lab/argo-fills/internal/engine"
	"github.com/rxtech-lab/argo-fills/internal/logger"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BarIterator yields trade bars ordered by time.
type BarIterator func(yield func(types.TradeBar, error) bool)

// Result summarizes a replay.
type Result struct {
	Slices                int
	Bars                  int
	Events                int
	Rejected              int
	RejectedUpdates       int
	UnresolvedMarginCalls int
	Orders                []*types.Order
	Cash                  decimal.Decimal
	UnsettledCash         decimal.Decimal
	TotalPortfolioValue   decimal.Decimal
	TotalFees             decimal.Decimal
	TotalNetProfit        decimal.Decimal
}

// Runner replays bars through the engine and places the scenario orders as their time comes.
// Bars that end at the same time are delivered in one slice; orders due by the end of a
// slice are submitted after it and fill from the next slice on.
type Runner struct {
	handler  *engine.TransactionHandler
	orders   []OrderSpec
	cancels  map[int64]time.Time
	updates  []orderUpdate
	next     int
	events   int
	progress func(bars int)
	log      *logger.Logger
}

// NewRunner creates a runner for the scenario orders. The engine must already hold the securities.
func NewRunner(handler *engine.TransactionHandler, scenario *Scenario, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNopLogger()
	}

	runner := &Runner{
		handler:  handler,
		orders:   scenario.SortedOrders(),
		cancels:  make(map[int64]time.Time),
		updates:  nil,
		next:     0,
		events:   0,
		progress: nil,
		log:      log,
	}

	handler.OnOrderEvent(func(types.OrderEvent) {
		runner.events++
	})

	return runner
}

// OnProgress registers a callback receiving the number of bars of every replayed slice.
func (r *Runner) OnProgress(progress func(bars int)) {
	r.progress = progress
}

// Run replays the bars until they run out or the context is done.
func (r *Runner) Run(ctx context.Context, bars BarIterator) (Result, error) {
	result := Result{}

	var (
		slice []types.MarketData
		end   time.Time
	)

	flush := func() error {
		if len(slice) == 0 {
			return nil
		}

		defer func() { slice = slice[:0] }()

		result.Slices++
		result.Bars += len(slice)

		if err := r.step(end, slice, &result); err != nil {
			return err
		}

		if r.progress != nil {
			r.progress(len(slice))
		}

		return nil
	}

	config := r.handler.Config()

	for bar, err := range bars {
		if err != nil {
			return result, err
		}

		if err := ctx.Err(); err != nil {
			return result, err
		}

		barEnd := bar.GetEndTime()
		if !config.InWindow(barEnd) {
			continue
		}

		if !barEnd.Equal(end) {
			if err := flush(); err != nil {
				return result, err
			}

			end = barEnd
		}

		slice = append(slice, bar)
	}

	if err := flush(); err != nil {
		return result, err
	}

	r.summarize(&result)

	return result, nil
}

func (r *Runner) step(utcTime time.Time, data []types.MarketData, result *Result) error {
	err := r.handler.OnData(utcTime, data...)

	switch {
	case errors.HasCode(err, errors.ErrCodeMarginCallUnresolved):
		result.UnresolvedMarginCalls++
		r.log.Warn("Margin call unresolved", zap.Time("time", utcTime), zap.Error(err))
	case err != nil:
		return err
	}

	if err := r.submitDue(utcTime, result); err != nil {
		return err
	}

	if err := r.updateDue(utcTime, result); err != nil {
		return err
	}

	return r.cancelDue(utcTime)
}

func (r *Runner) submitDue(utcTime time.Time, result *Result) error {
	for ; r.next < len(r.orders) && !r.orders[r.next].Time.After(utcTime); r.next++ {
		entry := r.orders[r.next]
		order := entry.Order()

		if entry.TargetPercent != nil {
			quantity, ok := r.targetQuantity(entry.Symbol, *entry.TargetPercent)
			if !ok {
				continue
			}

			order.Quantity = quantity
		}

		event, err := r.handler.SubmitOrder(order)
		if err != nil {
			if event.Status != types.OrderStatusInvalid {
				return err
			}

			result.Rejected++

			continue
		}

		if entry.CancelAt != nil {
			r.cancels[order.ID] = entry.CancelAt.UTC()
		}

		for _, update := range entry.Updates {
			r.updates = append(r.updates, orderUpdate{orderID: order.ID, update: update})
		}
	}

	slices.SortStableFunc(r.updates, func(a, b orderUpdate) int {
		return a.update.Time.Compare(b.update.Time)
	})

	return nil
}

type orderUpdate struct {
	orderID int64
	update  UpdateSpec
}

// updateDue applies the updates due by utcTime. Updates of closed orders are skipped and
// rejected updates leave the order unchanged.
func (r *Runner) updateDue(utcTime time.Time, result *Result) error {
	due := 0
	for due < len(r.updates) && !r.updates[due].update.Time.After(utcTime) {
		due++
	}

	applied := r.updates[:due]
	r.updates = r.updates[due:]

	for _, entry := range applied {
		order, err := r.handler.GetOrderByID(entry.orderID)
		if err != nil {
			return err
		}

		if !order.Status().IsOpen() {
			continue
		}

		_, err = r.handler.UpdateOrder(entry.orderID, entry.update.Fields())

		switch {
		case errors.HasCode(err, errors.ErrCodeInvalidOrder), errors.HasCode(err, errors.ErrCodeInsufficientBuyingPower):
			result.RejectedUpdates++
			r.log.Warn("Order update rejected", zap.Int64("order_id", entry.orderID), zap.Error(err))
		case err != nil:
			return err
		}
	}

	return nil
}

// targetQuantity resolves a target weight into an order quantity. Unknown symbols are left to the
// engine to reject; a target already reached places nothing.
func (r *Runner) targetQuantity(symbol string, target decimal.Decimal) (decimal.Decimal, bool) {
	security, err := r.handler.Portfolio().Securities().Get(symbol)
	if err != nil {
		return decimal.Zero, true
	}

	quantity := r.handler.Margin().CalculateOrderQuantity(security, target)
	if quantity.IsZero() {
		r.log.Debug("Target already reached", zap.String("symbol", symbol), zap.String("target", target.String()))

		return decimal.Zero, false
	}

	return quantity, true
}

func (r *Runner) cancelDue(utcTime time.Time) error {
	for _, id := range slices.Sorted(maps.Keys(r.cancels)) {
		if r.cancels[id].After(utcTime) {
			continue
		}

		delete(r.cancels, id)

		order, err := r.handler.GetOrderByID(id)
		if err != nil {
			return err
		}

		if !order.Status().IsOpen() {
			continue
		}

		if _, err := r.handler.CancelOrder(id, ""); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) summarize(result *Result) {
	p := r.handler.Portfolio()

	result.Events = r.events
	result.Orders = r.handler.GetOrders()
	result.Cash = p.Cash()
	result.UnsettledCash = p.UnsettledCash()
	result.TotalPortfolioValue = p.TotalPortfolioValue()
	result.TotalFees = p.TotalFees()
	result.TotalNetProfit = p.TotalNetProfit()
}
