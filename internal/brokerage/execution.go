package brokerage

import (
	"slices"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-fills/internal/logger"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultCommissionWait is how long an execution waits for its commission report.
const DefaultCommissionWait = 30 * time.Second

// Execution is a fill reported by a live brokerage.
type Execution struct {
	ExecID  string
	OrderID int64
	Symbol  string
	// Quantity is signed, negative for sells
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Currency string
	Time     time.Time
}

// CommissionReport carries the commission charged for one execution.
// OrderID and Time are optional. A report that arrives before its execution is
// held until the order closes or, when Time is set, until it is older than the
// commission wait.
type CommissionReport struct {
	ExecID     string
	OrderID    int64
	Commission decimal.Decimal
	Currency   string
	Time       time.Time
}

// OrderProvider looks up the orders that executions refer to.
type OrderProvider interface {
	GetOrderByID(orderID int64) (*types.Order, error)
}

// EventSink receives the order events built from executions.
type EventSink func(event types.OrderEvent) error

// FeeConverter converts a commission into the account currency.
type FeeConverter func(amount decimal.Decimal, currency string) (decimal.Decimal, error)

// ExecutionHandler pairs executions with their commission reports and turns them
// into order events. Re-delivered executions are discarded.
type ExecutionHandler struct {
	mu          sync.Mutex
	orders      OrderProvider
	sink        EventSink
	convert     FeeConverter
	log         *logger.Logger
	pending     map[string]Execution
	commissions map[string]CommissionReport
	processed   map[string]struct{}
	filled      map[int64]decimal.Decimal
}

// NewExecutionHandler creates a handler. convert may be nil when commissions are already in the account currency.
func NewExecutionHandler(orders OrderProvider, sink EventSink, convert FeeConverter, log *logger.Logger) *ExecutionHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &ExecutionHandler{
		mu:          sync.Mutex{},
		orders:      orders,
		sink:        sink,
		convert:     convert,
		log:         log,
		pending:     make(map[string]Execution),
		commissions: make(map[string]CommissionReport),
		processed:   make(map[string]struct{}),
		filled:      make(map[int64]decimal.Decimal),
	}
}

// OnExecution records an execution. It is emitted right away if its commission
// report already arrived, otherwise it waits for the report.
func (h *ExecutionHandler) OnExecution(execution Execution) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if execution.ExecID == "" {
		return errors.New(errors.ErrCodeMissingParameter, "execution id is required")
	}

	if h.seen(execution.ExecID) {
		h.log.Debug("Discarding duplicate execution", zap.String("exec_id", execution.ExecID))

		return errors.Newf(errors.ErrCodeDuplicateExecution, "execution %s was already received", execution.ExecID)
	}

	if execution.Quantity.IsZero() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "execution %s has zero quantity", execution.ExecID)
	}

	if _, err := h.orders.GetOrderByID(execution.OrderID); err != nil {
		return err
	}

	report, ok := h.commissions[execution.ExecID]
	if !ok {
		h.pending[execution.ExecID] = execution

		return nil
	}

	if err := h.emit(execution, report.Commission, report.Currency); err != nil {
		return err
	}

	delete(h.commissions, execution.ExecID)

	return nil
}

// OnCommissionReport records a commission report and emits its execution if it is waiting.
// Reports for executions that were already emitted are dropped.
func (h *ExecutionHandler) OnCommissionReport(report CommissionReport) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if report.ExecID == "" {
		return errors.New(errors.ErrCodeMissingParameter, "commission report execution id is required")
	}

	if _, ok := h.processed[report.ExecID]; ok {
		h.log.Warn("Dropping commission report for a processed execution",
			zap.String("exec_id", report.ExecID),
			zap.String("commission", report.Commission.String()),
		)

		return nil
	}

	execution, ok := h.pending[report.ExecID]
	if !ok {
		h.commissions[report.ExecID] = report

		return nil
	}

	delete(h.pending, report.ExecID)

	// a failed execution is forgotten and its report kept for the re-delivery
	if err := h.emit(execution, report.Commission, report.Currency); err != nil {
		h.commissions[report.ExecID] = report

		return err
	}

	return nil
}

// ExpirePending emits executions that waited longer than maxAge for their commission, with a zero fee.
// Held commission reports whose order is closed or that are older than maxAge are dropped.
func (h *ExecutionHandler) ExpirePending(utcNow time.Time, maxAge time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.expireCommissions(utcNow, maxAge)

	var expired []Execution

	for _, execution := range h.pending {
		if utcNow.Sub(execution.Time) >= maxAge {
			expired = append(expired, execution)
		}
	}

	slices.SortFunc(expired, func(a, b Execution) int {
		if c := a.Time.Compare(b.Time); c != 0 {
			return c
		}

		if a.ExecID < b.ExecID {
			return -1
		}

		if a.ExecID > b.ExecID {
			return 1
		}

		return 0
	})

	for _, execution := range expired {
		delete(h.pending, execution.ExecID)
		h.log.Warn("Commission report never arrived, using zero fee",
			zap.String("exec_id", execution.ExecID),
			zap.Int64("order_id", execution.OrderID),
		)

		if err := h.emit(execution, decimal.Zero, ""); err != nil {
			return err
		}
	}

	return nil
}

func (h *ExecutionHandler) expireCommissions(utcNow time.Time, maxAge time.Duration) {
	for execID, report := range h.commissions {
		stale := !report.Time.IsZero() && utcNow.Sub(report.Time) >= maxAge

		if !stale && report.OrderID != 0 {
			order, err := h.orders.GetOrderByID(report.OrderID)
			stale = err != nil || order.Status().IsClosed()
		}

		if stale {
			h.log.Warn("Dropping commission report without execution",
				zap.String("exec_id", execID),
				zap.Int64("order_id", report.OrderID),
			)
			delete(h.commissions, execID)
		}
	}
}

func (h *ExecutionHandler) dropCommissions(orderID int64) {
	for execID, report := range h.commissions {
		if report.OrderID == orderID {
			delete(h.commissions, execID)
		}
	}
}

// Filled returns the cumulative signed quantity filled for the order.
func (h *ExecutionHandler) Filled(orderID int64) decimal.Decimal {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.filled[orderID]
}

// Pending returns the number of executions waiting for a commission report.
func (h *ExecutionHandler) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.pending)
}

// HeldCommissions returns the number of commission reports waiting for their execution.
func (h *ExecutionHandler) HeldCommissions() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.commissions)
}

func (h *ExecutionHandler) seen(execID string) bool {
	if _, ok := h.processed[execID]; ok {
		return true
	}

	_, ok := h.pending[execID]

	return ok
}

func (h *ExecutionHandler) emit(execution Execution, commission decimal.Decimal, currency string) error {
	order, err := h.orders.GetOrderByID(execution.OrderID)
	if err != nil {
		return err
	}

	fee := commission.Abs()
	if h.convert != nil && currency != "" && !fee.IsZero() {
		fee, err = h.convert(fee, currency)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeUnsupportedCurrency, err, "failed to convert commission of execution %s", execution.ExecID)
		}
	}

	filled := h.filled[order.ID].Add(execution.Quantity)

	event := types.NewOrderEvent(order, execution.Time)
	event.Status = types.OrderStatusPartiallyFilled

	if filled.Abs().GreaterThanOrEqual(order.AbsoluteQuantity()) {
		event.Status = types.OrderStatusFilled
	}

	event.FillPrice = execution.Price
	event.FillPriceCurrency = execution.Currency
	event.FillQuantity = execution.Quantity
	event.OrderFee = fee
	event.Message = "execution " + execution.ExecID

	h.log.Debug("Execution filled",
		zap.String("exec_id", execution.ExecID),
		zap.Int64("order_id", order.ID),
		zap.String("status", string(event.Status)),
		zap.String("fill_quantity", execution.Quantity.String()),
		zap.String("fill_price", execution.Price.String()),
		zap.String("fee", fee.String()),
	)

	if err := h.sink(event); err != nil {
		return err
	}

	h.filled[order.ID] = filled
	h.processed[execution.ExecID] = struct{}{}

	if event.Status == types.OrderStatusFilled {
		h.dropCommissions(order.ID)
	}

	return nil
}
