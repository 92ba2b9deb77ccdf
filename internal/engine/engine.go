package engine

import (
	"path/filepath"
	"time"

	"github.com/rxtech-lab/argo-fills/internal/brokerage"
	"github.com/rxtech-lab/argo-fills/internal/eventlog"
	"github.com/rxtech-lab/argo-fills/internal/exercise"
	"github.com/rxtech-lab/argo-fills/internal/fills"
	"github.com/rxtech-lab/argo-fills/internal/logger"
	"github.com/rxtech-lab/argo-fills/internal/margin"
	"github.com/rxtech-lab/argo-fills/internal/portfolio"
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderEventHandler is called for every order event the engine accepts.
type OrderEventHandler func(event types.OrderEvent)

// MarginCallHandler is called when the margin model warns or issues margin call orders.
type MarginCallHandler func(orders []*types.Order, warning bool)

// TransactionHandler drives orders through the fill models and books the fills in the portfolio.
// It is not safe for concurrent use; live executions are serialized by brokerage.ExecutionHandler.
type TransactionHandler struct {
	config    Config
	portfolio *portfolio.Portfolio
	margin    *margin.Model
	brokerage *brokerage.Model
	exercise  securities.ExerciseModel
	ids       *brokerage.OrderIDGenerator
	orders    map[int64]*types.Order
	orderIDs  []int64
	eventLog  *eventlog.Log
	onEvent   []OrderEventHandler
	onMargin  []MarginCallHandler
	utcTime   time.Time
	log       *logger.Logger
}

// NewTransactionHandler validates the config and creates an engine with its starting cash.
func NewTransactionHandler(config Config, seeder brokerage.Seeder, log *logger.Logger) (*TransactionHandler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	p := portfolio.NewPortfolio(config.AccountCurrency, securities.NewManager(), log)
	for _, cash := range config.Cash {
		p.SetCash(cash.Currency, cash.Amount, cash.ConversionRate)
	}

	var eventLog *eventlog.Log

	if config.EventLog {
		var err error

		eventLog, err = eventlog.NewLog(log)
		if err != nil {
			return nil, err
		}
	}

	return &TransactionHandler{
		config:    config,
		portfolio: p,
		margin:    margin.NewModel(p, config.MarginWarningFraction, config.MarginCallThreshold, log),
		brokerage: brokerage.NewModel(config.BrokerageOptions(), seeder, log),
		exercise:  exercise.NewDefaultOptionExerciseModel(),
		ids:       brokerage.NewOrderIDGenerator(0),
		orders:    make(map[int64]*types.Order),
		orderIDs:  nil,
		eventLog:  eventLog,
		onEvent:   nil,
		onMargin:  nil,
		utcTime:   time.Time{},
		log:       log,
	}, nil
}

func (h *TransactionHandler) Config() Config                              { return h.config }
func (h *TransactionHandler) Portfolio() *portfolio.Portfolio             { return h.portfolio }
func (h *TransactionHandler) Margin() *margin.Model                       { return h.margin }
func (h *TransactionHandler) OrderIDs() *brokerage.OrderIDGenerator       { return h.ids }
func (h *TransactionHandler) UTCTime() time.Time                          { return h.utcTime }
func (h *TransactionHandler) SetExerciseModel(m securities.ExerciseModel) { h.exercise = m }

// EventLog returns the transaction log, nil when the log is disabled.
func (h *TransactionHandler) EventLog() *eventlog.Log {
	return h.eventLog
}

// OnOrderEvent registers a callback for order events.
func (h *TransactionHandler) OnOrderEvent(handler OrderEventHandler) {
	h.onEvent = append(h.onEvent, handler)
}

// OnMarginCall registers a callback for margin warnings and margin calls.
func (h *TransactionHandler) OnMarginCall(handler MarginCallHandler) {
	h.onMargin = append(h.onMargin, handler)
}

// AddSecurities initializes the securities with the brokerage model, adds them to the
// portfolio and checks that every currency can be converted to the account currency.
func (h *TransactionHandler) AddSecurities(list ...*securities.Security) error {
	for _, security := range list {
		h.brokerage.Initialize(security)

		if err := h.portfolio.AddSecurity(security); err != nil {
			return err
		}
	}

	h.portfolio.UpdateConversionRates()

	return h.portfolio.Validate()
}

// SubmitOrder validates the order and checks buying power. Rejected orders become INVALID
// and the returned error says why. Orders without an id get one from the engine.
func (h *TransactionHandler) SubmitOrder(order *types.Order) (types.OrderEvent, error) {
	return h.submit(order, true)
}

func (h *TransactionHandler) submit(order *types.Order, checkBuyingPower bool) (types.OrderEvent, error) {
	if order.ID == 0 {
		order.ID = h.ids.Next()
	}

	if _, exists := h.orders[order.ID]; exists {
		return types.OrderEvent{}, errors.Newf(errors.ErrCodeInvalidOrder, "order %d was already submitted", order.ID)
	}

	if order.Time.IsZero() {
		order.Time = h.utcTime
	}

	h.orders[order.ID] = order
	h.orderIDs = append(h.orderIDs, order.ID)

	if h.eventLog != nil {
		if err := h.eventLog.RecordOrder(order); err != nil {
			return types.OrderEvent{}, err
		}
	}

	if err := order.Validate(); err != nil {
		return h.reject(order, err)
	}

	security, err := h.portfolio.Securities().Get(order.Symbol)
	if err != nil {
		return h.reject(order, err)
	}

	var exerciseEvents []types.OrderEvent

	if order.Type == types.OrderTypeOptionExercise {
		if exerciseEvents, err = h.exerciseEvents(security, order); err != nil {
			return h.reject(order, err)
		}
	} else if checkBuyingPower {
		result := h.margin.HasSufficientBuyingPowerForOrder(security, order)
		if !result.IsSufficient {
			cause := errors.NewInsufficientBuyingPowerError(order.ID, result.Required.String(), result.Available.String())

			return h.reject(order, errors.Wrap(errors.ErrCodeInsufficientBuyingPower, result.Reason, cause))
		}
	}

	if err := order.State.Transition(types.OrderStatusSubmitted); err != nil {
		return types.OrderEvent{}, err
	}

	event := types.NewOrderEvent(order, h.utcTime)
	if err := h.record(event); err != nil {
		return event, err
	}

	for _, exerciseEvent := range exerciseEvents {
		if err := h.HandleOrderEvent(exerciseEvent); err != nil {
			return event, err
		}
	}

	return event, nil
}

func (h *TransactionHandler) reject(order *types.Order, cause error) (types.OrderEvent, error) {
	if err := order.State.Transition(types.OrderStatusInvalid); err != nil {
		return types.OrderEvent{}, err
	}

	event := types.NewOrderEvent(order, h.utcTime)
	event.Message = cause.Error()

	h.log.Warn("Order rejected", zap.Int64("order_id", order.ID), zap.String("symbol", order.Symbol), zap.Error(cause))

	if err := h.record(event); err != nil {
		return event, err
	}

	return event, cause
}

// checkExercise requires a holding on the side the exercise closes.
func (h *TransactionHandler) checkExercise(option *securities.Security, order *types.Order) error {
	if option.Symbol.Option.IsNone() {
		return errors.Newf(errors.ErrCodeInvalidExerciseTarget, "%s is not an option", option.Ticker())
	}

	holding := option.Holding.Quantity
	if holding.IsZero() || holding.Sign() == order.Quantity.Sign() || order.AbsoluteQuantity().GreaterThan(holding.Abs()) {
		return errors.Newf(errors.ErrCodeInvalidExerciseTarget,
			"cannot exercise %s contracts of %s holding %s", order.Quantity, option.Ticker(), holding)
	}

	return nil
}

// exerciseEvents returns the fills of an exercise order without applying them.
func (h *TransactionHandler) exerciseEvents(option *securities.Security, order *types.Order) ([]types.OrderEvent, error) {
	if err := h.checkExercise(option, order); err != nil {
		return nil, err
	}

	underlying, err := h.portfolio.Securities().Get(option.Symbol.Option.Unwrap().Underlying)
	if err != nil {
		return nil, err
	}

	return h.exercise.OptionExercise(option, underlying, order)
}

// CancelOrder cancels an open order.
func (h *TransactionHandler) CancelOrder(orderID int64, tag string) (types.OrderEvent, error) {
	order, err := h.GetOrderByID(orderID)
	if err != nil {
		return types.OrderEvent{}, err
	}

	if err := order.State.Transition(types.OrderStatusCanceled); err != nil {
		return types.OrderEvent{}, err
	}

	if tag != "" {
		order.Tag = tag
	}

	event := types.NewOrderEvent(order, h.utcTime)
	event.Message = "canceled"

	return event, h.record(event)
}

// UpdateOrder changes the quantity, prices or tag of an open order. A rejected update
// leaves the order as it was. The quantity of a partially filled order cannot change.
func (h *TransactionHandler) UpdateOrder(orderID int64, fields types.UpdateOrderFields) (types.OrderEvent, error) {
	order, err := h.GetOrderByID(orderID)
	if err != nil {
		return types.OrderEvent{}, err
	}

	if !order.Status().IsOpen() {
		return types.OrderEvent{}, errors.Newf(errors.ErrCodeInvalidOrder, "order %d is %s and cannot be updated", orderID, order.Status())
	}

	if order.Type == types.OrderTypeOptionExercise {
		return types.OrderEvent{}, errors.Newf(errors.ErrCodeInvalidOrder, "exercise order %d cannot be updated", orderID)
	}

	if fields.IsEmpty() {
		return types.OrderEvent{}, errors.Newf(errors.ErrCodeInvalidOrder, "update of order %d changes nothing", orderID)
	}

	updated, err := order.Updated(fields)
	if err != nil {
		return types.OrderEvent{}, err
	}

	if !updated.Quantity.Equal(order.Quantity) {
		if order.Status() == types.OrderStatusPartiallyFilled {
			return types.OrderEvent{}, errors.Newf(errors.ErrCodeInvalidOrder, "order %d is partially filled and its quantity cannot change", orderID)
		}

		grows := updated.AbsoluteQuantity().GreaterThan(order.AbsoluteQuantity()) || updated.Direction() != order.Direction()
		if grows {
			security, err := h.portfolio.Securities().Get(order.Symbol)
			if err != nil {
				return types.OrderEvent{}, err
			}

			result := h.margin.HasSufficientBuyingPowerForOrder(security, updated)
			if !result.IsSufficient {
				cause := errors.NewInsufficientBuyingPowerError(order.ID, result.Required.String(), result.Available.String())

				return types.OrderEvent{}, errors.Wrap(errors.ErrCodeInsufficientBuyingPower, result.Reason, cause)
			}
		}
	}

	order.Quantity = updated.Quantity
	order.LimitPrice = updated.LimitPrice
	order.StopPrice = updated.StopPrice
	order.Tag = updated.Tag

	if h.eventLog != nil {
		if err := h.eventLog.RecordOrder(order); err != nil {
			return types.OrderEvent{}, err
		}
	}

	event := types.NewOrderEvent(order, h.utcTime)
	event.Message = "updated"

	return event, h.record(event)
}

// GetOrderByID returns the order with the given id.
func (h *TransactionHandler) GetOrderByID(orderID int64) (*types.Order, error) {
	order, ok := h.orders[orderID]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeOrderNotFound, "order %d not found", orderID)
	}

	return order, nil
}

// GetOrders returns every submitted order in submission order.
func (h *TransactionHandler) GetOrders() []*types.Order {
	orders := make([]*types.Order, 0, len(h.orderIDs))
	for _, id := range h.orderIDs {
		orders = append(orders, h.orders[id])
	}

	return orders
}

// GetOpenOrders returns the orders that can still fill. An empty symbol matches all.
func (h *TransactionHandler) GetOpenOrders(symbol string) []*types.Order {
	var open []*types.Order

	for _, order := range h.GetOrders() {
		if order.Status().IsOpen() && (symbol == "" || order.Symbol == symbol) {
			open = append(open, order)
		}
	}

	return open
}

// OnData advances the clock, stores the updates in the security caches, settles matured
// cash, fills open orders and handles margin calls.
func (h *TransactionHandler) OnData(utcTime time.Time, data ...types.MarketData) error {
	h.utcTime = utcTime.UTC()
	h.portfolio.Securities().SetTime(h.utcTime)

	for _, update := range data {
		lookup := h.portfolio.Securities().Lookup(update.GetSymbol())
		if lookup.IsNone() {
			h.log.Debug("Ignoring data for an unknown security", zap.String("symbol", update.GetSymbol()))

			continue
		}

		lookup.Unwrap().Update(update)
	}

	h.portfolio.ScanForCashSettlement(h.utcTime)
	h.portfolio.UpdateConversionRates()

	if err := h.fillOpenOrders(h.GetOpenOrders("")); err != nil {
		return err
	}

	return h.checkMargin()
}

func (h *TransactionHandler) fillOpenOrders(orders []*types.Order) error {
	for _, order := range orders {
		if order.Type == types.OrderTypeOptionExercise || !order.Status().IsOpen() {
			continue
		}

		security, err := h.portfolio.Securities().Get(order.Symbol)
		if err != nil {
			return err
		}

		event, err := fills.Fill(security.FillModel, security, order)
		if err != nil {
			return err
		}

		if err := h.HandleOrderEvent(event); err != nil {
			return err
		}
	}

	return nil
}

// checkMargin issues margin call orders for the part of the deficit that open margin call
// orders do not already cover, and cancels open margin call orders once the call is over.
func (h *TransactionHandler) checkMargin() error {
	open := h.openMarginCallOrders()

	if len(open) > 0 && !h.margin.InMarginCall() {
		for _, order := range open {
			if _, err := h.CancelOrder(order.ID, ""); err != nil {
				return err
			}
		}

		open = nil
	}

	pending := make(map[string]decimal.Decimal, len(open))
	for _, order := range open {
		pending[order.Symbol] = pending[order.Symbol].Add(order.Quantity)
	}

	orders, warning := h.margin.GetMarginCallOrders(h.utcTime, h.ids.Next, pending)
	if !warning && len(orders) == 0 {
		return nil
	}

	for _, handler := range h.onMargin {
		handler(orders, warning)
	}

	if len(orders) == 0 && len(open) == 0 {
		h.log.Warn("Margin remaining is low", zap.String("margin_remaining", h.margin.MarginRemaining().String()))

		return nil
	}

	for _, order := range orders {
		if _, err := h.submit(order, false); err != nil {
			return err
		}
	}

	if err := h.fillOpenOrders(orders); err != nil {
		return err
	}

	if remaining := h.margin.MarginRemaining(); remaining.IsNegative() {
		return errors.Newf(errors.ErrCodeMarginCallUnresolved, "margin remaining is %s with %d margin call orders open",
			remaining.String(), len(h.openMarginCallOrders()))
	}

	return nil
}

func (h *TransactionHandler) openMarginCallOrders() []*types.Order {
	var open []*types.Order

	for _, order := range h.GetOpenOrders("") {
		if order.Tag == margin.MarginCallTag {
			open = append(open, order)
		}
	}

	return open
}

// HandleOrderEvent applies an event from a fill model, the exercise model or a live brokerage:
// the order status moves, fills are booked in the portfolio and the event is logged and published.
// Events that neither fill nor change the status are dropped.
func (h *TransactionHandler) HandleOrderEvent(event types.OrderEvent) error {
	order, err := h.GetOrderByID(event.OrderID)
	if err != nil {
		return err
	}

	if !event.IsFill() && event.Status == order.Status() {
		return nil
	}

	// a physical option exercise also reports the underlying delivery under the same order
	ownsStatus := event.Symbol == order.Symbol
	if ownsStatus {
		if err := order.State.CheckTransition(event.Status); err != nil {
			return err
		}
	}

	if err := h.portfolio.ProcessFill(event); err != nil {
		return err
	}

	if ownsStatus {
		if err := order.State.Transition(event.Status); err != nil {
			return err
		}
	}

	return h.record(event)
}

func (h *TransactionHandler) record(event types.OrderEvent) error {
	if h.eventLog != nil {
		if err := h.eventLog.Append(event); err != nil {
			return err
		}
	}

	h.log.Debug("Order event", zap.String("event", event.String()))

	for _, handler := range h.onEvent {
		handler(event)
	}

	return nil
}

// WriteResults exports the event log to the results folder.
func (h *TransactionHandler) WriteResults(name string) error {
	if h.eventLog == nil {
		return errors.New(errors.ErrCodeInvalidConfiguration, "event log is disabled")
	}

	return h.eventLog.Write(filepath.Join(h.config.ResultsFolder, name))
}

// Close releases the event log.
func (h *TransactionHandler) Close() error {
	if h.eventLog == nil {
		return nil
	}

	return h.eventLog.Close()
}
