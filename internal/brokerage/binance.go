package brokerage

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-fills/internal/logger"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ListTradesService interface for listing trades.
type ListTradesService interface {
	Symbol(symbol string) ListTradesService
	Limit(limit int) ListTradesService
	StartTime(startTime int64) ListTradesService
	EndTime(endTime int64) ListTradesService
	Do(ctx context.Context) ([]*binance.TradeV3, error)
}

// BinanceClient abstracts the Binance client for testing.
type BinanceClient interface {
	NewListTradesService() ListTradesService
}

type realBinanceClient struct {
	client *binance.Client
}

// NewBinanceClient creates a client for the Binance spot API.
func NewBinanceClient(apiKey, secretKey string, useTestnet bool) BinanceClient {
	if useTestnet {
		binance.UseTestnet = true
	}

	return &realBinanceClient{client: binance.NewClient(apiKey, secretKey)}
}

func (r *realBinanceClient) NewListTradesService() ListTradesService {
	return &realListTradesService{service: r.client.NewListTradesService()}
}

type realListTradesService struct {
	service *binance.ListTradesService
}

func (s *realListTradesService) Symbol(symbol string) ListTradesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realListTradesService) Limit(limit int) ListTradesService {
	s.service = s.service.Limit(limit)

	return s
}

func (s *realListTradesService) StartTime(startTime int64) ListTradesService {
	s.service = s.service.StartTime(startTime)

	return s
}

func (s *realListTradesService) EndTime(endTime int64) ListTradesService {
	s.service = s.service.EndTime(endTime)

	return s
}

func (s *realListTradesService) Do(ctx context.Context) ([]*binance.TradeV3, error) {
	return s.service.Do(ctx)
}

// BinanceSymbol is a polled trading pair and the currency its prices are quoted in.
type BinanceSymbol struct {
	Symbol        string `yaml:"symbol" json:"symbol" validate:"required"`
	QuoteCurrency string `yaml:"quote_currency" json:"quote_currency" validate:"required"`
}

// BinanceExecutionSourceConfig configures the trade poller.
type BinanceExecutionSourceConfig struct {
	Symbols []BinanceSymbol `yaml:"symbols" json:"symbols" validate:"required,min=1,dive"`
	// Limit is the maximum number of trades fetched per request
	Limit int `yaml:"limit" json:"limit" validate:"gte=1,lte=1000"`
	// RequestTimeout bounds every call to the API
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout" validate:"gt=0"`
	// RequestsPerSecond and Burst configure the client side rate limit
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" validate:"gt=0"`
	Burst             int     `yaml:"burst" json:"burst" validate:"gte=1"`
	// MaxConsecutiveFailures opens the circuit breaker
	MaxConsecutiveFailures uint32 `yaml:"max_consecutive_failures" json:"max_consecutive_failures" validate:"gte=1"`
	// OpenTimeout is how long the breaker stays open before probing again
	OpenTimeout time.Duration `yaml:"open_timeout" json:"open_timeout" validate:"gt=0"`
	// Since is the time of the first trade to fetch
	Since time.Time `yaml:"since" json:"since"`
}

// DefaultBinanceExecutionSourceConfig returns a poller config for the given symbols.
func DefaultBinanceExecutionSourceConfig(symbols ...BinanceSymbol) BinanceExecutionSourceConfig {
	return BinanceExecutionSourceConfig{
		Symbols:                symbols,
		Limit:                  500,
		RequestTimeout:         10 * time.Second,
		RequestsPerSecond:      5,
		Burst:                  1,
		MaxConsecutiveFailures: 5,
		OpenTimeout:            30 * time.Second,
		Since:                  time.Time{},
	}
}

// Validate validates the BinanceExecutionSourceConfig struct.
func (c *BinanceExecutionSourceConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid binance execution source config", err)
	}

	return nil
}

// OrderIDMapper resolves a Binance order id to the id of the engine order it belongs to.
type OrderIDMapper func(brokerOrderID int64) (int64, bool)

// BinanceExecutionSource polls account trades and feeds them to an ExecutionHandler.
type BinanceExecutionSource struct {
	client    BinanceClient
	handler   *ExecutionHandler
	mapper    OrderIDMapper
	config    BinanceExecutionSourceConfig
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	lastTrade map[string]time.Time
	log       *logger.Logger
}

// NewBinanceExecutionSource creates a poller.
func NewBinanceExecutionSource(client BinanceClient, handler *ExecutionHandler, mapper OrderIDMapper, config BinanceExecutionSourceConfig, log *logger.Logger) (*BinanceExecutionSource, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	lastTrade := make(map[string]time.Time, len(config.Symbols))
	for _, symbol := range config.Symbols {
		lastTrade[symbol.Symbol] = config.Since
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "binance-trades",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: nil,
	})

	return &BinanceExecutionSource{
		client:    client,
		handler:   handler,
		mapper:    mapper,
		config:    config,
		limiter:   rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		breaker:   breaker,
		lastTrade: lastTrade,
		log:       log,
	}, nil
}

// Poll fetches the new trades of every symbol once and returns how many executions were accepted.
func (s *BinanceExecutionSource) Poll(ctx context.Context) (int, error) {
	accepted := 0

	for _, symbol := range s.config.Symbols {
		count, err := s.pollSymbol(ctx, symbol)
		accepted += count

		if err != nil {
			return accepted, err
		}
	}

	return accepted, nil
}

// Run polls every interval until the context is canceled. Failed polls are logged and retried.
func (s *BinanceExecutionSource) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			s.log.Error("Failed to poll binance trades", zap.Error(err))
		}

		if err := s.handler.ExpirePending(time.Now().UTC(), DefaultCommissionWait); err != nil {
			s.log.Error("Failed to expire pending executions", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *BinanceExecutionSource) pollSymbol(ctx context.Context, symbol BinanceSymbol) (int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, errors.Wrap(errors.ErrCodeBrokerageTimeout, "rate limiter wait canceled", err)
	}

	trades, err := s.fetchTrades(ctx, symbol.Symbol)
	if err != nil {
		return 0, err
	}

	accepted := 0

	for _, trade := range trades {
		tradeTime := time.UnixMilli(trade.Time).UTC()
		if tradeTime.After(s.lastTrade[symbol.Symbol]) {
			s.lastTrade[symbol.Symbol] = tradeTime
		}

		orderID, ok := s.mapper(trade.OrderID)
		if !ok {
			s.log.Debug("Skipping trade of an unknown order",
				zap.String("symbol", symbol.Symbol),
				zap.Int64("broker_order_id", trade.OrderID),
			)

			continue
		}

		execution, report, err := ConvertTrade(trade, orderID, symbol.QuoteCurrency)
		if err != nil {
			return accepted, err
		}

		if err := s.handler.OnExecution(execution); err != nil {
			if errors.HasCode(err, errors.ErrCodeDuplicateExecution) {
				continue
			}

			return accepted, err
		}

		if err := s.handler.OnCommissionReport(report); err != nil {
			return accepted, err
		}

		accepted++
	}

	return accepted, nil
}

func (s *BinanceExecutionSource) fetchTrades(ctx context.Context, symbol string) ([]*binance.TradeV3, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		requestCtx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()

		service := s.client.NewListTradesService().Symbol(symbol).Limit(s.config.Limit)

		if since := s.lastTrade[symbol]; !since.IsZero() {
			// trades at the last seen millisecond are fetched again and dropped as duplicates
			service = service.StartTime(since.UnixMilli())
		}

		return service.Do(requestCtx)
	})
	if err != nil {
		switch {
		case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, errors.Wrapf(errors.ErrCodeBrokerageUnavailable, err, "binance trades for %s are unavailable", symbol)
		case stderrors.Is(err, context.DeadlineExceeded):
			return nil, errors.Wrapf(errors.ErrCodeBrokerageTimeout, err, "binance trades request for %s timed out", symbol)
		default:
			return nil, errors.Wrapf(errors.ErrCodeBrokerageRequestFailed, err, "failed to get trades for %s from binance", symbol)
		}
	}

	trades, _ := result.([]*binance.TradeV3)

	return trades, nil
}

// ConvertTrade converts a Binance trade into an execution and its commission report.
func ConvertTrade(trade *binance.TradeV3, orderID int64, quoteCurrency string) (Execution, CommissionReport, error) {
	quantity, err := decimal.NewFromString(trade.Quantity)
	if err != nil {
		return Execution{}, CommissionReport{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid quantity in trade %d", trade.ID)
	}

	price, err := decimal.NewFromString(trade.Price)
	if err != nil {
		return Execution{}, CommissionReport{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid price in trade %d", trade.ID)
	}

	commission := decimal.Zero
	if trade.Commission != "" {
		commission, err = decimal.NewFromString(trade.Commission)
		if err != nil {
			return Execution{}, CommissionReport{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid commission in trade %d", trade.ID)
		}
	}

	if !trade.IsBuyer {
		quantity = quantity.Neg()
	}

	execID := trade.Symbol + "-" + strconv.FormatInt(trade.ID, 10)

	execution := Execution{
		ExecID:   execID,
		OrderID:  orderID,
		Symbol:   trade.Symbol,
		Quantity: quantity,
		Price:    price,
		Currency: quoteCurrency,
		Time:     time.UnixMilli(trade.Time).UTC(),
	}

	report := CommissionReport{
		ExecID:     execID,
		OrderID:    orderID,
		Commission: commission,
		Currency:   trade.CommissionAsset,
		Time:       execution.Time,
	}

	return execution, report, nil
}
