package eventlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-fills/internal/logger"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// decimalType keeps enough scale for crypto quantities
const decimalType = "DECIMAL(38,12)"

// Filter selects order events. Zero fields match everything.
type Filter struct {
	OrderID  int64
	Symbol   string
	Status   types.OrderStatus
	FillOnly bool
	Limit    uint64
}

// FillSummary aggregates the fills of one symbol.
type FillSummary struct {
	Symbol         string
	Fills          int
	BoughtQuantity decimal.Decimal
	SoldQuantity   decimal.Decimal
	TotalFees      decimal.Decimal
	// AverageFillPrice is weighted by the absolute fill quantity
	AverageFillPrice decimal.Decimal
}

// Log is the transaction log of orders and order events, kept in an in-memory DuckDB.
type Log struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewLog opens an empty log.
func NewLog(log *logger.Logger) (*Log, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEventLogFailed, "failed to open database", err)
	}

	eventLog := &Log{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := eventLog.Initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return eventLog, nil
}

// Initialize creates the orders and order_events tables.
func (l *Log) Initialize() error {
	_, err := l.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS orders (
			order_id BIGINT PRIMARY KEY,
			symbol TEXT,
			order_type TEXT,
			quantity %[1]s,
			limit_price %[1]s,
			stop_price %[1]s,
			submitted_at TIMESTAMP,
			tag TEXT,
			status TEXT
		)
	`, decimalType))
	if err != nil {
		return errors.Wrap(errors.ErrCodeEventLogFailed, "failed to create orders table", err)
	}

	_, err = l.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS order_events (
			event_id TEXT,
			order_id BIGINT,
			symbol TEXT,
			utc_time TIMESTAMP,
			status TEXT,
			direction TEXT,
			fill_price %[1]s,
			fill_price_currency TEXT,
			fill_quantity %[1]s,
			order_fee %[1]s,
			message TEXT,
			is_assignment BOOLEAN
		)
	`, decimalType))
	if err != nil {
		return errors.Wrap(errors.ErrCodeEventLogFailed, "failed to create order_events table", err)
	}

	return nil
}

func decimalValue(value decimal.Decimal) squirrel.Sqlizer {
	return squirrel.Expr(fmt.Sprintf("CAST(? AS %s)", decimalType), value.String())
}

// RecordOrder inserts the order or replaces its previous snapshot.
func (l *Log) RecordOrder(order *types.Order) error {
	_, err := l.sq.
		Insert("orders").
		Options("OR REPLACE").
		Columns("order_id", "symbol", "order_type", "quantity", "limit_price", "stop_price", "submitted_at", "tag", "status").
		Values(
			order.ID, order.Symbol, string(order.Type),
			decimalValue(order.Quantity), decimalValue(order.LimitPrice), decimalValue(order.StopPrice),
			order.Time.UTC(), order.Tag, string(order.Status()),
		).
		RunWith(l.db).
		Exec()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeEventLogFailed, err, "failed to record order %d", order.ID)
	}

	return nil
}

// Append stores an order event and updates the status of its order.
func (l *Log) Append(event types.OrderEvent) error {
	tx, err := l.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeEventLogFailed, "failed to begin transaction", err)
	}

	_, err = l.sq.
		Insert("order_events").
		Columns(
			"event_id", "order_id", "symbol", "utc_time", "status", "direction",
			"fill_price", "fill_price_currency", "fill_quantity", "order_fee", "message", "is_assignment",
		).
		Values(
			event.ID, event.OrderID, event.Symbol, event.UTCTime.UTC(), string(event.Status), string(event.Direction),
			decimalValue(event.FillPrice), event.FillPriceCurrency, decimalValue(event.FillQuantity), decimalValue(event.OrderFee),
			event.Message, event.IsAssignment,
		).
		RunWith(tx).
		Exec()
	if err != nil {
		tx.Rollback()

		return errors.Wrapf(errors.ErrCodeEventLogFailed, err, "failed to append event for order %d", event.OrderID)
	}

	_, err = l.sq.
		Update("orders").
		Set("status", string(event.Status)).
		Where(squirrel.Eq{"order_id": event.OrderID}).
		RunWith(tx).
		Exec()
	if err != nil {
		tx.Rollback()

		return errors.Wrapf(errors.ErrCodeEventLogFailed, err, "failed to update status of order %d", event.OrderID)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeEventLogFailed, "failed to commit transaction", err)
	}

	return nil
}

// Events returns the events matching the filter in the order they were appended.
func (l *Log) Events(filter Filter) ([]types.OrderEvent, error) {
	query := l.sq.
		Select(
			"event_id", "order_id", "symbol", "utc_time", "status", "direction",
			"CAST(fill_price AS VARCHAR)", "fill_price_currency", "CAST(fill_quantity AS VARCHAR)",
			"CAST(order_fee AS VARCHAR)", "message", "is_assignment",
		).
		From("order_events").
		OrderBy("rowid ASC")

	if filter.OrderID != 0 {
		query = query.Where(squirrel.Eq{"order_id": filter.OrderID})
	}

	if filter.Symbol != "" {
		query = query.Where(squirrel.Eq{"symbol": filter.Symbol})
	}

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": string(filter.Status)})
	}

	if filter.FillOnly {
		query = query.Where("fill_quantity <> 0")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	rows, err := query.RunWith(l.db).Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query order events", err)
	}
	defer rows.Close()

	var events []types.OrderEvent

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating order events", err)
	}

	return events, nil
}

func scanEvent(rows *sql.Rows) (types.OrderEvent, error) {
	var (
		event                        types.OrderEvent
		status, direction            string
		fillPrice, fillQuantity, fee string
		utcTime                      time.Time
	)

	err := rows.Scan(
		&event.ID,
		&event.OrderID,
		&event.Symbol,
		&utcTime,
		&status,
		&direction,
		&fillPrice,
		&event.FillPriceCurrency,
		&fillQuantity,
		&fee,
		&event.Message,
		&event.IsAssignment,
	)
	if err != nil {
		return types.OrderEvent{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan order event", err)
	}

	event.UTCTime = utcTime.UTC()
	event.Status = types.OrderStatus(status)
	event.Direction = types.OrderDirection(direction)

	if event.FillPrice, err = decimal.NewFromString(fillPrice); err != nil {
		return types.OrderEvent{}, errors.Wrap(errors.ErrCodeQueryFailed, "invalid fill price", err)
	}

	if event.FillQuantity, err = decimal.NewFromString(fillQuantity); err != nil {
		return types.OrderEvent{}, errors.Wrap(errors.ErrCodeQueryFailed, "invalid fill quantity", err)
	}

	if event.OrderFee, err = decimal.NewFromString(fee); err != nil {
		return types.OrderEvent{}, errors.Wrap(errors.ErrCodeQueryFailed, "invalid order fee", err)
	}

	return event, nil
}

// OrderStatus returns the last logged status of the order.
func (l *Log) OrderStatus(orderID int64) (types.OrderStatus, error) {
	var status string

	err := l.sq.
		Select("status").
		From("orders").
		Where(squirrel.Eq{"order_id": orderID}).
		RunWith(l.db).
		QueryRow().
		Scan(&status)
	if err == sql.ErrNoRows {
		return "", errors.Newf(errors.ErrCodeOrderNotFound, "order %d is not in the log", orderID)
	}

	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query order %d", orderID)
	}

	return types.OrderStatus(status), nil
}

// Summary aggregates the fills of a symbol.
func (l *Log) Summary(symbol string) (FillSummary, error) {
	// squirrel has no helpers for aggregates over casts, the query is written out
	query := `
		SELECT
			COUNT(*),
			CAST(COALESCE(SUM(CASE WHEN fill_quantity > 0 THEN fill_quantity ELSE 0 END), 0) AS VARCHAR),
			CAST(COALESCE(SUM(CASE WHEN fill_quantity < 0 THEN -fill_quantity ELSE 0 END), 0) AS VARCHAR),
			CAST(COALESCE(SUM(order_fee), 0) AS VARCHAR),
			CAST(COALESCE(SUM(CAST(ABS(fill_quantity) AS DECIMAL(18,8)) * CAST(fill_price AS DECIMAL(18,6))), 0) AS VARCHAR),
			CAST(COALESCE(SUM(ABS(fill_quantity)), 0) AS VARCHAR)
		FROM order_events
		WHERE symbol = ? AND fill_quantity <> 0
	`

	var (
		count                             int
		bought, sold, fees, notional, qty string
	)

	err := l.db.QueryRow(query, symbol).Scan(&count, &bought, &sold, &fees, &notional, &qty)
	if err != nil {
		return FillSummary{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to summarize fills of %s", symbol)
	}

	values := make([]decimal.Decimal, 0, 5)

	for _, raw := range []string{bought, sold, fees, notional, qty} {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return FillSummary{}, errors.Wrap(errors.ErrCodeQueryFailed, "invalid aggregate", err)
		}

		values = append(values, value)
	}

	average := decimal.Zero
	if values[4].IsPositive() {
		average = values[3].Div(values[4])
	}

	return FillSummary{
		Symbol:           symbol,
		Fills:            count,
		BoughtQuantity:   values[0],
		SoldQuantity:     values[1],
		TotalFees:        values[2],
		AverageFillPrice: average,
	}, nil
}

// Parquet files written by Write.
const (
	OrdersFileName = "orders.parquet"
	EventsFileName = "order_events.parquet"
)

// Write exports the log to parquet files in the directory.
func (l *Log) Write(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeEventLogFailed, "failed to create directory", err)
	}

	ordersPath := filepath.Join(path, OrdersFileName)
	eventsPath := filepath.Join(path, EventsFileName)

	// squirrel does not support COPY
	for table, file := range map[string]string{"orders": ordersPath, "order_events": eventsPath} {
		if _, err := l.db.Exec(fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, file)); err != nil {
			return errors.Wrapf(errors.ErrCodeEventLogFailed, err, "failed to export %s to parquet", table)
		}
	}

	l.logger.Info("Exported order events to parquet files",
		zap.String("orders", ordersPath),
		zap.String("order_events", eventsPath),
	)

	return nil
}

// Reset drops all logged orders and events.
func (l *Log) Reset() error {
	_, err := l.db.Exec(`
		DROP TABLE IF EXISTS order_events;
		DROP TABLE IF EXISTS orders;
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEventLogFailed, "failed to drop tables", err)
	}

	return l.Initialize()
}

// Close releases the database.
func (l *Log) Close() error {
	return l.db.Close()
}
