package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fills/internal/logger"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultBarPeriod is used when the bar files carry no period of their own.
const DefaultBarPeriod = time.Minute

// BarSource reads trade bars from parquet or csv files with columns
// time, symbol, open, high, low, close and volume. The time column is the bar start.
type BarSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
	period time.Duration
}

// NewBarSource opens an in-memory DuckDB database. Initialize loads the bars.
func NewBarSource(period time.Duration, log *logger.Logger) (*BarSource, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if period <= 0 {
		period = DefaultBarPeriod
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open duckdb", err)
	}

	return &BarSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		period: period,
	}, nil
}

// Initialize creates the bars view over the given files. Files ending in .csv are read as csv,
// everything else as parquet.
func (s *BarSource) Initialize(paths ...string) error {
	if len(paths) == 0 {
		return errors.New(errors.ErrCodeMissingParameter, "no bar files given")
	}

	s.logger.Debug("Initializing bar source", zap.Strings("paths", paths))

	if _, err := s.db.Exec(`DROP VIEW IF EXISTS bars;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop bars view", err)
	}

	reader := "read_parquet"
	if strings.EqualFold(filepath.Ext(paths[0]), ".csv") {
		reader = "read_csv_auto"
	}

	quoted := make([]string, 0, len(paths))
	for _, path := range paths {
		quoted = append(quoted, "'"+strings.ReplaceAll(path, "'", "''")+"'")
	}

	// CREATE VIEW is not supported by squirrel
	query := fmt.Sprintf(`CREATE VIEW bars AS SELECT * FROM %s([%s]);`, reader, strings.Join(quoted, ", "))
	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load bars from %s", strings.Join(paths, ", "))
	}

	return nil
}

func (s *BarSource) window(query squirrel.SelectBuilder, start, end optional.Option[time.Time]) squirrel.SelectBuilder {
	if start.IsSome() {
		query = query.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		query = query.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	return query
}

// Count returns the number of bars inside the optional window.
func (s *BarSource) Count(start, end optional.Option[time.Time]) (int, error) {
	query, args, err := s.window(s.sq.Select("COUNT(*)").From("bars"), start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadAll yields the bars ordered by time and symbol.
func (s *BarSource) ReadAll(start, end optional.Option[time.Time]) func(yield func(types.TradeBar, error) bool) {
	return func(yield func(types.TradeBar, error) bool) {
		query, args, err := s.window(s.sq.Select(
			"time",
			"symbol",
			"CAST(open AS VARCHAR)",
			"CAST(high AS VARCHAR)",
			"CAST(low AS VARCHAR)",
			"CAST(close AS VARCHAR)",
			"CAST(volume AS VARCHAR)",
		).From("bars"), start, end).OrderBy("time ASC", "symbol ASC").ToSql()
		if err != nil {
			yield(types.TradeBar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build bar query", err))

			return
		}

		rows, err := s.db.Query(query, args...)
		if err != nil {
			yield(types.TradeBar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			bar, err := s.scanBar(rows)
			if !yield(bar, err) || err != nil {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.TradeBar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate bars", err))
		}
	}
}

// Symbols returns the distinct symbols of the loaded bars.
func (s *BarSource) Symbols() ([]string, error) {
	query, args, err := s.sq.Select("DISTINCT symbol").From("bars").OrderBy("symbol").ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build symbol query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	return symbols, rows.Err()
}

func (s *BarSource) scanBar(rows *sql.Rows) (types.TradeBar, error) {
	var (
		timestamp                       time.Time
		symbol                          string
		open, high, low, closed, volume string
	)

	if err := rows.Scan(&timestamp, &symbol, &open, &high, &low, &closed, &volume); err != nil {
		return types.TradeBar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
	}

	values := make([]decimal.Decimal, 0, 5)

	for _, raw := range []string{open, high, low, closed, volume} {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return types.TradeBar{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "bad value %q for %s at %s", raw, symbol, timestamp)
		}

		values = append(values, value)
	}

	return types.TradeBar{
		Symbol: symbol,
		Time:   timestamp.UTC(),
		Period: s.period,
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: values[4],
	}, nil
}

// Close closes the database.
func (s *BarSource) Close() error {
	return s.db.Close()
}
