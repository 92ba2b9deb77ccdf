package scenario

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/internal/version"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// StatsFileName is the summary written next to the exported event log.
const StatsFileName = "stats.yaml"

type OrderCounts struct {
	Open      int `yaml:"open"`
	Filled    int `yaml:"filled"`
	Partial   int `yaml:"partially_filled"`
	Canceled  int `yaml:"canceled"`
	Invalid   int `yaml:"invalid"`
}

type RunStats struct {
	// ID is the unique identifier for this replay.
	ID string `yaml:"id"`
	// Timestamp is when the replay finished.
	Timestamp time.Time `yaml:"timestamp"`
	// EngineVersion is the engine that produced the results.
	EngineVersion string `yaml:"engine_version"`
	// ScenarioPath is the replayed scenario file.
	ScenarioPath          string          `yaml:"scenario_path"`
	Slices                int             `yaml:"slices"`
	Bars                  int             `yaml:"bars"`
	Events                int             `yaml:"events"`
	UnresolvedMarginCalls int             `yaml:"unresolved_margin_calls"`
	Orders                OrderCounts     `yaml:"orders"`
	AccountCurrency       string          `yaml:"account_currency"`
	Cash                  decimal.Decimal `yaml:"cash"`
	UnsettledCash         decimal.Decimal `yaml:"unsettled_cash"`
	TotalPortfolioValue   decimal.Decimal `yaml:"total_portfolio_value"`
	TotalFees             decimal.Decimal `yaml:"total_fees"`
	TotalNetProfit        decimal.Decimal `yaml:"total_net_profit"`
	// OrdersFilePath is the path to the orders parquet file.
	OrdersFilePath string `yaml:"orders_file_path"`
	// EventsFilePath is the path to the order events parquet file.
	EventsFilePath string `yaml:"events_file_path"`
}

// NewRunStats summarizes a replay result.
func NewRunStats(result *Result, accountCurrency, scenarioPath string) RunStats {
	stats := RunStats{
		ID:                    uuid.New().String(),
		Timestamp:             time.Now().UTC(),
		EngineVersion:         version.GetVersion(),
		ScenarioPath:          scenarioPath,
		Slices:                result.Slices,
		Bars:                  result.Bars,
		Events:                result.Events,
		UnresolvedMarginCalls: result.UnresolvedMarginCalls,
		Orders:                OrderCounts{},
		AccountCurrency:       accountCurrency,
		Cash:                  result.Cash,
		UnsettledCash:         result.UnsettledCash,
		TotalPortfolioValue:   result.TotalPortfolioValue,
		TotalFees:             result.TotalFees,
		TotalNetProfit:        result.TotalNetProfit,
		OrdersFilePath:        "",
		EventsFilePath:        "",
	}

	for _, order := range result.Orders {
		switch order.Status() {
		case types.OrderStatusFilled:
			stats.Orders.Filled++
		case types.OrderStatusPartiallyFilled:
			stats.Orders.Partial++
		case types.OrderStatusCanceled:
			stats.Orders.Canceled++
		case types.OrderStatusInvalid:
			stats.Orders.Invalid++
		default:
			stats.Orders.Open++
		}
	}

	return stats
}

func WriteRunStats(path string, stats RunStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEventLogFailed, "failed to marshal run stats to YAML", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeEventLogFailed, "failed to write run stats to file", err)
	}

	return nil
}

func ReadRunStats(path string) (RunStats, error) {
	var stats RunStats

	data, err := os.ReadFile(path)
	if err != nil {
		return stats, errors.Wrap(errors.ErrCodeEventLogFailed, "failed to read run stats", err)
	}

	if err := yaml.Unmarshal(data, &stats); err != nil {
		return stats, errors.Wrap(errors.ErrCodeEventLogFailed, "failed to parse run stats", err)
	}

	return stats, nil
}
