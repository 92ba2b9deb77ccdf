package settlement

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/shopspring/decimal"
)

const (
	// DefaultEquitySettlementDays is the US equity settlement delay used by cash accounts.
	DefaultEquitySettlementDays = 3
	// DefaultSettlementTime is the local time of day at which delayed funds become available.
	DefaultSettlementTime = 8 * time.Hour
)

// ImmediateSettlementModel makes all funds available at fill time.
type ImmediateSettlementModel struct{}

func NewImmediateSettlementModel() *ImmediateSettlementModel {
	return &ImmediateSettlementModel{}
}

func (m *ImmediateSettlementModel) SettlementTime(_ *securities.Security, _ time.Time, _ decimal.Decimal) optional.Option[time.Time] {
	return optional.None[time.Time]()
}

// DelayedSettlementModel holds sale proceeds until a number of trading days after the fill.
// Purchases settle immediately.
type DelayedSettlementModel struct {
	Days int
	// TimeOfDay is the offset from local midnight of the settlement date
	TimeOfDay time.Duration
}

func NewDelayedSettlementModel(days int, timeOfDay time.Duration) *DelayedSettlementModel {
	return &DelayedSettlementModel{
		Days:      days,
		TimeOfDay: timeOfDay,
	}
}

func (m *DelayedSettlementModel) SettlementTime(security *securities.Security, utcFillTime time.Time, amount decimal.Decimal) optional.Option[time.Time] {
	if !amount.IsPositive() || m.Days <= 0 {
		return optional.None[time.Time]()
	}

	settlementDate := security.Exchange.AddTradingDays(utcFillTime, m.Days)
	year, month, day := settlementDate.Date()
	local := time.Date(year, month, day, 0, 0, 0, 0, settlementDate.Location()).Add(m.TimeOfDay)

	return optional.Some(local.UTC())
}
