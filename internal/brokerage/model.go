package brokerage

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fills/internal/fees"
	"github.com/rxtech-lab/argo-fills/internal/fills"
	"github.com/rxtech-lab/argo-fills/internal/logger"
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/settlement"
	"github.com/rxtech-lab/argo-fills/internal/slippage"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AccountType string

const (
	AccountTypeCash   AccountType = "cash"
	AccountTypeMargin AccountType = "margin"
)

var AllAccountTypes = []any{
	AccountTypeCash,
	AccountTypeMargin,
}

const (
	// optionSettlementDays is the settlement delay of option premiums in a cash account
	optionSettlementDays = 1
	forexLeverage        = 50
)

// Seeder returns the last known data of a security so it can be valued before its first update.
type Seeder func(security *securities.Security) optional.Option[types.MarketData]

// Options configures the brokerage model.
type Options struct {
	AccountType     AccountType
	Broker          fees.Broker
	Slippage        slippage.Kind
	SlippageValue   decimal.Decimal
	DefaultLeverage decimal.Decimal
	SettlementDays  int
	SettlementTime  time.Duration
	PartialFills    bool
	Seed            int64
}

// DefaultOptions is a cash account with interactive brokers fees and T+3 equity settlement.
func DefaultOptions() Options {
	return Options{
		AccountType:     AccountTypeCash,
		Broker:          fees.BrokerInteractiveBroker,
		Slippage:        slippage.KindNull,
		SlippageValue:   decimal.Zero,
		DefaultLeverage: decimal.NewFromInt(2),
		SettlementDays:  settlement.DefaultEquitySettlementDays,
		SettlementTime:  settlement.DefaultSettlementTime,
		PartialFills:    false,
		Seed:            0,
	}
}

// Model assigns the fee, fill, slippage and settlement models and the leverage of every new security.
type Model struct {
	options     Options
	seeder      Seeder
	fillModel   securities.FillModel
	feeModel    securities.FeeModel
	slippage    securities.SlippageModel
	immediately securities.SettlementModel
	log         *logger.Logger
}

// NewModel creates a brokerage model. seeder may be nil.
func NewModel(options Options, seeder Seeder, log *logger.Logger) *Model {
	if log == nil {
		log = logger.NewNopLogger()
	}

	var fillModel securities.FillModel = fills.NewImmediateFillModel()
	if options.PartialFills {
		fillModel = fills.NewPartialFillModel(options.Seed, log)
	}

	return &Model{
		options:     options,
		seeder:      seeder,
		fillModel:   fillModel,
		feeModel:    fees.GetFeeModel(options.Broker),
		slippage:    slippage.GetSlippageModel(options.Slippage, options.SlippageValue),
		immediately: settlement.NewImmediateSettlementModel(),
		log:         log,
	}
}

func (m *Model) Options() Options { return m.options }

// Initialize configures a security before it is added to the portfolio.
// Models already set on the security are kept.
func (m *Model) Initialize(security *securities.Security) {
	if security.FeeModel == nil {
		security.FeeModel = m.feeModel
	}

	if security.FillModel == nil {
		security.FillModel = m.fillModel
	}

	if security.SlippageModel == nil {
		security.SlippageModel = m.slippage
	}

	if security.SettlementModel == nil {
		security.SettlementModel = m.SettlementModel(security)
	}

	security.Leverage = m.Leverage(security)

	if m.seeder != nil {
		seed := m.seeder(security)
		if seed.IsSome() {
			data := seed.Unwrap()
			security.Update(data)
			m.log.Debug("Seeded security",
				zap.String("symbol", security.Ticker()),
				zap.String("price", data.GetValue().String()),
			)
		}
	}
}

// Leverage returns the leverage allowed for the security type.
func (m *Model) Leverage(security *securities.Security) decimal.Decimal {
	if m.options.AccountType != AccountTypeMargin {
		return decimal.NewFromInt(1)
	}

	switch security.Type() {
	case types.SecurityTypeEquity:
		if m.options.DefaultLeverage.IsPositive() {
			return m.options.DefaultLeverage
		}

		return decimal.NewFromInt(2)
	case types.SecurityTypeForex, types.SecurityTypeCfd:
		return decimal.NewFromInt(forexLeverage)
	case types.SecurityTypeOption, types.SecurityTypeFuture, types.SecurityTypeCrypto:
		return decimal.NewFromInt(1)
	default:
		return decimal.NewFromInt(1)
	}
}

// SettlementModel returns how sale proceeds settle. Only cash accounts wait for settlement.
func (m *Model) SettlementModel(security *securities.Security) securities.SettlementModel {
	if m.options.AccountType != AccountTypeCash {
		return m.immediately
	}

	switch security.Type() {
	case types.SecurityTypeEquity:
		return settlement.NewDelayedSettlementModel(m.options.SettlementDays, m.options.SettlementTime)
	case types.SecurityTypeOption:
		return settlement.NewDelayedSettlementModel(optionSettlementDays, m.options.SettlementTime)
	case types.SecurityTypeFuture, types.SecurityTypeForex, types.SecurityTypeCrypto, types.SecurityTypeCfd:
		return m.immediately
	default:
		return m.immediately
	}
}
