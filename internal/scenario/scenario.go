package scenario

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fills/internal/datasource"
	"github.com/rxtech-lab/argo-fills/internal/engine"
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/internal/version"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Hours string

const (
	HoursUSEquity Hours = "us_equity"
	HoursForex    Hours = "forex"
	HoursAlways   Hours = "always"
)

// OptionSpec describes the contract of an option security.
type OptionSpec struct {
	Underlying string               `yaml:"underlying" validate:"required"`
	Right      types.OptionRight    `yaml:"right" validate:"required,oneof=CALL PUT"`
	Strike     decimal.Decimal      `yaml:"strike"`
	Expiry     time.Time            `yaml:"expiry"`
	Settlement types.SettlementType `yaml:"settlement" validate:"required,oneof=PHYSICAL CASH"`
}

// SecuritySpec describes one security of the scenario.
type SecuritySpec struct {
	Symbol        string             `yaml:"symbol" validate:"required"`
	Type          types.SecurityType `yaml:"type" validate:"required,oneof=EQUITY OPTION FUTURE FOREX CRYPTO CFD"`
	Market        string             `yaml:"market"`
	BaseCurrency  string             `yaml:"base_currency"`
	QuoteCurrency string             `yaml:"quote_currency" validate:"required,len=3"`
	Multiplier    decimal.Decimal    `yaml:"multiplier"`
	LotSize       decimal.Decimal    `yaml:"lot_size"`
	TickSize      decimal.Decimal    `yaml:"tick_size"`
	Hours         Hours              `yaml:"hours" validate:"omitempty,oneof=us_equity forex always"`
	Holidays      []time.Time        `yaml:"holidays"`
	Extended      bool               `yaml:"extended_hours"`
	// Leverage overrides the leverage chosen by the brokerage model when positive
	Leverage decimal.Decimal `yaml:"leverage"`
	Option   *OptionSpec     `yaml:"option" validate:"omitempty"`
}

// UpdateSpec changes an order at Time if it is still open by then. Unset fields stay as they are.
type UpdateSpec struct {
	Time       time.Time        `yaml:"time" validate:"required"`
	Quantity   *decimal.Decimal `yaml:"quantity"`
	LimitPrice *decimal.Decimal `yaml:"limit_price"`
	StopPrice  *decimal.Decimal `yaml:"stop_price"`
	Tag        *string          `yaml:"tag"`
}

// Fields returns the order changes of the update.
func (u UpdateSpec) Fields() types.UpdateOrderFields {
	return types.UpdateOrderFields{
		Quantity:   optional.FromNillable(u.Quantity),
		LimitPrice: optional.FromNillable(u.LimitPrice),
		StopPrice:  optional.FromNillable(u.StopPrice),
		Tag:        optional.FromNillable(u.Tag),
	}
}

// OrderSpec is an order placed at Time. CancelAt cancels it if it is still open by then.
type OrderSpec struct {
	ID       int64           `yaml:"id" validate:"gte=0"`
	Time     time.Time       `yaml:"time" validate:"required"`
	Symbol   string          `yaml:"symbol" validate:"required"`
	Type     types.OrderType `yaml:"type" validate:"required"`
	Quantity decimal.Decimal `yaml:"quantity"`
	// TargetPercent sizes the order at submission to reach this fraction of the portfolio value
	TargetPercent *decimal.Decimal `yaml:"target_percent"`
	LimitPrice    decimal.Decimal  `yaml:"limit_price"`
	StopPrice     decimal.Decimal  `yaml:"stop_price"`
	Tag           string           `yaml:"tag"`
	CancelAt      *time.Time       `yaml:"cancel_at"`
	Updates       []UpdateSpec     `yaml:"updates" validate:"dive"`
	// BinanceOrderID links the order to a live Binance order whose trades fill it
	BinanceOrderID int64 `yaml:"binance_order_id"`
}

// Scenario is a replayable set of securities, bars and orders.
type Scenario struct {
	// EngineVersion is a semver constraint the running engine must satisfy
	EngineVersion string           `yaml:"engine_version"`
	Config        engine.Config    `yaml:"config"`
	Securities    []SecuritySpec   `yaml:"securities" validate:"required,min=1,dive"`
	Orders        []OrderSpec      `yaml:"orders" validate:"dive"`
	Bars          []types.TradeBar `yaml:"bars"`
	BarFiles      []string         `yaml:"bar_files"`
	BarPeriod     time.Duration    `yaml:"bar_period"`
}

// Load reads a scenario file. Relative bar files are resolved against the scenario directory.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read scenario %s", path)
	}

	scenario, err := Parse(data)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	for i, file := range scenario.BarFiles {
		if !filepath.IsAbs(file) {
			scenario.BarFiles[i] = filepath.Join(dir, file)
		}
	}

	return scenario, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	scenario := &Scenario{
		EngineVersion: "",
		Config:        engine.EmptyConfig(),
		Securities:    nil,
		Orders:        nil,
		Bars:          nil,
		BarFiles:      nil,
		BarPeriod:     0,
	}

	if err := yaml.Unmarshal(data, scenario); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse scenario", err)
	}

	if scenario.BarPeriod <= 0 {
		scenario.BarPeriod = datasource.DefaultBarPeriod
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	return scenario, nil
}

// Validate validates the Scenario struct.
func (s *Scenario) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid scenario", err)
	}

	if err := version.CheckCompatibility(version.GetVersion(), s.EngineVersion); err != nil {
		return err
	}

	if err := s.Config.Validate(); err != nil {
		return err
	}

	if len(s.Bars) > 0 && len(s.BarFiles) > 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "scenario has both inline bars and bar files")
	}

	for _, entry := range s.Securities {
		if entry.Type == types.SecurityTypeOption && entry.Option == nil {
			return errors.Newf(errors.ErrCodeInvalidSecurity, "option %s has no contract", entry.Symbol)
		}
	}

	return nil
}

// Security creates the security described by the scenario entry.
func (s SecuritySpec) Security() (*securities.Security, error) {
	var (
		hours *securities.ExchangeHours
		err   error
	)

	switch s.Hours {
	case HoursUSEquity:
		hours, err = securities.NewUSEquityHours(s.Holidays...)
	case HoursForex:
		hours, err = securities.NewForexHours()
	case HoursAlways, "":
		hours = securities.NewAlwaysOpenHours(time.UTC)
	}

	if err != nil {
		return nil, err
	}

	symbol := types.Symbol{
		Value:        s.Symbol,
		SecurityType: s.Type,
		Market:       s.Market,
		BaseCurrency: s.BaseCurrency,
		Option:       optional.None[types.OptionContract](),
	}

	if s.Option != nil {
		symbol.Option = optional.Some(types.OptionContract{
			Underlying: s.Option.Underlying,
			Right:      s.Option.Right,
			Strike:     s.Option.Strike,
			Expiry:     s.Option.Expiry,
			Settlement: s.Option.Settlement,
		})
	}

	security := securities.NewSecurity(symbol, types.SymbolProperties{
		QuoteCurrency:         s.QuoteCurrency,
		ContractMultiplier:    s.Multiplier,
		MinimumPriceVariation: s.TickSize,
		LotSize:               s.LotSize,
	}, hours)
	security.ExtendedMarketHours = s.Extended

	if err := security.Validate(); err != nil {
		return nil, err
	}

	return security, nil
}

// Order creates the order described by the scenario entry. The engine assigns an id when ID is zero.
func (o OrderSpec) Order() *types.Order {
	utcTime := o.Time.UTC()

	switch o.Type {
	case types.OrderTypeLimit:
		return types.NewLimitOrder(o.ID, o.Symbol, o.Quantity, o.LimitPrice, utcTime, o.Tag)
	case types.OrderTypeStopMarket:
		return types.NewStopMarketOrder(o.ID, o.Symbol, o.Quantity, o.StopPrice, utcTime, o.Tag)
	case types.OrderTypeStopLimit:
		return types.NewStopLimitOrder(o.ID, o.Symbol, o.Quantity, o.StopPrice, o.LimitPrice, utcTime, o.Tag)
	case types.OrderTypeMarketOnOpen:
		return types.NewMarketOnOpenOrder(o.ID, o.Symbol, o.Quantity, utcTime, o.Tag)
	case types.OrderTypeMarketOnClose:
		return types.NewMarketOnCloseOrder(o.ID, o.Symbol, o.Quantity, utcTime, o.Tag)
	case types.OrderTypeOptionExercise:
		return types.NewOptionExerciseOrder(o.ID, o.Symbol, o.Quantity, utcTime, o.Tag)
	case types.OrderTypeMarket:
	}

	// unknown types are kept so validation rejects the order
	order := types.NewMarketOrder(o.ID, o.Symbol, o.Quantity, utcTime, o.Tag)
	order.Type = o.Type

	return order
}

// AddSecurities creates the scenario securities and adds them to the engine.
func (s *Scenario) AddSecurities(handler *engine.TransactionHandler) ([]*securities.Security, error) {
	list := make([]*securities.Security, 0, len(s.Securities))

	for _, entry := range s.Securities {
		security, err := entry.Security()
		if err != nil {
			return nil, err
		}

		list = append(list, security)
	}

	if err := handler.AddSecurities(list...); err != nil {
		return nil, err
	}

	for i, entry := range s.Securities {
		if entry.Leverage.IsPositive() {
			list[i].Leverage = entry.Leverage
		}
	}

	return list, nil
}

// SortedOrders returns the order specs by time, keeping the file order for equal times.
func (s *Scenario) SortedOrders() []OrderSpec {
	orders := slices.Clone(s.Orders)
	slices.SortStableFunc(orders, func(a, b OrderSpec) int {
		return a.Time.Compare(b.Time)
	})

	return orders
}

// InlineBars yields the inline bars ordered by time. Bars without a period get BarPeriod.
func (s *Scenario) InlineBars() func(yield func(types.TradeBar, error) bool) {
	bars := slices.Clone(s.Bars)
	slices.SortStableFunc(bars, func(a, b types.TradeBar) int {
		return a.Time.Compare(b.Time)
	})

	return func(yield func(types.TradeBar, error) bool) {
		for _, bar := range bars {
			if bar.Period <= 0 {
				bar.Period = s.BarPeriod
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}
