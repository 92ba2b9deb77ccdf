package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fills/internal/brokerage"
	"github.com/rxtech-lab/argo-fills/internal/fees"
	"github.com/rxtech-lab/argo-fills/internal/margin"
	"github.com/rxtech-lab/argo-fills/internal/settlement"
	"github.com/rxtech-lab/argo-fills/internal/slippage"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
)

// CashConfig is a starting cash balance.
type CashConfig struct {
	Currency string          `yaml:"currency" json:"currency" jsonschema:"title=Currency,description=ISO currency code" validate:"required,len=3"`
	Amount   decimal.Decimal `yaml:"amount" json:"amount" jsonschema:"title=Amount,description=Starting balance"`
	// ConversionRate is ignored for the account currency
	ConversionRate decimal.Decimal `yaml:"conversion_rate" json:"conversion_rate" jsonschema:"title=Conversion Rate,description=Initial rate to the account currency; refreshed from currency pairs"`
}

type Config struct {
	AccountCurrency       string                     `yaml:"account_currency" json:"account_currency" jsonschema:"title=Account Currency,description=Currency the portfolio is valued in,default=USD" validate:"required,len=3"`
	Cash                  []CashConfig               `yaml:"cash" json:"cash" jsonschema:"title=Cash,description=Starting cash per currency" validate:"dive"`
	AccountType           brokerage.AccountType      `yaml:"account_type" json:"account_type" jsonschema:"title=Account Type,description=Cash accounts settle sales late and trade without leverage" validate:"required,oneof=cash margin"`
	Broker                fees.Broker                `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=The broker to use for fee calculations" validate:"required"`
	Slippage              slippage.Kind              `yaml:"slippage" json:"slippage" jsonschema:"title=Slippage,description=Slippage model applied to market fills" validate:"required,oneof=null constant percent log_quantity"`
	SlippageValue         decimal.Decimal            `yaml:"slippage_value" json:"slippage_value" jsonschema:"title=Slippage Value,description=Amount or fraction used by the constant and percent slippage models"`
	DefaultLeverage       decimal.Decimal            `yaml:"default_leverage" json:"default_leverage" jsonschema:"title=Default Leverage,description=Equity leverage of margin accounts"`
	SettlementDays        int                        `yaml:"settlement_days" json:"settlement_days" jsonschema:"title=Settlement Days,description=Trading days until equity sale proceeds settle in cash accounts,minimum=0" validate:"gte=0"`
	SettlementTime        time.Duration              `yaml:"settlement_time" json:"settlement_time" jsonschema:"title=Settlement Time,description=Time of day funds settle in exchange local time" validate:"gte=0,lt=24h"`
	MarginWarningFraction decimal.Decimal            `yaml:"margin_warning_fraction" json:"margin_warning_fraction" jsonschema:"title=Margin Warning Fraction,description=Warn when remaining margin falls to this fraction of the portfolio value"`
	MarginCallThreshold   decimal.Decimal            `yaml:"margin_call_threshold" json:"margin_call_threshold" jsonschema:"title=Margin Call Threshold,description=Issue margin calls when remaining margin is below minus this fraction of the portfolio value"`
	EventLog              bool                       `yaml:"event_log" json:"event_log" jsonschema:"title=Event Log,description=Keep every order event in an in-memory DuckDB log"`
	ResultsFolder         string                     `yaml:"results_folder" json:"results_folder" jsonschema:"title=Results Folder,description=Folder the event log is exported to as parquet"`
	PartialFills          bool                       `yaml:"partial_fills" json:"partial_fills" jsonschema:"title=Partial Fills,description=Fill market orders in random slices"`
	Seed                  int64                      `yaml:"seed" json:"seed" jsonschema:"title=Seed,description=Seed of the partial fill model"`
	StartTime             optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start of the replayed period"`
	EndTime               optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end of the replayed period"`
}

// yamlConfig is the file form of Config with the optional times as pointers.
type yamlConfig struct {
	AccountCurrency       string                `yaml:"account_currency"`
	Cash                  []CashConfig          `yaml:"cash"`
	AccountType           brokerage.AccountType `yaml:"account_type"`
	Broker                fees.Broker           `yaml:"broker"`
	Slippage              slippage.Kind         `yaml:"slippage"`
	SlippageValue         decimal.Decimal       `yaml:"slippage_value"`
	DefaultLeverage       decimal.Decimal       `yaml:"default_leverage"`
	SettlementDays        int                   `yaml:"settlement_days"`
	SettlementTime        time.Duration         `yaml:"settlement_time"`
	MarginWarningFraction decimal.Decimal       `yaml:"margin_warning_fraction"`
	MarginCallThreshold   decimal.Decimal       `yaml:"margin_call_threshold"`
	EventLog              bool                  `yaml:"event_log"`
	ResultsFolder         string                `yaml:"results_folder"`
	PartialFills          bool                  `yaml:"partial_fills"`
	Seed                  int64                 `yaml:"seed"`
	StartTime             *time.Time            `yaml:"start_time,omitempty"`
	EndTime               *time.Time            `yaml:"end_time,omitempty"`
}

func optionalTime(value optional.Option[time.Time]) *time.Time {
	if value.IsNone() {
		return nil
	}

	t := value.Unwrap()

	return &t
}

func (c Config) toYAML() yamlConfig {
	return yamlConfig{
		AccountCurrency:       c.AccountCurrency,
		Cash:                  c.Cash,
		AccountType:           c.AccountType,
		Broker:                c.Broker,
		Slippage:              c.Slippage,
		SlippageValue:         c.SlippageValue,
		DefaultLeverage:       c.DefaultLeverage,
		SettlementDays:        c.SettlementDays,
		SettlementTime:        c.SettlementTime,
		MarginWarningFraction: c.MarginWarningFraction,
		MarginCallThreshold:   c.MarginCallThreshold,
		EventLog:              c.EventLog,
		ResultsFolder:         c.ResultsFolder,
		PartialFills:          c.PartialFills,
		Seed:                  c.Seed,
		StartTime:             optionalTime(c.StartTime),
		EndTime:               optionalTime(c.EndTime),
	}
}

// MarshalYAML writes the optional times as timestamps and leaves them out when unset.
func (c Config) MarshalYAML() (interface{}, error) {
	return c.toYAML(), nil
}

// UnmarshalYAML implements custom unmarshaling for Config. Omitted fields keep their defaults.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	config := EmptyConfig().toYAML()

	if err := unmarshal(&config); err != nil {
		return err
	}

	c.AccountCurrency = strings.ToUpper(config.AccountCurrency)
	c.Cash = config.Cash
	c.AccountType = config.AccountType
	c.Broker = config.Broker
	c.Slippage = config.Slippage
	c.SlippageValue = config.SlippageValue
	c.DefaultLeverage = config.DefaultLeverage
	c.SettlementDays = config.SettlementDays
	c.SettlementTime = config.SettlementTime
	c.MarginWarningFraction = config.MarginWarningFraction
	c.MarginCallThreshold = config.MarginCallThreshold
	c.EventLog = config.EventLog
	c.ResultsFolder = config.ResultsFolder
	c.PartialFills = config.PartialFills
	c.Seed = config.Seed
	c.StartTime = optional.None[time.Time]()
	c.EndTime = optional.None[time.Time]()

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// Validate validates the Config struct.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine config", err)
	}

	if c.MarginWarningFraction.IsNegative() || c.MarginCallThreshold.IsNegative() {
		return errors.New(errors.ErrCodeInvalidConfiguration, "margin fractions must not be negative")
	}

	if c.DefaultLeverage.IsNegative() {
		return errors.New(errors.ErrCodeInvalidConfiguration, "default leverage must not be negative")
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "end time is before start time")
	}

	return nil
}

// BrokerageOptions maps the config onto the brokerage model options.
func (c *Config) BrokerageOptions() brokerage.Options {
	return brokerage.Options{
		AccountType:     c.AccountType,
		Broker:          c.Broker,
		Slippage:        c.Slippage,
		SlippageValue:   c.SlippageValue,
		DefaultLeverage: c.DefaultLeverage,
		SettlementDays:  c.SettlementDays,
		SettlementTime:  c.SettlementTime,
		PartialFills:    c.PartialFills,
		Seed:            c.Seed,
	}
}

// InWindow reports whether the time falls inside the optional start and end times.
func (c *Config) InWindow(utcTime time.Time) bool {
	if c.StartTime.IsSome() && utcTime.Before(c.StartTime.Unwrap()) {
		return false
	}

	if c.EndTime.IsSome() && utcTime.After(c.EndTime.Unwrap()) {
		return false
	}

	return true
}

// GenerateSchema generates a JSON schema for the Config
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch {
			case t.String() == "optional.Option[time.Time]":
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			case t == reflect.TypeOf(decimal.Decimal{}):
				return &jsonschema.Schema{
					Type:    "string",
					Pattern: `^-?[0-9]+(\.[0-9]+)?$`,
				}
			case t == reflect.TypeOf(time.Duration(0)):
				return &jsonschema.Schema{
					Type:        "string",
					Description: "Go duration, e.g. 8h",
				}
			case strings.Contains(t.String(), "fees.Broker"):
				return &jsonschema.Schema{
					Type: "string",
					Enum: fees.AllBrokers,
				}
			case strings.Contains(t.String(), "slippage.Kind"):
				return &jsonschema.Schema{
					Type: "string",
					Enum: slippage.AllKinds,
				}
			case strings.Contains(t.String(), "brokerage.AccountType"):
				return &jsonschema.Schema{
					Type: "string",
					Enum: brokerage.AllAccountTypes,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "fill-engine-config"
	schema.Description = "Configuration schema for the fill simulation engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the Config
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// EmptyConfig returns a Config with default values and no cash.
func EmptyConfig() Config {
	options := brokerage.DefaultOptions()

	return Config{
		AccountCurrency:       "USD",
		Cash:                  nil,
		AccountType:           options.AccountType,
		Broker:                options.Broker,
		Slippage:              options.Slippage,
		SlippageValue:         options.SlippageValue,
		DefaultLeverage:       options.DefaultLeverage,
		SettlementDays:        settlement.DefaultEquitySettlementDays,
		SettlementTime:        settlement.DefaultSettlementTime,
		MarginWarningFraction: margin.DefaultWarningFraction,
		MarginCallThreshold:   margin.DefaultCallThreshold,
		EventLog:              false,
		ResultsFolder:         "results",
		PartialFills:          false,
		Seed:                  0,
		StartTime:             optional.None[time.Time](),
		EndTime:               optional.None[time.Time](),
	}
}

// TestConfig returns a zero commission config funded with the given account currency cash.
func TestConfig(accountType brokerage.AccountType, cash decimal.Decimal) Config {
	config := EmptyConfig()
	config.AccountType = accountType
	config.Broker = fees.BrokerZero
	config.Cash = []CashConfig{{Currency: config.AccountCurrency, Amount: cash, ConversionRate: decimal.NewFromInt(1)}}

	return config
}
