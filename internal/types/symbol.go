package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

type SecurityType string

type OptionRight string

type SettlementType string

const (
	SecurityTypeEquity SecurityType = "EQUITY"
	SecurityTypeOption SecurityType = "OPTION"
	SecurityTypeFuture SecurityType = "FUTURE"
	SecurityTypeForex  SecurityType = "FOREX"
	SecurityTypeCrypto SecurityType = "CRYPTO"
	SecurityTypeCfd    SecurityType = "CFD"
)

const (
	OptionRightCall OptionRight = "CALL"
	OptionRightPut  OptionRight = "PUT"
)

const (
	SettlementTypePhysical SettlementType = "PHYSICAL"
	SettlementTypeCash     SettlementType = "CASH"
)

// AllSecurityTypes lists every supported security type.
var AllSecurityTypes = []any{
	SecurityTypeEquity,
	SecurityTypeOption,
	SecurityTypeFuture,
	SecurityTypeForex,
	SecurityTypeCrypto,
	SecurityTypeCfd,
}

// IsCurrencyPair reports whether holdings of this type are carried as currency in the cash book.
func (t SecurityType) IsCurrencyPair() bool {
	return t == SecurityTypeForex || t == SecurityTypeCrypto
}

// IsMarginOnly reports whether trades of this type move margin but not cash.
// Only the realized profit reaches the cash book.
func (t SecurityType) IsMarginOnly() bool {
	return t == SecurityTypeFuture || t == SecurityTypeCfd
}

// OptionContract describes the terms of an option.
type OptionContract struct {
	Underlying string          `yaml:"underlying" json:"underlying" validate:"required"`
	Right      OptionRight     `yaml:"right" json:"right" validate:"required,oneof=CALL PUT"`
	Strike     decimal.Decimal `yaml:"strike" json:"strike"`
	Expiry     time.Time       `yaml:"expiry" json:"expiry"`
	Settlement SettlementType  `yaml:"settlement" json:"settlement" validate:"required,oneof=PHYSICAL CASH"`
}

// IntrinsicValue returns the in-the-money amount per unit of underlying.
func (c OptionContract) IntrinsicValue(underlyingPrice decimal.Decimal) decimal.Decimal {
	var value decimal.Decimal
	if c.Right == OptionRightCall {
		value = underlyingPrice.Sub(c.Strike)
	} else {
		value = c.Strike.Sub(underlyingPrice)
	}

	return decimal.Max(decimal.Zero, value)
}

// IsInTheMoney reports whether exercising at the given underlying price has value.
func (c OptionContract) IsInTheMoney(underlyingPrice decimal.Decimal) bool {
	return c.IntrinsicValue(underlyingPrice).IsPositive()
}

// Symbol identifies a security.
type Symbol struct {
	Value        string       `yaml:"value" json:"value" validate:"required"`
	SecurityType SecurityType `yaml:"security_type" json:"security_type" validate:"required"`
	Market       string       `yaml:"market" json:"market"`
	// BaseCurrency is set for forex and crypto pairs, e.g. EUR for EURUSD
	BaseCurrency string `yaml:"base_currency" json:"base_currency"`
	// Option is set for option contracts
	Option optional.Option[OptionContract] `yaml:"-" json:"-"`
}

// SymbolProperties holds the trading properties of a security.
type SymbolProperties struct {
	QuoteCurrency         string          `yaml:"quote_currency" json:"quote_currency" validate:"required,len=3"`
	ContractMultiplier    decimal.Decimal `yaml:"contract_multiplier" json:"contract_multiplier"`
	MinimumPriceVariation decimal.Decimal `yaml:"minimum_price_variation" json:"minimum_price_variation"`
	LotSize               decimal.Decimal `yaml:"lot_size" json:"lot_size"`
}

// Normalized returns the properties with a zero multiplier or lot size replaced by one.
// A zero minimum price variation is kept and means prices are not rounded.
func (p SymbolProperties) Normalized() SymbolProperties {
	if !p.ContractMultiplier.IsPositive() {
		p.ContractMultiplier = decimal.NewFromInt(1)
	}

	if !p.LotSize.IsPositive() {
		p.LotSize = decimal.NewFromInt(1)
	}

	if p.MinimumPriceVariation.IsNegative() {
		p.MinimumPriceVariation = decimal.Zero
	}

	return p
}

// RoundPrice rounds a price to the minimum price variation. Zero variation passes the price through.
func (p SymbolProperties) RoundPrice(price decimal.Decimal) decimal.Decimal {
	if !p.MinimumPriceVariation.IsPositive() {
		return price
	}

	return price.Div(p.MinimumPriceVariation).Round(0).Mul(p.MinimumPriceVariation)
}

// RoundUpPrice rounds a price up to the next minimum price variation.
func (p SymbolProperties) RoundUpPrice(price decimal.Decimal) decimal.Decimal {
	if !p.MinimumPriceVariation.IsPositive() {
		return price
	}

	return price.Div(p.MinimumPriceVariation).Ceil().Mul(p.MinimumPriceVariation)
}

// RoundQuantity rounds a quantity toward zero to a whole number of lots.
func (p SymbolProperties) RoundQuantity(quantity decimal.Decimal) decimal.Decimal {
	lot := p.LotSize
	if !lot.IsPositive() {
		lot = decimal.NewFromInt(1)
	}

	return quantity.Div(lot).Truncate(0).Mul(lot)
}
