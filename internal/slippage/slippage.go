package slippage

import (
	"math"

	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindNull        Kind = "null"
	KindConstant    Kind = "constant"
	KindPercent     Kind = "percent"
	KindLogQuantity Kind = "log_quantity"
)

var AllKinds = []any{
	KindNull,
	KindConstant,
	KindPercent,
	KindLogQuantity,
}

// GetSlippageModel returns the model of the given kind. value is the constant amount
// or the percentage, depending on the kind. Unknown kinds have no slippage.
func GetSlippageModel(kind Kind, value decimal.Decimal) securities.SlippageModel {
	switch kind {
	case KindConstant:
		return NewConstantSlippageModel(value)
	case KindPercent:
		return NewPercentSlippageModel(value)
	case KindLogQuantity:
		return NewLogQuantitySlippageModel()
	case KindNull:
		return NewNullSlippageModel()
	default:
		return NewNullSlippageModel()
	}
}

// NullSlippageModel never moves the price.
type NullSlippageModel struct{}

func NewNullSlippageModel() *NullSlippageModel {
	return &NullSlippageModel{}
}

func (m *NullSlippageModel) GetSlippageApproximation(_ *securities.Security, _ *types.Order) decimal.Decimal {
	return decimal.Zero
}

// ConstantSlippageModel moves the price by a fixed amount in the quote currency.
type ConstantSlippageModel struct {
	Amount decimal.Decimal
}

func NewConstantSlippageModel(amount decimal.Decimal) *ConstantSlippageModel {
	return &ConstantSlippageModel{Amount: amount.Abs()}
}

func (m *ConstantSlippageModel) GetSlippageApproximation(_ *securities.Security, _ *types.Order) decimal.Decimal {
	return m.Amount
}

// PercentSlippageModel moves the price by a fraction of the last price, rounded up to the tick size.
type PercentSlippageModel struct {
	Percent decimal.Decimal
}

func NewPercentSlippageModel(percent decimal.Decimal) *PercentSlippageModel {
	return &PercentSlippageModel{Percent: percent.Abs()}
}

func (m *PercentSlippageModel) GetSlippageApproximation(security *securities.Security, _ *types.Order) decimal.Decimal {
	return security.Properties.RoundUpPrice(security.Price().Mul(m.Percent))
}

// LogQuantitySlippageModel grows with the logarithm of the order size: price * 0.0001 * log10(2|q|).
type LogQuantitySlippageModel struct {
	Factor decimal.Decimal
}

func NewLogQuantitySlippageModel() *LogQuantitySlippageModel {
	return &LogQuantitySlippageModel{Factor: decimal.RequireFromString("0.0001")}
}

func (m *LogQuantitySlippageModel) GetSlippageApproximation(security *securities.Security, order *types.Order) decimal.Decimal {
	size := order.AbsoluteQuantity().Mul(decimal.NewFromInt(2)).InexactFloat64()
	if size <= 1 {
		return decimal.Zero
	}

	return security.Price().Mul(m.Factor).Mul(decimal.NewFromFloat(math.Log10(size)))
}
