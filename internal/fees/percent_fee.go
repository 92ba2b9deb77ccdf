package fees

import (
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
)

// PercentFeeModel charges a fraction of the traded value with a minimum per order.
type PercentFeeModel struct {
	Rate    decimal.Decimal
	Minimum decimal.Decimal
}

// NewPercentFeeModel charges 0.001% of the order value, at least 1.
func NewPercentFeeModel() *PercentFeeModel {
	return &PercentFeeModel{
		Rate:    decimal.RequireFromString("0.00001"),
		Minimum: decimal.NewFromInt(1),
	}
}

func (m *PercentFeeModel) GetOrderFee(security *securities.Security, order *types.Order) decimal.Decimal {
	value := security.Price().Mul(order.AbsoluteQuantity()).Mul(security.Multiplier())

	return decimal.Max(m.Minimum, value.Mul(m.Rate))
}
