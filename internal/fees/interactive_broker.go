package fees

import (
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
)

// InteractiveBrokerFeeModel charges per share with a minimum per order, in USD.
type InteractiveBrokerFeeModel struct {
	PerShare decimal.Decimal
	Minimum  decimal.Decimal
}

func NewInteractiveBrokerFeeModel() *InteractiveBrokerFeeModel {
	return &InteractiveBrokerFeeModel{
		PerShare: decimal.RequireFromString("0.005"),
		Minimum:  decimal.NewFromInt(1),
	}
}

func (m *InteractiveBrokerFeeModel) GetOrderFee(_ *securities.Security, order *types.Order) decimal.Decimal {
	return decimal.Max(m.Minimum, m.PerShare.Mul(order.AbsoluteQuantity()))
}
