package fees

import (
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
)

// ZeroFeeModel implements securities.FeeModel with no commission.
type ZeroFeeModel struct{}

// NewZeroFeeModel creates a new zero fee model.
func NewZeroFeeModel() *ZeroFeeModel {
	return &ZeroFeeModel{}
}

// GetOrderFee returns 0 for any order.
func (m *ZeroFeeModel) GetOrderFee(_ *securities.Security, _ *types.Order) decimal.Decimal {
	return decimal.Zero
}

// ConstantFeeModel charges the same fee for every order.
type ConstantFeeModel struct {
	Fee decimal.Decimal
}

func NewConstantFeeModel(fee decimal.Decimal) *ConstantFeeModel {
	return &ConstantFeeModel{Fee: decimal.Max(decimal.Zero, fee)}
}

func (m *ConstantFeeModel) GetOrderFee(_ *securities.Security, _ *types.Order) decimal.Decimal {
	return m.Fee
}
