package fees

import (
	"github.com/rxtech-lab/argo-fills/internal/securities"
	"github.com/shopspring/decimal"
)

type Broker string

const (
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero              Broker = "zero_commission"
	BrokerConstant          Broker = "constant"
	BrokerPercent           Broker = "percent"
)

var AllBrokers = []any{
	BrokerInteractiveBroker,
	BrokerZero,
	BrokerConstant,
	BrokerPercent,
}

// GetFeeModel returns the default fee model of the broker. Unknown brokers charge nothing.
func GetFeeModel(broker Broker) securities.FeeModel {
	switch broker {
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerFeeModel()
	case BrokerConstant:
		return NewConstantFeeModel(decimal.NewFromInt(1))
	case BrokerPercent:
		return NewPercentFeeModel()
	case BrokerZero:
		return NewZeroFeeModel()
	default:
		return NewZeroFeeModel()
	}
}
