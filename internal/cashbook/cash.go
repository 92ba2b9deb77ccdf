package cashbook

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cash is the balance of one currency and its rate to the account currency.
type Cash struct {
	Currency       string
	Amount         decimal.Decimal
	ConversionRate decimal.Decimal
}

// AddAmount adds a signed amount and returns the new balance.
func (c *Cash) AddAmount(amount decimal.Decimal) decimal.Decimal {
	c.Amount = c.Amount.Add(amount)

	return c.Amount
}

// ValueInAccountCurrency returns the balance converted with the current rate.
func (c *Cash) ValueInAccountCurrency() decimal.Decimal {
	return c.Amount.Mul(c.ConversionRate)
}

func (c *Cash) String() string {
	return fmt.Sprintf("%s %s @ %s", c.Currency, c.Amount.String(), c.ConversionRate.String())
}
