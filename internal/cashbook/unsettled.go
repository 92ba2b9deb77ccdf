package cashbook

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// UnsettledFunds is an amount waiting for its settlement instant.
type UnsettledFunds struct {
	Currency       string
	Amount         decimal.Decimal
	SettlementTime time.Time
}

// UnsettledCashBook holds funds that are owned but not yet available.
type UnsettledCashBook struct {
	funds []UnsettledFunds
}

func NewUnsettledCashBook() *UnsettledCashBook {
	return &UnsettledCashBook{funds: []UnsettledFunds{}}
}

// Add queues an amount until its settlement time.
func (b *UnsettledCashBook) Add(funds UnsettledFunds) {
	funds.Currency = normalize(funds.Currency)
	funds.SettlementTime = funds.SettlementTime.UTC()
	b.funds = append(b.funds, funds)
}

// Scan removes and returns the funds whose settlement time is at or before now.
func (b *UnsettledCashBook) Scan(utcNow time.Time) []UnsettledFunds {
	var settled []UnsettledFunds

	b.funds = slices.DeleteFunc(b.funds, func(funds UnsettledFunds) bool {
		if funds.SettlementTime.After(utcNow) {
			return false
		}

		settled = append(settled, funds)

		return true
	})

	return settled
}

// Total returns the unsettled amount of one currency.
func (b *UnsettledCashBook) Total(currency string) decimal.Decimal {
	currency = normalize(currency)
	total := decimal.Zero

	for _, funds := range b.funds {
		if funds.Currency == currency {
			total = total.Add(funds.Amount)
		}
	}

	return total
}

// TotalInAccountCurrency converts every pending amount with the rates of the book.
// Currencies missing from the book count as zero.
func (b *UnsettledCashBook) TotalInAccountCurrency(book *CashBook) decimal.Decimal {
	total := decimal.Zero

	for _, funds := range b.funds {
		value, err := book.ConvertToAccountCurrency(funds.Amount, funds.Currency)
		if err != nil {
			continue
		}

		total = total.Add(value)
	}

	return total
}

// Pending returns a copy of the queued funds.
func (b *UnsettledCashBook) Pending() []UnsettledFunds {
	return append([]UnsettledFunds(nil), b.funds...)
}

func (b *UnsettledCashBook) Len() int { return len(b.funds) }
