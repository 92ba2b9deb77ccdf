package cashbook

import (
	"strings"

	"github.com/rxtech-lab/argo-fills/pkg/errors"
	"github.com/shopspring/decimal"
)

// CashBook holds the balances of every currency of the account.
// The account currency always exists and has a conversion rate of one.
type CashBook struct {
	accountCurrency string
	cash            map[string]*Cash
	currencies      []string
}

// NewCashBook creates a book holding a zero balance of the account currency.
func NewCashBook(accountCurrency string) *CashBook {
	book := &CashBook{
		accountCurrency: normalize(accountCurrency),
		cash:            make(map[string]*Cash),
		currencies:      []string{},
	}
	book.Add(accountCurrency, decimal.Zero, decimal.NewFromInt(1))

	return book
}

func normalize(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// AccountCurrency returns the currency all values are reported in.
func (b *CashBook) AccountCurrency() string {
	return b.accountCurrency
}

// Add sets the balance and rate of a currency, creating it when missing.
// The rate of the account currency stays one.
func (b *CashBook) Add(currency string, amount, conversionRate decimal.Decimal) *Cash {
	currency = normalize(currency)
	if currency == b.accountCurrency {
		conversionRate = decimal.NewFromInt(1)
	}

	if cash, ok := b.cash[currency]; ok {
		cash.Amount = amount
		cash.ConversionRate = conversionRate

		return cash
	}

	cash := &Cash{Currency: currency, Amount: amount, ConversionRate: conversionRate}
	b.cash[currency] = cash
	b.currencies = append(b.currencies, currency)

	return cash
}

// Ensure returns the currency, creating an empty balance without a conversion rate when missing.
func (b *CashBook) Ensure(currency string) *Cash {
	if cash, ok := b.cash[normalize(currency)]; ok {
		return cash
	}

	return b.Add(currency, decimal.Zero, decimal.Zero)
}

// Get returns the balance of a currency.
func (b *CashBook) Get(currency string) (*Cash, error) {
	cash, ok := b.cash[normalize(currency)]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnsupportedCurrency, "currency %s is not in the cash book", currency)
	}

	return cash, nil
}

// Contains reports whether the currency is in the book.
func (b *CashBook) Contains(currency string) bool {
	_, ok := b.cash[normalize(currency)]

	return ok
}

// Currencies returns the currencies in insertion order, account currency first.
func (b *CashBook) Currencies() []string {
	return append([]string(nil), b.currencies...)
}

// All returns the balances in insertion order.
func (b *CashBook) All() []*Cash {
	result := make([]*Cash, 0, len(b.currencies))
	for _, currency := range b.currencies {
		result = append(result, b.cash[currency])
	}

	return result
}

// ConversionRate returns the rate of a currency to the account currency.
func (b *CashBook) ConversionRate(currency string) (decimal.Decimal, error) {
	cash, err := b.Get(currency)
	if err != nil {
		return decimal.Zero, err
	}

	return cash.ConversionRate, nil
}

// ConvertToAccountCurrency converts an amount of the given currency.
func (b *CashBook) ConvertToAccountCurrency(amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	rate, err := b.ConversionRate(currency)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Mul(rate), nil
}

// Convert converts an amount between two currencies of the book.
func (b *CashBook) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if normalize(from) == normalize(to) {
		return amount, nil
	}

	fromRate, err := b.ConversionRate(from)
	if err != nil {
		return decimal.Zero, err
	}

	toRate, err := b.ConversionRate(to)
	if err != nil {
		return decimal.Zero, err
	}

	if toRate.IsZero() {
		return decimal.Zero, errors.Newf(errors.ErrCodeUnsupportedCurrency, "currency %s has no conversion rate", to)
	}

	return amount.Mul(fromRate).Div(toRate), nil
}

// TotalValueInAccountCurrency sums every balance at its current rate.
func (b *CashBook) TotalValueInAccountCurrency() decimal.Decimal {
	total := decimal.Zero
	for _, cash := range b.cash {
		total = total.Add(cash.ValueInAccountCurrency())
	}

	return total
}
