package service

import (
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// currencyConverter normalizes amounts into a book's default currency using
// the rates from the book owner's currency registry. A rate is expressed in
// units of the currency per one unit of the base currency, so conversion is
// amount / fromRate * toRate.
type currencyConverter struct {
	currencyRepo domain.CurrencyRepository
}

func (c currencyConverter) toDefault(book *domain.Book, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	if code == book.DefaultCurrency || amount.IsZero() {
		return amount, nil
	}

	from, err := c.currencyRepo.GetByCode(book.OwnerID, code)
	if err != nil {
		return decimal.Zero, err
	}
	target, err := c.currencyRepo.GetByCode(book.OwnerID, book.DefaultCurrency)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Div(from.Rate).Mul(target.Rate), nil
}
