package types

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
)

// MSRP maps currencies to the manufacturer suggested retail price. It is the
// pricing fallback of last resort when no sale price row is active.
type MSRP map[enums.Currency]decimal.Decimal

// Get returns the entry for the currency, reporting whether it exists.
func (m MSRP) Get(currency enums.Currency) (decimal.Decimal, bool) {
	amount, ok := m[currency]
	return amount, ok
}

// Supports reports whether an entry exists for the currency.
func (m MSRP) Supports(currency enums.Currency) bool {
	_, ok := m[currency]
	return ok
}

// Currencies lists every currency the MSRP covers.
func (m MSRP) Currencies() []enums.Currency {
	out := make([]enums.Currency, 0, len(m))
	for currency := range m {
		out = append(out, currency)
	}
	return out
}
