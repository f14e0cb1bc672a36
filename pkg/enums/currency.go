package enums

import (
	"fmt"
	"strings"
)

// Currency is a lowercase ISO 4217 alphabetic code.
type Currency string

// DefaultCurrency is the pricing fallback of last resort.
const DefaultCurrency = CurrencyUSD

const (
	CurrencyUSD Currency = "usd"
	CurrencyCAD Currency = "cad"
	CurrencyMXN Currency = "mxn"
	CurrencyEUR Currency = "eur"
	CurrencyGBP Currency = "gbp"
	CurrencyJPY Currency = "jpy"
	CurrencyAUD Currency = "aud"
	CurrencyBRL Currency = "brl"
	CurrencyINR Currency = "inr"
	CurrencyCNY Currency = "cny"
)

// CurrencyInfo is one row of the ISO 4217 table.
type CurrencyInfo struct {
	Code    Currency
	Numeric int
	Name    string
}

// currencyTable is built once at init and never mutated afterwards.
var currencyTable = map[Currency]CurrencyInfo{
	CurrencyUSD: {CurrencyUSD, 840, "US Dollar"},
	CurrencyCAD: {CurrencyCAD, 124, "Canadian Dollar"},
	CurrencyMXN: {CurrencyMXN, 484, "Mexican Peso"},
	CurrencyEUR: {CurrencyEUR, 978, "Euro"},
	CurrencyGBP: {CurrencyGBP, 826, "Pound Sterling"},
	CurrencyJPY: {CurrencyJPY, 392, "Yen"},
	CurrencyAUD: {CurrencyAUD, 36, "Australian Dollar"},
	CurrencyBRL: {CurrencyBRL, 986, "Brazilian Real"},
	CurrencyINR: {CurrencyINR, 356, "Indian Rupee"},
	CurrencyCNY: {CurrencyCNY, 156, "Yuan Renminbi"},
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is part of the supported table.
func (c Currency) IsValid() bool {
	_, ok := currencyTable[c]
	return ok
}

// Info returns the ISO 4217 row for the currency.
func (c Currency) Info() (CurrencyInfo, bool) {
	info, ok := currencyTable[c]
	return info, ok
}

// ParseCurrency converts raw input into a Currency.
func ParseCurrency(value string) (Currency, error) {
	candidate := Currency(strings.ToLower(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
