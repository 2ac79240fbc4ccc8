// Package normalize turns raw extraction attempts into comparable products:
// prices converted to the base currency, titles reduced to a stable form,
// duplicate listings collapsed.
package normalize

// defaultRates maps a currency code to its value in base currency (USD) per
// one unit. A static table is deliberate: analysis is point-in-time and the
// verdict only needs price magnitudes, not FX precision.
var defaultRates = map[string]float64{
	"USD": 1.0,
	"EUR": 1.08,
	"GBP": 1.27,
	"CAD": 0.73,
	"AUD": 0.65,
	"JPY": 0.0067,
	"INR": 0.012,
	"PKR": 0.0036,
	"BDT": 0.0091,
	"LKR": 0.0033,
	"NPR": 0.0075,
	"CNY": 0.14,
}

// CurrencyConverter converts prices into the base currency using a fixed
// rate table.
type CurrencyConverter struct {
	rates map[string]float64
}

// NewCurrencyConverter builds a converter. A nil table selects the built-in
// defaults; a supplied table is used as-is so the rate set stays
// configuration, not code.
func NewCurrencyConverter(rates map[string]float64) *CurrencyConverter {
	if rates == nil {
		rates = defaultRates
	}
	return &CurrencyConverter{rates: rates}
}

// ToBase converts amount from the given currency into the base currency.
// An unknown currency falls back to the identity conversion: a missing rate
// must never make an analysis fail.
func (c *CurrencyConverter) ToBase(amount float64, currency string) float64 {
	rate, ok := c.rates[currency]
	if !ok || rate <= 0 {
		return amount
	}
	return amount * rate
}

// FromBase converts a base-currency amount back into the given currency.
// Round-tripping through ToBase and FromBase with the same table reproduces
// the original amount within floating-point tolerance.
func (c *CurrencyConverter) FromBase(amount float64, currency string) float64 {
	rate, ok := c.rates[currency]
	if !ok || rate <= 0 {
		return amount
	}
	return amount / rate
}
