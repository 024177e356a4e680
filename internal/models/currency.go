package models

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"BDT": "৳",
}

// CurrencySymbol returns the display symbol for a currency code, falling
// back to "CODE " for codes without a known symbol.
func CurrencySymbol(currency string) string {
	if s, ok := currencySymbols[currency]; ok {
		return s
	}
	return currency + " "
}
