// Package currency lists the currency codes an invoice may be issued in.
package currency

import (
	"slices"
	"sync"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var codes = sync.OnceValue(func() []string {
	seen := make(map[string]struct{})
	var out []string
	for it := currency.Query(); it.Next(); {
		code := it.Unit().String()
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	slices.Sort(out)
	return out
})

// Codes returns the ISO 4217 codes of all currencies in use as legal tender,
// sorted alphabetically.
func Codes() []string {
	return slices.Clone(codes())
}

// Valid reports whether code is one of Codes.
func Valid(code string) bool {
	_, found := slices.BinarySearch(codes(), code)
	return found
}

// Symbol returns the display symbol for code, or code itself when it is not
// a known currency.
func Symbol(code string) string {
	u, err := currency.ParseISO(code)
	if err != nil {
		return code
	}
	return message.NewPrinter(language.English).Sprint(currency.Symbol(u))
}
