package invoice

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
)

var equalOpts = cmp.Options{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	cmpopts.EquateEmpty(),
	cmpopts.IgnoreFields(LineItem{}, "ID"),
}

// Equal reports whether a and b hold the same content: every attribute, the
// ordered line items and the logo bytes. Line item identifiers are ignored.
func Equal(a, b Invoice) bool {
	return cmp.Equal(a, b, equalOpts)
}

// Diff returns a human readable difference between a and b, empty when Equal.
func Diff(a, b Invoice) string {
	return cmp.Diff(a, b, equalOpts)
}
