package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Field names a scalar attribute of an Invoice.
type Field string

const (
	FieldInvoiceNumber Field = "invoiceNumber"
	FieldFromName      Field = "fromName"
	FieldToName        Field = "toName"
	FieldPaymentTerms  Field = "paymentTerms"
	FieldCurrency      Field = "currency"
	FieldDate          Field = "date"
	FieldDueDate       Field = "dueDate"
	FieldNotes         Field = "notes"
	FieldTerms         Field = "terms"
)

// Fields lists the scalar attributes in form order.
var Fields = []Field{
	FieldInvoiceNumber,
	FieldFromName,
	FieldToName,
	FieldDate,
	FieldDueDate,
	FieldPaymentTerms,
	FieldCurrency,
	FieldNotes,
	FieldTerms,
}

// ParseField maps an attribute name onto a Field.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", &InvalidFieldError{Name: name}
}

// With returns a copy of inv with field f set to value.
func (inv Invoice) With(f Field, value string) (Invoice, error) {
	out := inv.Clone()
	switch f {
	case FieldInvoiceNumber:
		out.InvoiceNumber = value
	case FieldFromName:
		out.FromName = value
	case FieldToName:
		out.ToName = value
	case FieldPaymentTerms:
		out.PaymentTerms = value
	case FieldCurrency:
		out.Currency = value
	case FieldDate:
		out.Date = value
	case FieldDueDate:
		out.DueDate = value
	case FieldNotes:
		out.Notes = value
	case FieldTerms:
		out.Terms = value
	default:
		return inv, &InvalidFieldError{Name: string(f)}
	}
	return out, nil
}

// Value reads the scalar attribute f.
func (inv Invoice) Value(f Field) (string, error) {
	switch f {
	case FieldInvoiceNumber:
		return inv.InvoiceNumber, nil
	case FieldFromName:
		return inv.FromName, nil
	case FieldToName:
		return inv.ToName, nil
	case FieldPaymentTerms:
		return inv.PaymentTerms, nil
	case FieldCurrency:
		return inv.Currency, nil
	case FieldDate:
		return inv.Date, nil
	case FieldDueDate:
		return inv.DueDate, nil
	case FieldNotes:
		return inv.Notes, nil
	case FieldTerms:
		return inv.Terms, nil
	}
	return "", &InvalidFieldError{Name: string(f)}
}

// ItemField names an editable attribute of a LineItem.
type ItemField string

const (
	ItemDescription ItemField = "description"
	ItemQuantity    ItemField = "quantity"
	ItemRate        ItemField = "rate"
)

// ParseItemField maps a line item attribute name onto an ItemField.
func ParseItemField(name string) (ItemField, error) {
	switch f := ItemField(name); f {
	case ItemDescription, ItemQuantity, ItemRate:
		return f, nil
	}
	return "", &InvalidFieldError{Name: name}
}

// With returns a copy of li with field f set from its textual form.
// Numeric fields treat an empty value as zero.
func (li LineItem) With(f ItemField, value string) (LineItem, error) {
	switch f {
	case ItemDescription:
		li.Description = value
		return li, nil
	case ItemQuantity, ItemRate:
		d, err := parseNumber(value)
		if err != nil {
			return li, &InvalidValueError{Field: string(f), Value: value, Err: err}
		}
		if f == ItemQuantity {
			li.Quantity = d
		} else {
			li.Rate = d
		}
		return li, nil
	}
	return li, &InvalidFieldError{Name: string(f)}
}

func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
