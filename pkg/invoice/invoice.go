// pkg/invoice/invoice.go

package invoice

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency of a freshly created draft.
const DefaultCurrency = "USD"

// Invoice represents the invoice data model. A value of this type is either
// the draft under edit or a frozen history entry.
type Invoice struct {
	InvoiceNumber string     `json:"invoiceNumber"`
	FromName      string     `json:"fromName"`
	Logo          *Logo      `json:"imageLogo"`
	PaymentTerms  string     `json:"paymentTerms"`
	Currency      string     `json:"currency"`
	ToName        string     `json:"toName"`
	Date          string     `json:"date"`
	DueDate       string     `json:"dueDate"`
	LineItems     []LineItem `json:"lineItems"`
	Notes         string     `json:"notes"`
	Terms         string     `json:"terms"`
}

// Logo is an image attached to the invoice.
type Logo struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// LineItem represents an item in the invoice.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// NewLineItem returns an empty row with a fresh identifier.
func NewLineItem() LineItem {
	return LineItem{
		ID:       uuid.NewString(),
		Quantity: decimal.Zero,
		Rate:     decimal.Zero,
	}
}

// Amount is quantity times rate.
func (li LineItem) Amount() decimal.Decimal {
	return li.Quantity.Mul(li.Rate)
}

// Empty returns the initial state of a draft.
func Empty() Invoice {
	return Invoice{
		Currency:  DefaultCurrency,
		LineItems: []LineItem{},
	}
}

// Subtotal sums the amounts of all line items.
func (inv Invoice) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range inv.LineItems {
		total = total.Add(li.Amount())
	}
	return total
}

// IndexOf returns the position of the line item with the given id, or -1.
func (inv Invoice) IndexOf(id string) int {
	for i, li := range inv.LineItems {
		if li.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy. The copy shares no slices with inv.
func (inv Invoice) Clone() Invoice {
	out := inv
	out.Logo = inv.Logo.Clone()
	if inv.LineItems != nil {
		out.LineItems = make([]LineItem, len(inv.LineItems))
		copy(out.LineItems, inv.LineItems)
	}
	return out
}

// Clone returns a copy of the logo including its data. A nil logo stays nil.
func (l *Logo) Clone() *Logo {
	if l == nil {
		return nil
	}
	out := *l
	if l.Data != nil {
		out.Data = append([]byte(nil), l.Data...)
	}
	return &out
}
