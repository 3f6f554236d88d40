package invoice

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmpty(t *testing.T) {
	inv := Empty()

	assert.Equal(t, DefaultCurrency, inv.Currency)
	assert.Empty(t, inv.LineItems)
	assert.Nil(t, inv.Logo)
	assert.Empty(t, inv.InvoiceNumber)
}

func TestClone_SharesNothing(t *testing.T) {
	orig := Example()
	orig.Logo = &Logo{Name: "logo.png", Data: []byte{1, 2, 3}}

	cp := orig.Clone()
	require.True(t, Equal(orig, cp))

	cp.LineItems[0].Description = "changed"
	cp.Logo.Data[0] = 9

	assert.Equal(t, "Front End React js #1", orig.LineItems[0].Description)
	assert.Equal(t, byte(1), orig.Logo.Data[0])
}

func TestEqual(t *testing.T) {
	a := Example()

	b := a.Clone()
	b.LineItems[1].Rate = decimal.RequireFromString("2.50")
	assert.True(t, Equal(a, b), "numerically equal rates compare equal")

	c := a.Clone()
	c.LineItems[0], c.LineItems[1] = c.LineItems[1], c.LineItems[0]
	assert.False(t, Equal(a, c), "line item order matters")

	d := a.Clone()
	d.Logo = &Logo{Name: "x"}
	assert.False(t, Equal(a, d))
	assert.NotEmpty(t, Diff(a, d))

	e := Empty()
	e.LineItems = nil
	assert.True(t, Equal(Empty(), e), "nil and empty line items are equal")

	f := a.Clone()
	f.LineItems[0].ID = NewLineItem().ID
	assert.True(t, Equal(a, f), "line item identifiers are not content")
	assert.Empty(t, Diff(a, f))

	g := Empty()
	g.LineItems = []LineItem{NewLineItem(), NewLineItem()}
	h := g.Clone()
	h.LineItems[0], h.LineItems[1] = h.LineItems[1], h.LineItems[0]
	assert.True(t, Equal(g, h), "swapping identical rows is indistinguishable")
}

func TestParseField(t *testing.T) {
	f, err := ParseField("dueDate")
	require.NoError(t, err)
	assert.Equal(t, FieldDueDate, f)

	_, err = ParseField("Conditions")
	var fe *InvalidFieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Conditions", fe.Name)

	_, err = ParseField("imageLogo")
	require.Error(t, err)
}

func TestWith_AllFields(t *testing.T) {
	inv := Empty()
	for _, f := range Fields {
		next, err := inv.With(f, "v-"+string(f))
		require.NoError(t, err)
		got, err := next.Value(f)
		require.NoError(t, err)
		assert.Equal(t, "v-"+string(f), got)

		before, err := inv.Value(f)
		require.NoError(t, err)
		assert.NotEqual(t, "v-"+string(f), before, "original must be untouched")
		inv = next
	}
}

func TestLineItemWith(t *testing.T) {
	li := NewLineItem()
	require.NotEmpty(t, li.ID)

	li, err := li.With(ItemQuantity, "3")
	require.NoError(t, err)
	li, err = li.With(ItemRate, "2.5")
	require.NoError(t, err)
	assert.True(t, li.Amount().Equal(decimal.RequireFromString("7.5")))

	li, err = li.With(ItemRate, "")
	require.NoError(t, err)
	assert.True(t, li.Rate.IsZero())

	_, err = li.With(ItemQuantity, "abc")
	var ve *InvalidValueError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "quantity", ve.Field)

	_, err = ParseItemField("amount")
	require.Error(t, err)
}

func TestSubtotal(t *testing.T) {
	assert.True(t, Example().Subtotal().Equal(decimal.RequireFromString("6.5")))
	assert.True(t, Empty().Subtotal().IsZero())
}
