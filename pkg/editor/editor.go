// Package editor holds the draft under edit and the operations that change it.
//
// Every operation computes a new invoice value and swaps it in. Nothing is
// modified in place, so values handed out by Draft or stored in history
// never observe later edits.
package editor

import (
	"github.com/invoice-generator/pkg/invoice"
)

// Editor owns the current draft.
type Editor struct {
	draft invoice.Invoice
}

// New returns an editor holding an empty draft.
func New() *Editor {
	return &Editor{draft: invoice.Empty()}
}

// Draft returns a copy of the current draft.
func (e *Editor) Draft() invoice.Invoice {
	return e.draft.Clone()
}

// SetField sets the scalar attribute called name.
func (e *Editor) SetField(name, value string) error {
	f, err := invoice.ParseField(name)
	if err != nil {
		return err
	}
	next, err := e.draft.With(f, value)
	if err != nil {
		return err
	}
	e.draft = next
	return nil
}

// SetLogo attaches logo, replacing any previous one. A nil logo clears it.
func (e *Editor) SetLogo(logo *invoice.Logo) {
	next := e.draft.Clone()
	next.Logo = logo.Clone()
	e.draft = next
}

// AddLineItem appends an empty row and returns its identifier.
func (e *Editor) AddLineItem() string {
	li := invoice.NewLineItem()
	next := e.draft.Clone()
	next.LineItems = append(next.LineItems, li)
	e.draft = next
	return li.ID
}

// EditLineItem sets field of the row at index.
func (e *Editor) EditLineItem(index int, field, value string) error {
	id, err := e.idAt(index)
	if err != nil {
		return err
	}
	return e.EditLineItemByID(id, field, value)
}

// EditLineItemByID sets field of the row identified by id.
func (e *Editor) EditLineItemByID(id, field, value string) error {
	f, err := invoice.ParseItemField(field)
	if err != nil {
		return err
	}
	i := e.draft.IndexOf(id)
	if i < 0 {
		return &invoice.LineItemNotFoundError{ID: id}
	}
	li, err := e.draft.LineItems[i].With(f, value)
	if err != nil {
		return err
	}
	next := e.draft.Clone()
	next.LineItems[i] = li
	e.draft = next
	return nil
}

// RemoveLineItem drops the row at index; later rows move up by one.
func (e *Editor) RemoveLineItem(index int) error {
	id, err := e.idAt(index)
	if err != nil {
		return err
	}
	return e.RemoveLineItemByID(id)
}

// RemoveLineItemByID drops the row identified by id.
func (e *Editor) RemoveLineItemByID(id string) error {
	i := e.draft.IndexOf(id)
	if i < 0 {
		return &invoice.LineItemNotFoundError{ID: id}
	}
	next := e.draft.Clone()
	next.LineItems = append(next.LineItems[:i], next.LineItems[i+1:]...)
	e.draft = next
	return nil
}

// LoadPreset replaces the draft with the example document.
func (e *Editor) LoadPreset() {
	e.draft = invoice.Example()
}

// Reset replaces the draft with the empty state.
func (e *Editor) Reset() {
	e.draft = invoice.Empty()
}

// LoadFromHistory replaces the draft with a copy of entry.
func (e *Editor) LoadFromHistory(entry invoice.Invoice) {
	e.draft = entry.Clone()
}

func (e *Editor) idAt(index int) (string, error) {
	if index < 0 || index >= len(e.draft.LineItems) {
		return "", &invoice.IndexOutOfRangeError{Index: index, Len: len(e.draft.LineItems)}
	}
	return e.draft.LineItems[index].ID, nil
}
