package invoice

import "fmt"

// InvalidFieldError reports a mutation on an attribute outside the
// recognized set.
type InvalidFieldError struct {
	Name string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q", e.Name)
}

// IndexOutOfRangeError reports a line item position outside [0, Len).
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

// LineItemNotFoundError reports an unknown line item identifier.
type LineItemNotFoundError struct {
	ID string
}

func (e *LineItemNotFoundError) Error() string {
	return fmt.Sprintf("line item %q not found", e.ID)
}

// InvalidValueError reports a value that could not be converted for Field.
type InvalidValueError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Field, e.Err)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}
