package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/invoice-generator/pkg/invoice"
)

const sheet = "Invoice"

// XLSX renders the invoice as a single-sheet workbook.
type XLSX struct{}

func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSX) Extension() string { return "xlsx" }

func (XLSX) Render(w io.Writer, inv invoice.Invoice) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	put := func(label string, value any) error {
		if err := f.SetCellValue(sheet, cell(1, row), label); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(1, row), cell(1, row), bold); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell(2, row), value); err != nil {
			return err
		}
		row++
		return nil
	}

	header := []struct {
		label string
		value string
	}{
		{"Invoice #", inv.InvoiceNumber},
		{"From", inv.FromName},
		{"Bill To", inv.ToName},
		{"Date", inv.Date},
		{"Due Date", inv.DueDate},
		{"Payment Terms", inv.PaymentTerms},
		{"Currency", inv.Currency},
	}
	for _, h := range header {
		if err := put(h.label, h.value); err != nil {
			return err
		}
	}

	row++
	for i, title := range []string{"Item", "Quantity", "Rate", "Amount"} {
		if err := f.SetCellValue(sheet, cell(i+1, row), title); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, cell(1, row), cell(4, row), bold); err != nil {
		return err
	}
	row++

	for _, li := range inv.LineItems {
		values := []any{
			li.Description,
			li.Quantity.InexactFloat64(),
			li.Rate.InexactFloat64(),
			li.Amount().InexactFloat64(),
		}
		for i, v := range values {
			if err := f.SetCellValue(sheet, cell(i+1, row), v); err != nil {
				return err
			}
		}
		row++
	}

	if err := f.SetCellValue(sheet, cell(3, row), "Total"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell(4, row), inv.Subtotal().InexactFloat64()); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell(3, row), cell(4, row), bold); err != nil {
		return err
	}
	row += 2

	if err := put("Notes", inv.Notes); err != nil {
		return err
	}
	if err := put("Terms", inv.Terms); err != nil {
		return err
	}

	if inv.Logo != nil && len(inv.Logo.Data) > 0 {
		png, err := normalizeLogo(inv.Logo)
		if err != nil {
			return err
		}
		if err := f.AddPictureFromBytes(sheet, "F1", &excelize.Picture{Extension: ".png", File: png}); err != nil {
			return fmt.Errorf("add logo: %w", err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return err
	}
	return f.Write(w)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
