package export

import (
	"bytes"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/invoice-generator/pkg/currency"
	"github.com/invoice-generator/pkg/invoice"
)

// PDF renders an A4 invoice with gofpdf.
type PDF struct{}

func (PDF) ContentType() string { return "application/pdf" }
func (PDF) Extension() string   { return "pdf" }

func (PDF) Render(w io.Writer, inv invoice.Invoice) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, true)
	pdf.SetCreator("invoicegen", true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right

	if inv.Logo != nil && len(inv.Logo.Data) > 0 {
		png, err := normalizeLogo(inv.Logo)
		if err != nil {
			return err
		}
		pdf.RegisterImageOptionsReader("logo", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
		pdf.ImageOptions("logo", pageW-right-40, 15, 40, 0, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(width-45, 10, "INVOICE", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(width-45, 6, tr("# "+inv.InvoiceNumber), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	half := width / 2
	y := pdf.GetY()
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(half, 5, "From", "", 2, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(half, 5, tr(inv.FromName), "", "L", false)
	fromBottom := pdf.GetY()

	pdf.SetXY(left+half, y)
	meta := [][2]string{
		{"Date", inv.Date},
		{"Due Date", inv.DueDate},
		{"Payment Terms", inv.PaymentTerms},
		{"Currency", inv.Currency},
	}
	for _, m := range meta {
		pdf.SetX(left + half)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(35, 5, m[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(half-35, 5, tr(m[1]), "", 1, "L", false, 0, "")
	}
	pdf.SetY(max(fromBottom, pdf.GetY()) + 4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(width, 5, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(half, 5, tr(inv.ToName), "", "L", false)
	pdf.Ln(6)

	sym := currency.Symbol(inv.Currency)
	money := func(d decimal.Decimal) string { return tr(sym + " " + d.StringFixed(2)) }

	cols := []float64{width * 0.52, width * 0.12, width * 0.18, width * 0.18}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Item", "Quantity", "Rate", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 7, h, "B", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, li := range inv.LineItems {
		pdf.CellFormat(cols[0], 7, tr(li.Description), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 7, li.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 7, money(li.Rate), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, money(li.Amount()), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(cols[0]+cols[1]+cols[2], 7, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(cols[3], 7, money(inv.Subtotal()), "T", 1, "R", false, 0, "")
	pdf.Ln(8)

	for _, block := range [][2]string{{"Notes", inv.Notes}, {"Terms", inv.Terms}} {
		if block[1] == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(width, 5, block[0], "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(width, 5, tr(block[1]), "", "L", false)
		pdf.Ln(4)
	}

	return pdf.Output(w)
}
