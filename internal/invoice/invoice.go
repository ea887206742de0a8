// Package invoice renders an order as a printable A4 tax or retail invoice.
package invoice

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/shopspring/decimal"
)

var ErrNotInvoiced = errors.New("order has no invoice number")

const (
	pageWidth = 190.0
	lineH     = 7.0
)

var itemCols = []struct {
	title string
	width float64
	align string
}{
	{"#", 10, "C"},
	{"Product", 70, "L"},
	{"HSN", 25, "C"},
	{"Boxes", 20, "R"},
	{"Rate", 30, "R"},
	{"Amount", 35, "R"},
}

func money(d decimal.Decimal) string {
	return "Rs. " + d.StringFixed(2)
}

// Title is "TAX INVOICE" for GST orders and "INVOICE" otherwise.
func Title(o *models.Order) string {
	if o.GSTEnabled {
		return "TAX INVOICE"
	}
	return "INVOICE"
}

// Render writes the invoice PDF for o to w.
func Render(w io.Writer, company models.CompanyConfig, o *models.Order) error {
	if o.InvoiceNo == nil {
		return fmt.Errorf("%w: %s", ErrNotInvoiced, o.OrderNo)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s %s", Title(o), *o.InvoiceNo), false)
	pdf.SetCreator(models.APPName, false)
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	// seller
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(pageWidth, 9, company.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range []string{company.Address, labelled("State", company.State), labelled("GSTIN", company.GSTIN), labelled("Phone", company.Phone)} {
		if line != "" {
			pdf.CellFormat(pageWidth, 5, line, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(pageWidth, 9, Title(o), "TB", 1, "C", false, 0, "")
	pdf.Ln(2)

	// invoice and buyer details
	pdf.SetFont("Helvetica", "", 10)
	left := []string{
		"Invoice No: " + *o.InvoiceNo,
		"Order No: " + o.OrderNo,
		"Order Date: " + o.OrderDate.Format("02-01-2006"),
	}
	right := []string{
		"Bill To: " + o.DistributorName,
		labelled("Van", o.VanRegNo),
		"Status: " + o.Status,
	}
	for i := range left {
		pdf.CellFormat(pageWidth/2, 6, left[i], "", 0, "L", false, 0, "")
		pdf.CellFormat(pageWidth/2, 6, right[i], "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// items
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 236, 245)
	for _, c := range itemCols {
		pdf.CellFormat(c.width, lineH, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for i, it := range o.Items {
		cells := []string{
			fmt.Sprint(i + 1),
			it.ProductName,
			it.HSNCode,
			fmt.Sprint(it.Quantity),
			it.UnitPrice.StringFixed(2),
			it.LineTotal.StringFixed(2),
		}
		for j, c := range itemCols {
			pdf.CellFormat(c.width, lineH, cells[j], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)

	// totals
	for _, row := range Totals(o) {
		pdf.SetFont("Helvetica", row.style, 10)
		pdf.CellFormat(pageWidth-60, 6, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(60, 6, money(row.amount), "", 1, "R", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(pageWidth, 4, "Delivery charges are not subject to GST. This is a computer generated invoice.", "", "L", false)

	if pdf.Err() {
		return fmt.Errorf("render invoice: %w", pdf.Error())
	}
	return pdf.Output(w)
}

type totalRow struct {
	label  string
	amount decimal.Decimal
	style  string
}

// Totals lists the summary rows printed under the items. Tax lines follow the
// intrastate or interstate split, and zero delivery is left out.
func Totals(o *models.Order) []totalRow {
	rows := []totalRow{{"Subtotal", o.Subtotal, ""}}
	if o.GSTEnabled {
		rate := o.TaxRate.StringFixed(2)
		if o.Interstate {
			rows = append(rows, totalRow{"IGST @ " + rate + "%", o.IGST, ""})
		} else {
			half := o.TaxRate.Div(decimal.NewFromInt(2)).StringFixed(2)
			rows = append(rows,
				totalRow{"CGST @ " + half + "%", o.CGST, ""},
				totalRow{"SGST @ " + half + "%", o.SGST, ""},
			)
		}
	}
	rows = append(rows, totalRow{"Bill Total", o.BillTotal, "B"})
	if !o.DeliveryFee.IsZero() {
		rows = append(rows, totalRow{"Delivery Charges", o.DeliveryFee, ""})
	}
	rows = append(rows,
		totalRow{"Grand Total", o.TotalPayableAmount, "B"},
		totalRow{"Paid", o.AmountPaid, ""},
		totalRow{"Balance Due", o.PendingAmount, "B"},
	)
	return rows
}

func labelled(label, v string) string {
	if v == "" {
		return ""
	}
	return label + ": " + v
}
