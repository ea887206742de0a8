// Package export builds XLSX workbooks for payroll sheets and van ledgers.
package export

import (
	"fmt"
	"io"
	"net/http"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook wraps an excelize file with the header and money styles used by every export.
type Workbook struct {
	f          *excelize.File
	sheet      string
	headStyle  int
	moneyStyle int
	totalStyle int
}

func newWorkbook(sheet string) (*Workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}
	wb := &Workbook{f: f, sheet: sheet}

	var err error
	if wb.headStyle, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DCE6F1"}},
	}); err != nil {
		f.Close()
		return nil, err
	}
	// format 4 is "#,##0.00"
	if wb.moneyStyle, err = f.NewStyle(&excelize.Style{NumFmt: 4}); err != nil {
		f.Close()
		return nil, err
	}
	if wb.totalStyle, err = f.NewStyle(&excelize.Style{NumFmt: 4, Font: &excelize.Font{Bold: true}}); err != nil {
		f.Close()
		return nil, err
	}
	return wb, nil
}

// File exposes the underlying workbook, mostly for tests.
func (wb *Workbook) File() *excelize.File {
	return wb.f
}

func (wb *Workbook) Close() error {
	return wb.f.Close()
}

// Write streams the workbook to w.
func (wb *Workbook) Write(w io.Writer) error {
	return wb.f.Write(w)
}

// Serve writes the workbook as an attachment named filename.
func (wb *Workbook) Serve(w http.ResponseWriter, filename string) error {
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return wb.Write(w)
}

func (wb *Workbook) row(row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if d, ok := v.(decimal.Decimal); ok {
			v = d.InexactFloat64()
		}
		if err := wb.f.SetCellValue(wb.sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func (wb *Workbook) style(row, fromCol, toCol, style int) error {
	from, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		return err
	}
	return wb.f.SetCellStyle(wb.sheet, from, to, style)
}

func (wb *Workbook) header(row int, titles ...string) error {
	values := make([]any, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	if err := wb.row(row, values...); err != nil {
		return err
	}
	return wb.style(row, 1, len(titles), wb.headStyle)
}

var payrollHeader = []string{
	"Employee", "Role", "Daily Wage", "Full Days", "Half Days", "Absent",
	"Gross", "Advances", "Already Paid", "Net Payable", "Bank Account", "IFSC",
}

// PayrollWorkbook lays one line per employee with a totals row at the bottom.
func PayrollWorkbook(r *models.PayrollReport) (*Workbook, error) {
	wb, err := newWorkbook("Payroll " + r.Month)
	if err != nil {
		return nil, err
	}
	if err := wb.fillPayroll(r); err != nil {
		wb.Close()
		return nil, fmt.Errorf("payroll workbook: %w", err)
	}
	return wb, nil
}

func (wb *Workbook) fillPayroll(r *models.PayrollReport) error {
	if err := wb.header(1, payrollHeader...); err != nil {
		return err
	}
	row := 2
	for _, l := range r.Lines {
		err := wb.row(row,
			l.EmployeeName, l.Role, l.DailyWage, l.FullDays, l.HalfDays, l.AbsentDays,
			l.Gross, l.Advances, l.AlreadyPaid, l.NetPayable, l.BankAccountNo, l.BankIFSC,
		)
		if err != nil {
			return err
		}
		if err := wb.style(row, 7, 10, wb.moneyStyle); err != nil {
			return err
		}
		row++
	}
	if err := wb.row(row, "TOTAL", "", "", "", "", "", r.TotalGross, r.TotalAdvances, r.TotalPaid, r.TotalNetPayable); err != nil {
		return err
	}
	if err := wb.style(row, 7, 10, wb.totalStyle); err != nil {
		return err
	}
	return wb.f.SetColWidth(wb.sheet, "A", "L", 15)
}

var vanHeader = []string{"Date", "Voucher", "Amount"}

// VanLedgerWorkbook puts the ledger summary on top and the payouts below it.
func VanLedgerWorkbook(l *models.VanLedger) (*Workbook, error) {
	wb, err := newWorkbook("Van " + l.RegistrationNo)
	if err != nil {
		return nil, err
	}
	if err := wb.fillVanLedger(l); err != nil {
		wb.Close()
		return nil, fmt.Errorf("van ledger workbook: %w", err)
	}
	return wb, nil
}

func (wb *Workbook) fillVanLedger(l *models.VanLedger) error {
	summary := [][]any{
		{"Van", l.RegistrationNo},
		{"Driver", l.DriverName},
		{"Delivered Orders", l.DeliveredOrders},
		{"Earned", l.Earned},
		{"Paid Out", l.PaidOut},
		{"Balance", l.Balance},
	}
	for i, s := range summary {
		if err := wb.row(i+1, s...); err != nil {
			return err
		}
	}
	if err := wb.style(4, 2, 2, wb.moneyStyle); err != nil {
		return err
	}
	if err := wb.style(6, 2, 2, wb.totalStyle); err != nil {
		return err
	}

	row := len(summary) + 2
	if err := wb.header(row, vanHeader...); err != nil {
		return err
	}
	for _, p := range l.Payouts {
		row++
		if err := wb.row(row, p.PayoutDate.Format("2006-01-02"), p.VoucherNo, p.Amount); err != nil {
			return err
		}
		if err := wb.style(row, 3, 3, wb.moneyStyle); err != nil {
			return err
		}
	}
	return wb.f.SetColWidth(wb.sheet, "A", "C", 18)
}
