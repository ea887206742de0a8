// Package payroll folds a month of attendance, advances and payments into
// the net amount owed to each active employee.
package payroll

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/shopspring/decimal"
)

var ErrInvalidMonth = errors.New("month must be in YYYY-MM format")

var half = decimal.NewFromFloat(0.5)

type Input struct {
	Employees  []*models.Employee
	Attendance []*models.Attendance
	Advances   []*models.SalaryAdvance
	Payments   []*models.SalaryPayment
}

// MonthRange returns the first day of month and the first day of the next one.
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// Gross is fullDays x rate + halfDays x 0.5 x rate.
func Gross(fullDays, halfDays int64, rate decimal.Decimal) decimal.Decimal {
	full := rate.Mul(decimal.NewFromInt(fullDays))
	halves := rate.Mul(half).Mul(decimal.NewFromInt(halfDays))
	return full.Add(halves).Round(2)
}

// Net clamps gross - advances - paid at zero.
func Net(gross, advances, paid decimal.Decimal) decimal.Decimal {
	net := gross.Sub(advances).Sub(paid)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// Aggregate builds the payroll report for month. Rows belonging to inactive or
// unknown employees are ignored; lines are ordered by employee name.
func Aggregate(month string, in Input) *models.PayrollReport {
	report := &models.PayrollReport{
		Month:           month,
		Lines:           []*models.PayrollLine{},
		TotalGross:      decimal.Zero,
		TotalAdvances:   decimal.Zero,
		TotalPaid:       decimal.Zero,
		TotalNetPayable: decimal.Zero,
	}

	lines := map[int64]*models.PayrollLine{}
	for _, e := range in.Employees {
		if !e.IsActive {
			continue
		}
		lines[e.ID] = &models.PayrollLine{
			EmployeeID:    e.ID,
			EmployeeName:  e.Name,
			Role:          e.Role,
			DailyWage:     e.DailyWage,
			Advances:      decimal.Zero,
			AlreadyPaid:   decimal.Zero,
			BankAccountNo: e.BankAccountNo,
			BankIFSC:      e.BankIFSC,
		}
	}

	for _, a := range in.Attendance {
		l, ok := lines[a.EmployeeID]
		if !ok {
			continue
		}
		switch a.Status {
		case models.ATTENDANCE_FULL_DAY:
			l.FullDays++
		case models.ATTENDANCE_HALF_DAY:
			l.HalfDays++
		case models.ATTENDANCE_ABSENT:
			l.AbsentDays++
		}
	}
	for _, adv := range in.Advances {
		if l, ok := lines[adv.EmployeeID]; ok {
			l.Advances = l.Advances.Add(adv.Amount)
		}
	}
	for _, p := range in.Payments {
		if l, ok := lines[p.EmployeeID]; ok {
			l.AlreadyPaid = l.AlreadyPaid.Add(p.Amount)
		}
	}

	for _, l := range lines {
		l.Gross = Gross(l.FullDays, l.HalfDays, l.DailyWage)
		l.NetPayable = Net(l.Gross, l.Advances, l.AlreadyPaid)

		report.TotalGross = report.TotalGross.Add(l.Gross)
		report.TotalAdvances = report.TotalAdvances.Add(l.Advances)
		report.TotalPaid = report.TotalPaid.Add(l.AlreadyPaid)
		report.TotalNetPayable = report.TotalNetPayable.Add(l.NetPayable)
		report.Lines = append(report.Lines, l)
	}
	sort.Slice(report.Lines, func(i, j int) bool {
		if report.Lines[i].EmployeeName == report.Lines[j].EmployeeName {
			return report.Lines[i].EmployeeID < report.Lines[j].EmployeeID
		}
		return report.Lines[i].EmployeeName < report.Lines[j].EmployeeName
	})
	return report
}
