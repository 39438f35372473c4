package payperiod

import (
	"math"

	"go-payroll/internal/entry"
)

// Totals is a pure reduction over ledger entries. Earnings and
// deductions are both kept as positive magnitudes; net subtracts.
type Totals struct {
	TotalHours      float64 `json:"total_hours"`
	TotalEarnings   int64   `json:"total_earnings_cents"`
	TotalDeductions int64   `json:"total_deductions_cents"`
	NetAmount       int64   `json:"net_amount_cents"`
	EntryCount      int     `json:"entry_count"`
}

type EmployeeTotals struct {
	EmployeeID string `json:"employee_id"`
	Totals
}

func reduce(entries []entry.CompensableEntry) Totals {
	var t Totals
	for _, e := range entries {
		t.TotalHours += e.Hours
		switch e.EntryType {
		case entry.TypeDeduction:
			t.TotalDeductions += abs(e.AmountCents)
		default:
			t.TotalEarnings += e.AmountCents
		}
		t.EntryCount++
	}
	t.TotalHours = round2(t.TotalHours)
	t.NetAmount = t.TotalEarnings - t.TotalDeductions
	return t
}

// CalcTotals sums every entry in the period regardless of approval
// state. It is what employees and admins see while the period is open.
func CalcTotals(entries []entry.CompensableEntry) Totals {
	return reduce(entries)
}

// CalcRunTotals sums only the entries claimed by the given approval
// run.
func CalcRunTotals(entries []entry.CompensableEntry, runID string) Totals {
	claimed := make([]entry.CompensableEntry, 0, len(entries))
	for _, e := range entries {
		if e.ApprovedInRunID != nil && e.ApprovedInRunID.String() == runID {
			claimed = append(claimed, e)
		}
	}
	return reduce(claimed)
}

// CalcEmployeeTotals groups the period's entries per employee, ordered
// by employee ID for a stable response.
func CalcEmployeeTotals(entries []entry.CompensableEntry) []EmployeeTotals {
	byEmployee := make(map[string][]entry.CompensableEntry)
	order := make([]string, 0)
	for _, e := range entries {
		id := e.EmployeeID.String()
		if _, seen := byEmployee[id]; !seen {
			order = append(order, id)
		}
		byEmployee[id] = append(byEmployee[id], e)
	}

	res := make([]EmployeeTotals, 0, len(order))
	for _, id := range order {
		res = append(res, EmployeeTotals{
			EmployeeID: id,
			Totals:     reduce(byEmployee[id]),
		})
	}
	return res
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
