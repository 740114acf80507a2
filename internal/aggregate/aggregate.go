// Package aggregate reduces a cleaned sales table into the grouped summaries
// the dashboard views are built from. Reducers never fail: a missing optional
// column yields an empty result whose Status names the missing roles.
package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/retailboard/internal/columns"
	"github.com/MrJamesThe3rd/retailboard/internal/sales"
)

// DefaultTopN is the number of products TopProducts keeps when n <= 0.
const DefaultTopN = 10

// Status explains how a result was produced.
type Status struct {
	// Missing lists required roles that did not resolve; the result is empty.
	Missing []columns.Role
	// Notes carries degradations inherited from cleaning.
	Notes []sales.Degradation
}

// Insufficient reports whether the view lacks the columns it needs.
func (s Status) Insufficient() bool {
	return len(s.Missing) > 0
}

func statusFor(t *sales.Table, required ...columns.Role) Status {
	s := Status{Notes: t.Notes}

	for _, r := range required {
		if !t.Has(r) {
			s.Missing = append(s.Missing, r)
		}
	}

	return s
}

type DayTotal struct {
	Date  time.Time
	Sales decimal.Decimal
}

// DailySales is one row per calendar day present in the data, ascending.
type DailySales struct {
	Days   []DayTotal
	Status Status
}

// Total sums Sales across every day.
func (d DailySales) Total() decimal.Decimal {
	total := decimal.Zero
	for _, day := range d.Days {
		total = total.Add(day.Sales)
	}

	return total
}

// ByDay groups sales by the calendar date of InvoiceDate.
func ByDay(t *sales.Table) DailySales {
	out := DailySales{Status: statusFor(t, columns.RoleDate)}
	if out.Status.Insufficient() {
		return out
	}

	totals := make(map[time.Time]decimal.Decimal)
	for _, tx := range t.Rows {
		day := truncateDay(tx.InvoiceDate)
		totals[day] = totals[day].Add(tx.Sales)
	}

	out.Days = make([]DayTotal, 0, len(totals))
	for day, s := range totals {
		out.Days = append(out.Days, DayTotal{Date: day, Sales: s})
	}

	slices.SortFunc(out.Days, func(a, b DayTotal) int {
		return a.Date.Compare(b.Date)
	})

	return out
}

type NamedTotal struct {
	Name  string
	Sales decimal.Decimal
}

// Ranking is a list of named totals sorted by Sales, largest first.
type Ranking struct {
	Items  []NamedTotal
	Status Status
}

// TopProducts returns the n best-selling descriptions (DefaultTopN when n <= 0).
func TopProducts(t *sales.Table, n int) Ranking {
	if n <= 0 {
		n = DefaultTopN
	}

	r := rank(t, columns.RoleDescription, func(tx sales.Transaction) string { return tx.Description })
	if len(r.Items) > n {
		r.Items = r.Items[:n]
	}

	return r
}

// ByCountry returns sales per region, largest first, untruncated.
func ByCountry(t *sales.Table) Ranking {
	return rank(t, columns.RoleCountry, func(tx sales.Transaction) string { return tx.Country })
}

func rank(t *sales.Table, role columns.Role, key func(sales.Transaction) string) Ranking {
	out := Ranking{Status: statusFor(t, role)}
	if out.Status.Insufficient() {
		return out
	}

	totals := make(map[string]decimal.Decimal)
	for _, tx := range t.Rows {
		k := key(tx)
		if k == "" {
			continue
		}

		totals[k] = totals[k].Add(tx.Sales)
	}

	out.Items = make([]NamedTotal, 0, len(totals))
	for name, s := range totals {
		out.Items = append(out.Items, NamedTotal{Name: name, Sales: s})
	}

	slices.SortFunc(out.Items, func(a, b NamedTotal) int {
		if c := b.Sales.Cmp(a.Sales); c != 0 {
			return c
		}

		return cmp.Compare(a.Name, b.Name)
	})

	return out
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
