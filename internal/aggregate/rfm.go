package aggregate

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/retailboard/internal/columns"
	"github.com/MrJamesThe3rd/retailboard/internal/sales"
)

// RFMRecord scores one customer.
type RFMRecord struct {
	CustomerID   string
	Recency      int // whole days from the last purchase to the reference date
	Frequency    int // distinct invoices
	Monetary     decimal.Decimal
	LastPurchase time.Time
}

type RFMTable struct {
	Records   []RFMRecord
	Reference time.Time
	Status    Status
}

// ReferenceDate is one day after the latest InvoiceDate, which keeps every
// customer's Recency at 1 or more.
func ReferenceDate(t *sales.Table) (time.Time, bool) {
	_, last, ok := t.DateRange()
	if !ok {
		return time.Time{}, false
	}

	return last.AddDate(0, 0, 1), true
}

// RFM computes Recency, Frequency and Monetary per customer relative to ref.
// Rows without a customer id are ignored. Records are ordered by customer id.
func RFM(t *sales.Table, ref time.Time) RFMTable {
	out := RFMTable{
		Reference: ref,
		Status:    statusFor(t, columns.RoleCustomer, columns.RoleDate, columns.RoleInvoice),
	}
	if out.Status.Insufficient() {
		return out
	}

	type acc struct {
		last     time.Time
		invoices map[string]struct{}
		monetary decimal.Decimal
	}

	byCustomer := make(map[string]*acc)

	for _, tx := range t.Rows {
		if tx.CustomerID == "" {
			continue
		}

		a, ok := byCustomer[tx.CustomerID]
		if !ok {
			a = &acc{last: tx.InvoiceDate, invoices: make(map[string]struct{})}
			byCustomer[tx.CustomerID] = a
		}

		if tx.InvoiceDate.After(a.last) {
			a.last = tx.InvoiceDate
		}

		if tx.InvoiceNo != "" {
			a.invoices[tx.InvoiceNo] = struct{}{}
		}

		a.monetary = a.monetary.Add(tx.Sales)
	}

	out.Records = make([]RFMRecord, 0, len(byCustomer))
	for id, a := range byCustomer {
		out.Records = append(out.Records, RFMRecord{
			CustomerID:   id,
			Recency:      daysBetween(a.last, ref),
			Frequency:    len(a.invoices),
			Monetary:     a.monetary,
			LastPurchase: a.last,
		})
	}

	slices.SortFunc(out.Records, func(a, b RFMRecord) int {
		return cmp.Compare(a.CustomerID, b.CustomerID)
	})

	return out
}

// daysBetween floors (to - from) to whole days.
func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}
