package sales

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/retailboard/internal/columns"
)

// Canonical column names produced by Clean.
const (
	ColInvoiceDate = "InvoiceDate"
	ColSales       = "Sales"
)

var ErrNoDateColumn = errors.New("no date-like column found")

// Degradation names a fallback taken because an optional column was missing.
type Degradation string

const (
	// DegradedNoPriceData means quantity or price could not be resolved and every
	// row carries Sales = 1, so every analytic counts rows instead of revenue.
	DegradedNoPriceData Degradation = "no_price_data"
)

func (d Degradation) Message() string {
	switch d {
	case DegradedNoPriceData:
		return "degraded: no quantity/price data, sales are unit counts"
	}

	return "degraded: " + string(d)
}

// DropReason records why a raw row did not survive cleaning.
type DropReason string

const (
	DropUnparseableDate     DropReason = "unparseable_date"
	DropCancelled           DropReason = "cancelled"
	DropInvalidNumber       DropReason = "invalid_number"
	DropNonPositiveQuantity DropReason = "non_positive_quantity"
	DropDuplicate           DropReason = "duplicate"
)

// Transaction is one cleaned row. Optional fields are empty when their role
// did not resolve; check Table.Has before relying on them.
type Transaction struct {
	InvoiceDate time.Time
	Sales       decimal.Decimal
	InvoiceNo   string
	CustomerID  string
	Description string
	Country     string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal

	// cells holds the source values of Table.extra, in order.
	cells []string
}

// Table is the cleaned, canonical form of an upload.
type Table struct {
	Schema  columns.Schema
	Rows    []Transaction
	Notes   []Degradation
	Dropped map[DropReason]int

	// extra are the source columns carried through untouched.
	extra []string
}

// Has reports whether every role resolved in the source table.
func (t *Table) Has(roles ...columns.Role) bool {
	return t.Schema.Has(roles...)
}

// Degraded reports whether d was applied while cleaning.
func (t *Table) Degraded(d Degradation) bool {
	for _, n := range t.Notes {
		if n == d {
			return true
		}
	}

	return false
}

// Len returns the number of surviving rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// TotalSales sums Sales over every row.
func (t *Table) TotalSales() decimal.Decimal {
	total := decimal.Zero
	for _, r := range t.Rows {
		total = total.Add(r.Sales)
	}

	return total
}

// DateRange returns the earliest and latest InvoiceDate. ok is false for an
// empty table.
func (t *Table) DateRange() (first, last time.Time, ok bool) {
	if len(t.Rows) == 0 {
		return time.Time{}, time.Time{}, false
	}

	first, last = t.Rows[0].InvoiceDate, t.Rows[0].InvoiceDate
	for _, r := range t.Rows[1:] {
		if r.InvoiceDate.Before(first) {
			first = r.InvoiceDate
		}

		if r.InvoiceDate.After(last) {
			last = r.InvoiceDate
		}
	}

	return first, last, true
}
