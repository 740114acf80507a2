package sales

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/retailboard/internal/columns"
	"github.com/MrJamesThe3rd/retailboard/internal/dataset"
)

// cancelledPrefix marks a cancelled order in the invoice column.
const cancelledPrefix = "C"

// timeLayout round-trips InvoiceDate through Raw without losing precision.
const timeLayout = "2006-01-02 15:04:05.999999999"

// Clean normalizes a raw upload into the canonical schema:
//  1. resolve and parse the date column, dropping rows that do not parse
//  2. drop cancelled invoices when an invoice column exists
//  3. derive Sales from quantity × price, or fall back to Sales = 1
//  4. drop exact duplicate rows
//
// The only failure is a missing date column; every other gap degrades.
func Clean(raw dataset.Table) (*Table, error) {
	schema := columns.Resolve(raw.Columns, raw.Rows)

	dateCol, ok := schema[columns.RoleDate]
	if !ok {
		return nil, ErrNoDateColumn
	}

	qtyCol, hasQty := schema[columns.RoleQuantity]
	priceCol, hasPrice := schema[columns.RolePrice]
	priced := hasQty && hasPrice

	extraIdx, extra := carriedColumns(raw.Columns, dateCol.Index)

	t := &Table{
		Schema:  schema,
		Rows:    make([]Transaction, 0, len(raw.Rows)),
		Dropped: make(map[DropReason]int),
		extra:   extra,
	}

	if !priced {
		t.Notes = append(t.Notes, DegradedNoPriceData)
	}

	seen := make(map[string]struct{}, len(raw.Rows))

	for _, row := range raw.Rows {
		date, ok := columns.ParseTime(cell(row, dateCol.Index))
		if !ok {
			t.Dropped[DropUnparseableDate]++
			continue
		}

		tx := Transaction{
			InvoiceDate: date,
			Sales:       decimal.NewFromInt(1),
			InvoiceNo:   roleValue(schema, columns.RoleInvoice, row),
			CustomerID:  roleValue(schema, columns.RoleCustomer, row),
			Description: roleValue(schema, columns.RoleDescription, row),
			Country:     roleValue(schema, columns.RoleCountry, row),
		}

		if _, ok := schema[columns.RoleInvoice]; ok && strings.HasPrefix(tx.InvoiceNo, cancelledPrefix) {
			t.Dropped[DropCancelled]++
			continue
		}

		if priced {
			qty, qErr := parseNumber(cell(row, qtyCol.Index))
			price, pErr := parseNumber(cell(row, priceCol.Index))

			if qErr != nil || pErr != nil {
				t.Dropped[DropInvalidNumber]++
				continue
			}

			if !qty.IsPositive() {
				t.Dropped[DropNonPositiveQuantity]++
				continue
			}

			tx.Quantity = qty
			tx.UnitPrice = price
			tx.Sales = qty.Mul(price)
		}

		tx.cells = make([]string, len(extraIdx))
		for i, idx := range extraIdx {
			tx.cells[i] = cell(row, idx)
		}

		key := date.Format(timeLayout) + "\x1f" + strings.Join(tx.cells, "\x1f")
		if _, dup := seen[key]; dup {
			t.Dropped[DropDuplicate]++
			continue
		}

		seen[key] = struct{}{}
		t.Rows = append(t.Rows, tx)
	}

	return t, nil
}

// Raw renders the cleaned table back into an untyped table with the canonical
// InvoiceDate and Sales columns, so it can be previewed, exported, or cleaned
// again.
func (t *Table) Raw() dataset.Table {
	cols := make([]string, 0, len(t.extra)+2)
	cols = append(cols, ColInvoiceDate)
	cols = append(cols, t.extra...)
	cols = append(cols, ColSales)

	rows := make([][]string, len(t.Rows))
	for i, tx := range t.Rows {
		row := make([]string, 0, len(cols))
		row = append(row, tx.InvoiceDate.Format(timeLayout))
		row = append(row, tx.cells...)
		row = append(row, tx.Sales.String())
		rows[i] = row
	}

	return dataset.Table{Columns: cols, Rows: rows}
}

// carriedColumns returns the source columns kept verbatim: everything except
// the date column and a pre-existing Sales column, which Clean recomputes.
func carriedColumns(cols []string, dateIdx int) ([]int, []string) {
	idx := make([]int, 0, len(cols))
	names := make([]string, 0, len(cols))

	for i, c := range cols {
		if i == dateIdx || strings.EqualFold(c, ColSales) {
			continue
		}

		idx = append(idx, i)
		names = append(names, c)
	}

	return idx, names
}

func roleValue(schema columns.Schema, role columns.Role, row []string) string {
	m, ok := schema[role]
	if !ok {
		return ""
	}

	return cell(row, m.Index)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

// parseNumber accepts plain decimals as well as "1,234.50" and "1.234,50":
// whichever separator comes last is the decimal point.
func parseNumber(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}

	comma, dot := strings.LastIndex(clean, ","), strings.LastIndex(clean, ".")

	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case comma >= 0:
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	return decimal.NewFromString(clean)
}
