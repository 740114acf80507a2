package sales_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/retailboard/internal/columns"
	"github.com/MrJamesThe3rd/retailboard/internal/dataset"
	"github.com/MrJamesThe3rd/retailboard/internal/sales"
)

func retailTable() dataset.Table {
	return dataset.Table{
		Columns: []string{"InvoiceNo", "InvoiceDate", "Quantity", "UnitPrice", "CustomerID"},
		Rows: [][]string{
			{"536365", "2024-01-01", "2", "5", "C1"},
			{"536366", "2024-01-01", "-1", "5", "C1"},
			{"C536367", "2024-01-02", "1", "10", "C2"},
		},
	}
}

func TestClean_Scenario(t *testing.T) {
	table, err := sales.Clean(retailTable())
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	tx := table.Rows[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), tx.InvoiceDate)
	assert.True(t, tx.Sales.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "536365", tx.InvoiceNo)
	assert.Equal(t, "C1", tx.CustomerID)

	assert.Equal(t, 1, table.Dropped[sales.DropNonPositiveQuantity])
	assert.Equal(t, 1, table.Dropped[sales.DropCancelled])
	assert.Empty(t, table.Notes)
}

func TestClean_NoDateColumn(t *testing.T) {
	raw := dataset.Table{
		Columns: []string{"sku", "qty", "price"},
		Rows:    [][]string{{"A", "1", "2"}, {"B", "3", "4"}},
	}

	table, err := sales.Clean(raw)
	assert.ErrorIs(t, err, sales.ErrNoDateColumn)
	assert.Nil(t, table)
	assert.EqualError(t, err, "no date-like column found")
}

func TestClean_DegradedWithoutPrice(t *testing.T) {
	type testCase struct {
		name    string
		columns []string
		rows    [][]string
	}

	tests := []testCase{
		{
			name:    "NoQuantityNoPrice",
			columns: []string{"order_date", "Description"},
			rows:    [][]string{{"2024-01-01", "MUG"}, {"2024-01-02", "PLATE"}},
		},
		{
			name:    "QuantityOnly",
			columns: []string{"order_date", "qty"},
			rows:    [][]string{{"2024-01-01", "-4"}, {"2024-01-02", "3"}},
		},
		{
			name:    "PriceOnly",
			columns: []string{"order_date", "Price"},
			rows:    [][]string{{"2024-01-01", "9.99"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := sales.Clean(dataset.Table{Columns: tt.columns, Rows: tt.rows})
			require.NoError(t, err)

			assert.True(t, table.Degraded(sales.DegradedNoPriceData))
			assert.Equal(t, len(tt.rows), table.Len())

			for _, tx := range table.Rows {
				assert.True(t, tx.Sales.Equal(decimal.NewFromInt(1)))
			}
		})
	}
}

func TestClean_DropsUnparseableDates(t *testing.T) {
	raw := dataset.Table{
		Columns: []string{"Date", "Quantity", "Price"},
		Rows: [][]string{
			{"2024-01-01", "1", "1"},
			{"not a date", "1", "1"},
			{"", "1", "1"},
		},
	}

	table, err := sales.Clean(raw)
	require.NoError(t, err)

	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 2, table.Dropped[sales.DropUnparseableDate])
}

func TestClean_DayFirstDates(t *testing.T) {
	raw := dataset.Table{
		Columns: []string{"InvoiceDate", "Quantity", "UnitPrice"},
		Rows: [][]string{
			{"13/01/2024", "1", "2"},
			{"25/12/2023 10:30", "1", "3"},
			{"31/12/2023", "2", "1"},
		},
	}

	table, err := sales.Clean(raw)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	assert.Zero(t, table.Dropped[sales.DropUnparseableDate])
	assert.Equal(t, time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC), table.Rows[0].InvoiceDate)
	assert.Equal(t, time.Date(2023, 12, 25, 10, 30, 0, 0, time.UTC), table.Rows[1].InvoiceDate)
}

func TestClean_DecimalPriceIsNotTheDate(t *testing.T) {
	raw := dataset.Table{
		Columns: []string{"Quantity", "UnitPrice", "Day"},
		Rows: [][]string{
			{"2", "1.5", "2024-01-01"},
			{"1", "2.55", "2024-01-02"},
			{"3", "4.95", "2024-01-03"},
		},
	}

	table, err := sales.Clean(raw)
	require.NoError(t, err)

	assert.Equal(t, "Day", table.Schema[columns.RoleDate].Name)
	assert.Equal(t, "UnitPrice", table.Schema[columns.RolePrice].Name)
	assert.Empty(t, table.Notes)
	assert.Equal(t, 3, table.Len())
	assert.Zero(t, table.Dropped[sales.DropUnparseableDate])
	assert.True(t, table.Rows[0].Sales.Equal(decimal.NewFromInt(3)))
}

func TestClean_InvalidNumbers(t *testing.T) {
	raw := dataset.Table{
		Columns: []string{"Date", "Quantity", "Price"},
		Rows: [][]string{
			{"2024-01-01", "abc", "1"},
			{"2024-01-01", "1", ""},
			{"2024-01-01", "1.234,50", "2"},
			{"2024-01-01", "3", "2,50"},
		},
	}

	table, err := sales.Clean(raw)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, 2, table.Dropped[sales.DropInvalidNumber])
	assert.Equal(t, "1234.5", table.Rows[0].Quantity.String())
	assert.True(t, table.Rows[1].Sales.Equal(decimal.RequireFromString("7.5")))
}

func TestClean_RemovesExactDuplicates(t *testing.T) {
	raw := dataset.Table{
		Columns: []string{"InvoiceNo", "InvoiceDate", "Description", "Quantity", "UnitPrice"},
		Rows: [][]string{
			{"1", "2024-01-01 10:00", "MUG", "1", "2"},
			{"1", "2024-01-01 10:00", "MUG", "1", "2"},
			{"1", "2024-01-01 10:00", "MUG", "2", "2"},
		},
	}

	table, err := sales.Clean(raw)
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 1, table.Dropped[sales.DropDuplicate])
}

func TestClean_FallbackDateColumnRenamed(t *testing.T) {
	raw := dataset.Table{
		Columns: []string{"sku", "when", "qty", "Price"},
		Rows:    [][]string{{"A", "2024-02-03 10:00:00", "2", "1.5"}},
	}

	table, err := sales.Clean(raw)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	assert.Equal(t, "when", table.Schema[columns.RoleDate].Name)

	out := table.Raw()
	assert.Equal(t, []string{sales.ColInvoiceDate, "sku", "qty", "Price", sales.ColSales}, out.Columns)
	assert.Equal(t, []string{"2024-02-03 10:00:00", "A", "2", "1.5", "3"}, out.Rows[0])
}

func TestClean_Idempotent(t *testing.T) {
	raw := dataset.Table{
		Columns: []string{"InvoiceNo", "StockCode", "Description", "Quantity", "InvoiceDate", "UnitPrice", "CustomerID", "Country", "Sales"},
		Rows: [][]string{
			{"536365", "85123A", "WHITE HANGING HEART", "6", "12/1/2010 08:26", "2.55", "17850", "United Kingdom", "stale"},
			{"536365", "71053", "WHITE METAL LANTERN", "6", "12/1/2010 08:26", "3.39", "17850", "United Kingdom", ""},
			{"536365", "71053", "WHITE METAL LANTERN", "6", "12/1/2010 08:26", "3.39", "17850", "United Kingdom", ""},
			{"C536379", "D", "Discount", "-1", "12/1/2010 09:41", "27.5", "14527", "United Kingdom", ""},
			{"536380", "22961", "JAM MAKING SET", "-2", "12/1/2010 09:45", "1.45", "", "France", ""},
			{"536381", "22139", "RETROSPOT TEA SET", "1", "garbage", "4.95", "15311", "France", ""},
		},
	}

	first, err := sales.Clean(raw)
	require.NoError(t, err)
	require.Equal(t, 2, first.Len())

	second, err := sales.Clean(first.Raw())
	require.NoError(t, err)

	assert.Equal(t, first.Raw(), second.Raw())
	assert.Empty(t, second.Dropped)
	assert.True(t, first.TotalSales().Equal(second.TotalSales()))
}

func TestClean_IdempotentDegraded(t *testing.T) {
	raw := dataset.Table{
		Columns: []string{"date", "Country"},
		Rows:    [][]string{{"2024-01-01", "PT"}, {"2024-01-01", "PT"}, {"2024-01-02", "ES"}},
	}

	first, err := sales.Clean(raw)
	require.NoError(t, err)
	require.Equal(t, 2, first.Len())

	second, err := sales.Clean(first.Raw())
	require.NoError(t, err)

	assert.Equal(t, first.Raw(), second.Raw())
	assert.True(t, second.Degraded(sales.DegradedNoPriceData))
}

func TestTable_DateRange(t *testing.T) {
	table, err := sales.Clean(dataset.Table{
		Columns: []string{"date"},
		Rows:    [][]string{{"2024-03-01"}, {"2024-01-15"}, {"2024-02-10"}},
	})
	require.NoError(t, err)

	first, last, ok := table.DateRange()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), last)

	empty := &sales.Table{}
	_, _, ok = empty.DateRange()
	assert.False(t, ok)
}

func TestDegradation_Message(t *testing.T) {
	assert.Contains(t, sales.DegradedNoPriceData.Message(), "no quantity/price data")
}
