package aggregate_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/retailboard/internal/aggregate"
	"github.com/MrJamesThe3rd/retailboard/internal/columns"
	"github.com/MrJamesThe3rd/retailboard/internal/dataset"
	"github.com/MrJamesThe3rd/retailboard/internal/sales"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func clean(t *testing.T, cols []string, rows ...[]string) *sales.Table {
	t.Helper()

	table, err := sales.Clean(dataset.Table{Columns: cols, Rows: rows})
	require.NoError(t, err)

	return table
}

var retailCols = []string{"InvoiceNo", "InvoiceDate", "Description", "Quantity", "UnitPrice", "CustomerID", "Country"}

func retail(t *testing.T) *sales.Table {
	return clean(t, retailCols,
		[]string{"1", "2024-01-02 10:00", "MUG", "2", "5", "A", "Portugal"},
		[]string{"1", "2024-01-02 10:00", "PLATE", "1", "3", "A", "Portugal"},
		[]string{"2", "2024-01-01 09:00", "MUG", "1", "5", "B", "Spain"},
		[]string{"3", "2024-01-03 18:30", "BOWL", "4", "2.5", "B", "Spain"},
		[]string{"4", "2024-01-03 19:00", "MUG", "1", "5", "", "France"},
	)
}

func TestByDay(t *testing.T) {
	got := aggregate.ByDay(retail(t))
	require.False(t, got.Status.Insufficient())
	require.Len(t, got.Days, 3)

	assert.Equal(t, day(2024, 1, 1), got.Days[0].Date)
	assert.Equal(t, "5", got.Days[0].Sales.String())
	assert.Equal(t, day(2024, 1, 2), got.Days[1].Date)
	assert.Equal(t, "13", got.Days[1].Sales.String())
	assert.Equal(t, day(2024, 1, 3), got.Days[2].Date)
	assert.Equal(t, "15", got.Days[2].Sales.String())
}

func TestByDay_Scenario(t *testing.T) {
	table := clean(t, []string{"InvoiceNo", "InvoiceDate", "Quantity", "UnitPrice", "CustomerID"},
		[]string{"536365", "2024-01-01", "2", "5", "C1"},
		[]string{"536366", "2024-01-01", "-1", "5", "C1"},
		[]string{"C536367", "2024-01-02", "1", "10", "C2"},
	)

	got := aggregate.ByDay(table)
	require.Len(t, got.Days, 1)
	assert.Equal(t, day(2024, 1, 1), got.Days[0].Date)
	assert.True(t, got.Days[0].Sales.Equal(decimal.NewFromInt(10)))
}

func TestByDay_ConservesSales(t *testing.T) {
	table := clean(t, retailCols,
		[]string{"1", "2024-01-02 10:00", "MUG", "3", "0.1", "A", "PT"},
		[]string{"2", "2024-01-02 23:59", "MUG", "7", "0.7", "A", "PT"},
		[]string{"3", "2024-02-29 00:00", "JUG", "1", "19.99", "B", "ES"},
		[]string{"4", "2023-12-31 12:00", "JUG", "11", "1.01", "C", "ES"},
	)

	got := aggregate.ByDay(table)
	assert.True(t, got.Total().Equal(table.TotalSales()), "%s != %s", got.Total(), table.TotalSales())
}

func TestByDay_DegradedCounts(t *testing.T) {
	table := clean(t, []string{"date", "Country"},
		[]string{"2024-01-01", "PT"},
		[]string{"2024-01-01 12:00", "ES"},
		[]string{"2024-01-02", "PT"},
	)

	got := aggregate.ByDay(table)
	require.Len(t, got.Days, 2)
	assert.Equal(t, "2", got.Days[0].Sales.String())
	assert.Contains(t, got.Status.Notes, sales.DegradedNoPriceData)
	assert.False(t, got.Status.Insufficient())
}

func TestTopProducts(t *testing.T) {
	type testCase struct {
		name      string
		n         int
		wantNames []string
	}

	tests := []testCase{
		{name: "AllWhenFewerThanN", n: 10, wantNames: []string{"MUG", "BOWL", "PLATE"}},
		{name: "Truncated", n: 2, wantNames: []string{"MUG", "BOWL"}},
		{name: "DefaultN", n: 0, wantNames: []string{"MUG", "BOWL", "PLATE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := aggregate.TopProducts(retail(t), tt.n)

			names := make([]string, 0, len(got.Items))
			for _, it := range got.Items {
				names = append(names, it.Name)
			}

			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestTopProducts_MissingDescription(t *testing.T) {
	table := clean(t, []string{"date", "Quantity", "Price"}, []string{"2024-01-01", "1", "1"})

	got := aggregate.TopProducts(table, 10)
	assert.Empty(t, got.Items)
	assert.True(t, got.Status.Insufficient())
	assert.Equal(t, []columns.Role{columns.RoleDescription}, got.Status.Missing)
}

func TestByCountry(t *testing.T) {
	got := aggregate.ByCountry(retail(t))
	require.Len(t, got.Items, 3)

	assert.Equal(t, "Spain", got.Items[0].Name)
	assert.Equal(t, "15", got.Items[0].Sales.String())
	assert.Equal(t, "Portugal", got.Items[1].Name)
	assert.Equal(t, "13", got.Items[1].Sales.String())
	assert.Equal(t, "France", got.Items[2].Name)
}

func TestByCountry_RegionKeyword(t *testing.T) {
	table := clean(t, []string{"date", "Region"},
		[]string{"2024-01-01", "North"},
		[]string{"2024-01-02", "North"},
		[]string{"2024-01-03", "South"},
	)

	got := aggregate.ByCountry(table)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "North", got.Items[0].Name)
	assert.Equal(t, "2", got.Items[0].Sales.String())
}

func TestByCountry_Missing(t *testing.T) {
	table := clean(t, []string{"date"}, []string{"2024-01-01"})

	got := aggregate.ByCountry(table)
	assert.Empty(t, got.Items)
	assert.Equal(t, []columns.Role{columns.RoleCountry}, got.Status.Missing)
}
