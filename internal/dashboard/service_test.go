package dashboard_test

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/retailboard/internal/columns"
	"github.com/MrJamesThe3rd/retailboard/internal/dashboard"
	"github.com/MrJamesThe3rd/retailboard/internal/dataset"
	"github.com/MrJamesThe3rd/retailboard/internal/forecast"
	"github.com/MrJamesThe3rd/retailboard/internal/forecast/additive"
	"github.com/MrJamesThe3rd/retailboard/internal/sales"
	"github.com/MrJamesThe3rd/retailboard/internal/segment"
	"github.com/MrJamesThe3rd/retailboard/internal/upload"
)

func newService() *dashboard.Service {
	return dashboard.NewService(
		forecast.NewService(additive.New(additive.DefaultConfig()), 30),
		segment.NewEngine(4, 42),
	)
}

func load(t *testing.T, raw dataset.Table) *upload.Dataset {
	t.Helper()

	table, err := sales.Clean(raw)
	require.NoError(t, err)

	return &upload.Dataset{Upload: upload.Upload{Filename: "test.csv"}, Raw: raw, Sales: table}
}

// retail builds 40 days of invoices across 8 customers and 3 countries.
func retail(t *testing.T) *upload.Dataset {
	raw := dataset.Table{Columns: []string{"InvoiceNo", "InvoiceDate", "Description", "Quantity", "UnitPrice", "CustomerID", "Country"}}

	products := []string{"MUG", "PLATE", "BOWL"}
	countries := []string{"United Kingdom", "France", "Germany"}

	for i := range 40 {
		for c := range 8 {
			if (i+c)%(c+1) != 0 {
				continue
			}

			raw.Rows = append(raw.Rows, []string{
				fmt.Sprintf("%d", 500000+i*10+c),
				fmt.Sprintf("2024-02-%02d 10:%02d", 1+i%28, c),
				products[(i+c)%len(products)],
				fmt.Sprintf("%d", 1+c),
				fmt.Sprintf("%d.5", 1+i%4),
				fmt.Sprintf("C%d", c),
				countries[c%len(countries)],
			})
		}
	}

	return load(t, raw)
}

func TestService_Preview(t *testing.T) {
	ds := retail(t)

	got := newService().Preview(ds)

	assert.Equal(t, "test.csv", got.Filename)
	assert.Equal(t, sales.ColInvoiceDate, got.Columns[0])
	assert.Equal(t, sales.ColSales, got.Columns[len(got.Columns)-1])
	assert.Len(t, got.Rows, dashboard.PreviewRows)
	assert.Equal(t, "InvoiceDate", got.Schema[columns.RoleDate])
	assert.Equal(t, "CustomerID", got.Schema[columns.RoleCustomer])
	assert.Equal(t, ds.Raw.Len(), got.RawRows)
	assert.Empty(t, got.Notes)
	assert.Empty(t, got.Charset)

	ds.Raw.Charset = "windows-1252"
	assert.Equal(t, "windows-1252", newService().Preview(ds).Charset)
}

func TestService_EDA(t *testing.T) {
	svc := newService()
	ds := retail(t)

	daily := svc.SalesOverTime(ds)
	assert.True(t, daily.Total().Equal(ds.Sales.TotalSales()))

	top := svc.TopProducts(ds, 2)
	assert.Len(t, top.Items, 2)

	countries := svc.Countries(ds)
	assert.Len(t, countries.Items, 3)
}

func TestService_Forecast(t *testing.T) {
	svc := newService()
	ds := retail(t)

	res, err := svc.Forecast(context.Background(), ds)
	require.NoError(t, err)

	days := len(svc.SalesOverTime(ds).Days)
	assert.Equal(t, days, res.History)
	assert.Len(t, res.Future(), 30)
}

func TestService_Segments(t *testing.T) {
	res, err := newService().Segments(context.Background(), retail(t))
	require.NoError(t, err)

	assert.Len(t, res.Records, 8)
	assert.Equal(t, 4, res.Clusters)
}

func TestService_DegradedDataset(t *testing.T) {
	svc := newService()
	ds := load(t, dataset.Table{
		Columns: []string{"date", "Region"},
		Rows:    [][]string{{"2024-01-01", "North"}, {"2024-01-02", "South"}},
	})

	preview := svc.Preview(ds)
	assert.Equal(t, []sales.Degradation{sales.DegradedNoPriceData}, preview.Notes)

	res, err := svc.Segments(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, segment.StatusEmpty, res.Status)
	assert.True(t, res.Source.Insufficient())

	fc, err := svc.Forecast(context.Background(), ds)
	require.NoError(t, err)
	assert.Len(t, fc.Points, 32)
}

func TestService_ViewsDoNotMutateDataset(t *testing.T) {
	svc := newService()
	ds := retail(t)

	rows := slices.Clone(ds.Sales.Rows)
	before := svc.SalesOverTime(ds)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Segments(ctx, ds)
	require.ErrorIs(t, err, context.Canceled)

	_, err = svc.Forecast(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, rows, ds.Sales.Rows)
	assert.Equal(t, before, svc.SalesOverTime(ds))
	assert.Equal(t, ds.Raw.Len(), svc.Preview(ds).RawRows)
}
