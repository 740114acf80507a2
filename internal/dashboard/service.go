// Package dashboard derives every view of a loaded dataset. Views are
// recomputed on each call from the cleaned table.
package dashboard

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/retailboard/internal/aggregate"
	"github.com/MrJamesThe3rd/retailboard/internal/columns"
	"github.com/MrJamesThe3rd/retailboard/internal/forecast"
	"github.com/MrJamesThe3rd/retailboard/internal/sales"
	"github.com/MrJamesThe3rd/retailboard/internal/segment"
	"github.com/MrJamesThe3rd/retailboard/internal/upload"
)

// PreviewRows is the number of cleaned rows a preview shows.
const PreviewRows = 10

type Service struct {
	forecasts *forecast.Service
	segments  *segment.Engine
}

func NewService(forecasts *forecast.Service, segments *segment.Engine) *Service {
	return &Service{forecasts: forecasts, segments: segments}
}

type Preview struct {
	Filename string
	// Charset is the detected source encoding of delimited text.
	Charset  string
	Columns  []string
	Rows     [][]string
	// Schema maps each resolved role to its source column name.
	Schema  map[columns.Role]string
	Notes   []sales.Degradation
	Dropped map[sales.DropReason]int
	RawRows int
	Total   int
}

// Preview shows the head of the cleaned table and how it was derived.
func (s *Service) Preview(ds *upload.Dataset) Preview {
	clean := ds.Sales.Raw()

	schema := make(map[columns.Role]string, len(ds.Sales.Schema))
	for role, m := range ds.Sales.Schema {
		schema[role] = m.Name
	}

	return Preview{
		Filename: ds.Upload.Filename,
		Charset:  ds.Raw.Charset,
		Columns:  clean.Columns,
		Rows:     clean.Head(PreviewRows),
		Schema:   schema,
		Notes:    ds.Sales.Notes,
		Dropped:  ds.Sales.Dropped,
		RawRows:  ds.Raw.Len(),
		Total:    ds.Sales.Len(),
	}
}

func (s *Service) SalesOverTime(ds *upload.Dataset) aggregate.DailySales {
	return aggregate.ByDay(ds.Sales)
}

func (s *Service) TopProducts(ds *upload.Dataset, n int) aggregate.Ranking {
	return aggregate.TopProducts(ds.Sales, n)
}

func (s *Service) Countries(ds *upload.Dataset) aggregate.Ranking {
	return aggregate.ByCountry(ds.Sales)
}

func (s *Service) Forecast(ctx context.Context, ds *upload.Dataset) (forecast.Result, error) {
	res, err := s.forecasts.Forecast(ctx, aggregate.ByDay(ds.Sales))
	if err != nil {
		return forecast.Result{}, fmt.Errorf("forecasting %s: %w", ds.Upload.Filename, err)
	}

	return res, nil
}

// RFM scores customers against one day after the latest invoice.
func (s *Service) RFM(ds *upload.Dataset) aggregate.RFMTable {
	ref, ok := aggregate.ReferenceDate(ds.Sales)
	if !ok {
		return aggregate.RFMTable{Status: aggregate.Status{Notes: ds.Sales.Notes}}
	}

	return aggregate.RFM(ds.Sales, ref)
}

func (s *Service) Segments(ctx context.Context, ds *upload.Dataset) (segment.Result, error) {
	res, err := s.segments.Segment(ctx, s.RFM(ds))
	if err != nil {
		return segment.Result{}, fmt.Errorf("segmenting %s: %w", ds.Upload.Filename, err)
	}

	return res, nil
}
