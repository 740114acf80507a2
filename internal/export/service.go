package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/retailboard/internal/forecast"
	"github.com/MrJamesThe3rd/retailboard/internal/segment"
)

const (
	// Suggested file names for ForecastXLSX and ForecastReport.
	ForecastFilename = "sales_forecast.xlsx"
	ReportFilename   = "sales_forecast_report.txt"
	// ReportRows caps the rows ForecastReport writes.
	ReportRows = 20

	sheet      = "Sheet1"
	dateLayout = "2006-01-02"
)

var forecastHeader = []any{"ds", "yhat", "yhat_lower", "yhat_upper"}

// ForecastXLSX writes a single-sheet workbook with the columns ds, yhat,
// yhat_lower and yhat_upper, one row per point.
func ForecastXLSX(w io.Writer, points []forecast.Point) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheet, "A1", &forecastHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return fmt.Errorf("creating date style: %w", err)
	}

	for i, p := range points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		row := []any{p.Date, p.Yhat, p.YhatLower, p.YhatUpper}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}

		if err := f.SetCellStyle(sheet, cell, cell, dateStyle); err != nil {
			return fmt.Errorf("styling row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "D", 14); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

// ForecastReport writes a plain-text report: a title line, then one line per
// point with the date, prediction and interval, capped at ReportRows.
func ForecastReport(w io.Writer, points []forecast.Point) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "Sales Forecast Report")
	fmt.Fprintln(bw)

	if len(points) > ReportRows {
		points = points[:ReportRows]
	}

	for _, p := range points {
		fmt.Fprintf(bw, "%s: %.2f (%.2f - %.2f)\n", p.Date.Format(dateLayout), p.Yhat, p.YhatLower, p.YhatUpper)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return nil
}

// ScatterPoint is one customer plotted on the three RFM axes.
type ScatterPoint struct {
	CustomerID string  `json:"customer_id"`
	Recency    int     `json:"recency"`
	Frequency  int     `json:"frequency"`
	Monetary   float64 `json:"monetary"`
	Segment    int     `json:"segment"`
}

// Scatter projects segmented customers onto Recency, Frequency and Monetary.
func Scatter(res segment.Result) []ScatterPoint {
	out := make([]ScatterPoint, 0, len(res.Records))

	for _, r := range res.Records {
		m, _ := r.Monetary.Float64()

		out = append(out, ScatterPoint{
			CustomerID: r.CustomerID,
			Recency:    r.Recency,
			Frequency:  r.Frequency,
			Monetary:   m,
			Segment:    r.Segment,
		})
	}

	return out
}
