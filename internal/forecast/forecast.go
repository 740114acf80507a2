package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/retailboard/internal/aggregate"
)

// DefaultHorizon is the number of days forecast past the last observation.
const DefaultHorizon = 30

// Observation is one point of the daily series.
type Observation struct {
	DS time.Time
	Y  float64
}

// Point is a prediction with its uncertainty interval.
type Point struct {
	Date      time.Time
	Yhat      float64
	YhatLower float64
	YhatUpper float64
}

//go:generate mockgen -source=forecast.go -destination=model_mock.go -package=forecast
type Model interface {
	Fit(ctx context.Context, history []Observation) (Fitted, error)
}

type Fitted interface {
	Predict(ctx context.Context, dates []time.Time) ([]Point, error)
}

type Result struct {
	Points []Point
	// History is the number of leading points that fall on observed days.
	History int
	Horizon int
	Status  aggregate.Status
}

// Future returns only the points after the last observed day.
func (r Result) Future() []Point {
	if r.History >= len(r.Points) {
		return nil
	}

	return r.Points[r.History:]
}

type Service struct {
	model   Model
	horizon int
}

func NewService(model Model, horizon int) *Service {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	return &Service{model: model, horizon: horizon}
}

// Prepare maps daily totals onto the model's input series.
func Prepare(daily aggregate.DailySales) []Observation {
	out := make([]Observation, 0, len(daily.Days))
	for _, d := range daily.Days {
		y, _ := d.Sales.Float64()
		out = append(out, Observation{DS: d.Date, Y: y})
	}

	return out
}

// Dates returns every observed date followed by horizon consecutive days
// after the last one.
func Dates(history []Observation, horizon int) []time.Time {
	if len(history) == 0 {
		return nil
	}

	out := make([]time.Time, 0, len(history)+horizon)
	for _, o := range history {
		out = append(out, o.DS)
	}

	last := history[len(history)-1].DS
	for i := 1; i <= horizon; i++ {
		out = append(out, last.AddDate(0, 0, i))
	}

	return out
}

// Forecast fits the model on the daily series and predicts history plus the
// configured horizon. An empty series returns an empty result without
// touching the model.
func (s *Service) Forecast(ctx context.Context, daily aggregate.DailySales) (Result, error) {
	out := Result{Horizon: s.horizon, Status: daily.Status}

	history := Prepare(daily)
	if len(history) == 0 {
		return out, nil
	}

	start := time.Now()

	fitted, err := s.model.Fit(ctx, history)
	if err != nil {
		return Result{}, fmt.Errorf("fitting model: %w", err)
	}

	points, err := fitted.Predict(ctx, Dates(history, s.horizon))
	if err != nil {
		return Result{}, fmt.Errorf("predicting: %w", err)
	}

	slog.Debug("forecast complete", "observations", len(history), "horizon", s.horizon, "elapsed", time.Since(start))

	out.Points = points
	out.History = len(history)

	return out, nil
}
