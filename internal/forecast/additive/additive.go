// Package additive implements a decomposable forecasting model:
//
//	y(t) = trend(t) + yearly(t) + weekly(t) + daily(t) + noise
//
// The trend is linear in scaled time and each seasonality is a truncated
// Fourier series. Coefficients are estimated jointly by ridge-regularised
// least squares.
package additive

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/MrJamesThe3rd/retailboard/internal/forecast"
)

var ErrNoHistory = errors.New("no observations to fit")

const day = 24 * time.Hour

type Config struct {
	YearlyOrder int
	WeeklyOrder int
	DailyOrder  int
	// DailySeasonality keeps the daily component even when the series has
	// one observation per day.
	DailySeasonality bool
	// IntervalWidth is the central mass of the uncertainty interval.
	IntervalWidth float64
	// Ridge is the L2 penalty applied to every coefficient but the intercept.
	Ridge float64
}

func DefaultConfig() Config {
	return Config{
		YearlyOrder:      10,
		WeeklyOrder:      3,
		DailyOrder:       4,
		DailySeasonality: true,
		IntervalWidth:    0.8,
		Ridge:            1e-4,
	}
}

type seasonality struct {
	name   string
	period float64 // days
	order  int
}

type Model struct {
	cfg Config
}

func New(cfg Config) *Model {
	return &Model{cfg: cfg}
}

// Fit estimates the model on history, which must be sorted by date.
func (m *Model) Fit(ctx context.Context, history []forecast.Observation) (forecast.Fitted, error) {
	if len(history) == 0 {
		return nil, ErrNoHistory
	}

	f := &fitted{
		start: history[0].DS,
		end:   history[len(history)-1].DS,
		n:     len(history),
	}

	f.span = f.end.Sub(f.start)
	if f.span <= 0 {
		f.span = day
	}

	f.seasons = m.seasonalities(f.end.Sub(f.start))

	for _, o := range history {
		f.scale = math.Max(f.scale, math.Abs(o.Y))
	}

	if f.scale == 0 {
		f.scale = 1
	}

	p := f.width()
	x := mat.NewDense(len(history), p, nil)
	y := mat.NewVecDense(len(history), nil)

	for i, o := range history {
		x.SetRow(i, f.row(o.DS))
		y.SetVec(i, o.Y/f.scale)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fitting additive model: %w", err)
	}

	var gram mat.SymDense
	gram.SymOuterK(1, x.T())

	for j := 1; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+m.cfg.Ridge)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return nil, errors.New("fitting additive model: normal equations are not positive definite")
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	f.beta = mat.NewVecDense(p, nil)
	if err := chol.SolveVecTo(f.beta, &xty); err != nil {
		return nil, fmt.Errorf("solving normal equations: %w", err)
	}

	var fit mat.VecDense
	fit.MulVec(x, f.beta)

	var sse float64
	for i := range history {
		r := y.AtVec(i) - fit.AtVec(i)
		sse += r * r
	}

	f.sigma = math.Sqrt(sse / float64(len(history)))

	std := distuv.Normal{Mu: 0, Sigma: 1}
	f.z = std.Quantile(0.5 + m.cfg.IntervalWidth/2)

	return f, nil
}

// seasonalities returns the components the history length supports.
func (m *Model) seasonalities(span time.Duration) []seasonality {
	var out []seasonality

	if span >= 2*365*day && m.cfg.YearlyOrder > 0 {
		out = append(out, seasonality{name: "yearly", period: 365.25, order: m.cfg.YearlyOrder})
	}

	if span >= 14*day && m.cfg.WeeklyOrder > 0 {
		out = append(out, seasonality{name: "weekly", period: 7, order: m.cfg.WeeklyOrder})
	}

	if m.cfg.DailySeasonality && m.cfg.DailyOrder > 0 {
		out = append(out, seasonality{name: "daily", period: 1, order: m.cfg.DailyOrder})
	}

	return out
}

type fitted struct {
	start, end time.Time
	span       time.Duration
	n          int
	scale      float64
	seasons    []seasonality
	beta       *mat.VecDense
	sigma      float64
	z          float64
}

func (f *fitted) width() int {
	p := 2
	for _, s := range f.seasons {
		p += 2 * s.order
	}

	return p
}

// row builds the regressors for ds: intercept, trend, then sin/cos pairs.
func (f *fitted) row(ds time.Time) []float64 {
	out := make([]float64, 0, f.width())
	out = append(out, 1, float64(ds.Sub(f.start))/float64(f.span))

	days := float64(ds.Unix()) / 86400

	for _, s := range f.seasons {
		for k := 1; k <= s.order; k++ {
			arg := 2 * math.Pi * float64(k) * days / s.period
			out = append(out, math.Sin(arg), math.Cos(arg))
		}
	}

	return out
}

// Predict returns one point per date. The interval widens with the distance
// past the last observed date.
func (f *fitted) Predict(ctx context.Context, dates []time.Time) ([]forecast.Point, error) {
	out := make([]forecast.Point, 0, len(dates))

	for _, ds := range dates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("predicting: %w", err)
		}

		yhat := mat.Dot(mat.NewVecDense(f.width(), f.row(ds)), f.beta) * f.scale

		ahead := math.Max(0, ds.Sub(f.end).Hours()/24)
		spread := f.z * f.sigma * math.Sqrt(1+ahead/float64(f.n)) * f.scale

		out = append(out, forecast.Point{
			Date:      ds,
			Yhat:      yhat,
			YhatLower: yhat - spread,
			YhatUpper: yhat + spread,
		})
	}

	return out, nil
}
