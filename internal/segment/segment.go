// Package segment clusters customers on their RFM scores.
//
// Features are Recency, Frequency and log1p(Monetary), each standardised to
// zero mean and unit sample variance before k-means runs. Results are
// deterministic for a given seed and input order.
package segment

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/MrJamesThe3rd/retailboard/internal/aggregate"
)

const (
	DefaultClusters       = 4
	DefaultSeed     int64 = 42
)

type Status string

const (
	StatusOK              Status = "ok"
	StatusEmpty           Status = "empty"
	StatusReducedClusters Status = "reduced_clusters"
)

// Feature names, in the column order of Record.Scaled.
const (
	FeatureRecency     = "Recency"
	FeatureFrequency   = "Frequency"
	FeatureMonetaryLog = "MonetaryLog"
)

var features = []string{FeatureRecency, FeatureFrequency, FeatureMonetaryLog}

// Record is one customer with its cluster label.
type Record struct {
	aggregate.RFMRecord

	MonetaryLog float64
	Scaled      [3]float64
	Segment     int
}

type Result struct {
	Records  []Record
	Clusters int
	Status   Status
	// ZeroVariance lists features that were centred but not scaled because
	// every customer shares the same value.
	ZeroVariance []string
	Source       aggregate.Status
}

type Engine struct {
	clusters int
	seed     int64
}

// NewEngine returns an engine producing at most clusters segments. Non-positive
// values fall back to the defaults.
func NewEngine(clusters int, seed int64) *Engine {
	if clusters <= 0 {
		clusters = DefaultClusters
	}

	return &Engine{clusters: clusters, seed: seed}
}

// Segment labels every customer in rfm. Fewer distinct customers than the
// configured cluster count reduce k to that count.
func (e *Engine) Segment(ctx context.Context, rfm aggregate.RFMTable) (Result, error) {
	out := Result{Source: rfm.Status}

	if len(rfm.Records) == 0 {
		out.Status = StatusEmpty
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("segment customers: %w", err)
	}

	out.Records = make([]Record, len(rfm.Records))
	for i, r := range rfm.Records {
		m, _ := r.Monetary.Float64()
		out.Records[i] = Record{RFMRecord: r, MonetaryLog: math.Log1p(math.Max(m, 0))}
	}

	out.ZeroVariance = standardise(out.Records)

	points := make([][]float64, len(out.Records))
	distinct := make(map[[3]float64]struct{})

	for i, r := range out.Records {
		points[i] = r.Scaled[:]
		distinct[r.Scaled] = struct{}{}
	}

	k := e.clusters
	out.Status = StatusOK

	if len(distinct) < k {
		k = len(distinct)
		out.Status = StatusReducedClusters
	}

	out.Clusters = k

	if k == 1 {
		return out, nil
	}

	labels := newKMeans(k, e.seed).fit(points)

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("segment customers: %w", err)
	}

	for i := range out.Records {
		out.Records[i].Segment = labels[i]
	}

	return out, nil
}

// standardise fills Scaled with z-scores and returns the features whose
// sample standard deviation was zero.
func standardise(records []Record) []string {
	var zero []string

	col := make([]float64, len(records))

	for f, name := range features {
		for i, r := range records {
			col[i] = raw(r, f)
		}

		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			zero = append(zero, name)
			std = 1
		}

		for i := range records {
			records[i].Scaled[f] = (col[i] - mean) / std
		}
	}

	return zero
}

func raw(r Record, feature int) float64 {
	switch feature {
	case 0:
		return float64(r.Recency)
	case 1:
		return float64(r.Frequency)
	default:
		return r.MonetaryLog
	}
}
