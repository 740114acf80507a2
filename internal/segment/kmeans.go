package segment

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// kmeans partitions points with Lloyd's algorithm seeded by k-means++, keeping
// the best of several restarts by inertia.
type kmeans struct {
	k        int
	restarts int
	maxIter  int
	rng      *rand.Rand
}

func newKMeans(k int, seed int64) *kmeans {
	s := uint64(seed)

	return &kmeans{
		k:        k,
		restarts: 10,
		maxIter:  300,
		rng:      rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)),
	}
}

// fit returns a label in [0, k) for every point. The caller guarantees at
// least k distinct points, so every label is used.
func (km *kmeans) fit(points [][]float64) []int {
	var (
		best        []int
		bestInertia = math.Inf(1)
	)

	for range km.restarts {
		labels, inertia := km.run(points)
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
	}

	return best
}

func (km *kmeans) run(points [][]float64) ([]int, float64) {
	centers := km.seed(points)
	labels := make([]int, len(points))

	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < km.maxIter; iter++ {
		changed := assign(points, centers, labels)
		fillEmpty(points, centers, labels)
		recenter(points, centers, labels)

		if !changed {
			break
		}
	}

	var inertia float64
	for i, p := range points {
		inertia += sqDist(p, centers[labels[i]])
	}

	return labels, inertia
}

// seed picks k initial centers with the k-means++ D² weighting.
func (km *kmeans) seed(points [][]float64) [][]float64 {
	centers := make([][]float64, 0, km.k)
	centers = append(centers, clone(points[km.rng.IntN(len(points))]))

	dist := make([]float64, len(points))

	for len(centers) < km.k {
		var total float64

		for i, p := range points {
			dist[i] = math.Inf(1)
			for _, c := range centers {
				dist[i] = math.Min(dist[i], sqDist(p, c))
			}

			total += dist[i]
		}

		pick := -1
		r := km.rng.Float64() * total

		for i, d := range dist {
			if d == 0 {
				continue
			}

			pick = i
			r -= d

			if r < 0 {
				break
			}
		}

		centers = append(centers, clone(points[pick]))
	}

	return centers
}

// assign moves each point to its nearest center and reports whether any
// label changed.
func assign(points, centers [][]float64, labels []int) bool {
	changed := false

	for i, p := range points {
		nearest, nearestDist := 0, math.Inf(1)

		for c, center := range centers {
			if d := sqDist(p, center); d < nearestDist {
				nearest, nearestDist = c, d
			}
		}

		if labels[i] != nearest {
			labels[i] = nearest
			changed = true
		}
	}

	return changed
}

// fillEmpty gives every empty cluster the point farthest from its own center,
// taken from a cluster that can spare one.
func fillEmpty(points, centers [][]float64, labels []int) {
	counts := make([]int, len(centers))
	for _, l := range labels {
		counts[l]++
	}

	for c, n := range counts {
		if n > 0 {
			continue
		}

		far, farDist := -1, -1.0

		for i, p := range points {
			if counts[labels[i]] < 2 {
				continue
			}

			if d := sqDist(p, centers[labels[i]]); d > farDist {
				far, farDist = i, d
			}
		}

		if far < 0 {
			return
		}

		counts[labels[far]]--
		labels[far] = c
		counts[c]++
		centers[c] = clone(points[far])
	}
}

func recenter(points, centers [][]float64, labels []int) {
	sums := make([][]float64, len(centers))
	counts := make([]float64, len(centers))

	for c := range sums {
		sums[c] = make([]float64, len(centers[c]))
	}

	for i, p := range points {
		floats.Add(sums[labels[i]], p)
		counts[labels[i]]++
	}

	for c := range centers {
		if counts[c] == 0 {
			continue
		}

		floats.Scale(1/counts[c], sums[c])
		centers[c] = sums[c]
	}
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(p []float64) []float64 {
	out := make([]float64, len(p))
	copy(out, p)

	return out
}
