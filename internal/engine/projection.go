package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"backend/internal/models"
)

// ErrInsufficientData marks projections that cannot run: fewer than 3
// rows or fewer than 2 usable indicator columns. Charts render a
// placeholder for it instead of failing the view.
var ErrInsufficientData = errors.New("insufficient data for projection")

const (
	maxProjectionCols = 12
	kmeansIterations  = 8
	kmeansTolerance   = 1e-6
	stdEpsilon        = 1e-9
)

// Project standardizes the chosen indicator subset, reduces it to two
// principal components via SVD, and clusters the 2-D scores with a
// seeded k-means. Same rows, same subset and same seed give identical
// output. Cluster IDs are arbitrary labels.
func Project(v *View, params []string, seed int64) (*models.ProjectionPayload, error) {
	cols := filterIndicators(v.Table, params)
	defaulted := len(cols) == 0
	if defaulted {
		cols = v.Table.Indicators
	}
	if len(v.Rows) < 3 {
		return nil, ErrInsufficientData
	}

	// 1. Column screening: drop all-missing and zero-variance columns.
	// Only the defaulted subset is capped at the highest-variance
	// columns; an explicit caller selection is used as given.
	type column struct {
		name     string
		variance float64
	}
	var kept []column
	for _, c := range cols {
		vals := columnValues(v.Rows, c)
		if len(vals) == 0 {
			continue
		}
		variance := stat.Variance(vals, nil)
		if variance <= 0 || math.IsNaN(variance) {
			continue
		}
		kept = append(kept, column{name: c, variance: variance})
	}
	if len(kept) < 2 {
		return nil, ErrInsufficientData
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].variance > kept[j].variance })
	if defaulted && len(kept) > maxProjectionCols {
		kept = kept[:maxProjectionCols]
	}
	names := make([]string, len(kept))
	for i, c := range kept {
		names[i] = c.name
	}
	sort.Strings(names)

	// 2. Median impute + z-score (population std, epsilon-stabilized)
	n, d := len(v.Rows), len(names)
	X := mat.NewDense(n, d, nil)
	for j, c := range names {
		med := median(columnValues(v.Rows, c))
		col := make([]float64, n)
		for i := range v.Rows {
			if val, ok := v.Rows[i].Value(c); ok {
				col[i] = val
			} else {
				col[i] = med
			}
		}
		mean, std := meanPopStd(col)
		for i := range col {
			X.Set(i, j, (col[i]-mean)/(std+stdEpsilon))
		}
	}

	// 3. PC scores from the thin SVD: Z = U[:, :2] * diag(s[:2])
	var svd mat.SVD
	if ok := svd.Factorize(X, mat.SVDThin); !ok {
		return nil, fmt.Errorf("svd failed to converge")
	}
	var u mat.Dense
	svd.UTo(&u)
	s := svd.Values(nil)
	if len(s) < 2 {
		return nil, ErrInsufficientData
	}
	scores := make([][2]float64, n)
	for i := 0; i < n; i++ {
		scores[i][0] = u.At(i, 0) * s[0]
		scores[i][1] = u.At(i, 1) * s[1]
	}

	// 4. Cluster the 2-D projection
	k := clampK(int(math.Round(math.Sqrt(float64(n)))))
	labels := kmeans2D(scores, k, seed)

	p := &models.ProjectionPayload{Clusters: k, Indicators: names}
	for i := range v.Rows {
		p.Points = append(p.Points, models.ProjectionPoint{
			ISO3:        v.Rows[i].ISO3,
			Name:        v.Rows[i].Name,
			PC1:         scores[i][0],
			PC2:         scores[i][1],
			Cluster:     labels[i],
			Highlighted: v.Highlighted[i],
		})
	}
	return p, nil
}

func clampK(k int) int {
	if k < 2 {
		return 2
	}
	if k > 5 {
		return 5
	}
	return k
}

// kmeans2D is a fixed-budget Lloyd iteration over the 2-D scores:
// seeded random initialization, centroid-assignment loop with an early
// stop once centroids move less than the tolerance.
func kmeans2D(points [][2]float64, k int, seed int64) []int {
	n := len(points)
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	centroids := make([][2]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = points[perm[i%n]]
	}

	labels := make([]int, n)
	for iter := 0; iter < kmeansIterations; iter++ {
		// assign
		for i, p := range points {
			best, bestDist := 0, math.MaxFloat64
			for c, cen := range centroids {
				dx, dy := p[0]-cen[0], p[1]-cen[1]
				if dist := dx*dx + dy*dy; dist < bestDist {
					best, bestDist = c, dist
				}
			}
			labels[i] = best
		}
		// recompute; empty clusters keep their centroid
		next := make([][2]float64, k)
		counts := make([]int, k)
		for i, p := range points {
			next[labels[i]][0] += p[0]
			next[labels[i]][1] += p[1]
			counts[labels[i]]++
		}
		moved := 0.0
		for c := range next {
			if counts[c] == 0 {
				next[c] = centroids[c]
				continue
			}
			next[c][0] /= float64(counts[c])
			next[c][1] /= float64(counts[c])
			dx, dy := next[c][0]-centroids[c][0], next[c][1]-centroids[c][1]
			if m := math.Abs(dx) + math.Abs(dy); m > moved {
				moved = m
			}
		}
		centroids = next
		if moved < kmeansTolerance {
			break
		}
	}
	return labels
}

func columnValues(rows []CountryRecord, indicator string) []float64 {
	var out []float64
	for i := range rows {
		if v, ok := rows[i].Value(indicator); ok {
			out = append(out, v)
		}
	}
	return out
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// meanPopStd returns the mean and population standard deviation.
func meanPopStd(vals []float64) (float64, float64) {
	mean := stat.Mean(vals, nil)
	var ss float64
	for _, v := range vals {
		ss += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(ss / float64(len(vals)))
}
