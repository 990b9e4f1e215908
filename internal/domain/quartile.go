package domain

import (
	"slices"
)

// Quartiles is a distribution snapshot over a sample of finite values.
// N is the sample size; N == 0 means every statistic is undefined.
type Quartiles struct {
	Q1  float64 `json:"q1"`
	Q2  float64 `json:"q2"`
	Q3  float64 `json:"q3"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	N   int     `json:"n"`
}

// Defined reports whether the quartiles were computed from a non-empty sample.
func (q Quartiles) Defined() bool { return q.N > 0 }

// IQR is the interquartile range Q3 - Q1.
func (q Quartiles) IQR() float64 { return q.Q3 - q.Q1 }

// OutlierBounds are the Tukey inner fences used to clamp values before
// normalizing for color.
type OutlierBounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Bounds returns Q1 - 1.5*IQR and Q3 + 1.5*IQR.
func (q Quartiles) Bounds() OutlierBounds {
	iqr := q.IQR()
	return OutlierBounds{
		Lower: q.Q1 - 1.5*iqr,
		Upper: q.Q3 + 1.5*iqr,
	}
}

// ComputeQuartiles computes nearest-rank quartiles: the sorted sample is
// indexed at floor(n*0.25), floor(n*0.5) and floor(n*0.75) with no
// interpolation. Non-finite values are dropped first. The input is not modified.
func ComputeQuartiles(values []float64) Quartiles {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			sorted = append(sorted, v)
		}
	}
	n := len(sorted)
	if n == 0 {
		return Quartiles{}
	}
	slices.Sort(sorted)

	return Quartiles{
		Q1:  sorted[n/4],
		Q2:  sorted[n/2],
		Q3:  sorted[(3*n)/4],
		Min: sorted[0],
		Max: sorted[n-1],
		N:   n,
	}
}

// QuartilesOf computes quartiles over the finite values of records.
func QuartilesOf(records []MeasureRecord) Quartiles {
	return ComputeQuartiles(FiniteValues(records))
}
