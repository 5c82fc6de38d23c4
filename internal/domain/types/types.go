// Package types contains the value types shared by the ranking and
// concordance packages and by every adapter that produces or consumes them.
package types

import "math"

// ScoreRow holds one rater's raw scores, one value per object.
type ScoreRow []float64

// AdjustedRow holds the midranks of one rater in the original object order,
// followed by the rater's tie-correction term T = Σ(t³ − t).
type AdjustedRow []float64

// Objects returns the number of ranked objects (row length minus the trailing term).
func (r AdjustedRow) Objects() int {
	if len(r) == 0 {
		return 0
	}
	return len(r) - 1
}

// Ranks returns the midranks without the trailing tie-correction term.
func (r AdjustedRow) Ranks() []float64 {
	if len(r) == 0 {
		return nil
	}
	return r[:len(r)-1]
}

// TieCorrection returns the trailing tie-correction term.
func (r AdjustedRow) TieCorrection() float64 {
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1]
}

// Result is the outcome of one concordance evaluation.
type Result struct {
	N                int     `json:"n" yaml:"n"`
	Raters           int     `json:"raters" yaml:"raters"`
	W                float64 `json:"w" yaml:"w"`
	K                float64 `json:"k" yaml:"k"`
	DegreesOfFreedom int     `json:"gl" yaml:"gl"`
	Alpha            float64 `json:"alpha" yaml:"alpha"`
	Critical         float64 `json:"critical" yaml:"critical"`
	PValue           float64 `json:"p_value" yaml:"p_value"`
	Concordant       bool    `json:"concordant" yaml:"concordant"`

	// RankSums holds S_j, the rank sum of each object across raters.
	RankSums []float64 `json:"rank_sums" yaml:"rank_sums"`
	// SDR is the sum of squared deviations of the rank sums.
	SDR float64 `json:"sdr" yaml:"sdr"`
	// TieCorrection is the sum of every rater's tie-correction term.
	TieCorrection float64 `json:"tie_correction" yaml:"tie_correction"`
}

// finite reports whether v is neither NaN nor infinite.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CheckFinite returns an InvalidInput error naming the first non-finite value.
// row is 1-based and may be 0 when the values do not belong to a matrix.
func CheckFinite(op string, row int, values []float64) error {
	for i, v := range values {
		if !finite(v) {
			return &InputError{Op: op, Row: row, Position: i + 1, Reason: "value is not a finite number"}
		}
	}
	return nil
}
