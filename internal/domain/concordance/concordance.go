// Package concordance computes Kendall's coefficient of concordance (W) from
// tie-adjusted rank rows and tests it against the chi-square distribution.
package concordance

import (
	"fmt"
	"math"

	"github.com/oplozada/estadistica/internal/domain/ranking"
	"github.com/oplozada/estadistica/internal/domain/types"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	opEvaluate = "concordance.evaluate"

	// DefaultAlpha is the conventional significance level.
	DefaultAlpha = 0.05

	minRaters  = 1
	minObjects = 2
)

// Evaluate computes W, its chi-square statistic K and the test verdict for the
// given adjusted rank matrix (one row per rater, each N ranks plus the
// trailing tie-correction term) at significance level alpha.
// The matrix is only read.
func Evaluate(matrix []types.AdjustedRow, alpha float64) (types.Result, error) {
	if err := validate(matrix, alpha); err != nil {
		return types.Result{}, err
	}

	k := len(matrix)
	n := matrix[0].Objects()
	gl := n - 1
	kf, nf := float64(k), float64(n)

	sums := make([]float64, n)
	var tcl float64
	for _, row := range matrix {
		for j, r := range row.Ranks() {
			sums[j] += r
		}
		tcl += row.TieCorrection()
	}

	var total, squares float64
	for _, s := range sums {
		total += s
		squares += s * s
	}
	sdr := squares - total*total/nf

	denominator := kf*kf*(nf*nf*nf-nf) - kf*tcl
	if denominator <= 0 || math.IsNaN(denominator) {
		return types.Result{}, types.Invalid(opEvaluate,
			"degenerate statistic: denominator %g with %d raters, %d objects and tie correction %g", denominator, k, n, tcl)
	}

	w := 12 * sdr / denominator
	chi := w * kf * float64(gl)

	dist := distuv.ChiSquared{K: float64(gl)}
	critical := dist.Quantile(1 - alpha)

	return types.Result{
		N:                n,
		Raters:           k,
		W:                w,
		K:                chi,
		DegreesOfFreedom: gl,
		Alpha:            alpha,
		Critical:         critical,
		PValue:           dist.Survival(chi),
		Concordant:       chi > critical,
		RankSums:         sums,
		SDR:              sdr,
		TieCorrection:    tcl,
	}, nil
}

// EvaluateScores adjusts each raw score row and evaluates the resulting matrix.
func EvaluateScores(rows []types.ScoreRow, alpha float64, opts ...ranking.Option) (types.Result, error) {
	if len(rows) < minRaters {
		return types.Result{}, types.Invalid(opEvaluate, "need at least %d rater, got %d", minRaters, len(rows))
	}
	matrix, err := ranking.AdjustAll(rows, opts...)
	if err != nil {
		return types.Result{}, err
	}
	return Evaluate(matrix, alpha)
}

func validate(matrix []types.AdjustedRow, alpha float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return types.Invalid(opEvaluate, "alpha must be in (0,1), got %g", alpha)
	}
	if len(matrix) < minRaters {
		return types.Invalid(opEvaluate, "need at least %d rater, got %d", minRaters, len(matrix))
	}

	width := len(matrix[0])
	if width-1 < minObjects {
		return &types.InputError{Op: opEvaluate, Row: 1,
			Reason: "need at least 2 objects plus the tie-correction column"}
	}
	for i, row := range matrix {
		if len(row) != width {
			return &types.InputError{Op: opEvaluate, Row: i + 1,
				Reason: fmt.Sprintf("row has %d columns, expected %d", len(row), width)}
		}
		if err := types.CheckFinite(opEvaluate, i+1, row); err != nil {
			return err
		}
	}
	return nil
}
