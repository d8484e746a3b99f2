// Package fit implements the ordinary least-squares curve fits used by the
// component models to turn historical operating data into optimizer
// coefficients.
package fit

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInsufficientData is returned when there are fewer samples than
// coefficients to estimate.
var ErrInsufficientData = errors.New("fit: insufficient data")

// LeastSquares fits y = b0 + b1*x1 + ... + bk*xk. Each element of columns is
// one regressor with len(y) samples. The returned slice starts with the
// intercept.
func LeastSquares(columns [][]float64, y []float64) ([]float64, error) {
	n := len(y)
	p := len(columns) + 1
	if n < p {
		return nil, fmt.Errorf("%w: %d samples for %d coefficients", ErrInsufficientData, n, p)
	}
	a := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		a.Set(i, 0, 1)
	}
	for j, col := range columns {
		if len(col) != n {
			return nil, fmt.Errorf("fit: column %d has %d samples, want %d", j, len(col), n)
		}
		for i, v := range col {
			a.Set(i, j+1, v)
		}
	}
	var beta mat.VecDense
	if err := beta.SolveVec(a, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return nil, fmt.Errorf("fit: solve: %w", err)
	}
	out := make([]float64, p)
	for i := range out {
		out[i] = beta.AtVec(i)
	}
	return out, nil
}

// Linear fits y = intercept + slope*x.
func Linear(x, y []float64) (intercept, slope float64, err error) {
	if len(x) != len(y) {
		return 0, 0, fmt.Errorf("fit: %d inputs for %d outputs", len(x), len(y))
	}
	coef, err := LeastSquares([][]float64{x}, y)
	if err != nil {
		return 0, 0, err
	}
	return coef[0], coef[1], nil
}
