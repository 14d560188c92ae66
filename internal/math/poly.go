package math

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Fit solves the least squares problem for the given design matrix and target
// with an added intercept term.
// The output has the intercept at index 0, followed by one coefficient per column of x.
// c[0] + c[1]x1 + c[2]x2 + ...
func Fit(x mat.Matrix, y []float64) ([]float64, error) {
	r, c := x.Dims()
	if r != len(y) {
		return nil, fmt.Errorf("inconsistent dimensions %d rows vs %d targets", r, len(y))
	}
	if r <= c {
		return nil, fmt.Errorf("not enough rows %d for %d coefficients", r, c+1)
	}

	a := withIntercept(x)
	b := mat.NewDense(len(y), 1, y)
	coef := mat.NewDense(c+1, 1, nil)

	qr := new(mat.QR)
	qr.Factorize(a)

	err := qr.SolveTo(coef, false, b)
	if err != nil {
		return nil, fmt.Errorf("could not solve least squares: %w", err)
	}

	v := coef.ColView(0)
	cc := make([]float64, v.Len())
	for i := 0; i < v.Len(); i++ {
		cc[i] = v.AtVec(i)
	}
	return cc, nil
}

func withIntercept(x mat.Matrix) *mat.Dense {
	r, c := x.Dims()
	a := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		a.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			a.Set(i, j+1, x.At(i, j))
		}
	}
	return a
}
