// Package baseline trains classical classifiers over the integer quality classes,
// as a reference for the gradient descent regressor.
package baseline

import (
	"errors"
	"fmt"
	"math"

	"github.com/drakos74/fidle/internal/dataset"
	cmath "github.com/drakos74/fidle/internal/math"
)

var ErrClass = errors.New("invalid class")

// Result summarises a baseline run.
type Result struct {
	Model      string    `json:"model"`
	Accuracy   float64   `json:"accuracy"`
	Train      int       `json:"train"`
	Test       int       `json:"test"`
	Importance []float64 `json:"importance,omitempty"`
}

// classes reads the dataset into feature rows and rounded quality classes.
func classes(ds dataset.Dataset) ([][]float64, []int, error) {
	n := ds.Len()
	if n == 0 {
		return nil, nil, fmt.Errorf("no samples: %w", dataset.ErrEmpty)
	}
	x := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		s, err := ds.Get(i)
		if err != nil {
			return nil, nil, err
		}
		c := int(math.Round(float64(s.Quality[0])))
		if c < 0 {
			return nil, nil, fmt.Errorf("negative class %d at %d: %w", c, i, ErrClass)
		}
		x[i] = cmath.ToFloat64(s.Features)
		y[i] = c
	}
	return x, y, nil
}
