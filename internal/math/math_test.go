package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestHSize(t *testing.T) {

	type test struct {
		input  int64
		output string
	}

	tests := map[string]test{
		"bytes": {
			input:  512,
			output: "512 B",
		},
		"kilo": {
			input:  1536,
			output: "1.5 KB",
		},
		"mega": {
			input:  5 * 1024 * 1024,
			output: "5.0 MB",
		},
		"giga": {
			input:  3 * 1024 * 1024 * 1024,
			output: "3.0 GB",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.output, HSize(tt.input))
		})
	}
}

func TestConvert(t *testing.T) {
	assert.Equal(t, []float64{1.5, -2.25, 0}, ToFloat64([]float32{1.5, -2.25, 0}))
	assert.Empty(t, ToFloat64(nil))
}

func TestFit(t *testing.T) {
	// y = 1 + 2*x1 - 3*x2
	x := mat.NewDense(5, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
		2, 3,
	})
	y := []float64{1, 3, -2, 0, -4}

	c, err := Fit(x, y)
	assert.NoError(t, err)
	assert.InDelta(t, 1, c[0], 1e-9)
	assert.InDelta(t, 2, c[1], 1e-9)
	assert.InDelta(t, -3, c[2], 1e-9)

	_, err = Fit(x, y[:3])
	assert.Error(t, err)

	_, err = Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), []float64{1, 2})
	assert.Error(t, err)
}
