package bundle

import (
	"fmt"
	"strings"
)

// Array is a row-major numeric array, the first dimension indexing the samples.
type Array struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"-"`
}

// NewArray creates an array of the given shape over the data.
func NewArray(data []float64, shape ...int) (Array, error) {
	if len(shape) == 0 {
		return Array{}, fmt.Errorf("array needs at least one dimension: %w", ErrFormat)
	}
	if n := size(shape); n != len(data) {
		return Array{}, fmt.Errorf("shape %v needs %d values, got %d: %w", shape, n, len(data), ErrFormat)
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return Array{Shape: s, Data: data}, nil
}

func size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Len returns the leading dimension.
func (a Array) Len() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

// RowSize returns the number of values of a single row.
func (a Array) RowSize() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return size(a.Shape[1:])
}

// Row returns a view of the values of row i.
func (a Array) Row(i int) []float64 {
	r := a.RowSize()
	return a.Data[i*r : (i+1)*r]
}

// Head returns a view of the first n rows.
func (a Array) Head(n int) Array {
	shape := make([]int, len(a.Shape))
	copy(shape, a.Shape)
	shape[0] = n
	return Array{
		Shape: shape,
		Data:  a.Data[:n*a.RowSize()],
	}
}

// Take returns a new array with the rows in the given order.
func (a Array) Take(order []int) Array {
	r := a.RowSize()
	data := make([]float64, len(order)*r)
	for i, j := range order {
		copy(data[i*r:(i+1)*r], a.Row(j))
	}
	shape := make([]int, len(a.Shape))
	copy(shape, a.Shape)
	shape[0] = len(order)
	return Array{
		Shape: shape,
		Data:  data,
	}
}

func (a Array) String() string {
	dims := make([]string, len(a.Shape))
	for i, d := range a.Shape {
		dims[i] = fmt.Sprintf("%d", d)
	}
	if len(dims) == 1 {
		return fmt.Sprintf("(%s,)", dims[0])
	}
	return fmt.Sprintf("(%s)", strings.Join(dims, ", "))
}
