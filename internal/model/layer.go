package model

import (
	"fmt"
	"strings"
)

// Shape is the shape of a single sample, without the batch dimension.
type Shape []int

func (s Shape) String() string {
	dims := make([]string, len(s)+1)
	dims[0] = "None"
	for i, d := range s {
		dims[i+1] = fmt.Sprintf("%d", d)
	}
	return fmt.Sprintf("(%s)", strings.Join(dims, ", "))
}

func (s Shape) size() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Layer is a single step of a sequential stack.
type Layer interface {
	Type() string
	Output(in Shape) (Shape, error)
	Params(in Shape) int
}

// Conv2D is a valid padding, stride 1 convolution.
type Conv2D struct {
	Filters    int
	Kernel     [2]int
	Activation string
}

func (c Conv2D) Type() string {
	return "Conv2D"
}

func (c Conv2D) Output(in Shape) (Shape, error) {
	if len(in) != 3 {
		return nil, fmt.Errorf("conv2d expects (h, w, c) input, got %v", in)
	}
	h, w := in[0]-c.Kernel[0]+1, in[1]-c.Kernel[1]+1
	if h < 1 || w < 1 {
		return nil, fmt.Errorf("conv2d kernel %v does not fit input %v", c.Kernel, in)
	}
	return Shape{h, w, c.Filters}, nil
}

func (c Conv2D) Params(in Shape) int {
	return (c.Kernel[0]*c.Kernel[1]*in[2] + 1) * c.Filters
}

// MaxPooling2D pools with a stride equal to the pool size.
type MaxPooling2D struct {
	Pool [2]int
}

func (p MaxPooling2D) Type() string {
	return "MaxPooling2D"
}

func (p MaxPooling2D) Output(in Shape) (Shape, error) {
	if len(in) != 3 {
		return nil, fmt.Errorf("max pooling expects (h, w, c) input, got %v", in)
	}
	if in[0] < p.Pool[0] || in[1] < p.Pool[1] {
		return nil, fmt.Errorf("pool %v does not fit input %v", p.Pool, in)
	}
	return Shape{(in[0]-p.Pool[0])/p.Pool[0] + 1, (in[1]-p.Pool[1])/p.Pool[1] + 1, in[2]}, nil
}

func (p MaxPooling2D) Params(in Shape) int {
	return 0
}

type Dropout struct {
	Rate float64
}

func (d Dropout) Type() string {
	return "Dropout"
}

func (d Dropout) Output(in Shape) (Shape, error) {
	if d.Rate < 0 || d.Rate >= 1 {
		return nil, fmt.Errorf("invalid dropout rate %v", d.Rate)
	}
	return in, nil
}

func (d Dropout) Params(in Shape) int {
	return 0
}

type Flatten struct{}

func (f Flatten) Type() string {
	return "Flatten"
}

func (f Flatten) Output(in Shape) (Shape, error) {
	return Shape{in.size()}, nil
}

func (f Flatten) Params(in Shape) int {
	return 0
}

// Dense is a fully connected layer.
type Dense struct {
	Units      int
	Activation string
}

func (d Dense) Type() string {
	return "Dense"
}

func (d Dense) Output(in Shape) (Shape, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("dense expects a flat input, got %v", in)
	}
	return Shape{d.Units}, nil
}

func (d Dense) Params(in Shape) int {
	return (in[0] + 1) * d.Units
}
