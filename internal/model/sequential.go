// Package model describes the convolutional architectures used for the traffic sign exercise,
// with shape inference and parameter counting, and a registry to select them by name.
package model

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Sequential is a linear stack of layers.
type Sequential struct {
	name   string
	input  Shape
	layers []Layer
}

// NewSequential creates an empty stack for the given sample shape.
func NewSequential(name string, input ...int) *Sequential {
	return &Sequential{
		name:   name,
		input:  Shape(input),
		layers: make([]Layer, 0),
	}
}

// Add appends the layer to the stack.
func (s *Sequential) Add(l Layer) *Sequential {
	s.layers = append(s.layers, l)
	return s
}

// Name returns the model name.
func (s *Sequential) Name() string {
	return s.name
}

// Input returns the input shape.
func (s *Sequential) Input() Shape {
	return s.input
}

// Layers returns the number of layers.
func (s *Sequential) Layers() int {
	return len(s.layers)
}

// Shapes returns the output shape of every layer.
func (s *Sequential) Shapes() ([]Shape, error) {
	if len(s.input) == 0 {
		return nil, fmt.Errorf("model '%s' has no input shape", s.name)
	}
	for _, d := range s.input {
		if d < 1 {
			return nil, fmt.Errorf("model '%s' has invalid input shape %v", s.name, s.input)
		}
	}
	shapes := make([]Shape, len(s.layers))
	in := s.input
	for i, l := range s.layers {
		out, err := l.Output(in)
		if err != nil {
			return nil, fmt.Errorf("model '%s' layer %d (%s): %w", s.name, i, l.Type(), err)
		}
		shapes[i] = out
		in = out
	}
	return shapes, nil
}

// Output returns the shape of the last layer.
func (s *Sequential) Output() (Shape, error) {
	shapes, err := s.Shapes()
	if err != nil {
		return nil, err
	}
	if len(shapes) == 0 {
		return s.input, nil
	}
	return shapes[len(shapes)-1], nil
}

// Params returns the number of trainable parameters.
func (s *Sequential) Params() (int, error) {
	shapes, err := s.Shapes()
	if err != nil {
		return 0, err
	}
	n := 0
	in := s.input
	for i, l := range s.layers {
		n += l.Params(in)
		in = shapes[i]
	}
	return n, nil
}

// Summary renders the layers with their output shapes and parameters.
func (s *Sequential) Summary() (string, error) {
	shapes, err := s.Shapes()
	if err != nil {
		return "", err
	}

	b := new(strings.Builder)
	b.WriteString(fmt.Sprintf("Model: \"%s\"\n", s.name))

	table := tablewriter.NewWriter(b)
	table.SetHeader([]string{"Layer (type)", "Output Shape", "Param #"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	counts := make(map[string]int)
	total := 0
	in := s.input
	for i, l := range s.layers {
		t := l.Type()
		counts[t]++
		name := strings.ToLower(t)
		if counts[t] > 1 {
			name = fmt.Sprintf("%s_%d", name, counts[t]-1)
		}
		p := l.Params(in)
		total += p
		table.Append([]string{fmt.Sprintf("%s (%s)", name, t), shapes[i].String(), fmt.Sprintf("%d", p)})
		in = shapes[i]
	}
	table.Render()

	b.WriteString(fmt.Sprintf("Total params: %s\n", thousands(total)))
	return b.String(), nil
}

func thousands(n int) string {
	s := fmt.Sprintf("%d", n)
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}
