package model

import (
	"errors"
	"fmt"
	"sort"
)

// Classes is the number of traffic sign classes.
const Classes = 43

var (
	ErrUnknownModel = errors.New("unknown model")
	ErrDuplicate    = errors.New("duplicate model")
)

// Constructor builds a model for the given image width, height and channels.
type Constructor func(lx, ly, lz int) *Sequential

// Model01 is a simple model, for 24x24 or 48x48 images.
func Model01(lx, ly, lz int) *Sequential {
	return NewSequential("model_01", lx, ly, lz).
		Add(Conv2D{Filters: 96, Kernel: [2]int{3, 3}, Activation: "relu"}).
		Add(MaxPooling2D{Pool: [2]int{2, 2}}).
		Add(Dropout{Rate: 0.2}).
		Add(Conv2D{Filters: 192, Kernel: [2]int{3, 3}, Activation: "relu"}).
		Add(MaxPooling2D{Pool: [2]int{2, 2}}).
		Add(Dropout{Rate: 0.2}).
		Add(Flatten{}).
		Add(Dense{Units: 1500, Activation: "relu"}).
		Add(Dropout{Rate: 0.5}).
		Add(Dense{Units: Classes, Activation: "softmax"})
}

// Model02 is a deeper model, for 48x48 images.
func Model02(lx, ly, lz int) *Sequential {
	s := NewSequential("model_02", lx, ly, lz)
	for _, filters := range []int{32, 64, 128, 256} {
		s.Add(Conv2D{Filters: filters, Kernel: [2]int{3, 3}, Activation: "relu"}).
			Add(MaxPooling2D{Pool: [2]int{2, 2}}).
			Add(Dropout{Rate: 0.5})
	}
	return s.Add(Flatten{}).
		Add(Dense{Units: 1152, Activation: "relu"}).
		Add(Dropout{Rate: 0.5}).
		Add(Dense{Units: Classes, Activation: "softmax"})
}

// Registry maps model names to their constructors.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry creates a registry with the known models.
func NewRegistry() *Registry {
	r := &Registry{
		constructors: make(map[string]Constructor),
	}
	list := map[string]Constructor{
		"model_01": Model01,
		"model_02": Model02,
	}
	for name, c := range list {
		if err := r.Register(name, c); err != nil {
			panic(err.Error())
		}
	}
	return r
}

// Register adds a constructor under the given name.
func (r *Registry) Register(name string, c Constructor) error {
	if _, ok := r.constructors[name]; ok {
		return fmt.Errorf("'%s': %w", name, ErrDuplicate)
	}
	r.constructors[name] = c
	return nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get builds the named model and checks that its layers fit the input shape.
func (r *Registry) Get(name string, lx, ly, lz int) (*Sequential, error) {
	c, ok := r.constructors[name]
	if !ok {
		return nil, fmt.Errorf("'%s' not in %v: %w", name, r.Names(), ErrUnknownModel)
	}
	m := c(lx, ly, lz)
	if _, err := m.Shapes(); err != nil {
		return nil, err
	}
	return m, nil
}
