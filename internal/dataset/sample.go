// Package dataset exposes delimited text files as indexable collections of samples,
// with per access transforms such as feature normalization and tensor conversion.
package dataset

import (
	"errors"

	"gorgonia.org/tensor"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrMalformed       = errors.New("malformed dataset")
	ErrEmpty           = errors.New("empty dataset")
	ErrInconsistent    = errors.New("inconsistent feature count")
)

// Sample is one row of a dataset split into its features and its target.
type Sample struct {
	Features []float32 `json:"features"`
	Quality  []float32 `json:"quality"`
	// FeaturesT and QualityT are the tensor views, set only by the ToTensor transform.
	FeaturesT *tensor.Dense `json:"-"`
	QualityT  *tensor.Dense `json:"-"`
}

// Dataset is a fixed length, index addressable collection of samples.
type Dataset interface {
	Len() int
	Get(i int) (Sample, error)
}

// Transform maps a sample to a new sample.
// Transforms must not mutate their input.
type Transform func(s Sample) Sample

// Apply threads the sample through the transforms from left to right.
func Apply(s Sample, transforms ...Transform) Sample {
	for _, t := range transforms {
		if t == nil {
			continue
		}
		s = t(s)
	}
	return s
}

// Compose returns a single transform applying the given ones in order.
func Compose(transforms ...Transform) Transform {
	tt := make([]Transform, 0, len(transforms))
	for _, t := range transforms {
		if t != nil {
			tt = append(tt, t)
		}
	}
	return func(s Sample) Sample {
		return Apply(s, tt...)
	}
}
