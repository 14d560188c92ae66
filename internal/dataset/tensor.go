package dataset

import "gorgonia.org/tensor"

// ToTensor adds dense tensor views of the features and the target to the sample.
// The tensors own a copy of the values, so the sample slices stay independent.
func ToTensor() Transform {
	return func(s Sample) Sample {
		return Sample{
			Features:  s.Features,
			Quality:   s.Quality,
			FeaturesT: vector(s.Features),
			QualityT:  vector(s.Quality),
		}
	}
}

func vector(values []float32) *tensor.Dense {
	backing := make([]float32, len(values))
	copy(backing, values)
	return tensor.New(tensor.WithShape(len(backing)), tensor.WithBacking(backing))
}
