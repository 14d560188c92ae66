package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Subset is a view over the given indexes of a parent dataset.
type Subset struct {
	parent  Dataset
	indexes []int
}

// NewSubset creates a view over the parent for the given indexes.
func NewSubset(parent Dataset, indexes []int) *Subset {
	idx := make([]int, len(indexes))
	copy(idx, indexes)
	return &Subset{
		parent:  parent,
		indexes: idx,
	}
}

func (s *Subset) Len() int {
	return len(s.indexes)
}

func (s *Subset) Get(i int) (Sample, error) {
	if i < 0 || i >= len(s.indexes) {
		return Sample{}, fmt.Errorf("index %d not in [0, %d) of subset: %w", i, len(s.indexes), ErrIndexOutOfRange)
	}
	return s.parent.Get(s.indexes[i])
}

// Split splits the dataset randomly into a train and a validation view.
// ratio is the fraction of samples that goes to validation.
func Split(ds Dataset, ratio float64, seed int64) (*Subset, *Subset, error) {
	if ratio < 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("invalid validation ratio %v", ratio)
	}
	n := ds.Len()
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	v := int(math.Round(ratio * float64(n)))
	return NewSubset(ds, perm[v:]), NewSubset(ds, perm[:v]), nil
}

// Batch is a group of samples in matrix form.
type Batch struct {
	X       *mat.Dense
	Y       *mat.VecDense
	Indexes []int
}

// Size returns the number of samples in the batch.
func (b Batch) Size() int {
	return len(b.Indexes)
}

// Loader draws batches from a dataset, once per epoch.
type Loader struct {
	ds      Dataset
	size    int
	shuffle bool
	rng     *rand.Rand
}

// LoaderOption configures a loader.
type LoaderOption func(l *Loader)

// Shuffled reshuffles the sample order on every epoch with the given seed.
func Shuffled(seed int64) LoaderOption {
	return func(l *Loader) {
		l.shuffle = true
		l.rng = rand.New(rand.NewSource(seed))
	}
}

// NewLoader creates a loader with the given batch size.
func NewLoader(ds Dataset, size int, opts ...LoaderOption) (*Loader, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid batch size %d", size)
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("could not create loader: %w", ErrEmpty)
	}
	l := &Loader{
		ds:   ds,
		size: size,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Len returns the number of batches per epoch.
func (l *Loader) Len() int {
	return (l.ds.Len() + l.size - 1) / l.size
}

// Batches returns the batches of one epoch. The last batch may be smaller.
func (l *Loader) Batches() ([]Batch, error) {
	n := l.ds.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if l.shuffle {
		l.rng.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	batches := make([]Batch, 0, l.Len())
	for start := 0; start < n; start += l.size {
		end := start + l.size
		if end > n {
			end = n
		}
		b, err := l.batch(order[start:end])
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func (l *Loader) batch(indexes []int) (Batch, error) {
	var x *mat.Dense
	y := mat.NewVecDense(len(indexes), nil)
	for r, i := range indexes {
		s, err := l.ds.Get(i)
		if err != nil {
			return Batch{}, err
		}
		if x == nil {
			x = mat.NewDense(len(indexes), len(s.Features), nil)
		}
		_, c := x.Dims()
		if len(s.Features) != c {
			return Batch{}, fmt.Errorf("sample %d has %d features instead of %d: %w", i, len(s.Features), c, ErrInconsistent)
		}
		for j, f := range s.Features {
			x.Set(r, j, float64(f))
		}
		if len(s.Quality) > 0 {
			y.SetVec(r, float64(s.Quality[0]))
		}
	}
	idx := make([]int, len(indexes))
	copy(idx, indexes)
	return Batch{
		X:       x,
		Y:       y,
		Indexes: idx,
	}, nil
}
