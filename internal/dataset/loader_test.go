package dataset

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(n int) rows {
	rr := make(rows, n)
	for i := range rr {
		rr[i] = Sample{
			Features: []float32{float32(i), float32(2 * i)},
			Quality:  []float32{float32(i % 10)},
		}
	}
	return rr
}

func TestLoader_Batches(t *testing.T) {

	type test struct {
		n     int
		size  int
		sizes []int
	}

	tests := map[string]test{
		"exact": {
			n:     64,
			size:  32,
			sizes: []int{32, 32},
		},
		"remainder": {
			n:     70,
			size:  32,
			sizes: []int{32, 32, 6},
		},
		"single": {
			n:     5,
			size:  32,
			sizes: []int{5},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ds := sequence(tt.n)
			l, err := NewLoader(ds, tt.size)
			require.NoError(t, err)
			assert.Equal(t, len(tt.sizes), l.Len())

			batches, err := l.Batches()
			require.NoError(t, err)
			require.Len(t, batches, len(tt.sizes))

			next := 0
			for b, batch := range batches {
				assert.Equal(t, tt.sizes[b], batch.Size())
				r, c := batch.X.Dims()
				assert.Equal(t, tt.sizes[b], r)
				assert.Equal(t, 2, c)
				for row, i := range batch.Indexes {
					// sequential order without shuffling
					assert.Equal(t, next, i)
					next++
					assert.Equal(t, float64(i), batch.X.At(row, 0))
					assert.Equal(t, float64(2*i), batch.X.At(row, 1))
					assert.Equal(t, float64(i%10), batch.Y.AtVec(row))
				}
			}
		})
	}
}

func TestLoader_Shuffled(t *testing.T) {
	ds := sequence(100)

	epoch := func(l *Loader) []int {
		batches, err := l.Batches()
		require.NoError(t, err)
		idx := make([]int, 0)
		for _, b := range batches {
			for row, i := range b.Indexes {
				// pairing of x and y is kept
				assert.Equal(t, float64(i), b.X.At(row, 0))
				assert.Equal(t, float64(i%10), b.Y.AtVec(row))
			}
			idx = append(idx, b.Indexes...)
		}
		return idx
	}

	l1, err := NewLoader(ds, 16, Shuffled(7))
	require.NoError(t, err)
	l2, err := NewLoader(ds, 16, Shuffled(7))
	require.NoError(t, err)

	first := epoch(l1)
	assert.Equal(t, first, epoch(l2))

	second := epoch(l1)
	assert.NotEqual(t, first, second)

	sort.Ints(second)
	for i, v := range second {
		assert.Equal(t, i, v)
	}
}

func TestLoader_Invalid(t *testing.T) {
	_, err := NewLoader(sequence(3), 0)
	assert.Error(t, err)
	_, err = NewLoader(rows{}, 4)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSplit(t *testing.T) {
	ds := sequence(100)
	train, val, err := Split(ds, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, 80, train.Len())
	assert.Equal(t, 20, val.Len())

	seen := make(map[float32]bool)
	for _, sub := range []*Subset{train, val} {
		for i := 0; i < sub.Len(); i++ {
			s, err := sub.Get(i)
			require.NoError(t, err)
			assert.False(t, seen[s.Features[0]])
			seen[s.Features[0]] = true
		}
	}
	assert.Len(t, seen, 100)

	_, err = val.Get(20)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, _, err = Split(ds, 1, 42)
	assert.Error(t, err)
}
