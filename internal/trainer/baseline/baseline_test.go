package baseline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drakos74/fidle/internal/dataset"
	"github.com/stretchr/testify/assert"
)

type rows []dataset.Sample

func (r rows) Len() int {
	return len(r)
}

func (r rows) Get(i int) (dataset.Sample, error) {
	if i < 0 || i >= len(r) {
		return dataset.Sample{}, dataset.ErrIndexOutOfRange
	}
	return r[i], nil
}

// clusters generates two well separated groups labelled 3 and 8.
func clusters(n int) rows {
	rr := make(rows, n)
	for i := range rr {
		jitter := float32(i%7) / 20
		if i%2 == 0 {
			rr[i] = dataset.Sample{
				Features: []float32{jitter, 1 - jitter},
				Quality:  []float32{3},
			}
		} else {
			rr[i] = dataset.Sample{
				Features: []float32{10 + jitter, 9 - jitter},
				Quality:  []float32{8},
			}
		}
	}
	return rr
}

func TestForest(t *testing.T) {
	ds := clusters(100)
	train, test, err := dataset.Split(ds, 0.2, 7)
	assert.NoError(t, err)

	result, err := Forest(train, test, 20)
	assert.NoError(t, err)
	assert.Equal(t, "random-forest", result.Model)
	assert.Equal(t, 80, result.Train)
	assert.Equal(t, 20, result.Test)
	assert.Equal(t, 1.0, result.Accuracy)
}

func TestForest_Errors(t *testing.T) {

	type test struct {
		train, test dataset.Dataset
		trees       int
	}

	tests := map[string]test{
		"no-trees": {
			train: clusters(10),
			test:  clusters(4),
		},
		"empty-train": {
			train: rows{},
			test:  clusters(4),
			trees: 5,
		},
		"empty-test": {
			train: clusters(10),
			test:  rows{},
			trees: 5,
		},
		"negative-class": {
			train: rows{{Features: []float32{1}, Quality: []float32{-2}}},
			test:  clusters(4),
			trees: 5,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Forest(tt.train, tt.test, tt.trees)
			assert.Error(t, err)
		})
	}
}

func TestExport(t *testing.T) {
	file := filepath.Join(t.TempDir(), "out", "wine.csv")
	err := Export(rows{
		{Features: []float32{0.5, 2}, Quality: []float32{5}},
		{Features: []float32{-1.25, 0}, Quality: []float32{6.4}},
	}, file)
	assert.NoError(t, err)

	b, err := os.ReadFile(file)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"f0,f1,quality",
		"0.5,2,q5",
		"-1.25,0,q6",
	}, strings.Split(strings.TrimSpace(string(b)), "\n"))
}

func TestKNN(t *testing.T) {
	result, err := KNN(clusters(100), t.TempDir(), 3, 0.3)
	assert.NoError(t, err)
	assert.Equal(t, "knn", result.Model)
	assert.Equal(t, 100, result.Train+result.Test)
	assert.Equal(t, 1.0, result.Accuracy)

	_, err = KNN(clusters(10), t.TempDir(), 0, 0.3)
	assert.Error(t, err)
}
