package bundle

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sbinet/npyio/npz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// images creates n 2x2x1 images whose pixels encode the row index, with label i.
func images(t *testing.T, n int, offset float64) (Array, Array) {
	x := make([]float64, 0, n*4)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v := offset + float64(i)
		x = append(x, v*10, v*10+1, v*10+2, v*10+3)
		y = append(y, v)
	}
	xa, err := NewArray(x, n, 2, 2, 1)
	require.NoError(t, err)
	ya, err := NewArray(y, n)
	require.NoError(t, err)
	return xa, ya
}

func fixture(t *testing.T, train, test, meta int) Bundle {
	var b Bundle
	b.XTrain, b.YTrain = images(t, train, 0)
	b.XTest, b.YTest = images(t, test, 1000)
	b.XMeta, b.YMeta = images(t, meta, 5000)
	return b
}

func save(t *testing.T, b Bundle) string {
	p := Path(t.TempDir(), "set-24x24-L")
	require.NoError(t, Save(p, b))
	return p
}

// writeRaw writes the given arrays without any validation.
func writeRaw(t *testing.T, arrays map[string]Array) string {
	p := filepath.Join(t.TempDir(), "raw.npz")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, a := range arrays {
		w, err := zw.Create(name + ".npy")
		require.NoError(t, err)
		_, err = w.Write(encode(a))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return p
}

func TestRead(t *testing.T) {
	b := fixture(t, 10, 4, 3)
	p := save(t, b)

	loaded, err := Read(p)
	require.NoError(t, err)
	assert.Equal(t, b, loaded)
	assert.Equal(t, "(10, 2, 2, 1)", loaded.XTrain.String())
	assert.Equal(t, "(10,)", loaded.YTrain.String())
}

func TestLoad_Scale(t *testing.T) {
	b := fixture(t, 100, 40, 43)
	p := save(t, b)

	loaded, report, err := LoadReport(p, 0.5, WithSeed(1))
	require.NoError(t, err)

	assert.Equal(t, 50, loaded.XTrain.Len())
	assert.Equal(t, 50, loaded.YTrain.Len())
	assert.Equal(t, 20, loaded.XTest.Len())
	assert.Equal(t, 20, loaded.YTest.Len())
	// meta is not rescaled
	assert.Equal(t, b.XMeta, loaded.XMeta)
	assert.Equal(t, b.YMeta, loaded.YMeta)

	// test split keeps the original order
	for i := 0; i < loaded.YTest.Len(); i++ {
		assert.Equal(t, 1000+float64(i), loaded.YTest.Row(i)[0])
	}

	// train split holds rows 0..49, shuffled, with x and y still paired
	labels := make([]float64, 0)
	for j := 0; j < loaded.YTrain.Len(); j++ {
		y := loaded.YTrain.Row(j)[0]
		assert.Equal(t, b.XTrain.Row(int(y)), loaded.XTrain.Row(j))
		labels = append(labels, y)
	}
	shuffled := make([]float64, len(labels))
	copy(shuffled, labels)
	sort.Float64s(labels)
	for i, l := range labels {
		assert.Equal(t, float64(i), l)
	}
	assert.NotEqual(t, labels, shuffled)

	assert.Equal(t, p, report.Path)
	assert.Equal(t, []int{100, 40}, report.Original)
	assert.Equal(t, []int{50, 20}, report.Rescaled)
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), report.Size)

	raw, err := json.Marshal(report)
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, report.Duration, decoded.Duration)
	assert.Contains(t, string(raw), `"duration":"`)
}

func TestLoad_Reproducible(t *testing.T) {
	p := save(t, fixture(t, 30, 5, 2))

	b1, err := Load(p, 1, WithSeed(42))
	require.NoError(t, err)
	b2, err := Load(p, 1, WithRand(rand.New(rand.NewSource(42))))
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
	assert.Equal(t, 30, b1.XTrain.Len())
}

func TestRescale(t *testing.T) {

	type test struct {
		scale float64
		train int
		test  int
		err   bool
	}

	tests := map[string]test{
		"identity": {
			scale: 1,
			train: 10,
			test:  7,
		},
		"round-down": {
			scale: 0.333,
			train: 3,
			test:  2,
		},
		"round-half-up": {
			scale: 0.5,
			train: 5,
			test:  4,
		},
		"zero": {
			scale: 0,
			err:   true,
		},
		"negative": {
			scale: -0.5,
			err:   true,
		},
		"above-one": {
			scale: 1.5,
			err:   true,
		},
	}

	b := fixture(t, 10, 7, 2)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r, err := Rescale(b, tt.scale)
			if tt.err {
				assert.True(t, errors.Is(err, ErrScale))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.train, r.XTrain.Len())
			assert.Equal(t, tt.train, r.YTrain.Len())
			assert.Equal(t, tt.test, r.XTest.Len())
			assert.Equal(t, tt.test, r.YTest.Len())
			assert.Equal(t, 2, r.XMeta.Len())
			for i := 0; i < r.XTrain.Len(); i++ {
				assert.Equal(t, b.XTrain.Row(i), r.XTrain.Row(i))
				assert.Equal(t, b.YTrain.Row(i), r.YTrain.Row(i))
			}
		})
	}
}

func TestShuffle(t *testing.T) {
	x, y := images(t, 20, 0)
	sx, sy, err := Shuffle(x, y, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Equal(t, x.Shape, sx.Shape)
	for j := 0; j < sx.Len(); j++ {
		k := int(sy.Row(j)[0])
		assert.Equal(t, x.Row(k), sx.Row(j))
	}
	// the input is left untouched
	assert.Equal(t, 0.0, y.Row(0)[0])

	_, short := images(t, 19, 0)
	_, _, err = Shuffle(x, short, rand.New(rand.NewSource(3)))
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestLoad_Errors(t *testing.T) {
	b := fixture(t, 4, 4, 2)

	partial := map[string]Array{
		XTrain: b.XTrain, YTrain: b.YTrain,
		XTest: b.XTest, YTest: b.YTest,
		XMeta: b.XMeta,
	}
	_, shortY := images(t, 3, 0)
	mismatch := map[string]Array{
		XTrain: b.XTrain, YTrain: shortY,
		XTest: b.XTest, YTest: b.YTest,
		XMeta: b.XMeta, YMeta: b.YMeta,
	}

	corrupt := filepath.Join(t.TempDir(), "corrupt.npz")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a zip file"), 0644))

	type test struct {
		path     string
		err      error
		contains string
	}

	tests := map[string]test{
		"not-found": {
			path: filepath.Join(t.TempDir(), "missing.npz"),
			err:  ErrNotFound,
		},
		"corrupt": {
			path: corrupt,
			err:  ErrFormat,
		},
		"missing-array": {
			path:     writeRaw(t, partial),
			err:      ErrMissingArray,
			contains: YMeta,
		},
		"shape-mismatch": {
			path:     writeRaw(t, mismatch),
			err:      ErrShapeMismatch,
			contains: YTrain,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(tt.path, 1, WithSeed(1))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err), err.Error())
			assert.Contains(t, err.Error(), tt.path)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestRead_Dtypes(t *testing.T) {

	type test struct {
		arrays map[string]interface{}
		xShape []int
		x      []float64
		y      []float64
	}

	tests := map[string]test{
		"u1-images": {
			arrays: map[string]interface{}{
				XTrain: [][2][2][1]uint8{{{{0}, {1}}, {{2}, {255}}}, {{{10}, {11}}, {{12}, {13}}}},
				YTrain: []int64{3, 42},
			},
			xShape: []int{2, 2, 2, 1},
			x:      []float64{0, 1, 2, 255, 10, 11, 12, 13},
			y:      []float64{3, 42},
		},
		"f4-vectors": {
			arrays: map[string]interface{}{
				XTrain: [][3]float32{{0.5, -1.25, 2}, {4, 0.25, -8}},
				YTrain: []uint8{0, 7},
			},
			xShape: []int{2, 3},
			x:      []float64{0.5, -1.25, 2, 4, 0.25, -8},
			y:      []float64{0, 7},
		},
		"i8-flat": {
			arrays: map[string]interface{}{
				XTrain: []int64{-3, 1 << 40},
				YTrain: []float32{1.5, 2.5},
			},
			xShape: []int{2},
			x:      []float64{-3, 1 << 40},
			y:      []float64{1.5, 2.5},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			vs := map[string]interface{}{
				XTest: []uint8{1}, YTest: []int64{1},
				XMeta: []float32{2}, YMeta: []int64{2},
			}
			for k, v := range tt.arrays {
				vs[k] = v
			}
			entries := make(map[string]interface{}, len(vs))
			for k, v := range vs {
				entries[k+".npy"] = v
			}
			p := filepath.Join(t.TempDir(), name+Ext)
			require.NoError(t, npz.Write(p, entries))

			b, err := Read(p)
			require.NoError(t, err)
			assert.Equal(t, tt.xShape, b.XTrain.Shape)
			assert.Equal(t, tt.x, b.XTrain.Data)
			assert.Equal(t, []int{len(tt.y)}, b.YTrain.Shape)
			assert.Equal(t, tt.y, b.YTrain.Data)
			assert.Equal(t, []float64{1}, b.XTest.Data)
			assert.Equal(t, []float64{2}, b.XMeta.Data)
		})
	}
}

func TestArray(t *testing.T) {
	_, err := NewArray([]float64{1, 2, 3}, 2, 2)
	assert.True(t, errors.Is(err, ErrFormat))
	_, err = NewArray([]float64{1})
	assert.True(t, errors.Is(err, ErrFormat))

	a, err := NewArray([]float64{1, 2, 3, 4, 5, 6}, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 2, a.RowSize())
	assert.Equal(t, []float64{3, 4}, a.Row(1))
	assert.Equal(t, []float64{1, 2, 3, 4}, a.Head(2).Data)
	assert.Equal(t, []float64{5, 6, 1, 2}, a.Take([]int{2, 0}).Data)
	assert.Equal(t, "(3, 2)", a.String())
}

func TestEncode_Alignment(t *testing.T) {
	for _, shape := range [][]int{{1}, {10, 24, 24, 3}, {123456, 48, 48, 1}} {
		b := encode(Array{Shape: shape})
		hl := int(b[8]) | int(b[9])<<8
		assert.Equal(t, 0, (10+hl)%64)
		assert.Equal(t, byte('\n'), b[10+hl-1])
	}
}
