// Package bundle loads the six co-indexed arrays of a packed image dataset,
// with optional down-scaling and a paired shuffle of the training split.
package bundle

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	coinmath "github.com/drakos74/fidle/internal/math"
	cointime "github.com/drakos74/fidle/internal/time"
	"github.com/rs/zerolog/log"
)

const (
	XTrain = "x_train"
	YTrain = "y_train"
	XTest  = "x_test"
	YTest  = "y_test"
	XMeta  = "x_meta"
	YMeta  = "y_meta"

	// Ext is the extension of the packed bundle files.
	Ext = ".npz"
)

// Names are the arrays every bundle file must hold.
var Names = []string{XTrain, YTrain, XTest, YTest, XMeta, YMeta}

var (
	ErrNotFound      = errors.New("bundle not found")
	ErrFormat        = errors.New("invalid bundle format")
	ErrMissingArray  = errors.New("missing array")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrScale         = errors.New("invalid scale")
)

// Bundle holds the train, test and meta splits.
// x and y of each split share their leading dimension.
type Bundle struct {
	XTrain, YTrain Array
	XTest, YTest   Array
	XMeta, YMeta   Array
}

func (b Bundle) pairs() [][2]string {
	return [][2]string{{XTrain, YTrain}, {XTest, YTest}, {XMeta, YMeta}}
}

func (b Bundle) get(name string) Array {
	switch name {
	case XTrain:
		return b.XTrain
	case YTrain:
		return b.YTrain
	case XTest:
		return b.XTest
	case YTest:
		return b.YTest
	case XMeta:
		return b.XMeta
	case YMeta:
		return b.YMeta
	}
	return Array{}
}

func (b *Bundle) set(name string, a Array) {
	switch name {
	case XTrain:
		b.XTrain = a
	case YTrain:
		b.YTrain = a
	case XTest:
		b.XTest = a
	case YTest:
		b.YTest = a
	case XMeta:
		b.XMeta = a
	case YMeta:
		b.YMeta = a
	}
}

// Validate checks that every x array has the same number of rows as its y array.
func (b Bundle) Validate() error {
	for _, pair := range b.pairs() {
		x, y := b.get(pair[0]), b.get(pair[1])
		if len(x.Shape) == 0 || len(y.Shape) == 0 {
			return fmt.Errorf("'%s' %v or '%s' %v has no leading dimension: %w", pair[0], x.Shape, pair[1], y.Shape, ErrShapeMismatch)
		}
		if x.Len() != y.Len() {
			return fmt.Errorf("'%s' has %d rows but '%s' has %d: %w", pair[0], x.Len(), pair[1], y.Len(), ErrShapeMismatch)
		}
	}
	return nil
}

// Path returns the bundle file for the given dataset name.
func Path(dir, name string) string {
	return filepath.Join(dir, name+Ext)
}

// Report holds the diagnostics of a load.
type Report struct {
	Path     string            `json:"path"`
	Size     int64             `json:"size"`
	Duration cointime.Duration `json:"duration"`
	Original []int             `json:"original"`
	Rescaled []int             `json:"rescaled"`
}

type config struct {
	rng *rand.Rand
}

// Option configures the loading.
type Option func(c *config)

// WithSeed makes the shuffle reproducible.
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand sets the random source of the shuffle.
func WithRand(rng *rand.Rand) Option {
	return func(c *config) {
		c.rng = rng
	}
}

// Load reads the bundle at path, keeps the given fraction of the train and test splits
// and shuffles the train split.
func Load(path string, scale float64, opts ...Option) (Bundle, error) {
	b, _, err := LoadReport(path, scale, opts...)
	return b, err
}

// LoadReport is like Load, also returning the load diagnostics.
func LoadReport(path string, scale float64, opts ...Option) (Bundle, Report, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	chrono := cointime.NewChrono().Start()

	b, err := Read(path)
	if err != nil {
		return Bundle{}, Report{}, err
	}
	report := Report{
		Path:     path,
		Original: []int{b.XTrain.Len(), b.XTest.Len()},
	}
	log.Info().Str("x_train", b.XTrain.String()).Str("y_train", b.YTrain.String()).Msg("original shape")

	b, err = Rescale(b, scale)
	if err != nil {
		return Bundle{}, Report{}, err
	}
	report.Rescaled = []int{b.XTrain.Len(), b.XTest.Len()}
	log.Info().Str("x_train", b.XTrain.String()).Str("y_train", b.YTrain.String()).Msg("rescaled shape")

	b.XTrain, b.YTrain, err = Shuffle(b.XTrain, b.YTrain, cfg.rng)
	if err != nil {
		return Bundle{}, Report{}, err
	}

	report.Duration = cointime.Duration{Duration: chrono.Stop()}
	if info, err := os.Stat(path); err == nil {
		report.Size = info.Size()
	}
	log.Info().
		Str("dataset", path).
		Str("size", coinmath.HSize(report.Size)).
		Str("duration", cointime.FormatDelay(report.Duration.Duration)).
		Msg("dataset is loaded and shuffled")
	return b, report, nil
}

// Rescale keeps the first round(scale * n) rows of the train and test splits.
// The meta split is left untouched.
func Rescale(b Bundle, scale float64) (Bundle, error) {
	if math.IsNaN(scale) || scale <= 0 || scale > 1 {
		return Bundle{}, fmt.Errorf("scale %v not in (0, 1]: %w", scale, ErrScale)
	}
	if err := b.Validate(); err != nil {
		return Bundle{}, err
	}
	if scale == 1 {
		return b, nil
	}
	for _, pair := range [][2]string{{XTrain, YTrain}, {XTest, YTest}} {
		n := int(math.Round(scale * float64(b.get(pair[0]).Len())))
		for _, name := range pair {
			b.set(name, b.get(name).Head(n))
		}
	}
	return b, nil
}

// Shuffle applies the same random permutation to the rows of x and y.
func Shuffle(x, y Array, rng *rand.Rand) (Array, Array, error) {
	if x.Len() != y.Len() {
		return Array{}, Array{}, fmt.Errorf("cannot shuffle %d rows against %d: %w", x.Len(), y.Len(), ErrShapeMismatch)
	}
	perm := rng.Perm(x.Len())
	return x.Take(perm), y.Take(perm), nil
}
