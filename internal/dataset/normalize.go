package dataset

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/drakos74/fidle/internal/storage"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// Stats holds the per feature normalization statistics.
// Std is the sample standard deviation (n-1 denominator).
type Stats struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Len returns the number of features the stats cover.
func (s Stats) Len() int {
	return len(s.Mean)
}

// ComputeStats computes the mean and standard deviation of every feature column over the whole dataset.
// A column with zero variance, or a single row dataset, gets a zero std.
func ComputeStats(ds Dataset) (Stats, error) {
	n := ds.Len()
	if n == 0 {
		return Stats{}, fmt.Errorf("could not compute stats: %w", ErrEmpty)
	}

	var columns [][]float64
	for i := 0; i < n; i++ {
		s, err := ds.Get(i)
		if err != nil {
			return Stats{}, fmt.Errorf("could not read row %d: %w", i, err)
		}
		if columns == nil {
			columns = make([][]float64, len(s.Features))
			for j := range columns {
				columns[j] = make([]float64, n)
			}
		}
		if len(s.Features) != len(columns) {
			return Stats{}, fmt.Errorf("row %d has %d features instead of %d: %w", i, len(s.Features), len(columns), ErrInconsistent)
		}
		for j, f := range s.Features {
			columns[j][i] = float64(f)
		}
	}

	stats := Stats{
		Mean: make([]float64, len(columns)),
		Std:  make([]float64, len(columns)),
	}
	for j, column := range columns {
		mean, std := stat.MeanStdDev(column, nil)
		if n == 1 || math.IsNaN(std) {
			std = 0
		}
		stats.Mean[j] = mean
		stats.Std[j] = std
	}
	return stats, nil
}

// StatsFromFile computes the stats over a plain view of the given file.
// Any transform passed within the options is ignored.
func StatsFromFile(path string, opts ...Option) (Stats, error) {
	ds, err := NewTabular(path, append(opts, WithTransform(nil))...)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(ds)
}

// CachedStats loads the stats for the given file from the storage,
// computing and storing them if they are not there yet.
// The cache key covers the file content and the parsing options,
// so an edited file or a different delimiter gets fresh stats.
func CachedStats(store storage.Persistence, path string, opts ...Option) (Stats, error) {
	opts = append(opts, WithTransform(nil))
	ds, err := NewTabular(path, opts...)
	if err != nil {
		return Stats{}, err
	}
	key, err := statsKey(path, opts...)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	err = store.Load(key, &stats)
	if err == nil && len(stats.Std) == stats.Len() && stats.Len() == ds.Features() {
		log.Debug().Str("path", path).Int("features", stats.Len()).Msg("loaded cached stats")
		return stats, nil
	}
	if err == nil {
		log.Warn().
			Str("path", path).
			Int("cached", stats.Len()).
			Int("features", ds.Features()).
			Msg("discarding inconsistent cached stats")
	} else if !errors.Is(err, storage.NotFoundErr) {
		log.Warn().Err(err).Str("path", path).Msg("could not load cached stats")
	}

	stats, err = ComputeStats(ds)
	if err != nil {
		return Stats{}, err
	}
	if err := store.Store(key, stats); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not store stats")
	}
	return stats, nil
}

func statsKey(path string, opts ...Option) (storage.Key, error) {
	cfg := newConfig(opts...)
	abs, err := filepath.Abs(path)
	if err != nil {
		return storage.Key{}, fmt.Errorf("could not resolve path '%s': %w", path, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return storage.Key{}, fmt.Errorf("could not open dataset '%s': %w", path, err)
	}
	defer f.Close()

	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%q|%v|", abs, cfg.delimiter, cfg.header)
	if _, err := io.Copy(h, f); err != nil {
		return storage.Key{}, fmt.Errorf("could not hash dataset '%s': %w", path, err)
	}
	return storage.Key{
		Name:  filepath.Base(abs),
		Hash:  h.Sum64(),
		Label: storage.StatsDir,
	}, nil
}

// Normalize centers and scales the features with the given stats.
// A zero std is treated as 1, leaving the column centered but unscaled.
// The stats are copied, so later changes to them do not affect the transform.
func Normalize(stats Stats) Transform {
	mean := make([]float64, len(stats.Mean))
	copy(mean, stats.Mean)
	std := make([]float64, len(stats.Std))
	for j, s := range stats.Std {
		if s == 0 {
			s = 1
		}
		std[j] = s
	}
	return func(s Sample) Sample {
		if len(s.Features) != len(mean) {
			panic(fmt.Sprintf("inconsistent dimensions %d features vs %d stats", len(s.Features), len(mean)))
		}
		features := make([]float32, len(s.Features))
		for j, f := range s.Features {
			features[j] = float32((float64(f) - mean[j]) / std[j])
		}
		return Sample{
			Features: features,
			Quality:  s.Quality,
		}
	}
}
