package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/drakos74/fidle/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Entry is the record of one epoch.
type Entry struct {
	Epoch   int     `json:"epoch"`
	Scalars Scalars `json:"scalars"`
	Logs    Logs    `json:"logs"`
}

// Series is a named curve of [value, epoch] points.
type Series struct {
	Target     string      `json:"target"`
	DataPoints [][]float64 `json:"datapoints"`
}

// History records the epoch logs of a training run and persists them under the run id.
type History struct {
	mutex   *sync.RWMutex
	store   storage.Persistence
	run     string
	entries []Entry
}

// NewHistory creates a history for a new run.
func NewHistory(store storage.Persistence) *History {
	return &History{
		mutex:   new(sync.RWMutex),
		store:   store,
		run:     uuid.New().String(),
		entries: make([]Entry, 0),
	}
}

// LoadHistory restores the history of a past run.
func LoadHistory(store storage.Persistence, run string) (*History, error) {
	entries := make([]Entry, 0)
	err := store.Load(key(run), &entries)
	if err != nil {
		return nil, fmt.Errorf("could not load history for run '%s': %w", run, err)
	}
	return &History{
		mutex:   new(sync.RWMutex),
		store:   store,
		run:     run,
		entries: entries,
	}, nil
}

func key(run string) storage.Key {
	return storage.Key{
		Name:  storage.HistoryDir,
		Label: run,
	}
}

// Run returns the run id.
func (h *History) Run() string {
	return h.run
}

// OnEpochEnd appends the epoch and persists the whole history.
func (h *History) OnEpochEnd(epoch int, logs Logs) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	cp := make(Logs, len(logs))
	for k, v := range logs {
		cp[k] = v
	}
	h.entries = append(h.entries, Entry{
		Epoch:   epoch,
		Scalars: Extract(epoch, logs),
		Logs:    cp,
	})
	if err := h.store.Store(key(h.run), h.entries); err != nil {
		log.Error().Err(err).Str("run", h.run).Int("epoch", epoch).Msg("could not store history")
	}
}

// Entries returns a copy of the recorded epochs.
func (h *History) Entries() []Entry {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	entries := make([]Entry, len(h.entries))
	copy(entries, h.entries)
	return entries
}

// Series returns one curve per group and split, named "group/split".
func (h *History) Series() []Series {
	points := make(map[string][][]float64)
	for _, e := range h.Entries() {
		for group, splits := range e.Scalars {
			for split, v := range splits {
				target := group + "/" + split
				points[target] = append(points[target], []float64{v, float64(e.Epoch)})
			}
		}
	}
	targets := make([]string, 0, len(points))
	for t := range points {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	series := make([]Series, len(targets))
	for i, t := range targets {
		series[i] = Series{Target: t, DataPoints: points[t]}
	}
	return series
}

// Plot renders one PNG per group into dir and returns the file paths.
func (h *History) Plot(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create plot dir: %w", err)
	}
	entries := h.Entries()
	files := make([]string, 0, len(Groups))
	for _, group := range Groups {
		lines := make([]interface{}, 0)
		for _, split := range []string{Train, Validation} {
			xys := make(plotter.XYs, 0, len(entries))
			for _, e := range entries {
				if v, ok := e.Scalars[group.Name][split]; ok {
					xys = append(xys, plotter.XY{X: float64(e.Epoch), Y: v})
				}
			}
			if len(xys) > 0 {
				lines = append(lines, split, xys)
			}
		}
		if len(lines) == 0 {
			continue
		}
		p := plot.New()
		p.Title.Text = group.Name
		p.X.Label.Text = "Epoch"
		p.Y.Label.Text = group.Name
		if err := plotutil.AddLinePoints(p, lines...); err != nil {
			return files, fmt.Errorf("could not plot '%s': %w", group.Name, err)
		}
		file := filepath.Join(dir, fmt.Sprintf("%s_%s.png", h.run, group.Name))
		if err := p.Save(8*vg.Inch, 5*vg.Inch, file); err != nil {
			return files, fmt.Errorf("could not save plot '%s': %w", file, err)
		}
		files = append(files, file)
	}
	return files, nil
}
