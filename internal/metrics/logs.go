package metrics

import (
	"sort"

	"github.com/rs/zerolog/log"
)

// Logs holds the scalar metrics of one training step, keyed by metric name.
type Logs map[string]float64

// Keys returns the metric names in sorted order.
func (l Logs) Keys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Callback receives the logs at the end of every epoch.
type Callback interface {
	OnEpochEnd(epoch int, logs Logs)
}

const (
	Train      = "Train"
	Validation = "Validation"
)

// Group maps one plotted quantity to the log keys of its splits.
type Group struct {
	Name   string
	Splits map[string]string
}

// Groups are the scalars forwarded to the dashboards.
var Groups = []Group{
	{
		Name:   "Accuracy",
		Splits: map[string]string{Train: "accuracy", Validation: "val_accuracy"},
	},
	{
		Name:   "Loss",
		Splits: map[string]string{Train: "loss", Validation: "val_loss"},
	},
}

// Scalars is a group -> split -> value view of an epoch.
type Scalars map[string]map[string]float64

// Extract picks the grouped scalars out of the logs.
// Missing keys are skipped with a warning.
func Extract(epoch int, logs Logs) Scalars {
	scalars := make(Scalars, len(Groups))
	for _, group := range Groups {
		values := make(map[string]float64, len(group.Splits))
		for split, key := range group.Splits {
			v, ok := logs[key]
			if !ok {
				log.Warn().
					Int("epoch", epoch).
					Str("group", group.Name).
					Str("key", key).
					Msg("missing metric")
				continue
			}
			values[split] = v
		}
		if len(values) > 0 {
			scalars[group.Name] = values
		}
	}
	return scalars
}
