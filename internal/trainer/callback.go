package trainer

import "github.com/drakos74/fidle/internal/metrics"

// Callback receives training events from the fit loop.
type Callback interface {
	OnEpochStart(epoch, batches int)
	OnBatchEnd(batch int, logs metrics.Logs)
	OnEpochEnd(epoch int, logs metrics.Logs)
}

type callbacks []Callback

func (cc callbacks) epochStart(epoch, batches int) {
	for _, c := range cc {
		c.OnEpochStart(epoch, batches)
	}
}

func (cc callbacks) batchEnd(batch int, logs metrics.Logs) {
	for _, c := range cc {
		c.OnBatchEnd(batch, logs)
	}
}

func (cc callbacks) epochEnd(epoch int, logs metrics.Logs) {
	for _, c := range cc {
		c.OnEpochEnd(epoch, logs)
	}
}

type epochEnd struct {
	metrics.Callback
}

func (epochEnd) OnEpochStart(epoch, batches int) {}

func (epochEnd) OnBatchEnd(batch int, logs metrics.Logs) {}

// EpochEnd adapts a metrics callback, which only follows epoch ends, to the trainer.
func EpochEnd(c metrics.Callback) Callback {
	return epochEnd{c}
}
