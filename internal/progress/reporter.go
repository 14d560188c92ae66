package progress

import (
	"fmt"
	"io"

	"github.com/drakos74/fidle/internal/metrics"
)

// Reporter owns one bar per stage and follows the training loop.
// Only the training bar is enabled by default.
type Reporter struct {
	bars   map[Stage]*Bar
	epochs int
}

// NewReporter creates a reporter for a run of the given number of epochs.
func NewReporter(w io.Writer, epochs int) *Reporter {
	return &Reporter{
		bars: map[Stage]*Bar{
			Training:   NewBar(w, Training),
			Validating: NewBar(w, Validating).Disable(),
			Predicting: NewBar(w, Predicting).Disable(),
		},
		epochs: epochs,
	}
}

// Bar returns the bar of the given stage.
func (r *Reporter) Bar(stage Stage) *Bar {
	return r.bars[stage]
}

// OnEpochStart resets the training bar for the new epoch.
func (r *Reporter) OnEpochStart(epoch, batches int) {
	r.bars[Training].Reset(fmt.Sprintf("Epoch %d/%d", epoch, r.epochs), batches)
}

// OnBatchEnd advances the training bar.
func (r *Reporter) OnBatchEnd(batch int, logs metrics.Logs) {
	r.bars[Training].Update(batch, logs)
}

// OnEpochEnd closes the training line with the epoch logs.
func (r *Reporter) OnEpochEnd(epoch int, logs metrics.Logs) {
	r.bars[Training].Close(logs)
}
