package trainer

import (
	"errors"
	"fmt"
	"math"

	"github.com/drakos74/fidle/internal/buffer"
	"github.com/drakos74/fidle/internal/dataset"
	cmath "github.com/drakos74/fidle/internal/math"
	"github.com/drakos74/fidle/internal/metrics"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

const (
	Loss      = "loss"
	Accuracy  = "accuracy"
	MAE       = "mae"
	valPrefix = "val_"
)

var ErrDimensions = errors.New("inconsistent dimensions")

// Regressor is a linear model y = x·w + b.
type Regressor struct {
	weights *mat.VecDense
	bias    float64
}

// NewRegressor creates a zero initialised model for the given number of features.
func NewRegressor(features int) *Regressor {
	return &Regressor{
		weights: mat.NewVecDense(features, nil),
	}
}

// LeastSquares fits a regressor in closed form on the whole dataset.
func LeastSquares(ds dataset.Dataset) (*Regressor, error) {
	n := ds.Len()
	if n == 0 {
		return nil, fmt.Errorf("could not fit least squares: %w", dataset.ErrEmpty)
	}
	var x *mat.Dense
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		s, err := ds.Get(i)
		if err != nil {
			return nil, err
		}
		if x == nil {
			x = mat.NewDense(n, len(s.Features), nil)
		}
		x.SetRow(i, cmath.ToFloat64(s.Features))
		y[i] = float64(s.Quality[0])
	}
	coef, err := cmath.Fit(x, y)
	if err != nil {
		return nil, err
	}
	return &Regressor{
		bias:    coef[0],
		weights: mat.NewVecDense(len(coef)-1, coef[1:]),
	}, nil
}

// Features returns the number of input features.
func (r *Regressor) Features() int {
	return r.weights.Len()
}

// Weights returns a copy of the coefficients.
func (r *Regressor) Weights() []float64 {
	w := make([]float64, r.weights.Len())
	for i := range w {
		w[i] = r.weights.AtVec(i)
	}
	return w
}

// Bias returns the intercept.
func (r *Regressor) Bias() float64 {
	return r.bias
}

// Predict evaluates the model for every row of x.
func (r *Regressor) Predict(x mat.Matrix) (*mat.VecDense, error) {
	rows, cols := x.Dims()
	if cols != r.weights.Len() {
		return nil, fmt.Errorf("%d features for %d weights: %w", cols, r.weights.Len(), ErrDimensions)
	}
	y := mat.NewVecDense(rows, nil)
	y.MulVec(x, r.weights)
	for i := 0; i < rows; i++ {
		y.SetVec(i, y.AtVec(i)+r.bias)
	}
	return y, nil
}

// step applies one gradient descent update on the mean squared error of the batch
// and returns the residuals before the update.
func (r *Regressor) step(b dataset.Batch, lr float64) (*mat.VecDense, error) {
	pred, err := r.Predict(b.X)
	if err != nil {
		return nil, err
	}
	residuals := mat.NewVecDense(b.Size(), nil)
	residuals.SubVec(pred, b.Y)

	n := float64(b.Size())
	grad := mat.NewVecDense(r.weights.Len(), nil)
	grad.MulVec(b.X.T(), residuals)
	r.weights.AddScaledVec(r.weights, -2*lr/n, grad)
	r.bias -= 2 * lr * mat.Sum(residuals) / n
	return residuals, nil
}

// Config holds the hyper parameters of the fit loop.
type Config struct {
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
	Seed         int64   `json:"seed"`
}

// Trainer runs mini-batch gradient descent and reports to its callbacks.
type Trainer struct {
	cfg       Config
	callbacks callbacks
}

// New creates a trainer.
func New(cfg Config, cb ...Callback) *Trainer {
	return &Trainer{
		cfg:       cfg,
		callbacks: cb,
	}
}

// Fit trains the model on train, evaluates on val after every epoch
// and returns the logs of each epoch. val may be nil.
func (t *Trainer) Fit(model *Regressor, train, val dataset.Dataset) ([]metrics.Logs, error) {
	if t.cfg.Epochs <= 0 {
		return nil, fmt.Errorf("invalid number of epochs %d", t.cfg.Epochs)
	}
	if t.cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("invalid learning rate %v", t.cfg.LearningRate)
	}
	loader, err := dataset.NewLoader(train, t.cfg.BatchSize, dataset.Shuffled(t.cfg.Seed))
	if err != nil {
		return nil, fmt.Errorf("could not create training loader: %w", err)
	}

	history := make([]metrics.Logs, 0, t.cfg.Epochs)
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		t.callbacks.epochStart(epoch, loader.Len())
		batches, err := loader.Batches()
		if err != nil {
			return history, err
		}
		running := newCollector()
		for i, b := range batches {
			residuals, err := model.step(b, t.cfg.LearningRate)
			if err != nil {
				return history, err
			}
			push(running, residuals, b.Y)
			t.callbacks.batchEnd(i+1, metrics.Logs(running.Averages()))
		}
		logs := metrics.Logs(running.Averages())
		if val != nil && val.Len() > 0 {
			vl, err := Evaluate(model, val, t.cfg.BatchSize)
			if err != nil {
				return history, err
			}
			for k, v := range vl {
				logs[valPrefix+k] = v
			}
		}
		if math.IsNaN(logs[Loss]) || math.IsInf(logs[Loss], 0) {
			return history, fmt.Errorf("training diverged at epoch %d: loss=%v", epoch, logs[Loss])
		}
		log.Debug().
			Int("epoch", epoch).
			Float64(Loss, logs[Loss]).
			Float64(MAE, logs[MAE]).
			Msg("epoch")
		t.callbacks.epochEnd(epoch, logs)
		history = append(history, logs)
	}
	return history, nil
}

// Evaluate computes loss, mae and accuracy of the model over the dataset.
func Evaluate(model *Regressor, ds dataset.Dataset, batchSize int) (metrics.Logs, error) {
	loader, err := dataset.NewLoader(ds, batchSize)
	if err != nil {
		return nil, fmt.Errorf("could not create evaluation loader: %w", err)
	}
	batches, err := loader.Batches()
	if err != nil {
		return nil, err
	}
	running := newCollector()
	for _, b := range batches {
		pred, err := model.Predict(b.X)
		if err != nil {
			return nil, err
		}
		residuals := mat.NewVecDense(b.Size(), nil)
		residuals.SubVec(pred, b.Y)
		push(running, residuals, b.Y)
	}
	return metrics.Logs(running.Averages()), nil
}

func newCollector() *buffer.StatsCollector {
	return buffer.NewStatsCollector(Loss, MAE, Accuracy)
}

func push(sc *buffer.StatsCollector, residuals, y *mat.VecDense) {
	for i := 0; i < residuals.Len(); i++ {
		e := residuals.AtVec(i)
		hit := 0.0
		if math.Round(y.AtVec(i)+e) == math.Round(y.AtVec(i)) {
			hit = 1
		}
		sc.Push(e*e, math.Abs(e), hit)
	}
}
