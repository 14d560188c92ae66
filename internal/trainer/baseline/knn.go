package baseline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/drakos74/fidle/internal/dataset"
	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/evaluation"
	"github.com/sjwhitworth/golearn/knn"
)

// Export writes the dataset as a comma separated file with a header,
// one feature per column and the class label "q<quality>" last.
func Export(ds dataset.Dataset, path string) error {
	x, y, err := classes(ds)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create export file '%s': %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, 0, len(x[0])+1)
	for j := range x[0] {
		header = append(header, fmt.Sprintf("f%d", j))
	}
	header = append(header, "quality")
	if err := w.Write(header); err != nil {
		return err
	}
	for i, row := range x {
		record := make([]string, 0, len(row)+1)
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		record = append(record, fmt.Sprintf("q%d", y[i]))
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// KNN exports the dataset to dir, splits it with the given test ratio and
// evaluates a k nearest neighbours classifier on the held out part.
func KNN(ds dataset.Dataset, dir string, k int, testRatio float64) (Result, error) {
	if k <= 0 {
		return Result{}, fmt.Errorf("invalid number of neighbours %d", k)
	}
	file := filepath.Join(dir, "knn.csv")
	if err := Export(ds, file); err != nil {
		return Result{}, fmt.Errorf("could not export dataset: %w", err)
	}
	instances, err := base.ParseCSVToInstances(file, true)
	if err != nil {
		return Result{}, fmt.Errorf("could not parse '%s': %w", file, err)
	}

	cls := knn.NewKnnClassifier("euclidean", "linear", k)
	trainData, testData := base.InstancesTrainTestSplit(instances, testRatio)
	err = cls.Fit(trainData)
	if err != nil {
		return Result{}, fmt.Errorf("could not train knn model: %w", err)
	}
	predictions, err := cls.Predict(testData)
	if err != nil {
		return Result{}, fmt.Errorf("could not predict on knn model: %w", err)
	}
	cf, err := evaluation.GetConfusionMatrix(testData, predictions)
	if err != nil {
		return Result{}, fmt.Errorf("could not get confusion matrix: %w", err)
	}
	log.Debug().Str("summary", evaluation.GetSummary(cf)).Msg("knn")

	_, trainRows := trainData.Size()
	_, testRows := testData.Size()
	result := Result{
		Model:    "knn",
		Accuracy: evaluation.GetAccuracy(cf),
		Train:    trainRows,
		Test:     testRows,
	}
	log.Info().
		Int("k", k).
		Float64("accuracy", result.Accuracy).
		Msg("knn")
	return result, nil
}
