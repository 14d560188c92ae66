package baseline

import (
	"fmt"

	"github.com/drakos74/fidle/internal/dataset"
	randomforest "github.com/malaschitz/randomForest"
	"github.com/rs/zerolog/log"
)

// Forest trains a random forest on train and reports its accuracy on test.
func Forest(train, test dataset.Dataset, trees int) (Result, error) {
	if trees <= 0 {
		return Result{}, fmt.Errorf("invalid number of trees %d", trees)
	}
	xTrain, yTrain, err := classes(train)
	if err != nil {
		return Result{}, fmt.Errorf("could not read training set: %w", err)
	}
	xTest, yTest, err := classes(test)
	if err != nil {
		return Result{}, fmt.Errorf("could not read test set: %w", err)
	}

	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: xTrain, Class: yTrain}
	forest.Train(trees)

	hits := 0
	for i, x := range xTest {
		if argmax(forest.Vote(x)) == yTest[i] {
			hits++
		}
	}
	result := Result{
		Model:      "random-forest",
		Accuracy:   float64(hits) / float64(len(xTest)),
		Train:      len(xTrain),
		Test:       len(xTest),
		Importance: forest.FeatureImportance,
	}
	log.Info().
		Int("trees", trees).
		Float64("accuracy", result.Accuracy).
		Msg("random forest")
	return result, nil
}

func argmax(votes []float64) int {
	best := -1
	max := -1.0
	for i, v := range votes {
		if v > max {
			max = v
			best = i
		}
	}
	return best
}
