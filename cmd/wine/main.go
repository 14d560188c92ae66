package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drakos74/fidle/infra/config"
	"github.com/drakos74/fidle/internal/dataset"
	"github.com/drakos74/fidle/internal/metrics"
	"github.com/drakos74/fidle/internal/progress"
	"github.com/drakos74/fidle/internal/server"
	"github.com/drakos74/fidle/internal/storage"
	"github.com/drakos74/fidle/internal/storage/file/json"
	"github.com/drakos74/fidle/internal/trainer"
	"github.com/drakos74/fidle/internal/trainer/baseline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Dataset       string  `json:"dataset"`
	Delimiter     string  `json:"delimiter"`
	Validation    float64 `json:"validation"`
	Seed          int64   `json:"seed"`
	BatchSize     int     `json:"batch_size"`
	Epochs        int     `json:"epochs"`
	LearningRate  float64 `json:"learning_rate"`
	BaselineTrees int     `json:"baseline_trees"`
	BaselineK     int     `json:"baseline_k"`
	HistoryDir    string  `json:"history_dir"`
	Port          int     `json:"port"`
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	var cfg Config
	config.MustLoad("wine", &cfg)

	flag.StringVar(&cfg.Dataset, "dataset", cfg.Dataset, "wine quality csv file")
	flag.IntVar(&cfg.Epochs, "epochs", cfg.Epochs, "number of training epochs")
	flag.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "batch size")
	flag.Float64Var(&cfg.LearningRate, "lr", cfg.LearningRate, "learning rate")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for the split and the shuffle")
	serve := flag.Bool("serve", false, "serve the metrics and the history while training")
	baselines := flag.Bool("baseline", true, "train the baseline classifiers")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if len(cfg.Delimiter) != 1 {
		panic(fmt.Sprintf("invalid delimiter '%s'", cfg.Delimiter))
	}
	delimiter := dataset.WithDelimiter(rune(cfg.Delimiter[0]))

	statsStore, err := json.DirShard(cfg.HistoryDir, storage.StatsDir)("wine")
	if err != nil {
		panic(err.Error())
	}
	stats, err := dataset.CachedStats(statsStore, cfg.Dataset, delimiter)
	if err != nil {
		panic(err.Error())
	}

	ds, err := dataset.NewTabular(cfg.Dataset, delimiter, dataset.WithTransform(dataset.Normalize(stats)))
	if err != nil {
		panic(err.Error())
	}
	log.Info().
		Str("dataset", ds.Path()).
		Int("rows", ds.Len()).
		Int("features", ds.Features()).
		Msg("loaded dataset")

	train, val, err := dataset.Split(ds, cfg.Validation, cfg.Seed)
	if err != nil {
		panic(err.Error())
	}

	history := metrics.NewHistory(json.NewJsonBlob(cfg.HistoryDir, storage.HistoryDir, "wine", false))
	prom := metrics.NewPrometheus()
	if *serve {
		go func() {
			err := server.NewDashboard(cfg.Port, history, prom).Run()
			if err != nil {
				log.Error().Err(err).Msg("dashboard stopped")
			}
		}()
	}

	model := trainer.NewRegressor(ds.Features())
	logs, err := trainer.New(trainer.Config{
		Epochs:       cfg.Epochs,
		BatchSize:    cfg.BatchSize,
		LearningRate: cfg.LearningRate,
		Seed:         cfg.Seed,
	},
		progress.NewReporter(os.Stderr, cfg.Epochs),
		trainer.EpochEnd(prom),
		trainer.EpochEnd(history),
	).Fit(model, train, val)
	if err != nil {
		panic(err.Error())
	}
	last := logs[len(logs)-1]
	log.Info().
		Str("run", history.Run()).
		Float64("val_loss", last["val_loss"]).
		Float64("val_mae", last["val_mae"]).
		Float64("val_accuracy", last["val_accuracy"]).
		Msg("trained regressor")

	files, err := history.Plot(filepath.Join(cfg.HistoryDir, "plots"))
	if err != nil {
		log.Error().Err(err).Msg("could not plot history")
	}
	log.Info().Strs("files", files).Msg("saved training curves")

	split, lsLogs, err := leastSquares(train, val, cfg.BatchSize)
	if err != nil {
		panic(err.Error())
	}
	log.Info().
		Str("split", split).
		Float64(trainer.Loss, lsLogs[trainer.Loss]).
		Float64(trainer.MAE, lsLogs[trainer.MAE]).
		Float64(trainer.Accuracy, lsLogs[trainer.Accuracy]).
		Msg("least squares")

	if *baselines && val.Len() == 0 {
		log.Warn().Msg("no validation split, skipping the baselines")
	} else if *baselines {
		if _, err := baseline.Forest(train, val, cfg.BaselineTrees); err != nil {
			log.Error().Err(err).Msg("could not train random forest")
		}
		if _, err := baseline.KNN(ds, filepath.Join(cfg.HistoryDir, "export"), cfg.BaselineK, cfg.Validation); err != nil {
			log.Error().Err(err).Msg("could not train knn")
		}
	}

	if *serve {
		log.Info().Int("port", cfg.Port).Msg("training complete, still serving")
		select {}
	}
}

// leastSquares fits the closed form model on train and evaluates it on val,
// or on train when the validation split is empty.
func leastSquares(train, val dataset.Dataset, batchSize int) (string, metrics.Logs, error) {
	ls, err := trainer.LeastSquares(train)
	if err != nil {
		return "", nil, err
	}
	split, eval := metrics.Validation, val
	if val == nil || val.Len() == 0 {
		split, eval = metrics.Train, train
	}
	logs, err := trainer.Evaluate(ls, eval, batchSize)
	return split, logs, err
}
