package main

import (
	"flag"
	"fmt"

	"github.com/drakos74/fidle/infra/config"
	"github.com/drakos74/fidle/internal/bundle"
	"github.com/drakos74/fidle/internal/classnames"
	"github.com/drakos74/fidle/internal/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	EnhancedDir string  `json:"enhanced_dir"`
	DatasetName string  `json:"dataset_name"`
	Scale       float64 `json:"scale"`
	Seed        int64   `json:"seed"`
	Model       string  `json:"model"`
	Classnames  string  `json:"classnames"`
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	var cfg Config
	config.MustLoad("gtsrb", &cfg)

	flag.StringVar(&cfg.EnhancedDir, "dir", cfg.EnhancedDir, "directory of the enhanced datasets")
	flag.StringVar(&cfg.DatasetName, "name", cfg.DatasetName, "dataset name, e.g. set-24x24-L")
	flag.Float64Var(&cfg.Scale, "scale", cfg.Scale, "fraction of the train and test splits to keep")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "shuffle seed, 0 for a random one")
	flag.StringVar(&cfg.Model, "model", cfg.Model, "model architecture")
	flag.StringVar(&cfg.Classnames, "classnames", cfg.Classnames, "optional class names json file")
	flag.Parse()

	var opts []bundle.Option
	if cfg.Seed != 0 {
		opts = append(opts, bundle.WithSeed(cfg.Seed))
	}
	b, report, err := bundle.LoadReport(bundle.Path(cfg.EnhancedDir, cfg.DatasetName), cfg.Scale, opts...)
	if err != nil {
		panic(err.Error())
	}
	log.Info().
		Ints("original", report.Original).
		Ints("rescaled", report.Rescaled).
		Str("x_train", b.XTrain.String()).
		Str("x_test", b.XTest.String()).
		Str("x_meta", b.XMeta.String()).
		Msg("dataset")

	if len(b.XTrain.Shape) != 4 {
		panic(fmt.Sprintf("expected (n, lx, ly, lz) images, got %s", b.XTrain.String()))
	}
	lx, ly, lz := b.XTrain.Shape[1], b.XTrain.Shape[2], b.XTrain.Shape[3]

	m, err := model.NewRegistry().Get(cfg.Model, lx, ly, lz)
	if err != nil {
		panic(err.Error())
	}
	summary, err := m.Summary()
	if err != nil {
		panic(err.Error())
	}
	fmt.Println(summary)

	if cfg.Classnames == "" {
		return
	}
	names, err := classnames.Load(cfg.Classnames)
	if err != nil {
		panic(err.Error())
	}
	ids := make([]int, b.YMeta.Len())
	for i := range ids {
		ids[i] = int(b.YMeta.Row(i)[0])
	}
	top, err := names.Top(ids, 5)
	if err != nil {
		log.Warn().Err(err).Msg("meta labels are not known classes")
		return
	}
	log.Info().Strs("classes", top).Msg("meta labels")
}
