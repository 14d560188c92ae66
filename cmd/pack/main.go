package main

import (
	"flag"
	"os"

	"github.com/drakos74/fidle/internal/bundle"
	coinmath "github.com/drakos74/fidle/internal/math"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// pack writes a reduced copy of a dataset bundle,
// keeping the leading fraction of the train and test splits.
func main() {
	in := flag.String("in", "", "source bundle")
	out := flag.String("out", "", "target bundle")
	scale := flag.Float64("scale", 0.1, "fraction of the train and test splits to keep")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		return
	}

	b, err := bundle.Read(*in)
	if err != nil {
		panic(err.Error())
	}
	small, err := bundle.Rescale(b, *scale)
	if err != nil {
		panic(err.Error())
	}
	if err := bundle.Save(*out, small); err != nil {
		panic(err.Error())
	}
	info, err := os.Stat(*out)
	if err != nil {
		panic(err.Error())
	}
	log.Info().
		Str("in", *in).
		Str("out", *out).
		Str("x_train", small.XTrain.String()).
		Str("x_test", small.XTest.String()).
		Str("size", coinmath.HSize(info.Size())).
		Msg("packed bundle")
}
