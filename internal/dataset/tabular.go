package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

const defaultDelimiter = ';'

type config struct {
	delimiter rune
	header    bool
	transform Transform
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		delimiter: defaultDelimiter,
		header:    true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option configures the tabular dataset.
type Option func(c *config)

// WithDelimiter sets the column delimiter.
func WithDelimiter(d rune) Option {
	return func(c *config) {
		c.delimiter = d
	}
}

// WithHeader defines if the first line holds the column names.
func WithHeader(header bool) Option {
	return func(c *config) {
		c.header = header
	}
}

// WithTransform sets the transform applied to every sample on access.
func WithTransform(t Transform) Option {
	return func(c *config) {
		c.transform = t
	}
}

// Tabular is a delimited text file loaded in memory.
// All columns but the last are features, the last one is the target.
type Tabular struct {
	path      string
	columns   []string
	table     *mat.Dense
	rows      int
	transform Transform
}

// NewTabular reads the whole file at the given path.
// Any read or parse error fails the construction.
func NewTabular(path string, opts ...Option) (*Tabular, error) {
	cfg := newConfig(opts...)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open dataset '%s': %w", path, err)
	}
	defer f.Close()

	columns, values, rows, err := parse(path, f, cfg)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("path", path).
		Int("rows", rows).
		Int("columns", len(columns)).
		Msg("loaded dataset")

	return &Tabular{
		path:      path,
		columns:   columns,
		table:     mat.NewDense(rows, len(columns), values),
		rows:      rows,
		transform: cfg.transform,
	}, nil
}

func parse(path string, r io.Reader, cfg *config) ([]string, []float64, int, error) {
	reader := csv.NewReader(r)
	reader.Comma = cfg.delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	var columns []string
	values := make([]float64, 0)
	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, nil, 0, fmt.Errorf("could not read '%s' at line %d: %v: %w", path, pe.Line, pe.Err, ErrMalformed)
			}
			return nil, nil, 0, fmt.Errorf("could not read '%s': %v: %w", path, err, ErrMalformed)
		}
		if columns == nil {
			if len(record) < 2 {
				return nil, nil, 0, fmt.Errorf("'%s' has %d columns, need at least one feature and a target: %w", path, len(record), ErrMalformed)
			}
			columns = make([]string, len(record))
			if cfg.header {
				for i, name := range record {
					columns[i] = strings.TrimSpace(name)
				}
				continue
			}
			for i := range record {
				columns[i] = fmt.Sprintf("column_%d", i)
			}
		}
		if len(record) != len(columns) {
			line, _ := reader.FieldPos(0)
			return nil, nil, 0, fmt.Errorf("'%s' line %d has %d columns instead of %d: %w", path, line, len(record), len(columns), ErrMalformed)
		}
		for i, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				line, col := reader.FieldPos(i)
				return nil, nil, 0, fmt.Errorf("'%s' line %d column %d '%s': could not parse '%s': %w", path, line, col, columns[i], cell, ErrMalformed)
			}
			values = append(values, v)
		}
		rows++
	}

	if rows == 0 {
		return nil, nil, 0, fmt.Errorf("'%s' has no data rows: %w", path, ErrEmpty)
	}
	return columns, values, rows, nil
}

// Len returns the number of data rows.
func (t *Tabular) Len() int {
	return t.rows
}

// Columns returns the column names, the target being the last one.
func (t *Tabular) Columns() []string {
	cc := make([]string, len(t.columns))
	copy(cc, t.columns)
	return cc
}

// Features returns the number of feature columns.
func (t *Tabular) Features() int {
	return len(t.columns) - 1
}

// Path returns the file the dataset was loaded from.
func (t *Tabular) Path() string {
	return t.path
}

// Get returns the sample at the given index, after the configured transform.
func (t *Tabular) Get(i int) (Sample, error) {
	if i < 0 || i >= t.rows {
		return Sample{}, fmt.Errorf("index %d not in [0, %d) for '%s': %w", i, t.rows, t.path, ErrIndexOutOfRange)
	}
	row := t.table.RawRowView(i)
	f := len(row) - 1
	features := make([]float32, f)
	for j := 0; j < f; j++ {
		features[j] = float32(row[j])
	}
	s := Sample{
		Features: features,
		Quality:  []float32{float32(row[f])},
	}
	if t.transform != nil {
		s = t.transform(s)
	}
	return s, nil
}
