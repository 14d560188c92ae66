// Package classnames maps ImageNet class indexes to human readable names.
package classnames

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

var ErrUnknownClass = errors.New("unknown class")

// Classnames holds the class names by index.
type Classnames struct {
	classes map[int]string
}

// Load reads the class names from a json object keyed by the class index.
func Load(path string) (*Classnames, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read class names '%s': %w", path, err)
	}
	raw := make(map[string]string)
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("could not parse class names '%s': %w", path, err)
	}
	classes := make(map[int]string, len(raw))
	for k, v := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid class id '%s' in '%s': %w", k, path, err)
		}
		classes[id] = v
	}
	log.Info().Str("path", path).Int("classes", len(classes)).Msg("imagenet classes loaded")
	return &Classnames{classes: classes}, nil
}

// Len returns the number of classes.
func (c *Classnames) Len() int {
	return len(c.classes)
}

// Name returns the name of the given class.
func (c *Classnames) Name(id int) (string, error) {
	name, ok := c.classes[id]
	if !ok {
		return "", fmt.Errorf("class %d: %w", id, ErrUnknownClass)
	}
	return name, nil
}

// Top returns the names of the last n ids, e.g. the best n classes of an ascending argsort.
func (c *Classnames) Top(ids []int, n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid count %d", n)
	}
	if n > len(ids) {
		n = len(ids)
	}
	names := make([]string, 0, n)
	for _, id := range ids[len(ids)-n:] {
		name, err := c.Name(id)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
