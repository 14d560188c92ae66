package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/drakos74/fidle/internal/metrics"
)

// Stage is the phase a bar reports on.
type Stage string

const (
	Training   Stage = "Training"
	Validating Stage = "Validating"
	Predicting Stage = "Predicting"
)

const width = 10

var blocks = []rune(" ▏▎▍▌▋▊▉█")

// Bar renders the progress of a stage as a single updating line.
type Bar struct {
	w        io.Writer
	stage    Stage
	desc     string
	total    int
	current  int
	disabled bool
}

// NewBar creates an enabled bar writing to w.
func NewBar(w io.Writer, stage Stage) *Bar {
	return &Bar{
		w:     w,
		stage: stage,
		desc:  string(stage),
	}
}

// Stage returns the stage the bar reports on.
func (b *Bar) Stage() Stage {
	return b.stage
}

// Disable turns off rendering.
func (b *Bar) Disable() *Bar {
	b.disabled = true
	return b
}

// Enable turns on rendering.
func (b *Bar) Enable() *Bar {
	b.disabled = false
	return b
}

// Disabled reports whether the bar renders anything.
func (b *Bar) Disabled() bool {
	return b.disabled
}

// Reset starts the bar over with a new description and total.
func (b *Bar) Reset(desc string, total int) {
	b.desc = desc
	b.total = total
	b.current = 0
}

// Update sets the current count and redraws the line.
func (b *Bar) Update(current int, logs metrics.Logs) {
	b.current = current
	if b.disabled {
		return
	}
	fmt.Fprintf(b.w, "\r%s", b.Render(logs))
}

// Close finishes the line.
func (b *Bar) Close(logs metrics.Logs) {
	if b.disabled {
		return
	}
	fmt.Fprintf(b.w, "\r%s\n", b.Render(logs))
}

// Render formats the bar, e.g. "Training: 42%|████▏     | 21/50 [loss=0.3100]".
func (b *Bar) Render(logs metrics.Logs) string {
	frac := 0.0
	if b.total > 0 {
		frac = float64(b.current) / float64(b.total)
	}
	if frac > 1 {
		frac = 1
	}
	line := fmt.Sprintf("%s: %3d%%|%s| %d/%d", b.desc, int(frac*100), fill(frac), b.current, b.total)
	if len(logs) > 0 {
		values := make([]string, 0, len(logs))
		for _, k := range logs.Keys() {
			values = append(values, fmt.Sprintf("%s=%.4f", k, logs[k]))
		}
		line += " [" + strings.Join(values, ", ") + "]"
	}
	return line
}

func fill(frac float64) string {
	eighths := int(frac * width * 8)
	full := eighths / 8
	var sb strings.Builder
	sb.WriteString(strings.Repeat(string(blocks[8]), full))
	if full < width {
		sb.WriteRune(blocks[eighths%8])
		sb.WriteString(strings.Repeat(" ", width-full-1))
	}
	return sb.String()
}
