package time

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Chrono measures wall-clock durations of long running steps.
type Chrono struct {
	now   func() time.Time
	start time.Time
	stop  time.Time
}

// NewChrono creates a new stopped chrono.
func NewChrono() *Chrono {
	return &Chrono{now: time.Now}
}

// Start (re)starts the chrono.
func (c *Chrono) Start() *Chrono {
	c.start = c.now()
	c.stop = time.Time{}
	return c
}

// Stop freezes the elapsed time.
func (c *Chrono) Stop() time.Duration {
	c.stop = c.now()
	return c.Elapsed()
}

// Elapsed returns the time since start, or the frozen duration if the chrono was stopped.
func (c *Chrono) Elapsed() time.Duration {
	if c.start.IsZero() {
		return 0
	}
	if !c.stop.IsZero() {
		return c.stop.Sub(c.start)
	}
	return c.now().Sub(c.start)
}

// Delay returns the elapsed time in a human readable format.
func (c *Chrono) Delay() string {
	return FormatDelay(c.Elapsed())
}

// FormatDelay formats the duration as hh:mm:ss, keeping milliseconds for short durations.
func FormatDelay(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2f s", d.Seconds())
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%d:%02d:%02d", h, m, d/time.Second)
}

// Duration is a json friendly duration.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		if err != nil {
			return err
		}
		return nil
	default:
		return errors.New("invalid duration")
	}
}
