package math

import "fmt"

var units = []string{"KB", "MB", "GB", "TB", "PB"}

// HSize returns a human readable representation of the given byte size, using a 1024 base.
func HSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	f := float64(n)
	u := ""
	for _, unit := range units {
		f /= 1024
		u = unit
		if f < 1024 {
			break
		}
	}
	return fmt.Sprintf("%.1f %s", f, u)
}

// ToFloat64 widens the values to double precision.
func ToFloat64(ff []float32) []float64 {
	out := make([]float64, len(ff))
	for i, f := range ff {
		out[i] = float64(f)
	}
	return out
}
