// Package trend draws compact one-line charts of a value over time.
package trend

import (
	"math"
	"strings"
)

var levels = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as width block characters, oldest on the left.
// Longer series are averaged down to width columns; shorter ones are drawn
// as they are. The range is scaled between the series minimum and maximum.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = resample(values, width)
	}
	minVal, maxVal := minMax(values)
	var b strings.Builder
	for _, v := range values {
		b.WriteRune(levels[level(v, minVal, maxVal)])
	}
	return b.String()
}

// resample averages values into exactly width buckets.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := int(float64(i) * float64(len(values)) / float64(width))
		end := int(float64(i+1) * float64(len(values)) / float64(width))
		if end <= start {
			end = start + 1
		}
		if end > len(values) {
			end = len(values)
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func minMax(values []float64) (float64, float64) {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// level maps v onto the block index; a flat series sits mid-height.
func level(v, minVal, maxVal float64) int {
	top := len(levels) - 1
	if maxVal-minVal < 1e-9 {
		return top / 2
	}
	pos := (v - minVal) / (maxVal - minVal)
	idx := int(math.Round(pos * float64(top)))
	if idx < 0 {
		return 0
	}
	if idx > top {
		return top
	}
	return idx
}
