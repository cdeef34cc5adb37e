package tui

import "strings"

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders a series as unicode block characters, one rune per
// point, keeping only the most recent width points. Values are scaled to
// the series maximum; a flat or empty series renders at the lowest level.
func Sparkline(series []float64, width int) string {
	if len(series) == 0 || width <= 0 {
		return ""
	}
	if len(series) > width {
		series = series[len(series)-width:]
	}

	var max float64
	for _, v := range series {
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	for _, v := range series {
		idx := 0
		if max > 0 {
			idx = int(v / max * float64(len(sparkLevels)-1))
			if idx < 0 {
				idx = 0
			}
		}
		b.WriteRune(sparkLevels[idx])
	}
	return b.String()
}
