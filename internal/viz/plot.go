package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan,
	asciigraph.Magenta,
	asciigraph.Yellow,
	asciigraph.Green,
	asciigraph.Red,
	asciigraph.Blue,
}

// PlotSeries draws one or more equally long series on shared axes. Series
// containing NaN or Inf values are dropped.
func PlotSeries(series [][]float64, caption string, width, height int) string {
	clean := make([][]float64, 0, len(series))
	colors := make([]asciigraph.AnsiColor, 0, len(series))
	for i, s := range series {
		if len(s) == 0 || !finite(s) {
			continue
		}
		clean = append(clean, s)
		colors = append(colors, seriesColors[i%len(seriesColors)])
	}
	if len(clean) == 0 {
		return Subtle.Render("no data: " + caption)
	}
	return asciigraph.PlotMany(clean,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	)
}

func finite(s []float64) bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
