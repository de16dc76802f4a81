// Package export renders postures and recorded series as standalone SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/chaindyn/internal/spatial"
	"github.com/san-kum/chaindyn/internal/viz"
)

// Palette cycles through these stroke colours, one per series.
var Palette = []string{"#00d7ff", "#ff5f87", "#afff5f", "#ffd75f", "#d787ff", "#ff875f"}

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG draws every dot of a Braille canvas as a circle, scale pixels
// apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	var sb strings.Builder
	header(&sb, float64(2*canvas.Width)*scale, float64(4*canvas.Height)*scale)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", Palette[0])
	r := scale * 0.4
	for y := 0; y < 4*canvas.Height; y++ {
		for x := 0; x < 2*canvas.Width; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, r)
			}
		}
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

type span struct{ lo, hi float64 }

// padded covers every finite value with a 5% margin on both ends.
func padded(values ...[]float64) span {
	s := span{math.Inf(1), math.Inf(-1)}
	for _, vs := range values {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			s.lo = math.Min(s.lo, v)
			s.hi = math.Max(s.hi, v)
		}
	}
	if s.lo > s.hi {
		return span{0, 1}
	}
	r := s.hi - s.lo
	if r == 0 {
		r = 1
	}
	return span{s.lo - 0.05*r, s.hi + 0.05*r}
}

func (s span) scale(v, size float64) float64 { return (v - s.lo) / (s.hi - s.lo) * size }

// SeriesSVG plots each series against xs as a polyline. Points with a
// non-finite coordinate break the line.
func SeriesSVG(xs []float64, series [][]float64, width, height int) string {
	w, h := float64(width), float64(height)
	xspan, yspan := padded(xs), padded(series...)

	var sb strings.Builder
	header(&sb, w, h)
	if y0 := yspan.scale(0, h); yspan.lo < 0 && yspan.hi > 0 {
		fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%.0f\" y2=\"%.1f\" stroke=\"#444\" stroke-width=\"1\"/>\n", h-y0, w, h-y0)
	}
	for i, ys := range series {
		fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"", Palette[i%len(Palette)])
		pen := false
		for k := 0; k < len(xs) && k < len(ys); k++ {
			x, y := xs[k], ys[k]
			if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
				pen = false
				continue
			}
			cmd := "L"
			if !pen {
				cmd = "M"
				pen = true
			}
			fmt.Fprintf(&sb, "%s%.1f,%.1f ", cmd, xspan.scale(x, w), h-yspan.scale(y, h))
		}
		sb.WriteString("\"/>\n")
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

// PostureSVG draws the chain seen through view: a polyline from the base
// origin through every segment tip, with a joint marker at each tip.
func PostureSVG(frames []spatial.Frame, view viz.View, width, height int) string {
	xs := []float64{0}
	ys := []float64{0}
	for _, f := range frames {
		x, y := view.Project(f.P)
		xs = append(xs, x)
		ys = append(ys, y)
	}

	w, h := float64(width), float64(height)
	xspan, yspan := padded(xs), padded(ys)
	// equal units on both axes
	unit := math.Max((xspan.hi-xspan.lo)/w, (yspan.hi-yspan.lo)/h) / math.Max(view.Zoom, 1e-9)
	cx, cy := (xspan.lo+xspan.hi)/2, (yspan.lo+yspan.hi)/2
	px := func(x float64) float64 { return w/2 + (x-cx)/unit }
	py := func(y float64) float64 { return h/2 - (y-cy)/unit }

	var sb strings.Builder
	header(&sb, w, h)
	fmt.Fprintf(&sb, "<polyline fill=\"none\" stroke=\"%s\" stroke-width=\"3\" points=\"", Palette[0])
	for i := range xs {
		fmt.Fprintf(&sb, "%.1f,%.1f ", px(xs[i]), py(ys[i]))
	}
	sb.WriteString("\"/>\n")
	fmt.Fprintf(&sb, "<rect x=\"%.1f\" y=\"%.1f\" width=\"10\" height=\"10\" fill=\"%s\"/>\n", px(0)-5, py(0)-5, Palette[3])
	for i := 1; i < len(xs); i++ {
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"4\" fill=\"%s\"/>\n", px(xs[i]), py(ys[i]), Palette[1])
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}
