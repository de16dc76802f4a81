package viz

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/san-kum/chaindyn/internal/spatial"
)

// View is an orthographic camera looking at the base origin. Yaw turns about
// the base z axis, Pitch tilts the view towards the xy plane.
type View struct {
	Yaw, Pitch float64
	Zoom       float64
}

func DefaultView() View { return View{Yaw: -math.Pi / 6, Pitch: math.Pi / 8, Zoom: 1} }

func (v *View) Rotate(dyaw, dpitch float64) {
	v.Yaw += dyaw
	v.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, v.Pitch+dpitch))
}

func (v *View) ZoomIn()  { v.Zoom = math.Min(10, v.Zoom*1.2) }
func (v *View) ZoomOut() { v.Zoom = math.Max(0.1, v.Zoom/1.2) }

// camera maps base coordinates to screen coordinates: x right, y up, z
// towards the viewer.
func (v View) camera() spatial.Rotation {
	return spatial.RotX(-math.Pi/2 + v.Pitch).Mul(spatial.RotZ(-v.Yaw))
}

// Project returns the screen-plane coordinates of p.
func (v View) Project(p r3.Vector) (x, y float64) {
	q := v.camera().Apply(p)
	return q.X, q.Y
}

// Posture draws the chain as a polyline through the base origin and every
// segment tip, with a dot at each tip.
func Posture(frames []spatial.Frame, view View, w, h int) *Canvas {
	c := NewCanvas(w, h)
	xs := []float64{0}
	ys := []float64{0}
	for _, f := range frames {
		x, y := view.Project(f.P)
		xs = append(xs, x)
		ys = append(ys, y)
	}

	// common scale for both axes; a Braille dot is about twice as tall as wide
	xb, yb := newBounds(xs), newBounds(ys)
	pw, ph := float64(2*w-1), float64(4*h-1)
	span := math.Max((xb.hi-xb.lo)/pw, (yb.hi-yb.lo)/ph) * 1.1 / math.Max(view.Zoom, 1e-9)
	cx, cy := (xb.lo+xb.hi)/2, (yb.lo+yb.hi)/2
	px := func(x float64) int { return int(math.Round(pw/2 + (x-cx)/span)) }
	py := func(y float64) int { return int(math.Round(ph/2 - (y-cy)/span)) }

	for i := 1; i < len(xs); i++ {
		c.DrawLine(px(xs[i-1]), py(ys[i-1]), px(xs[i]), py(ys[i]))
		c.DrawDot(px(xs[i]), py(ys[i]))
	}
	c.DrawDot(px(0), py(0))
	return c
}
