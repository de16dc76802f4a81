package spatial

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Wrench is a spatial force.
type Wrench struct {
	Force  r3.Vector
	Torque r3.Vector
}

func NewWrench(force, torque r3.Vector) Wrench {
	return Wrench{Force: force, Torque: torque}
}

func (w Wrench) Add(o Wrench) Wrench {
	return Wrench{Force: w.Force.Add(o.Force), Torque: w.Torque.Add(o.Torque)}
}

func (w Wrench) Sub(o Wrench) Wrench {
	return Wrench{Force: w.Force.Sub(o.Force), Torque: w.Torque.Sub(o.Torque)}
}

func (w Wrench) Scale(s float64) Wrench {
	return Wrench{Force: w.Force.Mul(s), Torque: w.Torque.Mul(s)}
}

func (w Wrench) Neg() Wrench { return w.Scale(-1) }

// RefPoint moves the reference point by d, expressed in the same frame.
func (w Wrench) RefPoint(d r3.Vector) Wrench {
	return Wrench{Force: w.Force, Torque: w.Torque.Add(w.Force.Cross(d))}
}

func (w Wrench) AlmostEqual(o Wrench, eps float64) bool {
	return vecAlmostEqual(w.Force, o.Force, eps) && vecAlmostEqual(w.Torque, o.Torque, eps)
}

// Vec6 packs w as [Force; Torque].
func (w Wrench) Vec6() [6]float64 {
	return [6]float64{w.Force.X, w.Force.Y, w.Force.Z, w.Torque.X, w.Torque.Y, w.Torque.Z}
}

func WrenchFromVec6(v [6]float64) Wrench {
	return Wrench{Force: r3.Vector{X: v[0], Y: v[1], Z: v[2]}, Torque: r3.Vector{X: v[3], Y: v[4], Z: v[5]}}
}

func (w Wrench) String() string {
	return fmt.Sprintf("force=[%.4f %.4f %.4f] torque=[%.4f %.4f %.4f]",
		w.Force.X, w.Force.Y, w.Force.Z, w.Torque.X, w.Torque.Y, w.Torque.Z)
}

// Dot is the power of wrench w along twist t.
func Dot(t Twist, w Wrench) float64 {
	return t.Vel.Dot(w.Force) + t.Rot.Dot(w.Torque)
}
