package spatial

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Twist is a spatial velocity or acceleration.
type Twist struct {
	Vel r3.Vector
	Rot r3.Vector
}

func NewTwist(vel, rot r3.Vector) Twist {
	return Twist{Vel: vel, Rot: rot}
}

// GravityTwist returns the root acceleration that emulates the gravity field g:
// the base accelerates opposite to gravity.
func GravityTwist(g r3.Vector) Twist {
	return Twist{Vel: g.Mul(-1)}
}

func (t Twist) Add(o Twist) Twist {
	return Twist{Vel: t.Vel.Add(o.Vel), Rot: t.Rot.Add(o.Rot)}
}

func (t Twist) Sub(o Twist) Twist {
	return Twist{Vel: t.Vel.Sub(o.Vel), Rot: t.Rot.Sub(o.Rot)}
}

func (t Twist) Scale(s float64) Twist {
	return Twist{Vel: t.Vel.Mul(s), Rot: t.Rot.Mul(s)}
}

func (t Twist) Neg() Twist { return t.Scale(-1) }

// Cross is the motion cross product t x o.
func (t Twist) Cross(o Twist) Twist {
	return Twist{
		Vel: t.Rot.Cross(o.Vel).Add(t.Vel.Cross(o.Rot)),
		Rot: t.Rot.Cross(o.Rot),
	}
}

// CrossWrench is the force cross product t x* w.
func (t Twist) CrossWrench(w Wrench) Wrench {
	return Wrench{
		Force:  t.Rot.Cross(w.Force),
		Torque: t.Rot.Cross(w.Torque).Add(t.Vel.Cross(w.Force)),
	}
}

// RefPoint moves the reference point by d, expressed in the same frame.
func (t Twist) RefPoint(d r3.Vector) Twist {
	return Twist{Vel: t.Vel.Add(t.Rot.Cross(d)), Rot: t.Rot}
}

func (t Twist) IsZero() bool {
	return t.Vel == (r3.Vector{}) && t.Rot == (r3.Vector{})
}

func (t Twist) IsValid() bool {
	for _, v := range t.Vec6() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (t Twist) AlmostEqual(o Twist, eps float64) bool {
	return vecAlmostEqual(t.Vel, o.Vel, eps) && vecAlmostEqual(t.Rot, o.Rot, eps)
}

// Vec6 packs t as [Vel; Rot].
func (t Twist) Vec6() [6]float64 {
	return [6]float64{t.Vel.X, t.Vel.Y, t.Vel.Z, t.Rot.X, t.Rot.Y, t.Rot.Z}
}

func TwistFromVec6(v [6]float64) Twist {
	return Twist{Vel: r3.Vector{X: v[0], Y: v[1], Z: v[2]}, Rot: r3.Vector{X: v[3], Y: v[4], Z: v[5]}}
}

func (t Twist) String() string {
	return fmt.Sprintf("vel=[%.4f %.4f %.4f] rot=[%.4f %.4f %.4f]",
		t.Vel.X, t.Vel.Y, t.Vel.Z, t.Rot.X, t.Rot.Y, t.Rot.Z)
}
