package spatial

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Frame is a rigid transform: the orientation M and origin P of a child frame
// expressed in its parent.
type Frame struct {
	M Rotation
	P r3.Vector
}

func IdentityFrame() Frame {
	return Frame{M: IdentityRotation()}
}

func NewFrame(m Rotation, p r3.Vector) Frame {
	return Frame{M: m, P: p}
}

func Translation(p r3.Vector) Frame {
	return Frame{M: IdentityRotation(), P: p}
}

// Mul composes f and o so that f.Mul(o).Apply(x) == f.Apply(o.Apply(x)).
func (f Frame) Mul(o Frame) Frame {
	return Frame{M: f.M.Mul(o.M), P: f.M.Apply(o.P).Add(f.P)}
}

func (f Frame) Inverse() Frame {
	inv := f.M.Inverse()
	return Frame{M: inv, P: inv.Apply(f.P).Mul(-1)}
}

// Apply maps a point from the child to the parent frame.
func (f Frame) Apply(v r3.Vector) r3.Vector {
	return f.M.Apply(v).Add(f.P)
}

// ApplyTwist re-expresses t, given in the child frame, in the parent frame.
func (f Frame) ApplyTwist(t Twist) Twist {
	rot := f.M.Apply(t.Rot)
	return Twist{Vel: f.M.Apply(t.Vel).Add(f.P.Cross(rot)), Rot: rot}
}

// InverseTwist re-expresses t, given in the parent frame, in the child frame.
func (f Frame) InverseTwist(t Twist) Twist {
	return Twist{
		Vel: f.M.InverseApply(t.Vel.Sub(f.P.Cross(t.Rot))),
		Rot: f.M.InverseApply(t.Rot),
	}
}

func (f Frame) ApplyWrench(w Wrench) Wrench {
	force := f.M.Apply(w.Force)
	return Wrench{Force: force, Torque: f.M.Apply(w.Torque).Add(f.P.Cross(force))}
}

func (f Frame) InverseWrench(w Wrench) Wrench {
	return Wrench{
		Force:  f.M.InverseApply(w.Force),
		Torque: f.M.InverseApply(w.Torque.Sub(f.P.Cross(w.Force))),
	}
}

func (f Frame) AlmostEqual(o Frame, eps float64) bool {
	return f.M.AlmostEqual(o.M, eps) && vecAlmostEqual(f.P, o.P, eps)
}

func (f Frame) String() string {
	roll, pitch, yaw := f.M.RPY()
	return fmt.Sprintf("xyz=[%.4f %.4f %.4f] rpy=[%.4f %.4f %.4f]", f.P.X, f.P.Y, f.P.Z, roll, pitch, yaw)
}

func vecAlmostEqual(a, b r3.Vector, eps float64) bool {
	d := a.Sub(b)
	return d.X <= eps && d.X >= -eps && d.Y <= eps && d.Y >= -eps && d.Z <= eps && d.Z >= -eps
}
