package spatial

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// RotationalInertia is a symmetric 3x3 inertia tensor.
type RotationalInertia struct {
	Matrix3
}

func NewRotationalInertia(ixx, iyy, izz, ixy, ixz, iyz float64) RotationalInertia {
	return RotationalInertia{Matrix3{
		{ixx, ixy, ixz},
		{ixy, iyy, iyz},
		{ixz, iyz, izz},
	}}
}

// RigidBodyInertia holds the mass m, first moment h = m*cog and rotational
// inertia I of a body, all about the origin of the frame they are expressed in.
type RigidBodyInertia struct {
	m float64
	h r3.Vector
	i Matrix3
}

// NewRigidBodyInertia builds the inertia of a body of mass m whose centre of
// mass sits at cog and whose rotational inertia about the cog is ic.
func NewRigidBodyInertia(m float64, cog r3.Vector, ic RotationalInertia) RigidBodyInertia {
	return RigidBodyInertia{
		m: m,
		h: cog.Mul(m),
		i: ic.Matrix3.Add(parallelAxis(m, cog)),
	}
}

// parallelAxis returns m(|c|^2 I - c c^T).
func parallelAxis(m float64, c r3.Vector) Matrix3 {
	return Identity3().Scale(c.Norm2()).Sub(Outer(c, c)).Scale(m)
}

func (rb RigidBodyInertia) Mass() float64 { return rb.m }

// Cog returns the centre of mass, or the origin for a massless body.
func (rb RigidBodyInertia) Cog() r3.Vector {
	if rb.m == 0 {
		return r3.Vector{}
	}
	return rb.h.Mul(1 / rb.m)
}

func (rb RigidBodyInertia) FirstMoment() r3.Vector { return rb.h }

// RefInertia is the rotational inertia about the frame origin.
func (rb RigidBodyInertia) RefInertia() RotationalInertia {
	return RotationalInertia{rb.i}
}

// CentroidalInertia is the rotational inertia about the centre of mass.
func (rb RigidBodyInertia) CentroidalInertia() RotationalInertia {
	return RotationalInertia{rb.i.Sub(parallelAxis(rb.m, rb.Cog()))}
}

// Apply returns the momentum wrench of the body moving with twist t.
func (rb RigidBodyInertia) Apply(t Twist) Wrench {
	return Wrench{
		Force:  t.Vel.Mul(rb.m).Sub(rb.h.Cross(t.Rot)),
		Torque: rb.i.MulVec(t.Rot).Add(rb.h.Cross(t.Vel)),
	}
}

func (rb RigidBodyInertia) Add(o RigidBodyInertia) RigidBodyInertia {
	return RigidBodyInertia{m: rb.m + o.m, h: rb.h.Add(o.h), i: rb.i.Add(o.i)}
}

// Transform re-expresses the inertia, given in the child frame of f, in its
// parent frame.
func (rb RigidBodyInertia) Transform(f Frame) RigidBodyInertia {
	R := f.M.Matrix()
	ic := R.Mul(rb.CentroidalInertia().Matrix3).Mul(R.T())
	return NewRigidBodyInertia(rb.m, f.Apply(rb.Cog()), RotationalInertia{ic})
}

// ArticulatedBodyInertia is a symmetric 6x6 operator from twists to wrenches,
// stored as the blocks of [[M, H^T], [H, I]] acting on [Vel; Rot].
type ArticulatedBodyInertia struct {
	M Matrix3
	H Matrix3
	I Matrix3
}

func ArticulatedFromRigid(rb RigidBodyInertia) ArticulatedBodyInertia {
	return ArticulatedBodyInertia{
		M: Identity3().Scale(rb.m),
		H: Skew(rb.h),
		I: rb.i,
	}
}

func (a ArticulatedBodyInertia) Apply(t Twist) Wrench {
	return Wrench{
		Force:  a.M.MulVec(t.Vel).Add(a.H.TMulVec(t.Rot)),
		Torque: a.H.MulVec(t.Vel).Add(a.I.MulVec(t.Rot)),
	}
}

func (a ArticulatedBodyInertia) Add(o ArticulatedBodyInertia) ArticulatedBodyInertia {
	return ArticulatedBodyInertia{M: a.M.Add(o.M), H: a.H.Add(o.H), I: a.I.Add(o.I)}
}

func (a ArticulatedBodyInertia) Sub(o ArticulatedBodyInertia) ArticulatedBodyInertia {
	return ArticulatedBodyInertia{M: a.M.Sub(o.M), H: a.H.Sub(o.H), I: a.I.Sub(o.I)}
}

func (a ArticulatedBodyInertia) AddRigid(rb RigidBodyInertia) ArticulatedBodyInertia {
	return a.Add(ArticulatedFromRigid(rb))
}

// RemoveAxis subtracts the rank-one term pz pz^T / d.
func (a ArticulatedBodyInertia) RemoveAxis(pz Wrench, d float64) ArticulatedBodyInertia {
	s := 1 / d
	return ArticulatedBodyInertia{
		M: a.M.Sub(Outer(pz.Force, pz.Force).Scale(s)),
		H: a.H.Sub(Outer(pz.Torque, pz.Force).Scale(s)),
		I: a.I.Sub(Outer(pz.Torque, pz.Torque).Scale(s)),
	}
}

// Transform re-expresses the inertia, given in the child frame of f, in its
// parent frame: the result maps t to f * (a * f^-1(t)).
func (a ArticulatedBodyInertia) Transform(f Frame) ArticulatedBodyInertia {
	var out ArticulatedBodyInertia
	for k := 0; k < 6; k++ {
		var e [6]float64
		e[k] = 1
		w := f.ApplyWrench(a.Apply(f.InverseTwist(TwistFromVec6(e))))
		if k < 3 {
			setCol(&out.M, k, w.Force)
			setCol(&out.H, k, w.Torque)
		} else {
			// the force part is H^T, already covered by the first three columns
			setCol(&out.I, k-3, w.Torque)
		}
	}
	return out
}

func setCol(m *Matrix3, j int, v r3.Vector) {
	m[0][j], m[1][j], m[2][j] = v.X, v.Y, v.Z
}

// Dense returns the full 6x6 matrix.
func (a ArticulatedBodyInertia) Dense() *mat.Dense {
	d := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, a.M[i][j])
			d.Set(i, j+3, a.H[j][i])
			d.Set(i+3, j, a.H[i][j])
			d.Set(i+3, j+3, a.I[i][j])
		}
	}
	return d
}

func (a ArticulatedBodyInertia) AlmostEqual(o ArticulatedBodyInertia, eps float64) bool {
	return a.M.AlmostEqual(o.M, eps) && a.H.AlmostEqual(o.H, eps) && a.I.AlmostEqual(o.I, eps)
}
