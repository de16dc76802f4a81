package spatial

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Rotation is a proper orthonormal 3x3 matrix.
type Rotation struct {
	m Matrix3
}

func IdentityRotation() Rotation {
	return Rotation{m: Identity3()}
}

// NewRotation wraps m without checking orthonormality.
func NewRotation(m Matrix3) Rotation {
	return Rotation{m: m}
}

func RotX(angle float64) Rotation {
	s, c := math.Sincos(angle)
	return Rotation{m: Matrix3{{1, 0, 0}, {0, c, -s}, {0, s, c}}}
}

func RotY(angle float64) Rotation {
	s, c := math.Sincos(angle)
	return Rotation{m: Matrix3{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}}
}

func RotZ(angle float64) Rotation {
	s, c := math.Sincos(angle)
	return Rotation{m: Matrix3{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}}
}

// RPY composes fixed-axis rotations: roll about X, then pitch about Y, then yaw about Z.
func RPY(roll, pitch, yaw float64) Rotation {
	return RotZ(yaw).Mul(RotY(pitch)).Mul(RotX(roll))
}

// AxisAngle returns the rotation of angle radians about axis. The axis is
// normalized; a zero axis yields the identity.
func AxisAngle(axis r3.Vector, angle float64) Rotation {
	n := axis.Norm()
	if n == 0 {
		return IdentityRotation()
	}
	k := axis.Mul(1 / n)
	s, c := math.Sincos(angle)
	K := Skew(k)
	// Rodrigues: I + sin K + (1-cos) K^2
	return Rotation{m: Identity3().Add(K.Scale(s)).Add(K.Mul(K).Scale(1 - c))}
}

// RotationFromQuaternion converts a (not necessarily unit) quaternion.
func RotationFromQuaternion(q quat.Number) Rotation {
	n := quat.Abs(q)
	if n == 0 {
		return IdentityRotation()
	}
	q = quat.Scale(1/n, q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return Rotation{m: Matrix3{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	}}
}

// Quaternion returns the unit quaternion with non-negative real part.
func (r Rotation) Quaternion() quat.Number {
	m := r.m
	var q quat.Number
	tr := m.Trace()
	switch {
	case tr > 0:
		s := 2 * math.Sqrt(tr+1)
		q = quat.Number{Real: s / 4, Imag: (m[2][1] - m[1][2]) / s, Jmag: (m[0][2] - m[2][0]) / s, Kmag: (m[1][0] - m[0][1]) / s}
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := 2 * math.Sqrt(1+m[0][0]-m[1][1]-m[2][2])
		q = quat.Number{Real: (m[2][1] - m[1][2]) / s, Imag: s / 4, Jmag: (m[0][1] + m[1][0]) / s, Kmag: (m[0][2] + m[2][0]) / s}
	case m[1][1] > m[2][2]:
		s := 2 * math.Sqrt(1+m[1][1]-m[0][0]-m[2][2])
		q = quat.Number{Real: (m[0][2] - m[2][0]) / s, Imag: (m[0][1] + m[1][0]) / s, Jmag: s / 4, Kmag: (m[1][2] + m[2][1]) / s}
	default:
		s := 2 * math.Sqrt(1+m[2][2]-m[0][0]-m[1][1])
		q = quat.Number{Real: (m[1][0] - m[0][1]) / s, Imag: (m[0][2] + m[2][0]) / s, Jmag: (m[1][2] + m[2][1]) / s, Kmag: s / 4}
	}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return q
}

// RPY returns roll, pitch and yaw such that RPY(roll, pitch, yaw) reproduces r.
func (r Rotation) RPY() (roll, pitch, yaw float64) {
	m := r.m
	pitch = math.Atan2(-m[2][0], math.Hypot(m[0][0], m[1][0]))
	if math.Abs(math.Abs(pitch)-math.Pi/2) < 1e-12 {
		// gimbal lock, yaw is folded into roll
		yaw = 0
		roll = math.Copysign(1, pitch) * math.Atan2(m[0][1], m[1][1])
		return roll, pitch, yaw
	}
	yaw = math.Atan2(m[1][0], m[0][0])
	roll = math.Atan2(m[2][1], m[2][2])
	return roll, pitch, yaw
}

func (r Rotation) Matrix() Matrix3 { return r.m }

func (r Rotation) At(i, j int) float64 { return r.m[i][j] }

func (r Rotation) Mul(o Rotation) Rotation {
	return Rotation{m: r.m.Mul(o.m)}
}

func (r Rotation) Inverse() Rotation {
	return Rotation{m: r.m.T()}
}

func (r Rotation) Apply(v r3.Vector) r3.Vector {
	return r.m.MulVec(v)
}

// InverseApply rotates v by the inverse of r without forming it.
func (r Rotation) InverseApply(v r3.Vector) r3.Vector {
	return r.m.TMulVec(v)
}

func (r Rotation) ApplyTwist(t Twist) Twist {
	return Twist{Vel: r.m.MulVec(t.Vel), Rot: r.m.MulVec(t.Rot)}
}

func (r Rotation) InverseTwist(t Twist) Twist {
	return Twist{Vel: r.m.TMulVec(t.Vel), Rot: r.m.TMulVec(t.Rot)}
}

func (r Rotation) ApplyWrench(w Wrench) Wrench {
	return Wrench{Force: r.m.MulVec(w.Force), Torque: r.m.MulVec(w.Torque)}
}

func (r Rotation) InverseWrench(w Wrench) Wrench {
	return Wrench{Force: r.m.TMulVec(w.Force), Torque: r.m.TMulVec(w.Torque)}
}

func (r Rotation) AlmostEqual(o Rotation, eps float64) bool {
	return r.m.AlmostEqual(o.m, eps)
}
