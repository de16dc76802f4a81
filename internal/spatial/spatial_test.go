package spatial

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

const eps = 1e-9

var (
	sampleFrame = NewFrame(RPY(0.3, -0.7, 1.1), r3.Vector{X: 0.4, Y: -1.2, Z: 0.9})
	sampleTwist = NewTwist(r3.Vector{X: 1, Y: -2, Z: 0.5}, r3.Vector{X: -0.3, Y: 0.8, Z: 1.7})
	sampleWrnch = NewWrench(r3.Vector{X: 3, Y: 0.2, Z: -1}, r3.Vector{X: 0.1, Y: -0.4, Z: 2})
	sampleBody  = NewRigidBodyInertia(2.5, r3.Vector{X: 0.1, Y: 0.3, Z: -0.2},
		NewRotationalInertia(0.2, 0.3, 0.4, 0.01, -0.02, 0.03))
)

func TestFrameInverse(t *testing.T) {
	id := sampleFrame.Mul(sampleFrame.Inverse())
	test.That(t, id.AlmostEqual(IdentityFrame(), eps), test.ShouldBeTrue)

	p := r3.Vector{X: 1, Y: 2, Z: 3}
	back := sampleFrame.Inverse().Apply(sampleFrame.Apply(p))
	test.That(t, back.X, test.ShouldAlmostEqual, p.X, eps)
	test.That(t, back.Y, test.ShouldAlmostEqual, p.Y, eps)
	test.That(t, back.Z, test.ShouldAlmostEqual, p.Z, eps)
}

func TestTwistWrenchRoundTrip(t *testing.T) {
	tw := sampleFrame.InverseTwist(sampleFrame.ApplyTwist(sampleTwist))
	test.That(t, tw.AlmostEqual(sampleTwist, eps), test.ShouldBeTrue)

	w := sampleFrame.InverseWrench(sampleFrame.ApplyWrench(sampleWrnch))
	test.That(t, w.AlmostEqual(sampleWrnch, eps), test.ShouldBeTrue)

	r := sampleFrame.M
	test.That(t, r.InverseTwist(r.ApplyTwist(sampleTwist)).AlmostEqual(sampleTwist, eps), test.ShouldBeTrue)
}

func TestPowerIsFrameInvariant(t *testing.T) {
	before := Dot(sampleTwist, sampleWrnch)
	after := Dot(sampleFrame.ApplyTwist(sampleTwist), sampleFrame.ApplyWrench(sampleWrnch))
	test.That(t, after, test.ShouldAlmostEqual, before, eps)
}

func TestCrossDuality(t *testing.T) {
	s := NewTwist(r3.Vector{X: 0.2, Y: 0.1, Z: -0.9}, r3.Vector{X: 1.3, Y: 0, Z: 0.4})
	lhs := Dot(sampleTwist.Cross(s), sampleWrnch)
	rhs := -Dot(s, sampleTwist.CrossWrench(sampleWrnch))
	test.That(t, lhs, test.ShouldAlmostEqual, rhs, eps)

	self := sampleTwist.Cross(sampleTwist)
	test.That(t, self.AlmostEqual(Twist{}, eps), test.ShouldBeTrue)
}

func TestRefPoint(t *testing.T) {
	d := r3.Vector{X: 0.5, Y: -0.5, Z: 2}
	moved := Translation(d.Mul(-1)).ApplyTwist(sampleTwist)
	test.That(t, moved.AlmostEqual(sampleTwist.RefPoint(d), eps), test.ShouldBeTrue)
}

func TestRotationConstructors(t *testing.T) {
	for _, angle := range []float64{-2.5, -0.4, 0, 0.9, 3} {
		test.That(t, AxisAngle(r3.Vector{Z: 2}, angle).AlmostEqual(RotZ(angle), eps), test.ShouldBeTrue)
		test.That(t, AxisAngle(r3.Vector{X: 1}, angle).AlmostEqual(RotX(angle), eps), test.ShouldBeTrue)
		test.That(t, AxisAngle(r3.Vector{Y: 1}, angle).AlmostEqual(RotY(angle), eps), test.ShouldBeTrue)
	}

	roll, pitch, yaw := sampleFrame.M.RPY()
	test.That(t, roll, test.ShouldAlmostEqual, 0.3, eps)
	test.That(t, pitch, test.ShouldAlmostEqual, -0.7, eps)
	test.That(t, yaw, test.ShouldAlmostEqual, 1.1, eps)
}

func TestQuaternionRoundTrip(t *testing.T) {
	for _, r := range []Rotation{
		IdentityRotation(),
		sampleFrame.M,
		RotX(math.Pi),
		RotY(math.Pi - 1e-3),
		RPY(2.9, 0.1, -2.9),
	} {
		q := r.Quaternion()
		test.That(t, quat.Abs(q), test.ShouldAlmostEqual, 1, eps)
		test.That(t, RotationFromQuaternion(q).AlmostEqual(r, 1e-8), test.ShouldBeTrue)
	}
}

func TestRigidBodyInertia(t *testing.T) {
	test.That(t, sampleBody.Mass(), test.ShouldAlmostEqual, 2.5)
	cog := sampleBody.Cog()
	test.That(t, cog.Y, test.ShouldAlmostEqual, 0.3, eps)
	test.That(t, sampleBody.CentroidalInertia().AlmostEqual(
		NewRotationalInertia(0.2, 0.3, 0.4, 0.01, -0.02, 0.03).Matrix3, eps), test.ShouldBeTrue)

	// Articulated form of a rigid body acts identically.
	abi := ArticulatedFromRigid(sampleBody)
	test.That(t, abi.Apply(sampleTwist).AlmostEqual(sampleBody.Apply(sampleTwist), eps), test.ShouldBeTrue)

	// Transforming momentum equals the momentum of the transformed body.
	moved := sampleBody.Transform(sampleFrame)
	want := sampleFrame.ApplyWrench(sampleBody.Apply(sampleFrame.InverseTwist(sampleTwist)))
	test.That(t, moved.Apply(sampleTwist).AlmostEqual(want, eps), test.ShouldBeTrue)
	test.That(t, ArticulatedFromRigid(moved).AlmostEqual(abi.Transform(sampleFrame), eps), test.ShouldBeTrue)
}

func TestRigidBodyKineticEnergyIsPositive(t *testing.T) {
	e := 0.5 * Dot(sampleTwist, sampleBody.Apply(sampleTwist))
	test.That(t, e, test.ShouldBeGreaterThan, 0)
}

func TestArticulatedRemoveAxis(t *testing.T) {
	abi := ArticulatedFromRigid(sampleBody).Transform(sampleFrame)
	z := NewTwist(r3.Vector{}, r3.Vector{Z: 1})
	pz := abi.Apply(z)
	d := Dot(z, pz)
	reduced := abi.RemoveAxis(pz, d)

	// the projected inertia offers no resistance along z
	test.That(t, reduced.Apply(z).AlmostEqual(Wrench{}, 1e-9), test.ShouldBeTrue)

	dense := reduced.Dense()
	test.That(t, mat.EqualApprox(dense, dense.T(), eps), test.ShouldBeTrue)
}

func TestDensePacking(t *testing.T) {
	m := mat.NewDense(6, 2, nil)
	SetWrenchColumn(m, 1, sampleWrnch)
	test.That(t, WrenchColumn(m, 1), test.ShouldResemble, sampleWrnch)
	test.That(t, WrenchColumn(m, 0), test.ShouldResemble, Wrench{})

	v := mat.NewVecDense(6, nil)
	PackTwist(v, sampleTwist)
	test.That(t, UnpackTwist(v), test.ShouldResemble, sampleTwist)
	test.That(t, mat.Dot(v, mat.NewVecDense(6, func() []float64 { a := sampleWrnch.Vec6(); return a[:] }())),
		test.ShouldAlmostEqual, Dot(sampleTwist, sampleWrnch), eps)
}
