package hybrid

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/spatial"
)

// TransformedLinkAccelerations stores the spatial acceleration of every
// segment tip, expressed in the base orientation, from the last CartToJnt.
// out must have NrOfSegments+1 entries; entry 0 is the root acceleration.
func (v *Vereshchagin) TransformedLinkAccelerations(out []spatial.Twist) error {
	if len(out) != v.ns+1 {
		return dynamo.ErrSizeMismatch
	}
	out[0] = v.rootAcc
	for i := 1; i <= v.ns; i++ {
		s := &v.results[i]
		out[i] = s.FBase.M.ApplyTwist(s.Acc)
	}
	return nil
}

// LinkCartesianPoses stores the base pose of every segment tip.
func (v *Vereshchagin) LinkCartesianPoses(out []spatial.Frame) error {
	if len(out) != v.ns {
		return dynamo.ErrSizeMismatch
	}
	for i := range out {
		out[i] = v.results[i+1].FBase
	}
	return nil
}

// LinkCartesianTwists stores the twist of every segment tip in the base
// orientation.
func (v *Vereshchagin) LinkCartesianTwists(out []spatial.Twist) error {
	if len(out) != v.ns {
		return dynamo.ErrSizeMismatch
	}
	for i := range out {
		s := &v.results[i+1]
		out[i] = s.FBase.M.ApplyTwist(s.V)
	}
	return nil
}

// ConstraintMagnitudes returns the constraint force magnitudes nu.
func (v *Vereshchagin) ConstraintMagnitudes() []float64 {
	out := make([]float64, v.nc)
	for i := range out {
		out[i] = v.nu.AtVec(i)
	}
	return out
}

// RootAccelerationEnergy returns a copy of the nc x nc root matrix M0, or nil
// without constraints.
func (v *Vereshchagin) RootAccelerationEnergy() *mat.Dense {
	if v.nc == 0 {
		return nil
	}
	return mat.DenseCopyOf(v.results[0].M)
}

// ConstraintRank is the number of independent constraint directions found by
// the last solve.
func (v *Vereshchagin) ConstraintRank() int { return v.pinv.Rank() }

// DegenerateJoints lists the joints locked by the last solve because the
// articulated inertia about their axis vanished.
func (v *Vereshchagin) DegenerateJoints() []int {
	out := make([]int, len(v.locked))
	copy(out, v.locked)
	return out
}

// Contribution splits a joint acceleration into its sources.
type Contribution struct {
	Joint      int
	Locked     bool
	Nullspace  float64 // applied torque and bias forces
	Constraint float64
	Parent     float64 // motion of the parent link
	Bias       float64 // part of Nullspace due to bias forces alone
	Torque     float64 // constraint torque
	D          float64 // articulated inertia about the axis
}

// Contributions reports the per-joint breakdown of the last solve.
func (v *Vereshchagin) Contributions() []Contribution {
	out := make([]Contribution, 0, v.nj)
	for i := 1; i <= v.ns; i++ {
		j := v.joints[i-1]
		if j < 0 {
			continue
		}
		s := &v.results[i]
		out = append(out, Contribution{
			Joint:      j,
			Locked:     s.locked,
			Nullspace:  s.nullspaceAccComp,
			Constraint: s.constAccComp,
			Parent:     s.parentAccComp,
			Bias:       s.biasAccComp,
			Torque:     s.constraintTorque,
			D:          s.D,
		})
	}
	return out
}
