package dynamics

import (
	"github.com/san-kum/chaindyn/internal/chain"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/spatial"
)

// RNE is the recursive Newton-Euler inverse dynamics solver.
type RNE struct {
	chain   *chain.Chain
	rootAcc spatial.Twist

	joints   []int
	nj, ns   int
	revision uint64

	x     []spatial.Frame
	s     []spatial.Twist
	v, a  []spatial.Twist
	f     []spatial.Wrench
	total spatial.Frame
}

// NewRNE returns an inverse dynamics solver for c. rootAcc is the acceleration
// of the base, see [spatial.GravityTwist].
func NewRNE(c *chain.Chain, rootAcc spatial.Twist) *RNE {
	r := &RNE{chain: c, rootAcc: rootAcc}
	r.UpdateInternalDataStructures()
	return r
}

func (r *RNE) UpdateInternalDataStructures() {
	r.joints = r.chain.JointIndices()
	r.nj = r.chain.NrOfJoints()
	r.ns = r.chain.NrOfSegments()
	r.revision = r.chain.Revision()
	r.x = make([]spatial.Frame, r.ns)
	r.s = make([]spatial.Twist, r.ns)
	r.v = make([]spatial.Twist, r.ns)
	r.a = make([]spatial.Twist, r.ns)
	r.f = make([]spatial.Wrench, r.ns)
}

func (r *RNE) check(q, qdot, qdd, torques dynamo.JntArray, fext []spatial.Wrench) error {
	if r.revision != r.chain.Revision() || r.ns != r.chain.NrOfSegments() {
		return dynamo.ErrNotUpToDate
	}
	if len(q) != r.nj || len(qdot) != r.nj || len(qdd) != r.nj || len(torques) != r.nj || len(fext) != r.ns {
		return dynamo.ErrSizeMismatch
	}
	return nil
}

// CartToJnt stores in torques the joint torques that produce qdd at state
// (q, qdot) under the external wrenches fext.
func (r *RNE) CartToJnt(q, qdot, qdd dynamo.JntArray, fext []spatial.Wrench, torques dynamo.JntArray) error {
	if err := r.check(q, qdot, qdd, torques, fext); err != nil {
		return err
	}
	r.inverse(q, qdot, qdd, fext, r.rootAcc, torques)
	return nil
}

func (r *RNE) at(a dynamo.JntArray, seg int) float64 {
	if a == nil {
		return 0
	}
	if j := r.joints[seg]; j >= 0 {
		return a[j]
	}
	return 0
}

// inverse runs the two sweeps without checks. nil qdot, qdd and fext read as
// zero.
func (r *RNE) inverse(q, qdot, qdd dynamo.JntArray, fext []spatial.Wrench, rootAcc spatial.Twist, torques dynamo.JntArray) {
	r.total = spatial.IdentityFrame()
	for i := 0; i < r.ns; i++ {
		seg := r.chain.Segment(i)
		qi := r.at(q, i)
		r.x[i] = seg.Pose(qi)
		r.total = r.total.Mul(r.x[i])
		r.s[i] = r.x[i].M.InverseTwist(seg.Twist(qi, 1))
		vj := r.s[i].Scale(r.at(qdot, i))

		parentV, parentA := spatial.Twist{}, rootAcc
		if i > 0 {
			parentV, parentA = r.v[i-1], r.a[i-1]
		}
		r.v[i] = r.x[i].InverseTwist(parentV).Add(vj)
		r.a[i] = r.x[i].InverseTwist(parentA).Add(r.s[i].Scale(r.at(qdd, i))).Add(r.v[i].Cross(vj))

		inertia := seg.Inertia
		r.f[i] = inertia.Apply(r.a[i]).Add(r.v[i].CrossWrench(inertia.Apply(r.v[i])))
		if fext != nil {
			r.f[i] = r.f[i].Sub(r.total.M.InverseWrench(fext[i]))
		}
	}

	for i := r.ns - 1; i >= 0; i-- {
		if j := r.joints[i]; j >= 0 {
			torques[j] = spatial.Dot(r.s[i], r.f[i]) + r.chain.Segment(i).Joint.Armature*r.at(qdd, i)
		}
		if i > 0 {
			r.f[i-1] = r.f[i-1].Add(r.x[i].ApplyWrench(r.f[i]))
		}
	}
}
