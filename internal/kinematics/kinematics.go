// Package kinematics computes poses, velocities, Jacobians and accelerations of
// a chain by a single sweep from the root outward.
package kinematics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaindyn/internal/chain"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/spatial"
)

type Solver struct {
	chain    *chain.Chain
	joints   []int
	nj       int
	revision uint64
}

func NewSolver(c *chain.Chain) *Solver {
	s := &Solver{chain: c}
	s.UpdateInternalDataStructures()
	return s
}

func (s *Solver) UpdateInternalDataStructures() {
	s.joints = s.chain.JointIndices()
	s.nj = s.chain.NrOfJoints()
	s.revision = s.chain.Revision()
}

func (s *Solver) check(arrays ...dynamo.JntArray) error {
	if s.revision != s.chain.Revision() {
		return dynamo.ErrNotUpToDate
	}
	for _, a := range arrays {
		if len(a) != s.nj {
			return dynamo.ErrSizeMismatch
		}
	}
	return nil
}

func (s *Solver) at(a dynamo.JntArray, seg int) float64 {
	if j := s.joints[seg]; j >= 0 {
		return a[j]
	}
	return 0
}

// LinkFrames stores the pose of every segment tip in the base frame.
func (s *Solver) LinkFrames(q dynamo.JntArray, out []spatial.Frame) error {
	if err := s.check(q); err != nil {
		return err
	}
	if len(out) != s.chain.NrOfSegments() {
		return dynamo.ErrSizeMismatch
	}
	total := spatial.IdentityFrame()
	for i := range out {
		total = total.Mul(s.chain.Segment(i).Pose(s.at(q, i)))
		out[i] = total
	}
	return nil
}

// TipFrame is the pose of the last segment tip in the base frame.
func (s *Solver) TipFrame(q dynamo.JntArray) (spatial.Frame, error) {
	if err := s.check(q); err != nil {
		return spatial.Frame{}, err
	}
	total := spatial.IdentityFrame()
	for i := 0; i < s.chain.NrOfSegments(); i++ {
		total = total.Mul(s.chain.Segment(i).Pose(s.at(q, i)))
	}
	return total, nil
}

// LinkVelocities stores the twist of every segment tip expressed in its own
// tip frame.
func (s *Solver) LinkVelocities(q, qdot dynamo.JntArray, out []spatial.Twist) error {
	if err := s.check(q, qdot); err != nil {
		return err
	}
	if len(out) != s.chain.NrOfSegments() {
		return dynamo.ErrSizeMismatch
	}
	var v spatial.Twist
	for i := range out {
		seg := s.chain.Segment(i)
		qi := s.at(q, i)
		f := seg.Pose(qi)
		vj := f.M.InverseTwist(seg.Twist(qi, s.at(qdot, i)))
		v = f.InverseTwist(v).Add(vj)
		out[i] = v
	}
	return nil
}

// Jacobian stores the 6 x nj geometric Jacobian of the tip in jac: rows are
// [Vel; Rot] of the tip origin, expressed in the base orientation.
func (s *Solver) Jacobian(q dynamo.JntArray, jac *mat.Dense) error {
	if err := s.check(q); err != nil {
		return err
	}
	if s.nj == 0 {
		return nil
	}
	if r, c := jac.Dims(); r != 6 || c != s.nj {
		return dynamo.ErrSizeMismatch
	}
	ns := s.chain.NrOfSegments()
	frames := make([]spatial.Frame, ns)
	if err := s.LinkFrames(q, frames); err != nil {
		return err
	}
	tip := frames[ns-1].P
	parent := spatial.IdentityFrame()
	for i := 0; i < ns; i++ {
		seg := s.chain.Segment(i)
		if j := s.joints[i]; j >= 0 {
			col := parent.M.ApplyTwist(seg.Twist(q[j], 1)).RefPoint(tip.Sub(frames[i].P))
			spatial.SetTwistColumn(jac, j, col)
		}
		parent = frames[i]
	}
	return nil
}

// TipAcceleration returns the spatial acceleration of the tip origin in the
// base orientation. rootAcc is the acceleration of the base, gravity included.
func (s *Solver) TipAcceleration(q, qdot, qdd dynamo.JntArray, rootAcc spatial.Twist) (spatial.Twist, error) {
	if err := s.check(q, qdot, qdd); err != nil {
		return spatial.Twist{}, err
	}
	total := spatial.IdentityFrame()
	a := rootAcc
	var v spatial.Twist
	for i := 0; i < s.chain.NrOfSegments(); i++ {
		seg := s.chain.Segment(i)
		qi := s.at(q, i)
		f := seg.Pose(qi)
		unit := f.M.InverseTwist(seg.Twist(qi, 1))
		vj := unit.Scale(s.at(qdot, i))
		v = f.InverseTwist(v).Add(vj)
		a = f.InverseTwist(a).Add(unit.Scale(s.at(qdd, i))).Add(v.Cross(vj))
		total = total.Mul(f)
	}
	return total.M.ApplyTwist(a), nil
}
