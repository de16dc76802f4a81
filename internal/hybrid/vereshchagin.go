package hybrid

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaindyn/internal/chain"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/linalg"
	"github.com/san-kum/chaindyn/internal/spatial"
)

var _ dynamo.HybridSolver = (*Vereshchagin)(nil)

// Vereshchagin is the linear-time hybrid dynamics solver. It holds c by
// reference; after modifying c call UpdateInternalDataStructures.
type Vereshchagin struct {
	chain   *chain.Chain
	rootAcc spatial.Twist
	nc      int

	ns, nj   int
	joints   []int
	revision uint64

	results []segmentInfo
	fTotal  spatial.Frame
	pinv    *linalg.PseudoInverse
	nu      *mat.VecDense
	nuSum   *mat.VecDense
	w6      *mat.VecDense

	svTol    float64
	svRelTol float64
	axisTol  float64
	logger   *zap.Logger

	locked []int
}

// NewVereshchagin returns a solver for c with nc end-effector constraints.
// rootAcc is the acceleration of the base, gravity included.
func NewVereshchagin(c *chain.Chain, rootAcc spatial.Twist, nc int, opts ...Option) *Vereshchagin {
	v := &Vereshchagin{
		chain:   c,
		rootAcc: rootAcc,
		nc:      nc,
		svTol:   linalg.DefaultTolerance,
		axisTol: DefaultAxisInertiaTolerance,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.pinv = linalg.NewPseudoInverse(nc, v.svTol)
	v.pinv.RelTolerance = v.svRelTol
	v.w6 = mat.NewVecDense(6, nil)
	if nc > 0 {
		v.nu = mat.NewVecDense(nc, nil)
		v.nuSum = mat.NewVecDense(nc, nil)
	}
	v.UpdateInternalDataStructures()
	return v
}

// UpdateInternalDataStructures resizes the working state to the current chain.
func (v *Vereshchagin) UpdateInternalDataStructures() {
	v.ns = v.chain.NrOfSegments()
	v.nj = v.chain.NrOfJoints()
	v.joints = v.chain.JointIndices()
	v.revision = v.chain.Revision()
	if len(v.results) != v.ns+1 {
		v.results = make([]segmentInfo, v.ns+1)
		for i := range v.results {
			v.results[i] = newSegmentInfo(v.nc)
		}
	}
	v.results[0].Acc = v.rootAcc
	v.fTotal = spatial.IdentityFrame()
	v.locked = v.locked[:0]
}

// NrOfConstraints is the constraint count fixed at construction.
func (v *Vereshchagin) NrOfConstraints() int { return v.nc }

// RootAcceleration is the base acceleration, gravity included.
func (v *Vereshchagin) RootAcceleration() spatial.Twist { return v.rootAcc }

// CartToJnt computes the joint accelerations qdd under the applied joint
// torques, the external wrenches fext and the constraints alfa^T a_ee = beta.
// On return torques holds the joint torques exerted by the constraint forces.
// alfa may be nil when the solver has no constraints.
func (v *Vereshchagin) CartToJnt(q, qdot, qdd dynamo.JntArray, alfa *mat.Dense, beta dynamo.JntArray, fext []spatial.Wrench, torques dynamo.JntArray) error {
	if err := v.validate(q, qdot, qdd, alfa, beta, fext, torques); err != nil {
		return err
	}
	v.initialUpwardSweep(q, qdot, fext)
	v.downwardSweep(alfa, torques)
	if err := v.constraintCalculation(beta); err != nil {
		return err
	}
	v.finalUpwardSweep(qdd, torques)
	return nil
}

func (v *Vereshchagin) validate(q, qdot, qdd dynamo.JntArray, alfa *mat.Dense, beta dynamo.JntArray, fext []spatial.Wrench, torques dynamo.JntArray) error {
	if v.ns != v.chain.NrOfSegments() || v.revision != v.chain.Revision() {
		return dynamo.ErrNotUpToDate
	}
	var err error
	for _, a := range []struct {
		name string
		n    int
	}{{"q", len(q)}, {"qdot", len(qdot)}, {"qdd", len(qdd)}, {"torques", len(torques)}} {
		if a.n != v.nj {
			err = multierr.Append(err, errors.Wrapf(dynamo.ErrSizeMismatch, "%s has %d entries, want %d", a.name, a.n, v.nj))
		}
	}
	if len(fext) != v.ns {
		err = multierr.Append(err, errors.Wrapf(dynamo.ErrSizeMismatch, "fext has %d entries, want %d", len(fext), v.ns))
	}
	rows, cols := 6, 0
	if alfa != nil {
		rows, cols = alfa.Dims()
	}
	if rows != 6 || cols != v.nc {
		err = multierr.Append(err, errors.Wrapf(dynamo.ErrConstraintSizeMismatch, "alfa is %dx%d, want 6x%d", rows, cols, v.nc))
	}
	if len(beta) != v.nc {
		err = multierr.Append(err, errors.Wrapf(dynamo.ErrConstraintSizeMismatch, "beta has %d entries, want %d", len(beta), v.nc))
	}
	return err
}

// initialUpwardSweep computes poses, velocities and bias terms from the base
// outward.
func (v *Vereshchagin) initialUpwardSweep(q, qdot dynamo.JntArray, fext []spatial.Wrench) {
	v.fTotal = spatial.IdentityFrame()
	for i := 0; i < v.ns; i++ {
		seg := v.chain.Segment(i)
		s := &v.results[i+1]
		qi, qdi := 0.0, 0.0
		if j := v.joints[i]; j >= 0 {
			qi, qdi = q[j], qdot[j]
		}

		s.F = seg.Pose(qi)
		v.fTotal = v.fTotal.Mul(s.F)
		s.FBase = v.fTotal

		unit := s.F.M.InverseTwist(seg.Twist(qi, 1))
		vj := unit.Scale(qdi)
		s.Z = s.F.ApplyTwist(unit)
		s.V = s.F.InverseTwist(v.results[i].V).Add(vj)
		s.C = s.F.ApplyTwist(s.V.Cross(vj))

		s.H = spatial.ArticulatedFromRigid(seg.Inertia)
		s.U = s.V.CrossWrench(seg.Inertia.Apply(s.V)).Sub(v.fTotal.M.InverseWrench(fext[i]))
	}
}

// downwardSweep computes the articulated inertias and bias forces and projects
// the constraint forces from the tip inward.
func (v *Vereshchagin) downwardSweep(alfa *mat.Dense, torques dynamo.JntArray) {
	v.locked = v.locked[:0]
	for i := v.ns; i >= 0; i-- {
		s := &v.results[i]
		if i == v.ns {
			s.PTilde = s.H
			s.RTilde = s.U
			if v.nc > 0 {
				for c := 0; c < v.nc; c++ {
					spatial.SetWrenchColumn(s.ETilde, c, v.fTotal.M.InverseWrench(spatial.WrenchColumn(alfa, c)))
				}
				s.M.Zero()
				s.G.Zero()
			}
		} else {
			child := &v.results[i+1]
			s.PTilde = s.H.Add(child.P)
			s.RTilde = s.U.Add(child.R).Add(child.PC)
			childAcc := child.C
			if child.projected {
				s.PTilde = s.PTilde.RemoveAxis(child.PZ, child.D)
				s.RTilde = s.RTilde.Add(child.PZ.Scale(child.u / child.D))
				childAcc = childAcc.Add(child.Z.Scale(child.u / child.D))
			}
			if v.nc > 0 {
				v.projectConstraints(s, child, childAcc)
			}
		}
		if i == 0 {
			break
		}

		s.P = s.PTilde.Transform(s.F)
		s.R = s.F.ApplyWrench(s.RTilde)
		if v.nc > 0 {
			for c := 0; c < v.nc; c++ {
				spatial.SetWrenchColumn(s.E, c, s.F.ApplyWrench(spatial.WrenchColumn(s.ETilde, c)))
			}
			spatial.PackTwist(v.w6, s.Z)
			s.EZ.MulVec(s.E.T(), v.w6)
		}
		s.PZ = s.P.Apply(s.Z)
		s.PC = s.P.Apply(s.C)
		s.D = spatial.Dot(s.Z, s.PZ)
		s.totalBias = -spatial.Dot(s.Z, s.R.Add(s.PC))
		s.u = 0
		s.projected = false
		s.locked = false

		j := v.joints[i-1]
		if j < 0 {
			continue
		}
		joint := v.chain.Segment(i - 1).Joint
		s.D += joint.Armature
		s.u = torques[j] + s.totalBias
		if math.Abs(s.D) > v.axisTol {
			s.projected = true
			continue
		}
		s.locked = true
		v.locked = append(v.locked, j)
		v.logger.Warn("joint axis carries no articulated inertia, locking it",
			zap.Int("segment", i-1),
			zap.String("joint", joint.Name),
			zap.Int("joint_index", j),
			zap.Float64("d", s.D),
		)
	}
}

// projectConstraints carries the constraint data of child across its joint.
func (v *Vereshchagin) projectConstraints(s, child *segmentInfo, childAcc spatial.Twist) {
	if child.projected {
		spatial.PackWrench(v.w6, child.PZ)
		s.ETilde.RankOne(child.E, -1/child.D, v.w6, child.EZ)
		s.M.RankOne(child.M, -1/child.D, child.EZ, child.EZ)
	} else {
		s.ETilde.Copy(child.E)
		s.M.Copy(child.M)
	}
	spatial.PackTwist(v.w6, childAcc)
	s.G.MulVec(child.E.T(), v.w6)
	s.G.AddVec(s.G, child.G)
}

// constraintCalculation solves M0 nu = beta - E0~^T a_root - G0 for the
// constraint force magnitudes.
func (v *Vereshchagin) constraintCalculation(beta dynamo.JntArray) error {
	if v.nc == 0 {
		return nil
	}
	root := &v.results[0]
	if err := v.pinv.Factorize(root.M); err != nil {
		return errors.Wrap(dynamo.ErrSVDFailed, err.Error())
	}
	if r := v.pinv.Rank(); r < v.nc {
		v.logger.Debug("root acceleration energy matrix is rank deficient",
			zap.Int("rank", r),
			zap.Int("nc", v.nc),
			zap.Float64s("singular_values", v.pinv.SingularValues()),
		)
	}
	spatial.PackTwist(v.w6, v.rootAcc)
	v.nuSum.MulVec(root.ETilde.T(), v.w6)
	v.nuSum.AddVec(v.nuSum, root.G)
	v.nuSum.SubVec(beta.Vec(), v.nuSum)
	v.pinv.SolveVecTo(v.nu, v.nuSum)
	return nil
}

// finalUpwardSweep computes joint and link accelerations and the constraint
// torques from the base outward.
func (v *Vereshchagin) finalUpwardSweep(qdd, torques dynamo.JntArray) {
	v.results[0].Acc = v.rootAcc
	for i := 1; i <= v.ns; i++ {
		s := &v.results[i]
		parentAcc := v.results[i-1].Acc

		s.constraintTorque = 0
		if v.nc > 0 {
			v.w6.MulVec(s.E, v.nu)
			s.constraintTorque = -spatial.Dot(s.Z, spatial.UnpackWrench(v.w6))
		}

		s.parentAccComp, s.constAccComp, s.nullspaceAccComp, s.biasAccComp = 0, 0, 0, 0
		acc := 0.0
		if s.projected {
			s.parentAccComp = -spatial.Dot(s.Z, s.P.Apply(parentAcc)) / s.D
			s.constAccComp = s.constraintTorque / s.D
			s.nullspaceAccComp = s.u / s.D
			s.biasAccComp = s.totalBias / s.D
			acc = s.nullspaceAccComp + s.constAccComp + s.parentAccComp
		}
		if j := v.joints[i-1]; j >= 0 {
			qdd[j] = acc
			torques[j] = s.constraintTorque
		}
		s.Acc = s.F.InverseTwist(parentAcc.Add(s.Z.Scale(acc)).Add(s.C))
	}
}
