package dynamics

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaindyn/internal/chain"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/kinematics"
	"github.com/san-kum/chaindyn/internal/linalg"
	"github.com/san-kum/chaindyn/internal/spatial"
)

type Option func(*DenseHybrid)

func WithLogger(l *zap.Logger) Option {
	return func(d *DenseHybrid) { d.logger = l }
}

// WithSingularValueTolerance sets the truncation floor of the constraint
// space inverse.
func WithSingularValueTolerance(tol float64) Option {
	return func(d *DenseHybrid) { d.svTol = tol }
}

// DenseHybrid is the O(n^3) counterpart of the recursive hybrid solver.
type DenseHybrid struct {
	fd  *ForwardDynamics
	kin *kinematics.Solver
	nc  int

	svTol  float64
	logger *zap.Logger

	pinv   *linalg.PseudoInverse
	jac    *mat.Dense
	jc     *mat.Dense
	minvJt *mat.Dense
	a      *mat.Dense
	rhs    *mat.VecDense
	lambda *mat.VecDense
	free   dynamo.JntArray
	zero   dynamo.JntArray
}

// NewDenseHybrid returns a dense solver for c with nc end-effector
// constraints.
func NewDenseHybrid(c *chain.Chain, rootAcc spatial.Twist, nc int, opts ...Option) *DenseHybrid {
	d := &DenseHybrid{
		fd:     NewForwardDynamics(c, rootAcc),
		kin:    kinematics.NewSolver(c),
		nc:     nc,
		svTol:  linalg.DefaultTolerance,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.UpdateInternalDataStructures()
	return d
}

func (d *DenseHybrid) UpdateInternalDataStructures() {
	d.fd.UpdateInternalDataStructures()
	d.kin.UpdateInternalDataStructures()
	nj := d.fd.rne.nj
	d.free = dynamo.NewJntArray(nj)
	d.zero = dynamo.NewJntArray(nj)
	d.pinv = linalg.NewPseudoInverse(d.nc, d.svTol)
	d.jac, d.jc, d.minvJt, d.a, d.rhs, d.lambda = nil, nil, nil, nil, nil, nil
	if nj == 0 || d.nc == 0 {
		return
	}
	d.jac = mat.NewDense(6, nj, nil)
	d.jc = mat.NewDense(d.nc, nj, nil)
	d.minvJt = mat.NewDense(nj, d.nc, nil)
	d.a = mat.NewDense(d.nc, d.nc, nil)
	d.rhs = mat.NewVecDense(d.nc, nil)
	d.lambda = mat.NewVecDense(d.nc, nil)
}

func (d *DenseHybrid) CartToJnt(q, qdot, qdd dynamo.JntArray, alfa *mat.Dense, beta dynamo.JntArray, fext []spatial.Wrench, torques dynamo.JntArray) error {
	if err := d.fd.rne.check(q, qdot, qdd, torques, fext); err != nil {
		return err
	}
	if err := checkConstraints(alfa, beta, d.nc); err != nil {
		return err
	}
	if err := d.fd.JntToJnt(q, qdot, torques, fext, d.free); err != nil {
		return errors.Wrap(err, "unconstrained forward dynamics")
	}
	copy(qdd, d.free)
	torques.SetZero()
	if d.nc == 0 || d.fd.rne.nj == 0 {
		return nil
	}

	// Jc = alfa^T J, a0 is the tip acceleration at qdd = 0
	if err := d.kin.Jacobian(q, d.jac); err != nil {
		return err
	}
	d.jc.Mul(alfa.T(), d.jac)
	a0, err := d.kin.TipAcceleration(q, qdot, d.zero, d.fd.rne.rootAcc)
	if err != nil {
		return err
	}

	// A = Jc M^-1 Jc^T, fd still holds the factorization at q
	if err := d.fd.chol.SolveTo(d.minvJt, d.jc.T()); err != nil {
		return errors.Wrap(dynamo.ErrSingular, err.Error())
	}
	d.a.Mul(d.jc, d.minvJt)

	a0v := mat.NewVecDense(6, nil)
	spatial.PackTwist(a0v, a0)
	d.rhs.MulVec(alfa.T(), a0v)
	var jq mat.VecDense
	jq.MulVec(d.jc, d.free.Vec())
	d.rhs.AddVec(d.rhs, &jq)
	d.rhs.SubVec(beta.Vec(), d.rhs)

	if err := d.pinv.Factorize(d.a); err != nil {
		return errors.Wrap(dynamo.ErrSVDFailed, err.Error())
	}
	if r := d.pinv.Rank(); r < d.nc {
		d.logger.Debug("constraint space is rank deficient", zap.Int("rank", r), zap.Int("nc", d.nc))
	}
	d.pinv.SolveVecTo(d.lambda, d.rhs)

	var dq mat.VecDense
	dq.MulVec(d.minvJt, d.lambda)
	var tc mat.VecDense
	tc.MulVec(d.jc.T(), d.lambda)
	for j := range qdd {
		qdd[j] += dq.AtVec(j)
		torques[j] = tc.AtVec(j)
	}
	return nil
}

// Lambda returns the constraint force magnitudes of the last solve.
func (d *DenseHybrid) Lambda() []float64 {
	if d.lambda == nil {
		return nil
	}
	out := make([]float64, d.nc)
	copy(out, d.lambda.RawVector().Data)
	return out
}

// checkConstraints validates alfa (6 x nc) and beta (nc). alfa may be nil when
// nc is zero.
func checkConstraints(alfa *mat.Dense, beta dynamo.JntArray, nc int) error {
	cols := 0
	if alfa != nil {
		r, c := alfa.Dims()
		if r != 6 {
			return dynamo.ErrConstraintSizeMismatch
		}
		cols = c
	}
	if cols != nc || len(beta) != nc {
		return dynamo.ErrConstraintSizeMismatch
	}
	return nil
}
