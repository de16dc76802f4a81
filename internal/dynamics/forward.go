package dynamics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaindyn/internal/chain"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/spatial"
)

// MassMatrix stores the joint-space inertia of the chain at q in m, one RNE
// call per column. m must be nj x nj.
func (r *RNE) MassMatrix(q dynamo.JntArray, m *mat.SymDense) error {
	if r.revision != r.chain.Revision() || r.ns != r.chain.NrOfSegments() {
		return dynamo.ErrNotUpToDate
	}
	if len(q) != r.nj || m.SymmetricDim() != r.nj {
		return dynamo.ErrSizeMismatch
	}
	e := dynamo.NewJntArray(r.nj)
	col := dynamo.NewJntArray(r.nj)
	for k := 0; k < r.nj; k++ {
		e.SetZero()
		e[k] = 1
		r.inverse(q, nil, e, nil, spatial.Twist{}, col)
		for i := 0; i <= k; i++ {
			m.SetSym(i, k, col[i])
		}
	}
	return nil
}

// Bias stores the torques needed to hold qdd = 0: gravity, velocity products
// and external wrenches.
func (r *RNE) Bias(q, qdot dynamo.JntArray, fext []spatial.Wrench, out dynamo.JntArray) error {
	if err := r.check(q, qdot, out, out, fext); err != nil {
		return err
	}
	r.inverse(q, qdot, nil, fext, r.rootAcc, out)
	return nil
}

// ForwardDynamics solves M qdd = tau - b with a Cholesky factorization of the
// mass matrix.
type ForwardDynamics struct {
	rne  *RNE
	m    *mat.SymDense
	chol mat.Cholesky
	bias dynamo.JntArray
	rhs  dynamo.JntArray
}

func NewForwardDynamics(c *chain.Chain, rootAcc spatial.Twist) *ForwardDynamics {
	fd := &ForwardDynamics{rne: NewRNE(c, rootAcc)}
	fd.UpdateInternalDataStructures()
	return fd
}

func (fd *ForwardDynamics) UpdateInternalDataStructures() {
	fd.rne.UpdateInternalDataStructures()
	nj := fd.rne.nj
	fd.m = nil
	if nj > 0 {
		fd.m = mat.NewSymDense(nj, nil)
	}
	fd.bias = dynamo.NewJntArray(nj)
	fd.rhs = dynamo.NewJntArray(nj)
}

func (fd *ForwardDynamics) JntToJnt(q, qdot, torques dynamo.JntArray, fext []spatial.Wrench, qdd dynamo.JntArray) error {
	if err := fd.rne.check(q, qdot, qdd, torques, fext); err != nil {
		return err
	}
	if fd.rne.nj == 0 {
		return nil
	}
	if err := fd.factorize(q); err != nil {
		return err
	}
	fd.rne.inverse(q, qdot, nil, fext, fd.rne.rootAcc, fd.bias)
	for i := range fd.rhs {
		fd.rhs[i] = torques[i] - fd.bias[i]
	}
	return fd.chol.SolveVecTo(qdd.Vec(), fd.rhs.Vec())
}

func (fd *ForwardDynamics) factorize(q dynamo.JntArray) error {
	if err := fd.rne.MassMatrix(q, fd.m); err != nil {
		return err
	}
	if ok := fd.chol.Factorize(fd.m); !ok {
		return dynamo.ErrSingular
	}
	return nil
}
