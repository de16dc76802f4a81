// Package linalg holds the dense linear algebra helpers shared by the solvers.
package linalg

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultTolerance is the absolute singular value floor below which a
// direction is treated as singular.
const DefaultTolerance = 1e-14

// PseudoInverse is a truncated-SVD inverse of a square matrix with reusable
// buffers. Singular values at or below max(Tolerance, RelTolerance*sigma_max)
// contribute zero.
type PseudoInverse struct {
	Tolerance    float64
	RelTolerance float64

	n    int
	svd  mat.SVD
	u, v *mat.Dense
	s    []float64
	inv  *mat.Dense
	tmp  *mat.Dense
	rank int
}

func NewPseudoInverse(n int, tol float64) *PseudoInverse {
	p := &PseudoInverse{Tolerance: tol}
	p.Resize(n)
	return p
}

// Resize reallocates the buffers for n x n matrices.
func (p *PseudoInverse) Resize(n int) {
	p.n = n
	p.rank = 0
	if n == 0 {
		p.u, p.v, p.inv, p.tmp, p.s = nil, nil, nil, nil, nil
		return
	}
	p.u = mat.NewDense(n, n, nil)
	p.v = mat.NewDense(n, n, nil)
	p.inv = mat.NewDense(n, n, nil)
	p.tmp = mat.NewDense(n, n, nil)
	p.s = make([]float64, n)
}

// Factorize computes the pseudo inverse of m.
func (p *PseudoInverse) Factorize(m mat.Matrix) error {
	r, c := m.Dims()
	if r != p.n || c != p.n {
		return errors.Errorf("linalg: matrix is %dx%d, pseudo inverse sized for %dx%d", r, c, p.n, p.n)
	}
	if !p.svd.Factorize(m, mat.SVDFull) {
		return errors.New("linalg: svd did not converge")
	}
	p.svd.UTo(p.u)
	p.svd.VTo(p.v)
	p.s = p.svd.Values(p.s)

	cut := p.Tolerance
	if len(p.s) > 0 && p.RelTolerance*p.s[0] > cut {
		cut = p.RelTolerance * p.s[0]
	}

	// tmp = V * S^+
	p.rank = 0
	for j, sigma := range p.s {
		inv := 0.0
		if sigma > cut {
			inv = 1 / sigma
			p.rank++
		}
		for i := 0; i < p.n; i++ {
			p.tmp.Set(i, j, p.v.At(i, j)*inv)
		}
	}
	p.inv.Mul(p.tmp, p.u.T())
	return nil
}

// Inverse returns the pseudo inverse from the last Factorize. The matrix is
// owned by p and overwritten by the next call.
func (p *PseudoInverse) Inverse() *mat.Dense { return p.inv }

// Rank is the number of singular values kept by the last Factorize.
func (p *PseudoInverse) Rank() int { return p.rank }

// SingularValues returns the singular values in descending order.
func (p *PseudoInverse) SingularValues() []float64 {
	out := make([]float64, len(p.s))
	copy(out, p.s)
	return out
}

// SolveVecTo stores the least-squares, minimum-norm solution of m x = b in dst.
func (p *PseudoInverse) SolveVecTo(dst *mat.VecDense, b mat.Vector) {
	dst.MulVec(p.inv, b)
}
