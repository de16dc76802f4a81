package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaindyn/internal/dynamo"
)

// ConstraintResidual is the largest |alfa^T a_tip - beta| seen over the
// samples. It is zero for an unconstrained sweep.
type ConstraintResidual struct {
	name  string
	cols  [][]float64
	beta  []float64
	worst float64
}

// NewConstraintResidual copies alfa (6 x nc, may be nil) and beta.
func NewConstraintResidual(alfa *mat.Dense, beta []float64) *ConstraintResidual {
	r := &ConstraintResidual{name: "constraint_residual", beta: append([]float64(nil), beta...)}
	if alfa != nil {
		_, nc := alfa.Dims()
		for k := 0; k < nc; k++ {
			r.cols = append(r.cols, mat.Col(nil, k, alfa))
		}
	}
	return r
}

func (r *ConstraintResidual) Name() string { return r.name }

func (r *ConstraintResidual) Observe(s dynamo.Sample) {
	tip := s.Tip.Vec6()
	for k, col := range r.cols {
		res := math.Abs(floats.Dot(col, tip[:]) - r.beta[k])
		if math.IsNaN(res) || res > r.worst {
			r.worst = res
		}
	}
}

func (r *ConstraintResidual) Value() float64 { return r.worst }

func (r *ConstraintResidual) Reset() { r.worst = 0 }
