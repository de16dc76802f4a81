package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaindyn/internal/chain"
	"github.com/san-kum/chaindyn/internal/dynamics"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/spatial"
)

// KineticEnergy is the mean of 0.5 qdot^T M(q) qdot over the samples.
type KineticEnergy struct {
	name    string
	rne     *dynamics.RNE
	m       *mat.SymDense
	samples int
	total   float64
	peak    float64
}

func NewKineticEnergy(c *chain.Chain) *KineticEnergy {
	e := &KineticEnergy{
		name: "kinetic_energy",
		rne:  dynamics.NewRNE(c, spatial.Twist{}),
	}
	if nj := c.NrOfJoints(); nj > 0 {
		e.m = mat.NewSymDense(nj, nil)
	}
	return e
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(s dynamo.Sample) {
	if e.m == nil || len(s.QDot) != e.m.SymmetricDim() {
		return
	}
	if err := e.rne.MassMatrix(s.Q, e.m); err != nil {
		return
	}
	qd := s.QDot.Vec()
	ke := 0.5 * mat.Inner(qd, e.m, qd)
	e.total += ke
	if ke > e.peak {
		e.peak = ke
	}
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Peak is the largest kinetic energy observed.
func (e *KineticEnergy) Peak() float64 { return e.peak }

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.peak = 0
	e.samples = 0
}
