package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/chaindyn/internal/dynamo"
)

// TorqueEffort is the mean Euclidean norm of the total joint torque, applied
// plus constraint.
type TorqueEffort struct {
	name    string
	sum     float64
	samples int
	buf     []float64
}

func NewTorqueEffort() *TorqueEffort {
	return &TorqueEffort{
		name: "torque_effort",
	}
}

func (e *TorqueEffort) Name() string {
	return e.name
}

func (e *TorqueEffort) Observe(s dynamo.Sample) {
	n := len(s.Torques)
	if len(e.buf) != n {
		e.buf = make([]float64, n)
	}
	copy(e.buf, s.Torques)
	if len(s.Applied) == n {
		floats.Add(e.buf, s.Applied)
	}
	e.sum += floats.Norm(e.buf, 2)
	e.samples++
}

func (e *TorqueEffort) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *TorqueEffort) Reset() {
	e.sum = 0
	e.samples = 0
}
