package dynamo

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaindyn/internal/spatial"
)

// JntArray is a joint-space vector indexed by movable joint.
type JntArray []float64

func NewJntArray(n int) JntArray {
	return make(JntArray, n)
}

func (a JntArray) Clone() JntArray {
	c := make(JntArray, len(a))
	copy(c, a)
	return c
}

func (a JntArray) IsValid() bool {
	for _, v := range a {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (a JntArray) Norm() float64 {
	sum := 0.0
	for _, v := range a {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (a JntArray) SetZero() {
	for i := range a {
		a[i] = 0
	}
}

func (a JntArray) Sub(other JntArray) JntArray {
	result := make(JntArray, len(a))
	for i := range a {
		if i < len(other) {
			result[i] = a[i] - other[i]
		} else {
			result[i] = a[i]
		}
	}
	return result
}

// Vec views a as a gonum vector sharing its storage. a must not be empty.
func (a JntArray) Vec() *mat.VecDense {
	return mat.NewVecDense(len(a), a)
}

type Solver interface {
	// UpdateInternalDataStructures resizes the solver buffers after the chain
	// was modified.
	UpdateInternalDataStructures()
}

// HybridSolver computes joint accelerations of a chain whose end-effector is
// constrained in acceleration: alfa^T a_ee = beta. torques holds the applied
// joint torques on input and the constraint torques on output.
type HybridSolver interface {
	Solver
	CartToJnt(q, qdot, qdd JntArray, alfa *mat.Dense, beta JntArray, fext []spatial.Wrench, torques JntArray) error
}

// InverseDynamicsSolver computes the joint torques producing qdd.
type InverseDynamicsSolver interface {
	Solver
	CartToJnt(q, qdot, qdd JntArray, fext []spatial.Wrench, torques JntArray) error
}

// ForwardDynamicsSolver computes unconstrained joint accelerations.
type ForwardDynamicsSolver interface {
	Solver
	JntToJnt(q, qdot, torques JntArray, fext []spatial.Wrench, qdd JntArray) error
}
