// Package dynamics implements the dense reference dynamics of a chain.
//
// [RNE] is the recursive Newton-Euler inverse dynamics. From it the package
// derives the joint-space mass matrix and bias torques, the unconstrained
// forward dynamics [ForwardDynamics] (Cholesky of the mass matrix) and
// [DenseHybrid], which solves the end-effector constrained problem through
// Gauss' principle of least constraint:
//
//	M qdd = tau - b + Jc^T lambda
//	Jc qdd = beta - alfa^T a0
//
// where Jc = alfa^T J and a0 is the tip acceleration at zero joint
// acceleration. These solvers cost O(n^3) and serve as the baseline the linear
// time hybrid solver is checked against.
//
// External wrenches are expressed in the base orientation with the reference
// point at the tip of the segment they act on.
package dynamics
