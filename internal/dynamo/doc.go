// Package dynamo provides the core types shared by the chain dynamics solvers.
//
// The package defines:
//
//   - [JntArray]: joint-space vector (positions, rates, accelerations, torques)
//   - [Solver]: anything holding per-chain buffers that must be refreshed when
//     the chain changes
//   - [HybridSolver]: constrained forward dynamics with an end-effector
//     acceleration constraint
//   - [InverseDynamicsSolver]: joint torques from a joint-space motion
//   - [Code] and the sentinel errors carrying it
//
// # Example
//
//	solver := hybrid.NewVereshchagin(c, spatial.GravityTwist(g), 1)
//	err := solver.CartToJnt(q, qdot, qdd, alfa, beta, fext, tau)
//	if dynamo.StatusCode(err) < 0 { ... }
//
// # Thread Safety
//
// Solvers are NOT thread-safe. Separate solver instances may share a chain as
// long as nobody modifies it; [ParallelFor] hands each worker its own range so
// it can build its own solver.
package dynamo
