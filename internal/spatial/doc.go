// Package spatial provides the 6D spatial algebra used by the chain solvers.
//
// Vectors are [r3.Vector] values from github.com/golang/geo. On top of them the
// package defines:
//
//   - [Rotation] and [Frame]: rigid transforms, composable and invertible
//   - [Twist]: generalized velocity or acceleration (linear Vel, angular Rot)
//   - [Wrench]: generalized force (Force, Torque), dual to Twist
//   - [RigidBodyInertia]: mass, first moment and rotational inertia of a body
//   - [ArticulatedBodyInertia]: 6x6 symmetric Twist to Wrench operator
//
// # Conventions
//
// A Twist is referred to the origin of the frame it is expressed in. Applying a
// [Frame] to a Twist or Wrench changes both its orientation and its reference
// point. Applying a [Rotation] only changes the orientation.
//
// When packed into 6-vectors (see [Twist.Vec6], [Wrench.Vec6]) the linear part
// comes first: Twist as [Vel; Rot] and Wrench as [Force; Torque]. With this
// layout the plain dot product of a packed twist and a packed wrench is the
// power [Dot].
package spatial
