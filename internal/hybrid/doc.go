// Package hybrid implements the Vereshchagin hybrid dynamics solver for
// serial chains.
//
// Given joint positions, rates and torques, external link wrenches and a set
// of nc acceleration constraints on the end-effector
//
//	alfa^T a_ee = beta
//
// the solver computes the joint accelerations and the joint torques produced
// by the constraint forces in time linear in the number of segments. It runs
// four phases over a per-segment working state:
//
//  1. a sweep from the base outward computing poses, velocities and
//     velocity-product bias terms,
//  2. a sweep from the tip inward computing articulated-body inertias and
//     projecting the constraint forces onto each joint,
//  3. a small nc x nc solve for the constraint force magnitudes, robust to
//     rank deficiency through a truncated SVD,
//  4. a sweep from the base outward computing joint and link accelerations.
//
// Gravity enters through the root acceleration: pass
// [spatial.GravityTwist] of the gravity field. External wrenches are
// expressed in the base orientation with the reference point at the tip of
// the segment they act on. Constraint directions (the columns of alfa) are
// unit wrenches in the base orientation, rows 0..2 linear and 3..5 angular.
//
// A Vereshchagin is not safe for concurrent use.
package hybrid
