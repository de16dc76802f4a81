package hybrid

import "go.uber.org/zap"

// DefaultAxisInertiaTolerance is the articulated inertia about a movable joint
// axis below which the joint is treated as locked.
const DefaultAxisInertiaTolerance = 1e-12

type Option func(*Vereshchagin)

func WithLogger(l *zap.Logger) Option {
	return func(v *Vereshchagin) { v.logger = l }
}

// WithSingularValueTolerance sets the absolute floor below which singular
// values of the root constraint matrix are discarded.
func WithSingularValueTolerance(tol float64) Option {
	return func(v *Vereshchagin) { v.svTol = tol }
}

// WithRelativeSingularValueTolerance additionally discards singular values
// below tol times the largest one.
func WithRelativeSingularValueTolerance(tol float64) Option {
	return func(v *Vereshchagin) { v.svRelTol = tol }
}

// WithAxisInertiaTolerance sets the locked-joint threshold.
func WithAxisInertiaTolerance(tol float64) Option {
	return func(v *Vereshchagin) { v.axisTol = tol }
}
