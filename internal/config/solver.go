package config

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/chaindyn/internal/chain"
	"github.com/san-kum/chaindyn/internal/dynamics"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/hybrid"
)

// NewSolver returns the hybrid solver selected by c.Solver for ch.
func (c *Config) NewSolver(ch *chain.Chain, logger *zap.Logger) (dynamo.HybridSolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	nc := c.NrOfConstraints()
	switch c.Solver {
	case SolverVereshchagin, "":
		opts := []hybrid.Option{hybrid.WithLogger(logger.Named("vereshchagin"))}
		if c.Tolerances.SingularValue > 0 {
			opts = append(opts, hybrid.WithSingularValueTolerance(c.Tolerances.SingularValue))
		}
		if c.Tolerances.RelativeSingularValue > 0 {
			opts = append(opts, hybrid.WithRelativeSingularValueTolerance(c.Tolerances.RelativeSingularValue))
		}
		if c.Tolerances.AxisInertia > 0 {
			opts = append(opts, hybrid.WithAxisInertiaTolerance(c.Tolerances.AxisInertia))
		}
		return hybrid.NewVereshchagin(ch, c.RootAcceleration(), nc, opts...), nil
	case SolverDense:
		opts := []dynamics.Option{dynamics.WithLogger(logger.Named("dense"))}
		if c.Tolerances.SingularValue > 0 {
			opts = append(opts, dynamics.WithSingularValueTolerance(c.Tolerances.SingularValue))
		}
		return dynamics.NewDenseHybrid(ch, c.RootAcceleration(), nc, opts...), nil
	default:
		return nil, errors.Errorf("unknown solver %q", c.Solver)
	}
}
